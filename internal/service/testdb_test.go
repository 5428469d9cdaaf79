package service

import (
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.PickupRequest{},
		&model.ChatMessage{},
		&model.AgreementSignature{},
		&model.PointsTransaction{},
		&model.Redemption{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// recordingPublisher captures hub publishes for assertions.
type recordingPublisher struct {
	pickupIDs []string
	payloads  [][]byte
}

func (p *recordingPublisher) Publish(pickupID string, payload []byte) {
	p.pickupIDs = append(p.pickupIDs, pickupID)
	p.payloads = append(p.payloads, payload)
}
