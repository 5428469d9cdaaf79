package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Points transaction kinds.
const (
	PointsTypeEarned   = "earned"
	PointsTypeRedeemed = "redeemed"
)

// Redemption channels and their minimum spend.
const (
	RedemptionTypeSupermarket = "supermarket"
	RedemptionTypeAirtime     = "airtime"
	RedemptionTypeBrandOffer  = "brand_offer"
)

// Redemption states.
const (
	RedemptionStatusActive = "active"
	RedemptionStatusUsed   = "used"
)

// PointsTransaction is one loyalty ledger entry. Amount is always positive;
// Type says which direction it moves the balance. The balance itself is a
// stored aggregate over this table, never recomputed from rows in memory.
type PointsTransaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      int       `gorm:"not null" json:"amount"`
	Type        string    `gorm:"type:varchar(20);not null" json:"type"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *PointsTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Redemption is a voucher produced by spending points. QRCode holds the
// JSON payload {redemption_id, user_id, type, points, timestamp} shown at
// the partner outlet.
type Redemption struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	PointsUsed     int       `gorm:"not null" json:"points_used"`
	RedemptionType string    `gorm:"type:varchar(30);not null" json:"redemption_type"`
	QRCode         string    `gorm:"type:text;not null" json:"qr_code"`
	Status         string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
