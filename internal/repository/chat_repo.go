package repository

import (
	"backend/internal/model"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRepository defines the interface for data access of ChatMessage
// entities. Messages are immutable once created.
type ChatRepository interface {
	Create(ctx context.Context, msg *model.ChatMessage) error
	ListByPickup(ctx context.Context, pickupID uuid.UUID) ([]model.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository returns a new instance of ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, msg *model.ChatMessage) error {
	return GetDB(ctx, r.db).Create(msg).Error
}

// ListByPickup returns the thread's messages in ascending creation order,
// matching the order the realtime feed appends to.
func (r *chatRepository) ListByPickup(ctx context.Context, pickupID uuid.UUID) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	if err := GetDB(ctx, r.db).
		Where("pickup_request_id = ?", pickupID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
