package repository

import (
	"backend/internal/model"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PickupRepository defines the interface for data access of PickupRequest
// entities. Pickups are never deleted; their status and signature flags are
// the only mutable fields.
type PickupRepository interface {
	Create(ctx context.Context, pickup *model.PickupRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PickupRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.PickupRequest, error)
	ListAll(ctx context.Context) ([]model.PickupRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SetAgreementSigned(ctx context.Context, id uuid.UUID, signerRole string) error
}

type pickupRepository struct {
	db *gorm.DB
}

// NewPickupRepository returns a new instance of PickupRepository
func NewPickupRepository(db *gorm.DB) PickupRepository {
	return &pickupRepository{db: db}
}

func (r *pickupRepository) Create(ctx context.Context, pickup *model.PickupRequest) error {
	return GetDB(ctx, r.db).Create(pickup).Error
}

func (r *pickupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PickupRequest, error) {
	var pickup model.PickupRequest
	if err := GetDB(ctx, r.db).First(&pickup, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pickup, nil
}

func (r *pickupRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.PickupRequest, error) {
	var pickups []model.PickupRequest
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

func (r *pickupRepository) ListAll(ctx context.Context) ([]model.PickupRequest, error) {
	var pickups []model.PickupRequest
	if err := GetDB(ctx, r.db).Order("created_at DESC").Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

func (r *pickupRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.PickupRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *pickupRepository) SetAgreementSigned(ctx context.Context, id uuid.UUID, signerRole string) error {
	column := "agreement_signed_user"
	if signerRole == model.SignerRoleCompany {
		column = "agreement_signed_company"
	}
	return GetDB(ctx, r.db).Model(&model.PickupRequest{}).
		Where("id = ?", id).
		Update(column, true).Error
}
