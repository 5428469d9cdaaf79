package repository

import (
	"backend/internal/model"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SignatureRepository defines the interface for data access of
// AgreementSignature entities.
type SignatureRepository interface {
	Create(ctx context.Context, sig *model.AgreementSignature) error
	ExistsForRole(ctx context.Context, pickupID uuid.UUID, signerRole string) (bool, error)
	ListByPickup(ctx context.Context, pickupID uuid.UUID) ([]model.AgreementSignature, error)
}

type signatureRepository struct {
	db *gorm.DB
}

// NewSignatureRepository returns a new instance of SignatureRepository
func NewSignatureRepository(db *gorm.DB) SignatureRepository {
	return &signatureRepository{db: db}
}

func (r *signatureRepository) Create(ctx context.Context, sig *model.AgreementSignature) error {
	return GetDB(ctx, r.db).Create(sig).Error
}

func (r *signatureRepository) ExistsForRole(ctx context.Context, pickupID uuid.UUID, signerRole string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.AgreementSignature{}).
		Where("pickup_request_id = ? AND signer_role = ?", pickupID, signerRole).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *signatureRepository) ListByPickup(ctx context.Context, pickupID uuid.UUID) ([]model.AgreementSignature, error) {
	var sigs []model.AgreementSignature
	if err := GetDB(ctx, r.db).
		Where("pickup_request_id = ?", pickupID).
		Order("created_at ASC").
		Find(&sigs).Error; err != nil {
		return nil, err
	}
	return sigs, nil
}
