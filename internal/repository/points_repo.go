package repository

import (
	"backend/internal/model"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsRepository defines the interface for data access of the loyalty
// ledger and redemption vouchers.
type PointsRepository interface {
	CreateTransaction(ctx context.Context, txn *model.PointsTransaction) error
	ListTransactions(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.PointsTransaction, error)
	Balance(ctx context.Context, userID uuid.UUID) (int, error)

	CreateRedemption(ctx context.Context, red *model.Redemption) error
	GetRedemption(ctx context.Context, id uuid.UUID) (*model.Redemption, error)
	ListRedemptions(ctx context.Context, userID uuid.UUID, limit int) ([]model.Redemption, error)
}

type pointsRepository struct {
	db *gorm.DB
}

// NewPointsRepository returns a new instance of PointsRepository
func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) CreateTransaction(ctx context.Context, txn *model.PointsTransaction) error {
	return GetDB(ctx, r.db).Create(txn).Error
}

func (r *pointsRepository) ListTransactions(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.PointsTransaction, error) {
	var txns []model.PointsTransaction
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// Balance computes the user's points balance as a stored aggregate over the
// ledger, the database-side equivalent of the get_user_points_balance
// procedure.
func (r *pointsRepository) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var balance int
	err := GetDB(ctx, r.db).Model(&model.PointsTransaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0)", model.PointsTypeEarned).
		Where("user_id = ?", userID).
		Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *pointsRepository) CreateRedemption(ctx context.Context, red *model.Redemption) error {
	return GetDB(ctx, r.db).Create(red).Error
}

func (r *pointsRepository) GetRedemption(ctx context.Context, id uuid.UUID) (*model.Redemption, error) {
	var red model.Redemption
	if err := GetDB(ctx, r.db).First(&red, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &red, nil
}

func (r *pointsRepository) ListRedemptions(ctx context.Context, userID uuid.UUID, limit int) ([]model.Redemption, error) {
	var reds []model.Redemption
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reds).Error; err != nil {
		return nil, err
	}
	return reds, nil
}
