package service

import (
	"backend/internal/model"
	"backend/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// RedemptionOption describes one way to spend points.
type RedemptionOption struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	MinPoints int    `json:"min_points"`
}

// redemptionOptions is the fixed menu of redemption channels.
var redemptionOptions = map[string]RedemptionOption{
	model.RedemptionTypeSupermarket: {Type: model.RedemptionTypeSupermarket, Label: "Supermarket Discount", MinPoints: 50},
	model.RedemptionTypeAirtime:     {Type: model.RedemptionTypeAirtime, Label: "Airtime Top-Up", MinPoints: 20},
	model.RedemptionTypeBrandOffer:  {Type: model.RedemptionTypeBrandOffer, Label: "Brand Offers", MinPoints: 100},
}

// QRPayload is the exact JSON encoded into a redemption voucher's QR code.
type QRPayload struct {
	RedemptionID uuid.UUID `json:"redemption_id"`
	UserID       uuid.UUID `json:"user_id"`
	Type         string    `json:"type"`
	Points       int       `json:"points"`
	Timestamp    int64     `json:"timestamp"`
}

// DTOs
type RedeemRequest struct {
	Type   string `json:"type" binding:"required"`
	Points int    `json:"points" binding:"required"`
}

type PointsHistoryResponse struct {
	Transactions []model.PointsTransaction `json:"transactions"`
	Redemptions  []model.Redemption        `json:"redemptions"`
}

// PointsService defines the interface for the loyalty ledger. The balance
// always comes from the stored aggregate, never from rows in memory.
type PointsService interface {
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	Transactions(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.PointsTransaction, error)
	Redemptions(ctx context.Context, userID uuid.UUID, limit int) ([]model.Redemption, error)
	Redeem(ctx context.Context, userID uuid.UUID, req RedeemRequest) (*model.Redemption, error)
	RedemptionQR(ctx context.Context, userID, redemptionID uuid.UUID) ([]byte, error)
}

type pointsService struct {
	repo      repository.PointsRepository
	txManager repository.TransactionManager
	now       func() time.Time
}

// NewPointsService returns a new instance of PointsService
func NewPointsService(repo repository.PointsRepository, txManager repository.TransactionManager) PointsService {
	return &pointsService{repo: repo, txManager: txManager, now: time.Now}
}

func (s *pointsService) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.Balance(ctx, userID)
}

func (s *pointsService) Transactions(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.PointsTransaction, error) {
	return s.repo.ListTransactions(ctx, userID, offset, limit)
}

func (s *pointsService) Redemptions(ctx context.Context, userID uuid.UUID, limit int) ([]model.Redemption, error) {
	return s.repo.ListRedemptions(ctx, userID, limit)
}

// Redeem validates the spend against the option minimum and the live
// balance, then writes the debit and the voucher together.
func (s *pointsService) Redeem(ctx context.Context, userID uuid.UUID, req RedeemRequest) (*model.Redemption, error) {
	option, ok := redemptionOptions[req.Type]
	if !ok {
		return nil, errors.New("unknown redemption type")
	}
	if req.Points < option.MinPoints {
		return nil, fmt.Errorf("Minimum %d points required.", option.MinPoints)
	}

	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Points > balance {
		return nil, errors.New("Insufficient points balance.")
	}

	payload := QRPayload{
		RedemptionID: uuid.New(),
		UserID:       userID,
		Type:         option.Type,
		Points:       req.Points,
		Timestamp:    s.now().UnixMilli(),
	}
	qr, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	redemption := &model.Redemption{
		ID:             payload.RedemptionID,
		UserID:         userID,
		PointsUsed:     req.Points,
		RedemptionType: option.Type,
		QRCode:         string(qr),
		Status:         model.RedemptionStatusActive,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateTransaction(txCtx, &model.PointsTransaction{
			UserID:      userID,
			Amount:      req.Points,
			Type:        model.PointsTypeRedeemed,
			Description: "Redeemed for " + option.Label,
		}); err != nil {
			return err
		}
		return s.repo.CreateRedemption(txCtx, redemption)
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

// RedemptionQR renders the voucher's payload as a PNG for partner outlets.
func (s *pointsService) RedemptionQR(ctx context.Context, userID, redemptionID uuid.UUID) ([]byte, error) {
	redemption, err := s.repo.GetRedemption(ctx, redemptionID)
	if err != nil {
		return nil, errors.New("redemption not found")
	}
	if redemption.UserID != userID {
		return nil, errors.New("redemption not found")
	}
	return qrcode.Encode(redemption.QRCode, qrcode.High, 256)
}

// Options exposes the redemption menu for clients.
func Options() []RedemptionOption {
	return []RedemptionOption{
		redemptionOptions[model.RedemptionTypeSupermarket],
		redemptionOptions[model.RedemptionTypeAirtime],
		redemptionOptions[model.RedemptionTypeBrandOffer],
	}
}
