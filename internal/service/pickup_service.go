package service

import (
	"backend/internal/catalog"
	"backend/internal/model"
	"backend/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ThreadPublisher pushes a payload to every realtime subscriber of a pickup
// thread. Satisfied by *websocket.Hub.
type ThreadPublisher interface {
	Publish(pickupID string, payload []byte)
}

// Field caps applied before writing; defensive, not a validated invariant.
const (
	maxDescriptionLen = 500
	maxLocationLen    = 255
)

// Completing a pickup earns 20 points per KES 1,000 billed.
var (
	pointsPerUnit = decimal.NewFromInt(20)
	earnUnitKES   = decimal.NewFromInt(1000)
)

// ErrMissingFields is surfaced verbatim as the validation notice.
var ErrMissingFields = errors.New("Please fill in all required fields.")

// DTOs
type CreatePickupRequest struct {
	CompanyID        int    `json:"company_id" binding:"required"`
	WasteType        string `json:"waste_type"`
	WasteDescription string `json:"waste_description"`
	Location         string `json:"location"`
	PreferredDate    string `json:"preferred_date"`
	PreferredTime    string `json:"preferred_time"`
}

type UpdatePickupStatusRequest struct {
	Status    string          `json:"status" binding:"required,oneof=in_progress completed cancelled"`
	AmountKES decimal.Decimal `json:"amount_kes"` // billed amount, required when completing
}

// PickupService defines the interface for business logic around pickup requests
type PickupService interface {
	Create(ctx context.Context, userID uuid.UUID, req CreatePickupRequest) (*model.PickupRequest, error)
	List(ctx context.Context, userID uuid.UUID, role string) ([]model.PickupRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdatePickupStatusRequest) (*model.PickupRequest, error)
	CanAccess(ctx context.Context, userID, role, pickupID string) bool
}

type pickupService struct {
	pickupRepo repository.PickupRepository
	pointsRepo repository.PointsRepository
	chatRepo   repository.ChatRepository
	txManager  repository.TransactionManager
	hub        ThreadPublisher
}

// NewPickupService returns a new instance of PickupService
func NewPickupService(
	pickupRepo repository.PickupRepository,
	pointsRepo repository.PointsRepository,
	chatRepo repository.ChatRepository,
	txManager repository.TransactionManager,
	hub ThreadPublisher,
) PickupService {
	return &pickupService{
		pickupRepo: pickupRepo,
		pointsRepo: pointsRepo,
		chatRepo:   chatRepo,
		txManager:  txManager,
		hub:        hub,
	}
}

// truncate caps s at n bytes, preserving the byte prefix.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func (s *pickupService) Create(ctx context.Context, userID uuid.UUID, req CreatePickupRequest) (*model.PickupRequest, error) {
	// Reject locally before any write is issued
	if req.Location == "" || req.PreferredDate == "" {
		return nil, ErrMissingFields
	}

	company, ok := catalog.ByID(req.CompanyID)
	if !ok {
		return nil, errors.New("unknown company")
	}

	wasteType := req.WasteType
	if wasteType == "" {
		wasteType = "general"
	}
	preferredTime := req.PreferredTime
	if preferredTime == "" {
		preferredTime = "morning"
	}

	pickup := &model.PickupRequest{
		UserID:           userID,
		CompanyID:        company.ID,
		CompanyName:      company.Name,
		WasteType:        wasteType,
		WasteDescription: truncate(req.WasteDescription, maxDescriptionLen),
		Location:         truncate(req.Location, maxLocationLen),
		PreferredDate:    req.PreferredDate,
		PreferredTime:    preferredTime,
		Status:           model.PickupStatusPending,
	}

	if err := s.pickupRepo.Create(ctx, pickup); err != nil {
		return nil, err
	}
	return pickup, nil
}

func (s *pickupService) List(ctx context.Context, userID uuid.UUID, role string) ([]model.PickupRequest, error) {
	// Companies and admins review every thread; users see their own
	if role == model.RoleCompany || role == model.RoleAdmin {
		return s.pickupRepo.ListAll(ctx)
	}
	return s.pickupRepo.ListByUser(ctx, userID)
}

// validTransitions maps each status to the states it may move to.
var validTransitions = map[string][]string{
	model.PickupStatusPending:    {model.PickupStatusInProgress, model.PickupStatusCancelled},
	model.PickupStatusInProgress: {model.PickupStatusCompleted, model.PickupStatusCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s *pickupService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdatePickupStatusRequest) (*model.PickupRequest, error) {
	pickup, err := s.pickupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("pickup request not found")
	}

	if !transitionAllowed(pickup.Status, req.Status) {
		return nil, fmt.Errorf("cannot move pickup from %s to %s", pickup.Status, req.Status)
	}

	if req.Status == model.PickupStatusCompleted {
		return s.complete(ctx, pickup, req.AmountKES)
	}

	if err := s.pickupRepo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}
	pickup.Status = req.Status
	return pickup, nil
}

// complete marks the pickup done and credits the owner's loyalty ledger in
// the same transaction.
func (s *pickupService) complete(ctx context.Context, pickup *model.PickupRequest, amountKES decimal.Decimal) (*model.PickupRequest, error) {
	if amountKES.IsNegative() {
		return nil, errors.New("billed amount cannot be negative")
	}
	points := int(amountKES.Mul(pointsPerUnit).Div(earnUnitKES).Floor().IntPart())

	note := &model.ChatMessage{
		PickupRequestID: pickup.ID,
		SenderID:        pickup.UserID,
		SenderName:      "System",
		Message:         fmt.Sprintf("✅ Pickup completed. %d loyalty points awarded.", points),
		MessageType:     model.MessageTypeSystem,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.pickupRepo.UpdateStatus(txCtx, pickup.ID, model.PickupStatusCompleted); err != nil {
			return err
		}
		if points > 0 {
			if err := s.pointsRepo.CreateTransaction(txCtx, &model.PointsTransaction{
				UserID:      pickup.UserID,
				Amount:      points,
				Type:        model.PointsTypeEarned,
				Description: fmt.Sprintf("Points earned for completed pickup with %s", pickup.CompanyName),
			}); err != nil {
				return err
			}
		}
		return s.chatRepo.Create(txCtx, note)
	})
	if err != nil {
		return nil, err
	}

	pickup.Status = model.PickupStatusCompleted
	s.publish(note)
	return pickup, nil
}

func (s *pickupService) publish(msg *model.ChatMessage) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.hub.Publish(msg.PickupRequestID.String(), payload)
}

// CanAccess reports whether the user participates in the pickup thread.
// Companies and admins may join any thread; users only their own.
func (s *pickupService) CanAccess(ctx context.Context, userID, role, pickupID string) bool {
	if role == model.RoleCompany || role == model.RoleAdmin {
		return true
	}
	id, err := uuid.Parse(pickupID)
	if err != nil {
		return false
	}
	pickup, err := s.pickupRepo.GetByID(ctx, id)
	if err != nil {
		return false
	}
	return pickup.UserID.String() == userID
}
