package service

import (
	"backend/internal/agreement"
	"backend/internal/model"
	"backend/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DTOs
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type SignAgreementRequest struct {
	SignatureData string `json:"signature_data" binding:"required"`
}

// ChatService defines the interface for business logic around pickup
// threads: messages, agreement sharing, and digital signing.
type ChatService interface {
	ListMessages(ctx context.Context, userID, role string, pickupID uuid.UUID) ([]model.ChatMessage, error)
	Send(ctx context.Context, sender Identity, pickupID uuid.UUID, req SendMessageRequest) (*model.ChatMessage, error)
	ShareAgreement(ctx context.Context, sender Identity, pickupID uuid.UUID) (*model.ChatMessage, error)
	Sign(ctx context.Context, signer Identity, pickupID uuid.UUID, req SignAgreementRequest) (*model.PickupRequest, error)
}

// Identity is the acting account, extracted from the JWT by middleware.
type Identity struct {
	UserID uuid.UUID
	Name   string
	Role   string
}

type chatService struct {
	chatRepo   repository.ChatRepository
	pickupRepo repository.PickupRepository
	sigRepo    repository.SignatureRepository
	txManager  repository.TransactionManager
	generator  agreement.Generator
	hub        ThreadPublisher
}

// NewChatService returns a new instance of ChatService
func NewChatService(
	chatRepo repository.ChatRepository,
	pickupRepo repository.PickupRepository,
	sigRepo repository.SignatureRepository,
	txManager repository.TransactionManager,
	generator agreement.Generator,
	hub ThreadPublisher,
) ChatService {
	return &chatService{
		chatRepo:   chatRepo,
		pickupRepo: pickupRepo,
		sigRepo:    sigRepo,
		txManager:  txManager,
		generator:  generator,
		hub:        hub,
	}
}

// loadThread fetches the pickup and verifies the actor participates in it.
func (s *chatService) loadThread(ctx context.Context, userID, role string, pickupID uuid.UUID) (*model.PickupRequest, error) {
	pickup, err := s.pickupRepo.GetByID(ctx, pickupID)
	if err != nil {
		return nil, errors.New("pickup request not found")
	}
	if role != model.RoleCompany && role != model.RoleAdmin && pickup.UserID.String() != userID {
		return nil, errors.New("not a participant of this pickup thread")
	}
	return pickup, nil
}

func (s *chatService) ListMessages(ctx context.Context, userID, role string, pickupID uuid.UUID) ([]model.ChatMessage, error) {
	if _, err := s.loadThread(ctx, userID, role, pickupID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListByPickup(ctx, pickupID)
}

func (s *chatService) Send(ctx context.Context, sender Identity, pickupID uuid.UUID, req SendMessageRequest) (*model.ChatMessage, error) {
	if req.Message == "" {
		return nil, errors.New("message cannot be empty")
	}
	if _, err := s.loadThread(ctx, sender.UserID.String(), sender.Role, pickupID); err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		PickupRequestID: pickupID,
		SenderID:        sender.UserID,
		SenderName:      sender.Name,
		Message:         req.Message,
		MessageType:     model.MessageTypeText,
	}
	if err := s.chatRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.publish(msg)
	return msg, nil
}

// ShareAgreement generates the agreement document for the pickup and posts
// it into the thread as a signable attachment.
func (s *chatService) ShareAgreement(ctx context.Context, sender Identity, pickupID uuid.UUID) (*model.ChatMessage, error) {
	pickup, err := s.loadThread(ctx, sender.UserID.String(), sender.Role, pickupID)
	if err != nil {
		return nil, err
	}

	dataURI, err := s.generator.DataURI(agreement.Data{
		PickupRequestID:  pickup.ID.String(),
		UserName:         sender.Name,
		CompanyName:      pickup.CompanyName,
		WasteType:        pickup.WasteType,
		WasteDescription: pickup.WasteDescription,
		Location:         pickup.Location,
		PreferredDate:    pickup.PreferredDate,
		PreferredTime:    pickup.PreferredTime,
		CreatedAt:        pickup.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		PickupRequestID: pickupID,
		SenderID:        sender.UserID,
		SenderName:      sender.Name,
		Message:         "📄 Waste Collection Agreement generated. Please review and sign below.",
		MessageType:     model.MessageTypeAgreementPDF,
		AttachmentURL:   dataURI,
		Metadata: model.MessageMetadata{
			RequiresSignature: true,
			FileName:          agreement.FileName(pickup.ID.String()),
		},
	}
	if err := s.chatRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.publish(msg)
	return msg, nil
}

// Sign records the signer's typed name and flips the pickup's signed flag.
// The signature row, the flag update, and the system announcement commit
// atomically: a signature never exists without its flag.
func (s *chatService) Sign(ctx context.Context, signer Identity, pickupID uuid.UUID, req SignAgreementRequest) (*model.PickupRequest, error) {
	if req.SignatureData == "" {
		return nil, errors.New("signature name cannot be empty")
	}

	var signerRole string
	switch signer.Role {
	case model.RoleUser:
		signerRole = model.SignerRoleUser
	case model.RoleCompany:
		signerRole = model.SignerRoleCompany
	default:
		return nil, errors.New("only the client or the company can sign the agreement")
	}

	pickup, err := s.loadThread(ctx, signer.UserID.String(), signer.Role, pickupID)
	if err != nil {
		return nil, err
	}

	signed, err := s.sigRepo.ExistsForRole(ctx, pickupID, signerRole)
	if err != nil {
		return nil, err
	}
	if signed {
		return nil, errors.New("agreement already signed for this party")
	}

	note := &model.ChatMessage{
		PickupRequestID: pickupID,
		SenderID:        signer.UserID,
		SenderName:      "System",
		Message:         fmt.Sprintf("✅ %s has digitally signed the agreement.", signer.Name),
		MessageType:     model.MessageTypeSystem,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.sigRepo.Create(txCtx, &model.AgreementSignature{
			PickupRequestID: pickupID,
			UserID:          signer.UserID,
			SignatureData:   req.SignatureData,
			SignerRole:      signerRole,
		}); err != nil {
			return err
		}
		if err := s.pickupRepo.SetAgreementSigned(txCtx, pickupID, signerRole); err != nil {
			return err
		}
		return s.chatRepo.Create(txCtx, note)
	})
	if err != nil {
		return nil, err
	}

	if signerRole == model.SignerRoleUser {
		pickup.AgreementSignedUser = true
	} else {
		pickup.AgreementSignedCompany = true
	}
	s.publish(note)
	return pickup, nil
}

func (s *chatService) publish(msg *model.ChatMessage) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.hub.Publish(msg.PickupRequestID.String(), payload)
}
