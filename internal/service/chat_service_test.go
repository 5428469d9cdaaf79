package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backend/internal/agreement"
	"backend/internal/model"
	"backend/internal/repository"
)

type chatFixture struct {
	db     *gorm.DB
	svc    ChatService
	hub    *recordingPublisher
	owner  Identity
	pickup *model.PickupRequest
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	db := newTestDB(t)
	hub := &recordingPublisher{}

	gen := agreement.Generator{Now: func() time.Time {
		return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	}}

	svc := NewChatService(
		repository.NewChatRepository(db),
		repository.NewPickupRepository(db),
		repository.NewSignatureRepository(db),
		repository.NewTransactionManager(db),
		gen,
		hub,
	)

	owner := Identity{UserID: uuid.New(), Name: "Alice Wanjiku", Role: model.RoleUser}
	pickup := &model.PickupRequest{
		UserID:        owner.UserID,
		CompanyID:     1,
		CompanyName:   "GreenCycle Ltd",
		WasteType:     "recyclable",
		Location:      "Westlands, Nairobi",
		PreferredDate: "2026-09-01",
		PreferredTime: "morning",
		Status:        model.PickupStatusPending,
	}
	require.NoError(t, db.Create(pickup).Error)

	return &chatFixture{db: db, svc: svc, hub: hub, owner: owner, pickup: pickup}
}

func TestChatSend_AndListOrdering(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	first, err := f.svc.Send(ctx, f.owner, f.pickup.ID, SendMessageRequest{Message: "When can you collect?"})
	require.NoError(t, err)
	require.Equal(t, model.MessageTypeText, first.MessageType)
	require.Equal(t, "Alice Wanjiku", first.SenderName)

	company := Identity{UserID: uuid.New(), Name: "GreenCycle Ops", Role: model.RoleCompany}
	_, err = f.svc.Send(ctx, company, f.pickup.ID, SendMessageRequest{Message: "Tomorrow morning works."})
	require.NoError(t, err)

	messages, err := f.svc.ListMessages(ctx, f.owner.UserID.String(), f.owner.Role, f.pickup.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "When can you collect?", messages[0].Message)
	require.Equal(t, "Tomorrow morning works.", messages[1].Message)

	// both sends were fanned out to the thread
	require.Len(t, f.hub.pickupIDs, 2)
	require.Equal(t, f.pickup.ID.String(), f.hub.pickupIDs[0])
}

func TestChatSend_NonParticipantRejected(t *testing.T) {
	f := newChatFixture(t)
	stranger := Identity{UserID: uuid.New(), Name: "Mallory", Role: model.RoleUser}

	_, err := f.svc.Send(context.Background(), stranger, f.pickup.ID, SendMessageRequest{Message: "hi"})
	require.EqualError(t, err, "not a participant of this pickup thread")

	_, err = f.svc.ListMessages(context.Background(), stranger.UserID.String(), stranger.Role, f.pickup.ID)
	require.Error(t, err)
}

func TestChatShareAgreement(t *testing.T) {
	f := newChatFixture(t)

	msg, err := f.svc.ShareAgreement(context.Background(), f.owner, f.pickup.ID)
	require.NoError(t, err)

	require.Equal(t, model.MessageTypeAgreementPDF, msg.MessageType)
	require.Equal(t, "📄 Waste Collection Agreement generated. Please review and sign below.", msg.Message)
	require.True(t, strings.HasPrefix(msg.AttachmentURL, "data:application/pdf;base64,"))
	require.True(t, msg.Metadata.RequiresSignature)
	require.Equal(t, "agreement-"+f.pickup.ID.String()[:8]+".pdf", msg.Metadata.FileName)

	// metadata round-trips through the column
	var stored model.ChatMessage
	require.NoError(t, f.db.First(&stored, "id = ?", msg.ID).Error)
	require.True(t, stored.Metadata.RequiresSignature)
	require.Equal(t, msg.Metadata.FileName, stored.Metadata.FileName)
}

func TestChatSign_RecordsSignatureAtomically(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	pickup, err := f.svc.Sign(ctx, f.owner, f.pickup.ID, SignAgreementRequest{SignatureData: "Alice Wanjiku"})
	require.NoError(t, err)
	require.True(t, pickup.AgreementSignedUser)
	require.False(t, pickup.AgreementSignedCompany)

	var sigs []model.AgreementSignature
	require.NoError(t, f.db.Find(&sigs).Error)
	require.Len(t, sigs, 1)
	require.Equal(t, model.SignerRoleUser, sigs[0].SignerRole)
	require.Equal(t, "Alice Wanjiku", sigs[0].SignatureData)

	// the flag on the stored row moved with the signature
	var stored model.PickupRequest
	require.NoError(t, f.db.First(&stored, "id = ?", f.pickup.ID).Error)
	require.True(t, stored.AgreementSignedUser)

	// a system notice went into the thread and out to subscribers
	messages, err := f.svc.ListMessages(ctx, f.owner.UserID.String(), f.owner.Role, f.pickup.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, model.MessageTypeSystem, messages[0].MessageType)
	require.Equal(t, "✅ Alice Wanjiku has digitally signed the agreement.", messages[0].Message)
	require.Len(t, f.hub.pickupIDs, 1)
}

func TestChatSign_DuplicateRoleRejected(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.Sign(ctx, f.owner, f.pickup.ID, SignAgreementRequest{SignatureData: "Alice Wanjiku"})
	require.NoError(t, err)

	_, err = f.svc.Sign(ctx, f.owner, f.pickup.ID, SignAgreementRequest{SignatureData: "Alice Wanjiku"})
	require.EqualError(t, err, "agreement already signed for this party")

	// the company side is independent
	company := Identity{UserID: uuid.New(), Name: "GreenCycle Ops", Role: model.RoleCompany}
	pickup, err := f.svc.Sign(ctx, company, f.pickup.ID, SignAgreementRequest{SignatureData: "GreenCycle Ltd"})
	require.NoError(t, err)
	require.True(t, pickup.AgreementSignedUser)
	require.True(t, pickup.AgreementSignedCompany)
}

func TestChatSign_AdminCannotSign(t *testing.T) {
	f := newChatFixture(t)
	admin := Identity{UserID: uuid.New(), Name: "Root", Role: model.RoleAdmin}

	_, err := f.svc.Sign(context.Background(), admin, f.pickup.ID, SignAgreementRequest{SignatureData: "Root"})
	require.EqualError(t, err, "only the client or the company can sign the agreement")
}
