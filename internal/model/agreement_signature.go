package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Parties that can sign an agreement.
const (
	SignerRoleUser    = "user"
	SignerRoleCompany = "company"
)

// AgreementSignature records one party's digital signature on a pickup
// agreement. The signature is the signer's typed full legal name. At most
// one signature exists per pickup and role.
type AgreementSignature struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PickupRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_signature_pickup_role" json:"pickup_request_id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	SignatureData   string    `gorm:"type:varchar(255);not null" json:"signature_data"`
	SignerRole      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_signature_pickup_role" json:"signer_role"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *AgreementSignature) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
