package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pickup request lifecycle states.
const (
	PickupStatusPending    = "pending"
	PickupStatusInProgress = "in_progress"
	PickupStatusCompleted  = "completed"
	PickupStatusCancelled  = "cancelled"
)

// PickupRequest is a user's request for a partner company to collect waste.
// Company id and name are copied from the static catalog at creation time;
// they are a denormalized snapshot, not a live foreign key.
type PickupRequest struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                 uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CompanyID              int       `gorm:"not null" json:"company_id"`
	CompanyName            string    `gorm:"type:varchar(255);not null" json:"company_name"`
	WasteType              string    `gorm:"type:varchar(50);not null" json:"waste_type"`
	WasteDescription       string    `gorm:"type:varchar(500)" json:"waste_description"`
	Location               string    `gorm:"type:varchar(255);not null" json:"location"`
	PreferredDate          string    `gorm:"type:varchar(20);not null" json:"preferred_date"`
	PreferredTime          string    `gorm:"type:varchar(20);not null" json:"preferred_time"`
	Status                 string    `gorm:"type:varchar(30);not null;default:'pending'" json:"status"`
	AgreementSignedUser    bool      `gorm:"not null;default:false" json:"agreement_signed_user"`
	AgreementSignedCompany bool      `gorm:"not null;default:false" json:"agreement_signed_company"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *PickupRequest) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
