package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat message kinds. Every message belongs to exactly one pickup thread.
const (
	MessageTypeText         = "text"
	MessageTypeSystem       = "system"
	MessageTypeAgreementPDF = "agreement_pdf"
)

// MessageMetadata is the closed set of extra fields a message may carry.
// Only agreement_pdf messages populate it; text and system messages store
// NULL. Stored as a JSON column.
type MessageMetadata struct {
	RequiresSignature bool   `json:"requiresSignature,omitempty"`
	FileName          string `json:"fileName,omitempty"`
}

// Value serializes the metadata for storage. Empty metadata maps to NULL.
func (m MessageMetadata) Value() (driver.Value, error) {
	if m == (MessageMetadata{}) {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan deserializes the metadata from its stored JSON form.
func (m *MessageMetadata) Scan(src interface{}) error {
	if src == nil {
		*m = MessageMetadata{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
}

// ChatMessage is a single immutable entry in a pickup thread. Agreement
// messages carry the generated PDF as a data URI in AttachmentURL.
type ChatMessage struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PickupRequestID uuid.UUID       `gorm:"type:uuid;not null;index" json:"pickup_request_id"`
	SenderID        uuid.UUID       `gorm:"type:uuid;not null" json:"sender_id"`
	SenderName      string          `gorm:"type:varchar(255);not null" json:"sender_name"`
	Message         string          `gorm:"type:text" json:"message"`
	MessageType     string          `gorm:"type:varchar(30);not null;default:'text'" json:"message_type"`
	AttachmentURL   string          `gorm:"type:text" json:"attachment_url,omitempty"`
	Metadata        MessageMetadata `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
