// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type MembershipTier string

const (
	MembershipTierFree    MembershipTier = "FREE"
	MembershipTierPremium MembershipTier = "PREMIUM"
	MembershipTierAdmin   MembershipTier = "ADMIN"
)

func (t MembershipTier) IsValid() bool {
	switch t {
	case MembershipTierFree, MembershipTierPremium, MembershipTierAdmin:
		return true
	}
	return false
}

type MemberStatus string

const (
	MemberStatusPending   MemberStatus = "PENDING"
	MemberStatusActive    MemberStatus = "ACTIVE"
	MemberStatusSuspended MemberStatus = "SUSPENDED"
)

type ArticleStatus string

const (
	ArticleStatusDraft       ArticleStatus = "DRAFT"
	ArticleStatusPublished   ArticleStatus = "PUBLISHED"
	ArticleStatusArchived    ArticleStatus = "ARCHIVED"
	ArticleStatusUnderReview ArticleStatus = "UNDER_REVIEW"
)

func (s ArticleStatus) IsValid() bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPublished, ArticleStatusArchived, ArticleStatusUnderReview:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)
