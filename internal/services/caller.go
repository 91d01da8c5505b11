package services

import (
	"github.com/google/uuid"

	"github.com/unetra-global/member-portal-sub000/internal/models"
)

// Caller identifies the member on whose behalf an operation runs.
type Caller struct {
	MemberID uuid.UUID
	Tier     models.MembershipTier
}

func (c Caller) IsAdmin() bool {
	return c.Tier == models.MembershipTierAdmin
}

func (c Caller) Owns(memberID uuid.UUID) bool {
	return c.MemberID != uuid.Nil && c.MemberID == memberID
}
