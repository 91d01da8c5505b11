// internal/models/member.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type ExperienceEntry struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

type License struct {
	Name      string `json:"name"`
	Issuer    string `json:"issuer,omitempty"`
	Number    string `json:"number,omitempty"`
	IssuedOn  string `json:"issued_on,omitempty"`
	ExpiresOn string `json:"expires_on,omitempty"`
}

type Award struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer,omitempty"`
	Year        int    `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
}

type Member struct {
	BaseModel
	AuthUserID        string                               `json:"auth_user_id" gorm:"size:255;not null;uniqueIndex"`
	FirstName         string                               `json:"first_name" gorm:"size:100;not null"`
	LastName          string                               `json:"last_name" gorm:"size:100;not null"`
	Email             string                               `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Phone             string                               `json:"phone" gorm:"size:20"`
	Headline          string                               `json:"headline" gorm:"size:255"`
	Bio               string                               `json:"bio" gorm:"type:text"`
	ProfilePhoto      string                               `json:"profile_photo" gorm:"type:text"`
	LinkedInURL       string                               `json:"linkedin_url" gorm:"column:linkedin_url;size:255"`
	Address           string                               `json:"address" gorm:"type:text"`
	City              string                               `json:"city" gorm:"size:100;index"`
	State             string                               `json:"state" gorm:"size:100"`
	Country           string                               `json:"country" gorm:"size:100;default:'India'"`
	Pincode           string                               `json:"pincode" gorm:"size:12"`
	YearsOfExperience int                                  `json:"years_of_experience" gorm:"default:0"`
	Experience        datatypes.JSONSlice[ExperienceEntry] `json:"experience" gorm:"type:jsonb"`
	Licenses          datatypes.JSONSlice[License]         `json:"licenses" gorm:"type:jsonb"`
	Awards            datatypes.JSONSlice[Award]           `json:"awards" gorm:"type:jsonb"`
	Documents         pq.StringArray                       `json:"documents" gorm:"type:text[]"`
	ConsentTerms      bool                                 `json:"consent_terms" gorm:"not null;default:false"`
	ConsentPrivacy    bool                                 `json:"consent_privacy" gorm:"not null;default:false"`
	ConsentMarketing  bool                                 `json:"consent_marketing" gorm:"not null;default:false"`
	MembershipTier    MembershipTier                       `json:"membership_tier" gorm:"type:varchar(20);not null;default:'FREE'"`
	Status            MemberStatus                         `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE';index"`

	// Relationships
	Services []MemberService `json:"services,omitempty" gorm:"foreignKey:MemberID"`
}

func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

func (m *Member) IsAdmin() bool {
	return m.MembershipTier == MembershipTierAdmin
}

// MemberService links a member to a services taxonomy entry. The
// (member_id, service_id) pair is unique.
type MemberService struct {
	BaseModel
	MemberID                uuid.UUID `json:"member_id" gorm:"type:uuid;not null;index"`
	ServiceID               uuid.UUID `json:"service_id" gorm:"type:uuid;not null;index"`
	IsPreferred             bool      `json:"is_preferred" gorm:"not null;default:false"`
	IsActive                bool      `json:"is_active" gorm:"not null"`
	RelevantYearsExperience int       `json:"relevant_years_experience" gorm:"not null;default:0"`

	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

// MembershipPayment records a paid tier upgrade attempt.
type MembershipPayment struct {
	BaseModel
	MemberID         uuid.UUID      `json:"member_id" gorm:"type:uuid;not null;index"`
	Tier             MembershipTier `json:"tier" gorm:"type:varchar(20);not null"`
	AmountCents      int64          `json:"amount_cents" gorm:"not null"`
	Currency         string         `json:"currency" gorm:"size:3;not null"`
	PaymentReference string         `json:"payment_reference" gorm:"size:255;uniqueIndex"`
	Status           PaymentStatus  `json:"status" gorm:"type:varchar(20);default:'pending';index"`
}
