package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

// Identity is the authenticated session as issued by the auth provider. It
// exists before the member profile does.
type Identity struct {
	AuthUserID string
	Email      string
}

type MemberService struct {
	members  repository.MemberRepository
	services repository.ServiceRepository
	log      *logrus.Entry
}

type CreateMemberRequest struct {
	FirstName         string                   `json:"first_name" validate:"required,min=1,max=100"`
	LastName          string                   `json:"last_name" validate:"required,min=1,max=100"`
	Email             string                   `json:"email" validate:"required,email,max=255"`
	Phone             string                   `json:"phone,omitempty" validate:"omitempty,phone"`
	Headline          string                   `json:"headline,omitempty" validate:"omitempty,max=255"`
	Bio               string                   `json:"bio,omitempty" validate:"omitempty,max=5000"`
	ProfilePhoto      string                   `json:"profile_photo,omitempty" validate:"omitempty,max=2048"`
	LinkedInURL       string                   `json:"linkedin_url,omitempty" validate:"omitempty,url,max=255"`
	Address           string                   `json:"address,omitempty" validate:"omitempty,max=500"`
	City              string                   `json:"city,omitempty" validate:"omitempty,max=100"`
	State             string                   `json:"state,omitempty" validate:"omitempty,max=100"`
	Country           string                   `json:"country,omitempty" validate:"omitempty,max=100"`
	Pincode           string                   `json:"pincode,omitempty" validate:"omitempty,numeric,min=4,max=12"`
	YearsOfExperience int                      `json:"years_of_experience" validate:"gte=0,lte=70"`
	Experience        []models.ExperienceEntry `json:"experience,omitempty" validate:"omitempty,max=50,dive"`
	Licenses          []models.License         `json:"licenses,omitempty" validate:"omitempty,max=50,dive"`
	Awards            []models.Award           `json:"awards,omitempty" validate:"omitempty,max=50,dive"`
	Documents         []string                 `json:"documents,omitempty" validate:"omitempty,max=20,dive,required"`
	Services          []string                 `json:"services,omitempty" validate:"omitempty,max=30,dive,required,max=150"`
	ConsentTerms      bool                     `json:"consent_terms" validate:"eq=true"`
	ConsentPrivacy    bool                     `json:"consent_privacy" validate:"eq=true"`
	ConsentMarketing  bool                     `json:"consent_marketing"`
}

type UpdateMemberRequest struct {
	FirstName         *string                   `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName          *string                   `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email             *string                   `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone             *string                   `json:"phone,omitempty" validate:"omitempty,phone"`
	Headline          *string                   `json:"headline,omitempty" validate:"omitempty,max=255"`
	Bio               *string                   `json:"bio,omitempty" validate:"omitempty,max=5000"`
	ProfilePhoto      *string                   `json:"profile_photo,omitempty" validate:"omitempty,max=2048"`
	LinkedInURL       *string                   `json:"linkedin_url,omitempty" validate:"omitempty,url,max=255"`
	Address           *string                   `json:"address,omitempty" validate:"omitempty,max=500"`
	City              *string                   `json:"city,omitempty" validate:"omitempty,max=100"`
	State             *string                   `json:"state,omitempty" validate:"omitempty,max=100"`
	Country           *string                   `json:"country,omitempty" validate:"omitempty,max=100"`
	Pincode           *string                   `json:"pincode,omitempty" validate:"omitempty,numeric,min=4,max=12"`
	YearsOfExperience *int                      `json:"years_of_experience,omitempty" validate:"omitempty,gte=0,lte=70"`
	Experience        *[]models.ExperienceEntry `json:"experience,omitempty" validate:"omitempty,max=50"`
	Licenses          *[]models.License         `json:"licenses,omitempty" validate:"omitempty,max=50"`
	Awards            *[]models.Award           `json:"awards,omitempty" validate:"omitempty,max=50"`
	Documents         *[]string                 `json:"documents,omitempty" validate:"omitempty,max=20"`
	ConsentMarketing  *bool                     `json:"consent_marketing,omitempty"`
}

func NewMemberService(members repository.MemberRepository, services repository.ServiceRepository) *MemberService {
	return &MemberService{
		members:  members,
		services: services,
		log:      logrus.WithField("service", "members"),
	}
}

// Create completes the profile for a freshly authenticated user. Service
// names are resolved (and created when unknown) before the member and its
// service links are written in one transaction.
func (s *MemberService) Create(ctx context.Context, identity Identity, req *CreateMemberRequest) (*models.Member, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	if _, err := s.members.FindByAuthUserID(ctx, identity.AuthUserID); err == nil {
		return nil, &ConflictError{Resource: "member", Field: "auth_user_id"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find member by auth user: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.members.EmailExists(ctx, email, nil)
	if err != nil {
		return nil, fmt.Errorf("check member email: %w", err)
	}
	if exists {
		return nil, &ConflictError{Resource: "member", Field: "email"}
	}

	serviceIDs, err := s.resolveServices(ctx, req.Services)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		AuthUserID:        identity.AuthUserID,
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		Email:             email,
		Phone:             req.Phone,
		Headline:          req.Headline,
		Bio:               req.Bio,
		ProfilePhoto:      req.ProfilePhoto,
		LinkedInURL:       req.LinkedInURL,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		Country:           req.Country,
		Pincode:           req.Pincode,
		YearsOfExperience: req.YearsOfExperience,
		Experience:        datatypes.JSONSlice[models.ExperienceEntry](req.Experience),
		Licenses:          datatypes.JSONSlice[models.License](req.Licenses),
		Awards:            datatypes.JSONSlice[models.Award](req.Awards),
		Documents:         pq.StringArray(req.Documents),
		ConsentTerms:      req.ConsentTerms,
		ConsentPrivacy:    req.ConsentPrivacy,
		ConsentMarketing:  req.ConsentMarketing,
		MembershipTier:    models.MembershipTierFree,
		Status:            models.MemberStatusActive,
	}
	if member.Country == "" {
		member.Country = "India"
	}

	if err := s.members.Create(ctx, member, serviceIDs); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Resource: "member", Field: "email"}
		}
		return nil, fmt.Errorf("create member: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"member_id": member.ID,
		"services":  len(serviceIDs),
	}).Info("Member profile created")
	return member, nil
}

// resolveServices maps names to ids, creating missing services. Duplicate
// names collapse to one id.
func (s *MemberService) resolveServices(ctx context.Context, names []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(names))
	ids := make([]uuid.UUID, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		service, err := s.services.UpsertByName(ctx, name, nil)
		if err != nil {
			return nil, fmt.Errorf("resolve service %q: %w", name, err)
		}
		if _, dup := seen[service.ID]; dup {
			continue
		}
		seen[service.ID] = struct{}{}
		ids = append(ids, service.ID)
	}
	return ids, nil
}

func (s *MemberService) Get(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	member, err := s.members.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("member")
	}
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}
	return member, nil
}

func (s *MemberService) GetByAuthUser(ctx context.Context, authUserID string) (*models.Member, error) {
	member, err := s.members.FindByAuthUserID(ctx, authUserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("member")
	}
	if err != nil {
		return nil, fmt.Errorf("find member by auth user: %w", err)
	}
	return member, nil
}

func (s *MemberService) List(ctx context.Context, params utils.PaginationParams) (*utils.PaginationResult, error) {
	members, total, err := s.members.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	result := utils.CreatePaginationResult(members, total, params)
	return &result, nil
}

// UpdateProfile applies the caller's inline edits to their own profile.
func (s *MemberService) UpdateProfile(ctx context.Context, caller Caller, req *UpdateMemberRequest) (*models.Member, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	member, err := s.Get(ctx, caller.MemberID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != member.Email {
			exists, err := s.members.EmailExists(ctx, email, &member.ID)
			if err != nil {
				return nil, fmt.Errorf("check member email: %w", err)
			}
			if exists {
				return nil, &ConflictError{Resource: "member", Field: "email"}
			}
			member.Email = email
		}
	}

	setString(&member.FirstName, req.FirstName)
	setString(&member.LastName, req.LastName)
	setString(&member.Phone, req.Phone)
	setString(&member.Headline, req.Headline)
	setString(&member.Bio, req.Bio)
	setString(&member.ProfilePhoto, req.ProfilePhoto)
	setString(&member.LinkedInURL, req.LinkedInURL)
	setString(&member.Address, req.Address)
	setString(&member.City, req.City)
	setString(&member.State, req.State)
	setString(&member.Country, req.Country)
	setString(&member.Pincode, req.Pincode)

	if req.YearsOfExperience != nil {
		member.YearsOfExperience = *req.YearsOfExperience
	}
	if req.Experience != nil {
		member.Experience = datatypes.JSONSlice[models.ExperienceEntry](*req.Experience)
	}
	if req.Licenses != nil {
		member.Licenses = datatypes.JSONSlice[models.License](*req.Licenses)
	}
	if req.Awards != nil {
		member.Awards = datatypes.JSONSlice[models.Award](*req.Awards)
	}
	if req.Documents != nil {
		member.Documents = pq.StringArray(*req.Documents)
	}
	if req.ConsentMarketing != nil {
		member.ConsentMarketing = *req.ConsentMarketing
	}

	services := member.Services
	member.Services = nil
	if err := s.members.Save(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Resource: "member", Field: "email"}
		}
		return nil, fmt.Errorf("update member: %w", err)
	}
	member.Services = services

	return member, nil
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

// Delete removes a member and their content. Admin only.
func (s *MemberService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	if err := s.members.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("member")
		}
		return fmt.Errorf("delete member: %w", err)
	}

	s.log.WithFields(logrus.Fields{"member_id": id, "by": caller.MemberID}).Warn("Member deleted")
	return nil
}
