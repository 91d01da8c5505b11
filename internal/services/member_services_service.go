package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
)

// MemberServicesService manages the links between a member and the
// services they offer.
type MemberServicesService struct {
	links    repository.MemberServiceRepository
	services repository.ServiceRepository
}

type CreateMemberServiceRequest struct {
	ServiceID               uuid.UUID `json:"service_id" validate:"required"`
	IsPreferred             bool      `json:"is_preferred"`
	RelevantYearsExperience int       `json:"relevant_years_experience" validate:"gte=0,lte=70"`
}

type UpdateMemberServiceRequest struct {
	IsPreferred             *bool `json:"is_preferred,omitempty"`
	IsActive                *bool `json:"is_active,omitempty"`
	RelevantYearsExperience *int  `json:"relevant_years_experience,omitempty" validate:"omitempty,gte=0,lte=70"`
}

func NewMemberServicesService(links repository.MemberServiceRepository, services repository.ServiceRepository) *MemberServicesService {
	return &MemberServicesService{links: links, services: services}
}

func (s *MemberServicesService) Create(ctx context.Context, caller Caller, req *CreateMemberServiceRequest) (*models.MemberService, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	service, err := s.services.FindByID(ctx, req.ServiceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("service")
	}
	if err != nil {
		return nil, fmt.Errorf("find service: %w", err)
	}

	exists, err := s.links.Exists(ctx, caller.MemberID, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("check member service: %w", err)
	}
	if exists {
		return nil, &ConflictError{Resource: "member service", Field: "service_id"}
	}

	link := &models.MemberService{
		MemberID:                caller.MemberID,
		ServiceID:               req.ServiceID,
		IsPreferred:             req.IsPreferred,
		IsActive:                true,
		RelevantYearsExperience: req.RelevantYearsExperience,
	}
	if err := s.links.Create(ctx, link); err != nil {
		// a concurrent request linked the same pair
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Resource: "member service", Field: "service_id"}
		}
		return nil, fmt.Errorf("create member service: %w", err)
	}

	link.Service = service
	return link, nil
}

func (s *MemberServicesService) ListForMember(ctx context.Context, memberID uuid.UUID) ([]models.MemberService, error) {
	links, err := s.links.ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list member services: %w", err)
	}
	if links == nil {
		links = []models.MemberService{}
	}
	return links, nil
}

func (s *MemberServicesService) owned(ctx context.Context, caller Caller, id uuid.UUID) (*models.MemberService, error) {
	link, err := s.links.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("member_service")
	}
	if err != nil {
		return nil, fmt.Errorf("find member service: %w", err)
	}
	if !caller.Owns(link.MemberID) {
		return nil, ErrForbidden
	}
	return link, nil
}

func (s *MemberServicesService) Update(ctx context.Context, caller Caller, id uuid.UUID, req *UpdateMemberServiceRequest) (*models.MemberService, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	link, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.IsPreferred != nil {
		link.IsPreferred = *req.IsPreferred
	}
	if req.IsActive != nil {
		link.IsActive = *req.IsActive
	}
	if req.RelevantYearsExperience != nil {
		link.RelevantYearsExperience = *req.RelevantYearsExperience
	}

	service := link.Service
	link.Service = nil
	if err := s.links.Save(ctx, link); err != nil {
		return nil, fmt.Errorf("update member service: %w", err)
	}
	link.Service = service
	return link, nil
}

func (s *MemberServicesService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.links.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("member_service")
		}
		return fmt.Errorf("delete member service: %w", err)
	}
	return nil
}
