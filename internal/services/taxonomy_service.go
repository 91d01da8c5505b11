package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
)

// ServicesService manages the services taxonomy members attach expertise to.
type ServicesService struct {
	services   repository.ServiceRepository
	categories repository.CategoryRepository
	log        *logrus.Entry
}

type ServiceRequest struct {
	Name       string     `json:"name" validate:"required,min=2,max=150"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
}

func NewServicesService(services repository.ServiceRepository, categories repository.CategoryRepository) *ServicesService {
	return &ServicesService{
		services:   services,
		categories: categories,
		log:        logrus.WithField("service", "taxonomy"),
	}
}

func (s *ServicesService) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categories.FindByID(ctx, *categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("category")
		}
		return fmt.Errorf("find category: %w", err)
	}
	return nil
}

func (s *ServicesService) Create(ctx context.Context, req *ServiceRequest) (*models.Service, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if _, err := s.services.FindByName(ctx, name); err == nil {
		return nil, &ConflictError{Resource: "service", Field: "name"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find service by name: %w", err)
	}

	service := &models.Service{Name: name, CategoryID: req.CategoryID}
	if err := s.services.Create(ctx, service); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Resource: "service", Field: "name"}
		}
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.log.WithField("service_name", service.Name).Info("Service created")
	return service, nil
}

func (s *ServicesService) List(ctx context.Context, categoryID *uuid.UUID) ([]models.Service, error) {
	services, err := s.services.List(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	if services == nil {
		services = []models.Service{}
	}
	return services, nil
}

func (s *ServicesService) Get(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	service, err := s.services.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("service")
	}
	if err != nil {
		return nil, fmt.Errorf("find service: %w", err)
	}
	return service, nil
}

func (s *ServicesService) Update(ctx context.Context, id uuid.UUID, req *ServiceRequest) (*models.Service, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	service, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	service.Name = strings.TrimSpace(req.Name)
	service.CategoryID = req.CategoryID
	service.Category = nil

	if err := s.services.Save(ctx, service); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Resource: "service", Field: "name"}
		}
		return nil, fmt.Errorf("update service: %w", err)
	}
	return service, nil
}

func (s *ServicesService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.services.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("service")
		}
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}

// UpsertByName is idempotent on name; an existing service keeps its category.
func (s *ServicesService) UpsertByName(ctx context.Context, name string, categoryID *uuid.UUID) (*models.Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldError("name", "required", "name is required")
	}
	service, err := s.services.UpsertByName(ctx, name, categoryID)
	if err != nil {
		return nil, fmt.Errorf("upsert service: %w", err)
	}
	return service, nil
}

// TaxonomyEntry is one category and the service names filed under it.
type TaxonomyEntry struct {
	Name     string   `yaml:"name" json:"name"`
	Field    string   `yaml:"field" json:"field"`
	Services []string `yaml:"services" json:"services"`
}

// SeedResult counts what a seed run touched.
type SeedResult struct {
	Categories int
	Services   int
}

// Seed upserts every category and service in entries. Running it twice
// leaves the store unchanged.
func Seed(ctx context.Context, categories *CategoryService, services *ServicesService, entries []TaxonomyEntry) (SeedResult, error) {
	var result SeedResult
	for _, entry := range entries {
		category, err := categories.UpsertByName(ctx, entry.Name, entry.Field)
		if err != nil {
			return result, fmt.Errorf("category %q: %w", entry.Name, err)
		}
		result.Categories++

		for _, name := range entry.Services {
			categoryID := category.ID
			if _, err := services.UpsertByName(ctx, name, &categoryID); err != nil {
				return result, fmt.Errorf("service %q: %w", name, err)
			}
			result.Services++
		}
	}
	return result, nil
}
