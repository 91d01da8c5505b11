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

type CategoryService struct {
	categories repository.CategoryRepository
	log        *logrus.Entry
}

type CategoryRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=150"`
	Field string `json:"field,omitempty" validate:"omitempty,max=100"`
}

func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{
		categories: categories,
		log:        logrus.WithField("service", "categories"),
	}
}

func (s *CategoryService) Create(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if _, err := s.categories.FindByName(ctx, name); err == nil {
		return nil, &ConflictError{Resource: "category", Field: "name"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find category by name: %w", err)
	}

	category := &models.Category{Name: name, Field: strings.TrimSpace(req.Field)}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Resource: "category", Field: "name"}
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.log.WithField("category", category.Name).Info("Category created")
	return category, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("category")
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Field = strings.TrimSpace(req.Field)
	category.Services = nil

	if err := s.categories.Save(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Resource: "category", Field: "name"}
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("category")
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// UpsertByName returns the category with this name, creating it if needed.
func (s *CategoryService) UpsertByName(ctx context.Context, name, field string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldError("name", "required", "name is required")
	}
	category, err := s.categories.UpsertByName(ctx, name, strings.TrimSpace(field))
	if err != nil {
		return nil, fmt.Errorf("upsert category: %w", err)
	}
	return category, nil
}
