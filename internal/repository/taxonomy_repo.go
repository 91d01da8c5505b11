package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unetra-global/member-portal-sub000/internal/models"
)

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(category).Error)
}

func (r *categoryRepo) Save(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(category).Error)
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Preload("Services", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&category, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *categoryRepo) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Preload("Services", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

// Delete detaches the category's services before removing it.
func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Service{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Category{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return err
}

func (r *categoryRepo) UpsertByName(ctx context.Context, name, field string) (*models.Category, error) {
	existing, err := r.FindByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	category := &models.Category{Name: name, Field: field}
	if err := r.Create(ctx, category); err != nil {
		// lost a race with a concurrent insert of the same name
		if errors.Is(err, ErrDuplicate) {
			return r.FindByName(ctx, name)
		}
		return nil, err
	}
	return category, nil
}

type serviceRepo struct {
	db *gorm.DB
}

func NewServiceRepo(db *gorm.DB) ServiceRepository {
	return &serviceRepo{db: db}
}

func (r *serviceRepo) Create(ctx context.Context, service *models.Service) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(service).Error)
}

func (r *serviceRepo) Save(ctx context.Context, service *models.Service) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(service).Error)
}

func (r *serviceRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).Preload("Category").First(&service, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &service, nil
}

func (r *serviceRepo) FindByName(ctx context.Context, name string) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).First(&service, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		return nil, translate(err)
	}
	return &service, nil
}

func (r *serviceRepo) List(ctx context.Context, categoryID *uuid.UUID) ([]models.Service, error) {
	query := r.db.WithContext(ctx).Preload("Category").Order("name ASC")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var services []models.Service
	err := query.Find(&services).Error
	return services, err
}

func (r *serviceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", id).Delete(&models.MemberService{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Service{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *serviceRepo) UpsertByName(ctx context.Context, name string, categoryID *uuid.UUID) (*models.Service, error) {
	existing, err := r.FindByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	service := &models.Service{Name: name, CategoryID: categoryID}
	if err := r.Create(ctx, service); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return r.FindByName(ctx, name)
		}
		return nil, err
	}
	return service, nil
}
