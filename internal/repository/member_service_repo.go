package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unetra-global/member-portal-sub000/internal/models"
)

type memberServiceRepo struct {
	db *gorm.DB
}

func NewMemberServiceRepo(db *gorm.DB) MemberServiceRepository {
	return &memberServiceRepo{db: db}
}

func (r *memberServiceRepo) Create(ctx context.Context, link *models.MemberService) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(link).Error)
}

func (r *memberServiceRepo) Save(ctx context.Context, link *models.MemberService) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(link).Error)
}

func (r *memberServiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.MemberService, error) {
	var link models.MemberService
	if err := r.db.WithContext(ctx).Preload("Service").First(&link, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (r *memberServiceRepo) Exists(ctx context.Context, memberID, serviceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MemberService{}).
		Where("member_id = ? AND service_id = ?", memberID, serviceID).
		Count(&count).Error
	return count > 0, err
}

func (r *memberServiceRepo) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.MemberService, error) {
	var links []models.MemberService
	err := r.db.WithContext(ctx).
		Preload("Service.Category").
		Where("member_id = ?", memberID).
		Order("is_preferred DESC, created_at ASC").
		Find(&links).Error
	return links, err
}

func (r *memberServiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.MemberService{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
