package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unetra-global/member-portal-sub000/internal/database"
	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

var memberSortFields = []string{"created_at", "first_name", "last_name", "city", "years_of_experience"}

type memberRepo struct {
	db *gorm.DB
}

func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) Create(ctx context.Context, member *models.Member, serviceIDs []uuid.UUID) error {
	err := database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(member).Error; err != nil {
			return err
		}

		links := make([]models.MemberService, 0, len(serviceIDs))
		for _, serviceID := range serviceIDs {
			links = append(links, models.MemberService{
				MemberID:  member.ID,
				ServiceID: serviceID,
				IsActive:  true,
			})
		}
		if len(links) > 0 {
			if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
				return err
			}
		}

		member.Services = links
		return nil
	})
	return translate(err)
}

func (r *memberRepo) Save(ctx context.Context, member *models.Member) error {
	return translate(saveExcept(r.db.WithContext(ctx), member, memberManagedColumns))
}

func (r *memberRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Preload("Services.Service").First(&member, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *memberRepo) FindByAuthUserID(ctx context.Context, authUserID string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).First(&member, "auth_user_id = ?", authUserID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *memberRepo) EmailExists(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("LOWER(email) = ?", strings.ToLower(email))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *memberRepo) List(ctx context.Context, params utils.PaginationParams) ([]models.Member, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Member{}).Where("status = ?", models.MemberStatusActive)

	if params.Search != "" {
		pattern := containsPattern(params.Search)
		query = query.Where(
			"(first_name || ' ' || last_name) ILIKE ? OR email ILIKE ? OR city ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []models.Member
	query = utils.ApplySort(query, params, memberSortFields)
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

func (r *memberRepo) UpdateTier(ctx context.Context, id uuid.UUID, tier models.MembershipTier) error {
	result := r.db.WithContext(ctx).Model(&models.Member{}).Where("id = ?", id).Update("membership_tier", tier)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the member together with everything they authored.
func (r *memberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		articles := tx.Model(&models.Article{}).Select("id").Where("member_id = ?", id)
		if err := tx.Where("article_id IN (?)", articles).Delete(&models.ArticleVersion{}).Error; err != nil {
			return err
		}

		for _, model := range []interface{}{&models.Article{}, &models.Post{}, &models.MemberService{}, &models.MembershipPayment{}} {
			if err := tx.Where("member_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.Member{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
