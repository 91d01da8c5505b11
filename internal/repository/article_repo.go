package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unetra-global/member-portal-sub000/internal/database"
	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

var articleSortFields = []string{"created_at", "updated_at", "published_at", "view_count", "likes_count", "title"}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere, with s taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

type articleRepo struct {
	db *gorm.DB
}

func NewArticleRepo(db *gorm.DB) ArticleRepository {
	return &articleRepo{db: db}
}

func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(article).Error)
}

func (r *articleRepo) Save(ctx context.Context, article *models.Article) error {
	return translate(saveExcept(r.db.WithContext(ctx), article, articleManagedColumns))
}

func (r *articleRepo) SaveWithVersion(ctx context.Context, article *models.Article, snapshot *models.ArticleVersion) error {
	err := database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		// Row lock serialises concurrent updates of the same article so the
		// version sequence stays gap-free.
		var locked models.Article
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&locked, "id = ?", article.ID).Error; err != nil {
			return err
		}

		var current int
		if err := tx.Model(&models.ArticleVersion{}).
			Where("article_id = ?", article.ID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&current).Error; err != nil {
			return err
		}

		snapshot.ArticleID = article.ID
		snapshot.Version = current + 1
		if err := tx.Create(snapshot).Error; err != nil {
			return err
		}

		return saveExcept(tx, article, articleManagedColumns)
	})
	return translate(err)
}

func (r *articleRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).Preload("Member").First(&article, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &article, nil
}

// FindBySlug scopes the lookup to memberID when given. Without a member the
// most recently published article carrying the slug wins.
func (r *articleRepo) FindBySlug(ctx context.Context, slug string, memberID *uuid.UUID) (*models.Article, error) {
	query := r.db.WithContext(ctx).Preload("Member").Where("slug = ?", slug)
	if memberID != nil {
		query = query.Where("member_id = ?", *memberID)
	} else {
		query = query.Where("status = ?", models.ArticleStatusPublished).Order("published_at DESC")
	}

	var article models.Article
	if err := query.First(&article).Error; err != nil {
		return nil, translate(err)
	}
	return &article, nil
}

func (r *articleRepo) SlugExists(ctx context.Context, memberID uuid.UUID, slug string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("member_id = ? AND slug = ?", memberID, slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *articleRepo) List(ctx context.Context, filter ArticleFilter) ([]models.Article, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Article{})

	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Tag != "" {
		query = query.Where("? = ANY(tags)", filter.Tag)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", containsPattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []models.Article
	query = utils.ApplySort(query, filter.PaginationParams, articleSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)
	if err := query.Preload("Member").Find(&articles).Error; err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

func (r *articleRepo) Search(ctx context.Context, q string, tags []string, limit int) ([]models.Article, error) {
	query := r.db.WithContext(ctx).
		Preload("Member").
		Where("status = ?", models.ArticleStatusPublished)

	if q != "" {
		pattern := containsPattern(q)
		query = query.Where("title ILIKE ? OR summary ILIKE ? OR content ILIKE ?", pattern, pattern, pattern)
	}
	if len(tags) > 0 {
		query = query.Where("tags && ?", pq.StringArray(tags))
	}

	var articles []models.Article
	err := query.Order("published_at DESC").Limit(limit).Find(&articles).Error
	return articles, err
}

func (r *articleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&models.ArticleVersion{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Article{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// IncrementViewCount bumps the counter in place without touching updated_at.
func (r *articleRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepo) AdjustLikes(ctx context.Context, id uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("likes_count", gorm.Expr("GREATEST(likes_count + ?, 0)", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepo) ListVersions(ctx context.Context, articleID uuid.UUID) ([]models.ArticleVersion, error) {
	var versions []models.ArticleVersion
	err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("version DESC").
		Find(&versions).Error
	return versions, err
}
