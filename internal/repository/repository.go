package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

// ArticleFilter narrows List. A nil Status lists every status.
type ArticleFilter struct {
	utils.PaginationParams
	MemberID *uuid.UUID
	Status   *models.ArticleStatus
	Tag      string
}

type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	// Save writes the editable columns. view_count and likes_count are
	// refreshed from the stored row, never written.
	Save(ctx context.Context, article *models.Article) error
	// SaveWithVersion stores snapshot with the next version number and
	// saves article in the same transaction.
	SaveWithVersion(ctx context.Context, article *models.Article, snapshot *models.ArticleVersion) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	FindBySlug(ctx context.Context, slug string, memberID *uuid.UUID) (*models.Article, error)
	SlugExists(ctx context.Context, memberID uuid.UUID, slug string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter ArticleFilter) ([]models.Article, int64, error)
	Search(ctx context.Context, query string, tags []string, limit int) ([]models.Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	AdjustLikes(ctx context.Context, id uuid.UUID, delta int) error
	ListVersions(ctx context.Context, articleID uuid.UUID) ([]models.ArticleVersion, error)
}

type MemberRepository interface {
	// Create inserts the member and one MemberService row per service id atomically.
	Create(ctx context.Context, member *models.Member, serviceIDs []uuid.UUID) error
	// Save leaves membership_tier to UpdateTier and reads it back.
	Save(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	FindByAuthUserID(ctx context.Context, authUserID string) (*models.Member, error)
	EmailExists(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, params utils.PaginationParams) ([]models.Member, int64, error)
	UpdateTier(ctx context.Context, id uuid.UUID, tier models.MembershipTier) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostCounter string

const (
	PostCounterLikes   PostCounter = "likes_count"
	PostCounterReposts PostCounter = "reposts_count"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// Save keeps the stored like and repost counters.
	Save(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context, params utils.PaginationParams) ([]models.Post, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// AdjustCounter adds delta to the counter, clamping at zero.
	AdjustCounter(ctx context.Context, id uuid.UUID, counter PostCounter, delta int) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Save(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertByName(ctx context.Context, name, field string) (*models.Category, error)
}

type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	Save(ctx context.Context, service *models.Service) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	FindByName(ctx context.Context, name string) (*models.Service, error)
	List(ctx context.Context, categoryID *uuid.UUID) ([]models.Service, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertByName(ctx context.Context, name string, categoryID *uuid.UUID) (*models.Service, error)
}

type MemberServiceRepository interface {
	Create(ctx context.Context, link *models.MemberService) error
	Save(ctx context.Context, link *models.MemberService) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MemberService, error)
	Exists(ctx context.Context, memberID, serviceID uuid.UUID) (bool, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.MemberService, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.MembershipPayment) error
	Save(ctx context.Context, payment *models.MembershipPayment) error
	FindByReference(ctx context.Context, reference string) (*models.MembershipPayment, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article       ArticleRepository
	Member        MemberRepository
	Post          PostRepository
	Category      CategoryRepository
	Service       ServiceRepository
	MemberService MemberServiceRepository
	Payment       PaymentRepository
	AuditLog      AuditLogRepository
}

// New creates all repositories with the given database connection
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Article:       NewArticleRepo(db),
		Member:        NewMemberRepo(db),
		Post:          NewPostRepo(db),
		Category:      NewCategoryRepo(db),
		Service:       NewServiceRepo(db),
		MemberService: NewMemberServiceRepo(db),
		Payment:       NewPaymentRepo(db),
		AuditLog:      NewAuditLogRepo(db),
	}
}
