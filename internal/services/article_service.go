package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/unetra-global/member-portal-sub000/internal/limiter"
	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
	"github.com/unetra-global/member-portal-sub000/internal/tasks"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

const (
	maxSlugAttempts    = 50
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	fallbackSlug       = "article"
)

type ArticleService struct {
	articles repository.ArticleRepository
	limiter  limiter.CreationLimiter
	tasks    tasks.Dispatcher
	window   time.Duration
	now      func() time.Time
	log      *logrus.Entry
}

type CreateArticleRequest struct {
	Title      string               `json:"title" validate:"required,min=10,max=200"`
	Subtitle   *string              `json:"subtitle,omitempty" validate:"omitempty,max=300"`
	Summary    string               `json:"summary" validate:"required,min=50,max=500"`
	Content    string               `json:"content" validate:"required,min=100,min_words=800"`
	CoverImage *string              `json:"cover_image,omitempty" validate:"omitempty,url"`
	Tags       []string             `json:"tags" validate:"required,min=1,max=5,dive,article_tag"`
	Status     models.ArticleStatus `json:"status,omitempty" validate:"omitempty,article_status"`
}

type UpdateArticleRequest struct {
	Title      *string               `json:"title,omitempty" validate:"omitempty,min=10,max=200"`
	Subtitle   *string               `json:"subtitle,omitempty" validate:"omitempty,max=300"`
	Summary    *string               `json:"summary,omitempty" validate:"omitempty,min=50,max=500"`
	Content    *string               `json:"content,omitempty" validate:"omitempty,min=100,min_words=800"`
	CoverImage *string               `json:"cover_image,omitempty" validate:"omitempty,url"`
	Tags       *[]string             `json:"tags,omitempty" validate:"omitempty,min=1,max=5,dive,article_tag"`
	Status     *models.ArticleStatus `json:"status,omitempty" validate:"omitempty,article_status"`
}

// PublishArticleInput is built from the stored article, never from the
// request, and must pass before an article becomes PUBLISHED.
type PublishArticleInput struct {
	Title   string   `json:"title" validate:"required,min=10,max=200"`
	Summary string   `json:"summary" validate:"required,min=50,max=500"`
	Content string   `json:"content" validate:"required,min=100,min_words=800"`
	Tags    []string `json:"tags" validate:"required,min=1,max=5,dive,article_tag"`
}

type ListArticlesQuery struct {
	utils.PaginationParams
	MemberID *uuid.UUID
	Status   *models.ArticleStatus
}

func NewArticleService(articles repository.ArticleRepository, creationLimiter limiter.CreationLimiter, dispatcher tasks.Dispatcher, window time.Duration) *ArticleService {
	return &ArticleService{
		articles: articles,
		limiter:  creationLimiter,
		tasks:    dispatcher,
		window:   window,
		now:      time.Now,
		log:      logrus.WithField("service", "articles"),
	}
}

// WithClock replaces the time source used for published_at.
func (s *ArticleService) WithClock(now func() time.Time) *ArticleService {
	s.now = now
	return s
}

func (s *ArticleService) Create(ctx context.Context, caller Caller, req *CreateArticleRequest) (*models.Article, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	decision, err := s.limiter.Allow(ctx, caller.MemberID.String())
	if err != nil {
		return nil, fmt.Errorf("check creation limit: %w", err)
	}
	if !decision.Allowed {
		return nil, &RateLimitError{
			Limit:      decision.Limit,
			Window:     s.window,
			RetryAfter: decision.RetryAfter,
		}
	}

	status := req.Status
	if status == "" {
		status = models.ArticleStatusDraft
	}

	article := &models.Article{
		MemberID:    caller.MemberID,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Summary:     req.Summary,
		Content:     req.Content,
		CoverImage:  req.CoverImage,
		Tags:        pq.StringArray(req.Tags),
		Status:      status,
		WordCount:   utils.ComputeWordCount(req.Content),
		ReadingTime: utils.ComputeReadingTime(req.Content),
	}
	if status == models.ArticleStatusPublished {
		now := s.now()
		article.PublishedAt = &now
	}

	if err := s.insert(ctx, article, baseSlug(req.Title)); err != nil {
		// only stored articles count against the quota
		if releaseErr := s.limiter.Release(ctx, caller.MemberID.String(), decision.Token); releaseErr != nil {
			s.log.WithError(releaseErr).WithField("member_id", caller.MemberID).Warn("Failed to release creation slot")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"article_id": article.ID,
		"member_id":  caller.MemberID,
		"status":     article.Status,
	}).Info("Article created")
	return article, nil
}

// insert stores article under the first free slug derived from base.
func (s *ArticleService) insert(ctx context.Context, article *models.Article, base string) error {
	suffix := 0
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, used, err := s.probeSlug(ctx, article.MemberID, base, nil, suffix)
		if err != nil {
			return err
		}
		article.Slug = slug

		err = s.articles.Create(ctx, article)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("create article: %w", err)
		}

		// another insert took the slug between probe and write
		suffix = used + 1
	}

	return fmt.Errorf("create article: no free slug for %q after %d attempts", base, maxSlugAttempts)
}

func baseSlug(title string) string {
	slug := utils.GenerateSlug(title)
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

func slugWithSuffix(base string, suffix int) string {
	if suffix == 0 {
		return base
	}
	tail := "-" + strconv.Itoa(suffix)
	if len(base)+len(tail) > utils.MaxSlugLength {
		base = strings.TrimRight(base[:utils.MaxSlugLength-len(tail)], "-")
	}
	return base + tail
}

// probeSlug walks base, base-1, base-2, ... starting at suffix start and
// returns the first candidate not held by another of the member's articles.
func (s *ArticleService) probeSlug(ctx context.Context, memberID uuid.UUID, base string, excludeID *uuid.UUID, start int) (string, int, error) {
	for suffix := start; suffix < start+maxSlugAttempts; suffix++ {
		candidate := slugWithSuffix(base, suffix)
		exists, err := s.articles.SlugExists(ctx, memberID, candidate, excludeID)
		if err != nil {
			return "", 0, fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, suffix, nil
		}
	}
	return "", 0, fmt.Errorf("no free slug for %q", base)
}

func (s *ArticleService) find(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	article, err := s.articles.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("article")
	}
	if err != nil {
		return nil, fmt.Errorf("find article: %w", err)
	}
	return article, nil
}

// Get returns the article if viewer may see it. Reads of published articles
// bump the view counter in the background.
func (s *ArticleService) Get(ctx context.Context, id uuid.UUID, viewer *Caller) (*models.Article, error) {
	article, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.viewed(article, viewer)
}

func (s *ArticleService) GetBySlug(ctx context.Context, slug string, memberID *uuid.UUID, viewer *Caller) (*models.Article, error) {
	article, err := s.articles.FindBySlug(ctx, slug, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("article")
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	return s.viewed(article, viewer)
}

func (s *ArticleService) viewed(article *models.Article, viewer *Caller) (*models.Article, error) {
	if !canViewArticle(article, viewer) {
		return nil, notFound("article")
	}

	if article.IsPublished() {
		id := article.ID
		s.tasks.Submit("article.view", func(ctx context.Context) error {
			return s.articles.IncrementViewCount(ctx, id)
		})
	}
	return article, nil
}

// List returns published articles, newest publication first by default.
func (s *ArticleService) List(ctx context.Context, query ListArticlesQuery) (*utils.PaginationResult, error) {
	published := models.ArticleStatusPublished
	filter := repository.ArticleFilter{
		PaginationParams: query.PaginationParams,
		MemberID:         query.MemberID,
		Status:           &published,
		Tag:              query.Tag,
	}

	articles, total, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	result := utils.CreatePaginationResult(articles, total, query.PaginationParams)
	return &result, nil
}

// ListMine returns the caller's own articles in any status.
func (s *ArticleService) ListMine(ctx context.Context, caller Caller, query ListArticlesQuery) (*utils.PaginationResult, error) {
	if query.Status != nil && !query.Status.IsValid() {
		return nil, fieldError("status", "article_status", "status must be one of DRAFT, PUBLISHED, ARCHIVED, UNDER_REVIEW")
	}

	memberID := caller.MemberID
	filter := repository.ArticleFilter{
		PaginationParams: query.PaginationParams,
		MemberID:         &memberID,
		Status:           query.Status,
		Tag:              query.Tag,
	}

	articles, total, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list member articles: %w", err)
	}

	result := utils.CreatePaginationResult(articles, total, query.PaginationParams)
	return &result, nil
}

// Update applies a partial update. When the stored article is PUBLISHED the
// pre-update title, content and summary are kept as a new version.
func (s *ArticleService) Update(ctx context.Context, caller Caller, id uuid.UUID, req *UpdateArticleRequest) (*models.Article, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	article, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanMutateArticle(article, caller, ArticleActionUpdate); err != nil {
		return nil, err
	}

	updated := *article
	updated.Member = nil
	titleChanged := req.Title != nil && *req.Title != article.Title

	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Subtitle != nil {
		updated.Subtitle = req.Subtitle
	}
	if req.Summary != nil {
		updated.Summary = *req.Summary
	}
	if req.Content != nil {
		updated.Content = *req.Content
		updated.WordCount = utils.ComputeWordCount(updated.Content)
		updated.ReadingTime = utils.ComputeReadingTime(updated.Content)
	}
	if req.CoverImage != nil {
		updated.CoverImage = req.CoverImage
	}
	if req.Tags != nil {
		updated.Tags = pq.StringArray(*req.Tags)
	}
	if req.Status != nil && *req.Status != article.Status {
		if *req.Status == models.ArticleStatusPublished {
			if err := checkPublishable(&updated); err != nil {
				return nil, err
			}
			now := s.now()
			updated.PublishedAt = &now
		}
		updated.Status = *req.Status
	}

	var snapshot *models.ArticleVersion
	if article.IsPublished() {
		snapshot = &models.ArticleVersion{
			ArticleID: article.ID,
			Title:     article.Title,
			Content:   article.Content,
			Summary:   article.Summary,
			CreatedBy: caller.MemberID,
		}
	}

	base := baseSlug(updated.Title)
	suffix := 0
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		if titleChanged {
			slug, used, err := s.probeSlug(ctx, article.MemberID, base, &article.ID, suffix)
			if err != nil {
				return nil, err
			}
			updated.Slug = slug
			suffix = used + 1
		}

		if snapshot != nil {
			err = s.articles.SaveWithVersion(ctx, &updated, snapshot)
		} else {
			err = s.articles.Save(ctx, &updated)
		}
		if err == nil {
			s.log.WithFields(logrus.Fields{
				"article_id": updated.ID,
				"versioned":  snapshot != nil,
			}).Info("Article updated")
			return &updated, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) || !titleChanged {
			return nil, fmt.Errorf("update article: %w", err)
		}
	}

	return nil, fmt.Errorf("update article: no free slug for %q after %d attempts", base, maxSlugAttempts)
}

func checkPublishable(article *models.Article) error {
	input := PublishArticleInput{
		Title:   article.Title,
		Summary: article.Summary,
		Content: article.Content,
		Tags:    []string(article.Tags),
	}
	return validate(&input)
}

// Publish validates the stored article and marks it PUBLISHED. No version
// is recorded.
func (s *ArticleService) Publish(ctx context.Context, caller Caller, id uuid.UUID) (*models.Article, error) {
	article, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanMutateArticle(article, caller, ArticleActionPublish); err != nil {
		return nil, err
	}
	if err := checkPublishable(article); err != nil {
		return nil, err
	}

	now := s.now()
	article.Status = models.ArticleStatusPublished
	article.PublishedAt = &now
	article.Member = nil

	if err := s.articles.Save(ctx, article); err != nil {
		return nil, fmt.Errorf("publish article: %w", err)
	}

	s.log.WithField("article_id", article.ID).Info("Article published")
	return article, nil
}

// Unpublish moves a PUBLISHED article back to DRAFT, keeping published_at.
func (s *ArticleService) Unpublish(ctx context.Context, caller Caller, id uuid.UUID) (*models.Article, error) {
	article, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanMutateArticle(article, caller, ArticleActionUnpublish); err != nil {
		return nil, err
	}
	if !article.IsPublished() {
		return nil, fmt.Errorf("%w: article is %s", ErrInvalidState, article.Status)
	}

	article.Status = models.ArticleStatusDraft
	article.Member = nil
	if err := s.articles.Save(ctx, article); err != nil {
		return nil, fmt.Errorf("unpublish article: %w", err)
	}
	return article, nil
}

func (s *ArticleService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	article, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := CanMutateArticle(article, caller, ArticleActionDelete); err != nil {
		return err
	}

	if err := s.articles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("article")
		}
		return fmt.Errorf("delete article: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"article_id": id,
		"by":         caller.MemberID,
		"admin":      !caller.Owns(article.MemberID),
	}).Info("Article deleted")
	return nil
}

func (s *ArticleService) Like(ctx context.Context, caller Caller, id uuid.UUID) (*models.Article, error) {
	return s.adjustLikes(ctx, caller, id, 1)
}

func (s *ArticleService) Unlike(ctx context.Context, caller Caller, id uuid.UUID) (*models.Article, error) {
	return s.adjustLikes(ctx, caller, id, -1)
}

func (s *ArticleService) adjustLikes(ctx context.Context, caller Caller, id uuid.UUID, delta int) (*models.Article, error) {
	article, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished() {
		return nil, notFound("article")
	}

	if err := s.articles.AdjustLikes(ctx, id, delta); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("article")
		}
		return nil, fmt.Errorf("adjust article likes: %w", err)
	}

	return s.find(ctx, id)
}

// Search matches q case-insensitively against title, summary and content of
// published articles, optionally narrowed to any of tags.
func (s *ArticleService) Search(ctx context.Context, q string, tags []string, limit int) ([]models.Article, error) {
	q = strings.TrimSpace(q)

	var cleaned []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !models.IsArticleTag(tag) {
			return nil, fieldError("tags", "article_tag", "unknown tag "+strconv.Quote(tag))
		}
		cleaned = append(cleaned, tag)
	}

	if q == "" && len(cleaned) == 0 {
		return nil, fieldError("q", "required", "either q or tags must be provided")
	}

	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	articles, err := s.articles.Search(ctx, q, cleaned, limit)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	if articles == nil {
		articles = []models.Article{}
	}
	return articles, nil
}

// Versions lists snapshots newest first. Only the owner may see them.
func (s *ArticleService) Versions(ctx context.Context, caller Caller, id uuid.UUID) ([]models.ArticleVersion, error) {
	article, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanMutateArticle(article, caller, ArticleActionVersions); err != nil {
		return nil, err
	}

	versions, err := s.articles.ListVersions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list article versions: %w", err)
	}
	if versions == nil {
		versions = []models.ArticleVersion{}
	}
	return versions, nil
}
