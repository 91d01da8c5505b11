package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"github.com/unetra-global/member-portal-sub000/internal/limiter"
	"github.com/unetra-global/member-portal-sub000/internal/mocks"
	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/tasks"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type droppingDispatcher struct{}

func (droppingDispatcher) Submit(string, tasks.Func) bool { return false }

// interleavingArticles records one view and one like right after every
// FindByID, as a view task and a reader's like would between read and save.
type interleavingArticles struct {
	*mocks.MockArticleRepository
}

func (r interleavingArticles) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	article, err := r.MockArticleRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.IncrementViewCount(ctx, id); err != nil {
		return nil, err
	}
	if err := r.AdjustLikes(ctx, id, 1); err != nil {
		return nil, err
	}
	return article, nil
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("compliance ", n))
}

func strPtr(s string) *string { return &s }

const testSummary = "A practical overview of recent GST changes for practitioners."

func newCreateRequest(title string) *CreateArticleRequest {
	return &CreateArticleRequest{
		Title:   title,
		Summary: testSummary,
		Content: words(820),
		Tags:    []string{"GST"},
		Status:  models.ArticleStatusDraft,
	}
}

type ArticleServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	clock    *fakeClock
	articles *mocks.MockArticleRepository
	service  *ArticleService
	owner    Caller
	other    Caller
	admin    Caller
}

func (s *ArticleServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &fakeClock{t: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)}
	s.articles = mocks.NewMockArticleRepository()

	creationLimiter := limiter.NewMemoryLimiter(5, 24*time.Hour, s.clock.Now)
	s.service = NewArticleService(s.articles, creationLimiter, tasks.Inline{}, 24*time.Hour).WithClock(s.clock.Now)

	s.owner = Caller{MemberID: uuid.New(), Tier: models.MembershipTierFree}
	s.other = Caller{MemberID: uuid.New(), Tier: models.MembershipTierPremium}
	s.admin = Caller{MemberID: uuid.New(), Tier: models.MembershipTierAdmin}
}

func (s *ArticleServiceTestSuite) create(caller Caller, title string) *models.Article {
	article, err := s.service.Create(s.ctx, caller, newCreateRequest(title))
	s.Require().NoError(err)
	return article
}

func (s *ArticleServiceTestSuite) createPublished(title string) *models.Article {
	article := s.create(s.owner, title)
	published, err := s.service.Publish(s.ctx, s.owner, article.ID)
	s.Require().NoError(err)
	return published
}

func (s *ArticleServiceTestSuite) TestCreateDraftDerivesFields() {
	article := s.create(s.owner, "Understanding GST Reforms In India")

	s.Equal("understanding-gst-reforms-in-india", article.Slug)
	s.Equal(820, article.WordCount)
	s.Equal(5, article.ReadingTime)
	s.Equal(models.ArticleStatusDraft, article.Status)
	s.Nil(article.PublishedAt)
	s.Equal(s.owner.MemberID, article.MemberID)
}

func (s *ArticleServiceTestSuite) TestCreateDefaultsToDraft() {
	req := newCreateRequest("Status defaults to draft")
	req.Status = ""

	article, err := s.service.Create(s.ctx, s.owner, req)
	s.Require().NoError(err)
	s.Equal(models.ArticleStatusDraft, article.Status)
}

func (s *ArticleServiceTestSuite) TestCreatePublishedSetsPublishedAt() {
	req := newCreateRequest("Straight to published")
	req.Status = models.ArticleStatusPublished

	article, err := s.service.Create(s.ctx, s.owner, req)
	s.Require().NoError(err)
	s.Require().NotNil(article.PublishedAt)
	s.Equal(s.clock.Now(), *article.PublishedAt)
}

func (s *ArticleServiceTestSuite) TestSlugsAreUniquePerMember() {
	first := s.create(s.owner, "Transfer Pricing Explained")
	second := s.create(s.owner, "Transfer Pricing Explained")
	third := s.create(s.owner, "Transfer Pricing Explained")
	foreign := s.create(s.other, "Transfer Pricing Explained")

	s.Equal("transfer-pricing-explained", first.Slug)
	s.Equal("transfer-pricing-explained-1", second.Slug)
	s.Equal("transfer-pricing-explained-2", third.Slug)
	s.Equal("transfer-pricing-explained", foreign.Slug)
}

func (s *ArticleServiceTestSuite) TestCreateRetriesWhenSlugIsTakenConcurrently() {
	raced := false
	s.articles.BeforeCreate = func(article *models.Article) {
		if raced {
			return
		}
		raced = true
		// a competing request stores the same slug after our probe
		s.articles.Put(&models.Article{
			MemberID: article.MemberID,
			Title:    article.Title,
			Slug:     article.Slug,
			Status:   models.ArticleStatusDraft,
		})
	}

	article := s.create(s.owner, "Racing For The Same Slug")
	s.Equal("racing-for-the-same-slug-1", article.Slug)
}

func (s *ArticleServiceTestSuite) TestCreateValidation() {
	req := newCreateRequest("short")
	req.Tags = []string{"GST", "Crypto"}
	req.Content = words(120)

	_, err := s.service.Create(s.ctx, s.owner, req)

	var verr *ValidationError
	s.Require().True(errors.As(err, &verr))
	fields := map[string]string{}
	for _, d := range verr.Details {
		fields[d.Field] = d.Tag
	}
	s.Equal("min", fields["title"])
	s.Equal("min_words", fields["content"])
	s.Equal("article_tag", fields["tags[1]"])
	s.Empty(s.articles.Articles)
}

func (s *ArticleServiceTestSuite) TestInvalidRequestsDoNotConsumeQuota() {
	for i := 0; i < 10; i++ {
		_, err := s.service.Create(s.ctx, s.owner, newCreateRequest("bad"))
		s.Require().Error(err)
	}

	for i := 0; i < 5; i++ {
		s.create(s.owner, "Valid article after failures")
	}
}

func (s *ArticleServiceTestSuite) TestSixthCreationIsRateLimited() {
	for i := 0; i < 5; i++ {
		s.create(s.owner, "Quarterly compliance calendar")
		s.clock.Advance(time.Hour)
	}

	_, err := s.service.Create(s.ctx, s.owner, newCreateRequest("Quarterly compliance calendar"))

	var rlErr *RateLimitError
	s.Require().True(errors.As(err, &rlErr))
	s.Equal(5, rlErr.Limit)
	s.Equal(19*time.Hour, rlErr.RetryAfter)
	s.Len(s.articles.Articles, 5)

	// other members are unaffected
	s.create(s.other, "Quarterly compliance calendar")

	// the first creation leaves the window
	s.clock.Advance(19 * time.Hour)
	s.create(s.owner, "Quarterly compliance calendar")
}

func (s *ArticleServiceTestSuite) TestFailedInsertDoesNotConsumeQuota() {
	s.articles.CreateError = errors.New("connection reset")
	for i := 0; i < 5; i++ {
		_, err := s.service.Create(s.ctx, s.owner, newCreateRequest("Insert fails"))
		s.Require().Error(err)

		var rlErr *RateLimitError
		s.False(errors.As(err, &rlErr))
	}

	s.articles.CreateError = nil
	for i := 0; i < 5; i++ {
		s.create(s.owner, "Insert succeeds")
	}

	_, err := s.service.Create(s.ctx, s.owner, newCreateRequest("Insert succeeds"))
	var rlErr *RateLimitError
	s.True(errors.As(err, &rlErr))
}

func (s *ArticleServiceTestSuite) TestEditsKeepConcurrentCounterUpdates() {
	article := s.createPublished("Counters survive owner edits")
	svc := NewArticleService(interleavingArticles{s.articles}, limiter.NewMemoryLimiter(5, time.Hour, nil), tasks.Inline{}, time.Hour).
		WithClock(s.clock.Now)

	newSummary := "A revised overview that lands while readers are still counting."
	updated, err := svc.Update(s.ctx, s.owner, article.ID, &UpdateArticleRequest{Summary: &newSummary})
	s.Require().NoError(err)
	s.Equal(int64(1), updated.ViewCount)
	s.Equal(int64(1), updated.LikesCount)

	stored, _ := s.articles.FindByID(s.ctx, article.ID)
	s.Equal(newSummary, stored.Summary)
	s.Equal(int64(1), stored.ViewCount)
	s.Equal(int64(1), stored.LikesCount)

	_, err = svc.Unpublish(s.ctx, s.owner, article.ID)
	s.Require().NoError(err)
	_, err = svc.Publish(s.ctx, s.owner, article.ID)
	s.Require().NoError(err)

	stored, _ = s.articles.FindByID(s.ctx, article.ID)
	s.Equal(models.ArticleStatusPublished, stored.Status)
	s.Equal(int64(3), stored.ViewCount)
	s.Equal(int64(3), stored.LikesCount)
}

func (s *ArticleServiceTestSuite) TestPublishSetsTimestampWithoutVersion() {
	article := s.create(s.owner, "Understanding GST Reforms In India")
	s.clock.Advance(time.Minute)

	published, err := s.service.Publish(s.ctx, s.owner, article.ID)
	s.Require().NoError(err)

	s.Equal(models.ArticleStatusPublished, published.Status)
	s.Require().NotNil(published.PublishedAt)
	s.Equal(s.clock.Now(), *published.PublishedAt)
	s.Empty(s.articles.Versions[article.ID])
}

func (s *ArticleServiceTestSuite) TestPublishRevalidatesStoredContent() {
	short := &models.Article{
		MemberID: s.owner.MemberID,
		Title:    "A short legacy draft",
		Slug:     "a-short-legacy-draft",
		Summary:  testSummary,
		Content:  words(400),
		Tags:     pq.StringArray{"Audit"},
		Status:   models.ArticleStatusUnderReview,
	}
	s.articles.Put(short)

	_, err := s.service.Publish(s.ctx, s.owner, short.ID)

	var verr *ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal("content", verr.Details[0].Field)
	s.Equal("min_words", verr.Details[0].Tag)

	stored, _ := s.articles.FindByID(s.ctx, short.ID)
	s.Equal(models.ArticleStatusUnderReview, stored.Status)
	s.Nil(stored.PublishedAt)
}

func (s *ArticleServiceTestSuite) TestUpdatePublishedCreatesVersions() {
	article := s.createPublished("Understanding GST Reforms In India")
	newSummary := "An updated overview of GST reforms with the latest council changes."

	updated, err := s.service.Update(s.ctx, s.owner, article.ID, &UpdateArticleRequest{Summary: &newSummary})
	s.Require().NoError(err)
	s.Equal(newSummary, updated.Summary)

	versions, err := s.service.Versions(s.ctx, s.owner, article.ID)
	s.Require().NoError(err)
	s.Require().Len(versions, 1)
	s.Equal(1, versions[0].Version)
	s.Equal(testSummary, versions[0].Summary)
	s.Equal(s.owner.MemberID, versions[0].CreatedBy)

	_, err = s.service.Update(s.ctx, s.owner, article.ID, &UpdateArticleRequest{Title: strPtr("GST Reforms In India, Revisited")})
	s.Require().NoError(err)

	versions, err = s.service.Versions(s.ctx, s.owner, article.ID)
	s.Require().NoError(err)
	s.Require().Len(versions, 2)
	s.Equal(2, versions[0].Version)
	s.Equal(newSummary, versions[0].Summary)
	s.Equal(1, versions[1].Version)
}

func (s *ArticleServiceTestSuite) TestUpdateDraftCreatesNoVersion() {
	article := s.create(s.owner, "Draft notes on audit sampling")

	_, err := s.service.Update(s.ctx, s.owner, article.ID, &UpdateArticleRequest{Content: strPtr(words(1000))})
	s.Require().NoError(err)

	stored, _ := s.articles.FindByID(s.ctx, article.ID)
	s.Equal(1000, stored.WordCount)
	s.Equal(5, stored.ReadingTime)
	s.Empty(s.articles.Versions[article.ID])
}

func (s *ArticleServiceTestSuite) TestUpdateTitleRegeneratesSlugExcludingSelf() {
	article := s.create(s.owner, "Company Law Amendments")
	s.create(s.owner, "Valuation Standards Update")

	updated, err := s.service.Update(s.ctx, s.owner, article.ID, &UpdateArticleRequest{Title: strPtr("Company  Law Amendments!")})
	s.Require().NoError(err)
	s.Equal("company-law-amendments", updated.Slug)

	updated, err = s.service.Update(s.ctx, s.owner, article.ID, &UpdateArticleRequest{Title: strPtr("Valuation Standards Update")})
	s.Require().NoError(err)
	s.Equal("valuation-standards-update-1", updated.Slug)
}

func (s *ArticleServiceTestSuite) TestUpdateToPublishedRunsPublishContract() {
	article := s.create(s.owner, "Insolvency code primer")
	published := models.ArticleStatusPublished

	updated, err := s.service.Update(s.ctx, s.owner, article.ID, &UpdateArticleRequest{Status: &published})
	s.Require().NoError(err)
	s.Equal(models.ArticleStatusPublished, updated.Status)
	s.NotNil(updated.PublishedAt)
	s.Empty(s.articles.Versions[article.ID])
}

func (s *ArticleServiceTestSuite) TestUpdateRejectsEmptyTags() {
	article := s.create(s.owner, "Tags cannot be cleared")
	empty := []string{}

	_, err := s.service.Update(s.ctx, s.owner, article.ID, &UpdateArticleRequest{Tags: &empty})

	var verr *ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal("tags", verr.Details[0].Field)
}

func (s *ArticleServiceTestSuite) TestNonOwnerCannotMutate() {
	article := s.createPublished("Ownership is enforced")
	title := "A hijacked title here"

	_, err := s.service.Update(s.ctx, s.other, article.ID, &UpdateArticleRequest{Title: &title})
	s.ErrorIs(err, ErrForbidden)

	_, err = s.service.Publish(s.ctx, s.other, article.ID)
	s.ErrorIs(err, ErrForbidden)

	_, err = s.service.Unpublish(s.ctx, s.other, article.ID)
	s.ErrorIs(err, ErrForbidden)

	s.ErrorIs(s.service.Delete(s.ctx, s.other, article.ID), ErrForbidden)

	_, err = s.service.Versions(s.ctx, s.other, article.ID)
	s.ErrorIs(err, ErrForbidden)

	// admins may delete but not edit
	_, err = s.service.Update(s.ctx, s.admin, article.ID, &UpdateArticleRequest{Title: &title})
	s.ErrorIs(err, ErrForbidden)

	stored, err := s.articles.FindByID(s.ctx, article.ID)
	s.Require().NoError(err)
	s.Equal("Ownership is enforced", stored.Title)
	s.Empty(s.articles.Versions[article.ID])

	s.NoError(s.service.Delete(s.ctx, s.admin, article.ID))
	_, err = s.articles.FindByID(s.ctx, article.ID)
	s.Error(err)
}

func (s *ArticleServiceTestSuite) TestUnpublish() {
	draft := s.create(s.owner, "Never published draft")
	_, err := s.service.Unpublish(s.ctx, s.owner, draft.ID)
	s.ErrorIs(err, ErrInvalidState)

	article := s.createPublished("Published then withdrawn")
	publishedAt := *article.PublishedAt

	unpublished, err := s.service.Unpublish(s.ctx, s.owner, article.ID)
	s.Require().NoError(err)
	s.Equal(models.ArticleStatusDraft, unpublished.Status)
	s.Require().NotNil(unpublished.PublishedAt)
	s.Equal(publishedAt, *unpublished.PublishedAt)
	s.Empty(s.articles.Versions[article.ID])
}

func (s *ArticleServiceTestSuite) TestViewCounting() {
	published := s.createPublished("Counting every view")
	draft := s.create(s.owner, "Drafts are not counted")

	for i := 0; i < 3; i++ {
		_, err := s.service.Get(s.ctx, published.ID, nil)
		s.Require().NoError(err)
	}
	_, err := s.service.GetBySlug(s.ctx, published.Slug, &s.owner.MemberID, &s.other)
	s.Require().NoError(err)

	_, err = s.service.Get(s.ctx, draft.ID, &s.owner)
	s.Require().NoError(err)

	stored, _ := s.articles.FindByID(s.ctx, published.ID)
	s.Equal(int64(4), stored.ViewCount)
	stored, _ = s.articles.FindByID(s.ctx, draft.ID)
	s.Equal(int64(0), stored.ViewCount)
}

func (s *ArticleServiceTestSuite) TestDroppedViewTaskDoesNotFailRead() {
	article := s.createPublished("Reads survive a full queue")

	svc := NewArticleService(s.articles, limiter.NewMemoryLimiter(5, time.Hour, nil), droppingDispatcher{}, time.Hour)
	got, err := svc.Get(s.ctx, article.ID, nil)
	s.Require().NoError(err)
	s.Equal(article.ID, got.ID)
	s.Equal(0, s.articles.ViewCalls)
}

func (s *ArticleServiceTestSuite) TestUnpublishedArticlesAreHiddenFromOthers() {
	draft := s.create(s.owner, "Private working draft")

	_, err := s.service.Get(s.ctx, draft.ID, nil)
	s.ErrorIs(err, ErrNotFound)

	_, err = s.service.Get(s.ctx, draft.ID, &s.other)
	s.ErrorIs(err, ErrNotFound)

	got, err := s.service.Get(s.ctx, draft.ID, &s.owner)
	s.Require().NoError(err)
	s.Equal(draft.ID, got.ID)

	_, err = s.service.Get(s.ctx, uuid.New(), nil)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ArticleServiceTestSuite) TestSearch() {
	gst := s.createPublished("GST On Exported Services")
	s.clock.Advance(time.Hour)

	req := newCreateRequest("Audit Trail Requirements")
	req.Summary = "Record keeping obligations for audit trails under the companies act."
	req.Tags = []string{"Audit", "Compliance"}
	req.Status = models.ArticleStatusPublished
	audit, err := s.service.Create(s.ctx, s.owner, req)
	s.Require().NoError(err)

	s.create(s.owner, "GST draft that stays hidden")

	_, err = s.service.Search(s.ctx, "  ", nil, 0)
	var verr *ValidationError
	s.True(errors.As(err, &verr))

	results, err := s.service.Search(s.ctx, "gst", nil, 0)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(gst.ID, results[0].ID)

	results, err = s.service.Search(s.ctx, "", []string{"Compliance", "Valuation"}, 0)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(audit.ID, results[0].ID)

	// matches content, newest publication first
	results, err = s.service.Search(s.ctx, "COMPLIANCE", nil, 0)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(audit.ID, results[0].ID)

	results, err = s.service.Search(s.ctx, "compliance", nil, 1)
	s.Require().NoError(err)
	s.Len(results, 1)

	_, err = s.service.Search(s.ctx, "", []string{"Crypto"}, 0)
	s.True(errors.As(err, &verr))
}

func (s *ArticleServiceTestSuite) TestLikesNeverGoNegative() {
	article := s.createPublished("Likes are counted")

	liked, err := s.service.Like(s.ctx, s.other, article.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), liked.LikesCount)

	for i := 0; i < 3; i++ {
		liked, err = s.service.Unlike(s.ctx, s.other, article.ID)
		s.Require().NoError(err)
	}
	s.Equal(int64(0), liked.LikesCount)

	draft := s.create(s.owner, "Drafts cannot be liked")
	_, err = s.service.Like(s.ctx, s.other, draft.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ArticleServiceTestSuite) TestListAndListMine() {
	s.createPublished("First published piece")
	s.create(s.owner, "Unfinished draft piece")
	s.create(s.other, "Someone else's draft")

	params := utils.PaginationParams{Page: 1, Limit: 10, Sort: "published_at", Order: "desc"}

	public, err := s.service.List(s.ctx, ListArticlesQuery{PaginationParams: params})
	s.Require().NoError(err)
	s.Equal(int64(1), public.Total)

	mine, err := s.service.ListMine(s.ctx, s.owner, ListArticlesQuery{PaginationParams: params})
	s.Require().NoError(err)
	s.Equal(int64(2), mine.Total)

	drafts := models.ArticleStatusDraft
	mine, err = s.service.ListMine(s.ctx, s.owner, ListArticlesQuery{PaginationParams: params, Status: &drafts})
	s.Require().NoError(err)
	s.Equal(int64(1), mine.Total)
}

func TestArticleServiceSuite(t *testing.T) {
	suite.Run(t, new(ArticleServiceTestSuite))
}

func TestSlugWithSuffixStaysWithinLimit(t *testing.T) {
	base := strings.Repeat("a", utils.MaxSlugLength)
	slug := slugWithSuffix(base, 12)

	if len(slug) > utils.MaxSlugLength || !strings.HasSuffix(slug, "-12") {
		t.Fatalf("unexpected slug %q (%d chars)", slug, len(slug))
	}
}
