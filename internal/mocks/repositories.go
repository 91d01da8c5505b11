package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

// NewRepositories wires a full set of in-memory repositories that share
// member and service data the way the SQL tables do.
func NewRepositories() *repository.Repositories {
	services := NewMockServiceRepository()
	return &repository.Repositories{
		Article:       NewMockArticleRepository(),
		Member:        NewMockMemberRepository(),
		Post:          NewMockPostRepository(),
		Category:      NewMockCategoryRepository(),
		Service:       services,
		MemberService: NewMockMemberServiceRepository(services),
		Payment:       NewMockPaymentRepository(),
		AuditLog:      NewMockAuditLogRepository(),
	}
}

func stamp(base *models.BaseModel) {
	now := time.Now()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

func paginate[T any](items []T, params utils.PaginationParams) []T {
	if params.Limit <= 0 {
		return items
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * params.Limit
	if start >= len(items) {
		return []T{}
	}
	end := start + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// MockArticleRepository is an in-memory ArticleRepository.
type MockArticleRepository struct {
	mu       sync.Mutex
	Articles map[uuid.UUID]*models.Article
	Versions map[uuid.UUID][]models.ArticleVersion

	// BeforeCreate runs before the uniqueness check on Create, letting a
	// test slip in a competing row.
	BeforeCreate func(article *models.Article)
	ViewCalls    int
	CreateError  error
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[uuid.UUID]*models.Article),
		Versions: make(map[uuid.UUID][]models.ArticleVersion),
	}
}

// Put stores an article directly, bypassing the uniqueness check.
func (m *MockArticleRepository) Put(article *models.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&article.BaseModel)
	stored := *article
	m.Articles[article.ID] = &stored
}

func (m *MockArticleRepository) slugTaken(memberID uuid.UUID, slug string, excludeID *uuid.UUID) bool {
	for _, a := range m.Articles {
		if a.MemberID != memberID || a.Slug != slug {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		return true
	}
	return false
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if m.BeforeCreate != nil {
		m.BeforeCreate(article)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}
	if m.slugTaken(article.MemberID, article.Slug, nil) {
		return repository.ErrDuplicate
	}

	stamp(&article.BaseModel)
	stored := *article
	stored.Member = nil
	m.Articles[article.ID] = &stored
	return nil
}

func (m *MockArticleRepository) Save(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(article)
}

// save keeps the stored counters, like the gorm repository does.
func (m *MockArticleRepository) save(article *models.Article) error {
	existing, ok := m.Articles[article.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if m.slugTaken(article.MemberID, article.Slug, &article.ID) {
		return repository.ErrDuplicate
	}
	article.ViewCount = existing.ViewCount
	article.LikesCount = existing.LikesCount
	article.UpdatedAt = time.Now()
	stored := *article
	stored.Member = nil
	m.Articles[article.ID] = &stored
	return nil
}

func (m *MockArticleRepository) SaveWithVersion(ctx context.Context, article *models.Article, snapshot *models.ArticleVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Articles[article.ID]; !ok {
		return repository.ErrNotFound
	}

	current := 0
	for _, v := range m.Versions[article.ID] {
		if v.Version > current {
			current = v.Version
		}
	}

	snapshot.ID = uuid.New()
	snapshot.ArticleID = article.ID
	snapshot.Version = current + 1
	snapshot.CreatedAt = time.Now()

	if err := m.save(article); err != nil {
		return err
	}
	m.Versions[article.ID] = append(m.Versions[article.ID], *snapshot)
	return nil
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.Articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *a
	return &found, nil
}

func (m *MockArticleRepository) FindBySlug(ctx context.Context, slug string, memberID *uuid.UUID) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var best *models.Article
	for _, a := range m.Articles {
		if a.Slug != slug {
			continue
		}
		if memberID != nil {
			if a.MemberID == *memberID {
				found := *a
				return &found, nil
			}
			continue
		}
		if !a.IsPublished() {
			continue
		}
		if best == nil || publishedAfter(a, best) {
			best = a
		}
	}

	if best == nil {
		return nil, repository.ErrNotFound
	}
	found := *best
	return &found, nil
}

func publishedAfter(a, b *models.Article) bool {
	if a.PublishedAt == nil {
		return false
	}
	if b.PublishedAt == nil {
		return true
	}
	return a.PublishedAt.After(*b.PublishedAt)
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, memberID uuid.UUID, slug string, excludeID *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugTaken(memberID, slug, excludeID), nil
}

func (m *MockArticleRepository) List(ctx context.Context, filter repository.ArticleFilter) ([]models.Article, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.Article
	for _, a := range m.Articles {
		if filter.MemberID != nil && a.MemberID != *filter.MemberID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.Tag != "" && !hasAnyTag(a.Tags, []string{filter.Tag}) {
			continue
		}
		if filter.Search != "" && !containsFold(a.Title, filter.Search) {
			continue
		}
		matched = append(matched, *a)
	}

	if filter.Sort == "published_at" {
		sort.SliceStable(matched, func(i, j int) bool { return publishedAfter(&matched[i], &matched[j]) })
	} else {
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	}

	return paginate(matched, filter.PaginationParams), int64(len(matched)), nil
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func (m *MockArticleRepository) Search(ctx context.Context, q string, tags []string, limit int) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.Article
	for _, a := range m.Articles {
		if !a.IsPublished() {
			continue
		}
		if q != "" && !containsFold(a.Title, q) && !containsFold(a.Summary, q) && !containsFold(a.Content, q) {
			continue
		}
		if len(tags) > 0 && !hasAnyTag(a.Tags, tags) {
			continue
		}
		matched = append(matched, *a)
	}

	sort.SliceStable(matched, func(i, j int) bool { return publishedAfter(&matched[i], &matched[j]) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Articles, id)
	delete(m.Versions, id)
	return nil
}

func (m *MockArticleRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ViewCalls++
	a, ok := m.Articles[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.ViewCount++
	return nil
}

func (m *MockArticleRepository) AdjustLikes(ctx context.Context, id uuid.UUID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.Articles[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.LikesCount += int64(delta)
	if a.LikesCount < 0 {
		a.LikesCount = 0
	}
	return nil
}

func (m *MockArticleRepository) ListVersions(ctx context.Context, articleID uuid.UUID) ([]models.ArticleVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	versions := append([]models.ArticleVersion(nil), m.Versions[articleID]...)
	sort.Slice(versions, func(i, j int) bool { return versions[i].Version > versions[j].Version })
	return versions, nil
}

// MockMemberRepository is an in-memory MemberRepository.
type MockMemberRepository struct {
	mu      sync.Mutex
	Members map[uuid.UUID]*models.Member
}

func NewMockMemberRepository() *MockMemberRepository {
	return &MockMemberRepository{Members: make(map[uuid.UUID]*models.Member)}
}

func (m *MockMemberRepository) Create(ctx context.Context, member *models.Member, serviceIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Members {
		if strings.EqualFold(existing.Email, member.Email) || existing.AuthUserID == member.AuthUserID {
			return repository.ErrDuplicate
		}
	}

	stamp(&member.BaseModel)
	if member.Status == "" {
		member.Status = models.MemberStatusActive
	}
	if member.MembershipTier == "" {
		member.MembershipTier = models.MembershipTierFree
	}

	member.Services = nil
	for _, serviceID := range serviceIDs {
		link := models.MemberService{MemberID: member.ID, ServiceID: serviceID, IsActive: true}
		stamp(&link.BaseModel)
		member.Services = append(member.Services, link)
	}

	stored := *member
	m.Members[member.ID] = &stored
	return nil
}

func (m *MockMemberRepository) Save(ctx context.Context, member *models.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.Members[member.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, existing := range m.Members {
		if id != member.ID && strings.EqualFold(existing.Email, member.Email) {
			return repository.ErrDuplicate
		}
	}
	member.MembershipTier = current.MembershipTier
	member.UpdatedAt = time.Now()
	stored := *member
	m.Members[member.ID] = &stored
	return nil
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	member, ok := m.Members[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *member
	return &found, nil
}

func (m *MockMemberRepository) FindByAuthUserID(ctx context.Context, authUserID string) (*models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, member := range m.Members {
		if member.AuthUserID == authUserID {
			found := *member
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockMemberRepository) EmailExists(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, member := range m.Members {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if strings.EqualFold(member.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockMemberRepository) List(ctx context.Context, params utils.PaginationParams) ([]models.Member, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.Member
	for _, member := range m.Members {
		if member.Status != models.MemberStatusActive {
			continue
		}
		if params.Search != "" &&
			!containsFold(member.FullName(), params.Search) &&
			!containsFold(member.Email, params.Search) &&
			!containsFold(member.City, params.Search) {
			continue
		}
		matched = append(matched, *member)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, params), int64(len(matched)), nil
}

func (m *MockMemberRepository) UpdateTier(ctx context.Context, id uuid.UUID, tier models.MembershipTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	member, ok := m.Members[id]
	if !ok {
		return repository.ErrNotFound
	}
	member.MembershipTier = tier
	return nil
}

func (m *MockMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Members[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Members, id)
	return nil
}

// MockPostRepository is an in-memory PostRepository.
type MockPostRepository struct {
	mu    sync.Mutex
	Posts map[uuid.UUID]*models.Post
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{Posts: make(map[uuid.UUID]*models.Post)}
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&post.BaseModel)
	stored := *post
	m.Posts[post.ID] = &stored
	return nil
}

func (m *MockPostRepository) Save(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.Posts[post.ID]
	if !ok {
		return repository.ErrNotFound
	}
	post.LikesCount = existing.LikesCount
	post.RepostsCount = existing.RepostsCount
	post.UpdatedAt = time.Now()
	stored := *post
	m.Posts[post.ID] = &stored
	return nil
}

func (m *MockPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.Posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *post
	return &found, nil
}

func (m *MockPostRepository) List(ctx context.Context, params utils.PaginationParams) ([]models.Post, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	posts := make([]models.Post, 0, len(m.Posts))
	for _, post := range m.Posts {
		posts = append(posts, *post)
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return paginate(posts, params), int64(len(posts)), nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Posts, id)
	return nil
}

func (m *MockPostRepository) AdjustCounter(ctx context.Context, id uuid.UUID, counter repository.PostCounter, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.Posts[id]
	if !ok {
		return repository.ErrNotFound
	}

	target := &post.LikesCount
	if counter == repository.PostCounterReposts {
		target = &post.RepostsCount
	}
	*target += int64(delta)
	if *target < 0 {
		*target = 0
	}
	return nil
}

// MockCategoryRepository is an in-memory CategoryRepository.
type MockCategoryRepository struct {
	mu         sync.Mutex
	Categories map[uuid.UUID]*models.Category
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[uuid.UUID]*models.Category)}
}

func (m *MockCategoryRepository) nameTaken(name string, excludeID uuid.UUID) bool {
	for id, c := range m.Categories {
		if id != excludeID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nameTaken(category.Name, uuid.Nil) {
		return repository.ErrDuplicate
	}
	stamp(&category.BaseModel)
	stored := *category
	m.Categories[category.ID] = &stored
	return nil
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Categories[category.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.nameTaken(category.Name, category.ID) {
		return repository.ErrDuplicate
	}
	category.UpdatedAt = time.Now()
	stored := *category
	m.Categories[category.ID] = &stored
	return nil
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.Categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *c
	return &found, nil
}

func (m *MockCategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.Categories {
		if strings.EqualFold(c.Name, name) {
			found := *c
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	categories := make([]models.Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Categories, id)
	return nil
}

func (m *MockCategoryRepository) UpsertByName(ctx context.Context, name, field string) (*models.Category, error) {
	if existing, err := m.FindByName(ctx, name); err == nil {
		return existing, nil
	}
	category := &models.Category{Name: name, Field: field}
	if err := m.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// MockServiceRepository is an in-memory ServiceRepository.
type MockServiceRepository struct {
	mu       sync.Mutex
	Services map[uuid.UUID]*models.Service
}

func NewMockServiceRepository() *MockServiceRepository {
	return &MockServiceRepository{Services: make(map[uuid.UUID]*models.Service)}
}

func (m *MockServiceRepository) nameTaken(name string, excludeID uuid.UUID) bool {
	for id, s := range m.Services {
		if id != excludeID && strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

func (m *MockServiceRepository) Create(ctx context.Context, service *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nameTaken(service.Name, uuid.Nil) {
		return repository.ErrDuplicate
	}
	stamp(&service.BaseModel)
	stored := *service
	m.Services[service.ID] = &stored
	return nil
}

func (m *MockServiceRepository) Save(ctx context.Context, service *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Services[service.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.nameTaken(service.Name, service.ID) {
		return repository.ErrDuplicate
	}
	service.UpdatedAt = time.Now()
	stored := *service
	m.Services[service.ID] = &stored
	return nil
}

func (m *MockServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.Services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *s
	return &found, nil
}

func (m *MockServiceRepository) FindByName(ctx context.Context, name string) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.Services {
		if strings.EqualFold(s.Name, name) {
			found := *s
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockServiceRepository) List(ctx context.Context, categoryID *uuid.UUID) ([]models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	services := make([]models.Service, 0, len(m.Services))
	for _, s := range m.Services {
		if categoryID != nil && (s.CategoryID == nil || *s.CategoryID != *categoryID) {
			continue
		}
		services = append(services, *s)
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	return services, nil
}

func (m *MockServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Services[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Services, id)
	return nil
}

func (m *MockServiceRepository) UpsertByName(ctx context.Context, name string, categoryID *uuid.UUID) (*models.Service, error) {
	if existing, err := m.FindByName(ctx, name); err == nil {
		return existing, nil
	}
	service := &models.Service{Name: name, CategoryID: categoryID}
	if err := m.Create(ctx, service); err != nil {
		return nil, err
	}
	return service, nil
}

// MockMemberServiceRepository is an in-memory MemberServiceRepository.
type MockMemberServiceRepository struct {
	mu       sync.Mutex
	Links    map[uuid.UUID]*models.MemberService
	services *MockServiceRepository
}

func NewMockMemberServiceRepository(services *MockServiceRepository) *MockMemberServiceRepository {
	return &MockMemberServiceRepository{
		Links:    make(map[uuid.UUID]*models.MemberService),
		services: services,
	}
}

func (m *MockMemberServiceRepository) withService(link models.MemberService) models.MemberService {
	if m.services != nil {
		if s, err := m.services.FindByID(context.Background(), link.ServiceID); err == nil {
			link.Service = s
		}
	}
	return link
}

func (m *MockMemberServiceRepository) Create(ctx context.Context, link *models.MemberService) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Links {
		if existing.MemberID == link.MemberID && existing.ServiceID == link.ServiceID {
			return repository.ErrDuplicate
		}
	}
	stamp(&link.BaseModel)
	stored := *link
	stored.Service = nil
	m.Links[link.ID] = &stored
	return nil
}

func (m *MockMemberServiceRepository) Save(ctx context.Context, link *models.MemberService) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Links[link.ID]; !ok {
		return repository.ErrNotFound
	}
	link.UpdatedAt = time.Now()
	stored := *link
	stored.Service = nil
	m.Links[link.ID] = &stored
	return nil
}

func (m *MockMemberServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.MemberService, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.Links[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := m.withService(*link)
	return &found, nil
}

func (m *MockMemberServiceRepository) Exists(ctx context.Context, memberID, serviceID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, link := range m.Links {
		if link.MemberID == memberID && link.ServiceID == serviceID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockMemberServiceRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.MemberService, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var links []models.MemberService
	for _, link := range m.Links {
		if link.MemberID == memberID {
			links = append(links, m.withService(*link))
		}
	}
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].IsPreferred != links[j].IsPreferred {
			return links[i].IsPreferred
		}
		return links[i].CreatedAt.Before(links[j].CreatedAt)
	})
	return links, nil
}

func (m *MockMemberServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Links[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Links, id)
	return nil
}

// MockPaymentRepository is an in-memory PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.Mutex
	Payments map[string]*models.MembershipPayment
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{Payments: make(map[string]*models.MembershipPayment)}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.MembershipPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Payments[payment.PaymentReference]; ok {
		return repository.ErrDuplicate
	}
	stamp(&payment.BaseModel)
	stored := *payment
	m.Payments[payment.PaymentReference] = &stored
	return nil
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *models.MembershipPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	payment.UpdatedAt = time.Now()
	stored := *payment
	m.Payments[payment.PaymentReference] = &stored
	return nil
}

func (m *MockPaymentRepository) FindByReference(ctx context.Context, reference string) (*models.MembershipPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	payment, ok := m.Payments[reference]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *payment
	return &found, nil
}

// MockAuditLogRepository records audit entries in order.
type MockAuditLogRepository struct {
	mu      sync.Mutex
	Entries []models.AuditLog
}

func NewMockAuditLogRepository() *MockAuditLogRepository {
	return &MockAuditLogRepository{}
}

func (m *MockAuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&entry.BaseModel)
	m.Entries = append(m.Entries, *entry)
	return nil
}
