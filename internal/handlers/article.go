package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unetra-global/member-portal-sub000/internal/i18n"
	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/services"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

type ArticleHandler struct {
	articleService *services.ArticleService
}

func NewArticleHandler(articleService *services.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

// GET /articles
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	query := services.ListArticlesQuery{
		PaginationParams: utils.GetPaginationParams(c, "published_at"),
	}

	if memberIDStr := c.Query("member_id"); memberIDStr != "" {
		if memberID, err := uuid.Parse(memberIDStr); err == nil {
			query.MemberID = &memberID
		}
	}

	result, err := h.articleService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// GET /articles/mine
func (h *ArticleHandler) ListMyArticles(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	query := services.ListArticlesQuery{
		PaginationParams: utils.GetPaginationParams(c, "created_at"),
	}
	if status := c.Query("status"); status != "" {
		articleStatus := models.ArticleStatus(strings.ToUpper(status))
		query.Status = &articleStatus
	}

	result, err := h.articleService.ListMine(c.Request.Context(), caller, query)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// GET /articles/search?q=&tags=&limit=
func (h *ArticleHandler) SearchArticles(c *gin.Context) {
	var tags []string
	for _, raw := range c.QueryArray("tags") {
		tags = append(tags, strings.Split(raw, ",")...)
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	articles, err := h.articleService.Search(c.Request.Context(), c.Query("q"), tags, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, articles)
}

// GET /articles/:id
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, ok := pathID(c, "article")
	if !ok {
		return
	}

	article, err := h.articleService.Get(c.Request.Context(), id, viewerFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, article)
}

// GET /articles/slug/:slug?member_id=
func (h *ArticleHandler) GetArticleBySlug(c *gin.Context) {
	var memberID *uuid.UUID
	if memberIDStr := c.Query("member_id"); memberIDStr != "" {
		parsed, err := uuid.Parse(memberIDStr)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "member_id"), nil)
			return
		}
		memberID = &parsed
	}

	article, err := h.articleService.GetBySlug(c.Request.Context(), c.Param("slug"), memberID, viewerFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, article)
}

// POST /articles
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.CreateArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.articleService.Create(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyArticleCreated, article)
}

// PUT /articles/:id
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "article")
	if !ok {
		return
	}

	var req services.UpdateArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.articleService.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyArticleUpdated, article)
}

// POST /articles/:id/publish
func (h *ArticleHandler) PublishArticle(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "article")
	if !ok {
		return
	}

	article, err := h.articleService.Publish(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyArticlePublished, article)
}

// POST /articles/:id/unpublish
func (h *ArticleHandler) UnpublishArticle(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "article")
	if !ok {
		return
	}

	article, err := h.articleService.Unpublish(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyArticleUnpublished, article)
}

// DELETE /articles/:id
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "article")
	if !ok {
		return
	}

	if err := h.articleService.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyArticleDeleted, nil)
}

// GET /articles/:id/versions
func (h *ArticleHandler) ListVersions(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "article")
	if !ok {
		return
	}

	versions, err := h.articleService.Versions(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, versions)
}

// POST /articles/:id/like
func (h *ArticleHandler) LikeArticle(c *gin.Context) {
	h.adjustLikes(c, true)
}

// POST /articles/:id/unlike
func (h *ArticleHandler) UnlikeArticle(c *gin.Context) {
	h.adjustLikes(c, false)
}

func (h *ArticleHandler) adjustLikes(c *gin.Context, like bool) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "article")
	if !ok {
		return
	}

	var (
		article *models.Article
		err     error
	)
	if like {
		article, err = h.articleService.Like(c.Request.Context(), caller, id)
	} else {
		article, err = h.articleService.Unlike(c.Request.Context(), caller, id)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"id": article.ID, "likes_count": article.LikesCount})
}
