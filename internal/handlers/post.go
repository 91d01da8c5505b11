package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unetra-global/member-portal-sub000/internal/i18n"
	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/services"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// GET /posts
func (h *PostHandler) Feed(c *gin.Context) {
	params := utils.GetPaginationParams(c, "created_at")

	result, err := h.postService.Feed(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// GET /posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := pathID(c, "post")
	if !ok {
		return
	}

	post, err := h.postService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, post)
}

// POST /posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.PostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.Create(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyPostCreated, post)
}

// PUT /posts/:id
func (h *PostHandler) ReplacePost(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "post")
	if !ok {
		return
	}

	var req services.PostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.Replace(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyPostUpdated, post)
}

// DELETE /posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "post")
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyPostDeleted, nil)
}

// POST /posts/:id/like
func (h *PostHandler) LikePost(c *gin.Context) { h.counter(c, h.postService.Like) }

// POST /posts/:id/unlike
func (h *PostHandler) UnlikePost(c *gin.Context) { h.counter(c, h.postService.Unlike) }

// POST /posts/:id/repost
func (h *PostHandler) Repost(c *gin.Context) { h.counter(c, h.postService.Repost) }

// POST /posts/:id/unrepost
func (h *PostHandler) Unrepost(c *gin.Context) { h.counter(c, h.postService.Unrepost) }

func (h *PostHandler) counter(c *gin.Context, op func(context.Context, uuid.UUID) (*models.Post, error)) {
	if _, ok := requireCaller(c); !ok {
		return
	}
	id, ok := pathID(c, "post")
	if !ok {
		return
	}

	post, err := op(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"id":            post.ID,
		"likes_count":   post.LikesCount,
		"reposts_count": post.RepostsCount,
	})
}
