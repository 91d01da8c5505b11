package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unetra-global/member-portal-sub000/internal/i18n"
	"github.com/unetra-global/member-portal-sub000/internal/services"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

type TaxonomyHandler struct {
	categoryService *services.CategoryService
	servicesService *services.ServicesService
}

func NewTaxonomyHandler(categoryService *services.CategoryService, servicesService *services.ServicesService) *TaxonomyHandler {
	return &TaxonomyHandler{
		categoryService: categoryService,
		servicesService: servicesService,
	}
}

// GET /categories
func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, categories)
}

// GET /categories/:id
func (h *TaxonomyHandler) GetCategory(c *gin.Context) {
	id, ok := pathID(c, "category")
	if !ok {
		return
	}

	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, category)
}

// POST /categories
func (h *TaxonomyHandler) CreateCategory(c *gin.Context) {
	var req services.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeySuccess, category)
}

// PUT /categories/:id
func (h *TaxonomyHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "category")
	if !ok {
		return
	}

	var req services.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, category)
}

// DELETE /categories/:id
func (h *TaxonomyHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "category")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeySuccess, nil)
}

// GET /services?category_id=
func (h *TaxonomyHandler) ListServices(c *gin.Context) {
	var categoryID *uuid.UUID
	if raw := c.Query("category_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "category_id"), nil)
			return
		}
		categoryID = &parsed
	}

	list, err := h.servicesService.List(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, list)
}

// GET /services/:id
func (h *TaxonomyHandler) GetService(c *gin.Context) {
	id, ok := pathID(c, "service")
	if !ok {
		return
	}

	service, err := h.servicesService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, service)
}

// POST /services
func (h *TaxonomyHandler) CreateService(c *gin.Context) {
	var req services.ServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	service, err := h.servicesService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeySuccess, service)
}

// PUT /services/:id
func (h *TaxonomyHandler) UpdateService(c *gin.Context) {
	id, ok := pathID(c, "service")
	if !ok {
		return
	}

	var req services.ServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	service, err := h.servicesService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, service)
}

// DELETE /services/:id
func (h *TaxonomyHandler) DeleteService(c *gin.Context) {
	id, ok := pathID(c, "service")
	if !ok {
		return
	}

	if err := h.servicesService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeySuccess, nil)
}
