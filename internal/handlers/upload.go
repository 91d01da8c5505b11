package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/unetra-global/member-portal-sub000/internal/i18n"
	"github.com/unetra-global/member-portal-sub000/internal/services"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

type UploadHandler struct {
	storageService *services.StorageService
}

func NewUploadHandler(storageService *services.StorageService) *UploadHandler {
	return &UploadHandler{storageService: storageService}
}

// POST /uploads/:kind
func (h *UploadHandler) Upload(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	options, err := services.UploadOptionsFor(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(c.Request.Context(), caller.MemberID.String(), file, header, options)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyFileUploadSuccess, gin.H{
		"url":       result.URL,
		"key":       result.Key,
		"size":      result.Size,
		"mime_type": result.MimeType,
		"private":   result.Private,
		"filename":  header.Filename,
	})
}
