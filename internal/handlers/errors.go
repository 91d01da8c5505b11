package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unetra-global/member-portal-sub000/internal/i18n"
	"github.com/unetra-global/member-portal-sub000/internal/services"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

// respondError maps service errors onto HTTP responses. Unknown errors are
// logged and reported without detail.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var (
		validationErr *services.ValidationError
		rateLimitErr  *services.RateLimitError
		notFoundErr   *services.NotFoundError
		conflictErr   *services.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		utils.ValidationErrorResponse(c, validationErr.Details)
	case errors.As(err, &rateLimitErr):
		utils.TooManyRequestsResponse(c, i18n.T(lang, i18n.KeyArticleRateLimited, rateLimitErr.Limit), rateLimitErr.RetryAfter)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.As(err, &notFoundErr):
		utils.NotFoundResponse(c, notFoundErr.Resource)
	case errors.Is(err, services.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", http.StatusText(http.StatusNotFound), nil)
	case errors.As(err, &conflictErr):
		message := i18n.T(lang, i18n.KeyConflict, conflictErr.Resource)
		if conflictErr.Resource == "member" && conflictErr.Field == "email" {
			message = i18n.T(lang, i18n.KeyMemberEmailTaken)
		} else if conflictErr.Resource == "member" && conflictErr.Field == "auth_user_id" {
			message = i18n.T(lang, i18n.KeyMemberExists)
		}
		utils.ConflictResponse(c, message, gin.H{"field": conflictErr.Field})
	case errors.Is(err, services.ErrInvalidState):
		utils.ErrorResponse(c, http.StatusConflict, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, services.ErrUnknownUploadKind):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileInvalidKind), nil)
	case errors.Is(err, services.ErrLinkedInUnavailable):
		logrus.WithError(err).WithField("path", c.FullPath()).Error("LinkedIn import failed")
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyMemberLinkedInFailed))
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}

// bindJSON decodes the body and writes the 400 itself on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

// callerFromContext returns the member resolved by MemberRequired.
func callerFromContext(c *gin.Context) (services.Caller, bool) {
	memberID, ok := utils.GetMemberIDFromContext(c)
	if !ok {
		return services.Caller{}, false
	}
	return services.Caller{
		MemberID: memberID,
		Tier:     utils.GetMembershipTierFromContext(c),
	}, true
}

// viewerFromContext is callerFromContext for routes where auth is optional.
func viewerFromContext(c *gin.Context) *services.Caller {
	caller, ok := callerFromContext(c)
	if !ok {
		return nil
	}
	return &caller
}

func requireCaller(c *gin.Context) (services.Caller, bool) {
	caller, ok := callerFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return caller, ok
}

func pathID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, resource+" id"), nil)
	}
	return id, ok
}
