package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/unetra-global/member-portal-sub000/internal/i18n"
	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/services"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

type stubResolver map[string]*models.Member

func (r stubResolver) GetByAuthUser(_ context.Context, authUserID string) (*models.Member, error) {
	if member, ok := r[authUserID]; ok {
		return member, nil
	}
	return nil, &services.NotFoundError{Resource: "member"}
}

func init() {
	gin.SetMode(gin.TestMode)
	if err := i18n.Initialize("en"); err != nil {
		panic(err)
	}
	utils.SetJWTSecret("middleware-test-secret")
}

func serve(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, subject string) string {
	token, err := utils.GenerateJWT(subject, subject+"@example.com", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthRequired(t *testing.T) {
	r := gin.New()
	r.GET("/", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(utils.ContextAuthUserID)+"|"+c.GetString(utils.ContextEmail))
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/", "Bearer not-a-jwt").Code)

	w := serve(r, "/", bearer(t, "user-1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1|user-1@example.com", w.Body.String())
}

func TestMemberRequired(t *testing.T) {
	member := &models.Member{MembershipTier: models.MembershipTierPremium}
	member.ID = uuid.New()
	resolver := stubResolver{"user-1": member}

	r := gin.New()
	r.GET("/", AuthRequired(), MemberRequired(resolver), func(c *gin.Context) {
		id, ok := utils.GetMemberIDFromContext(c)
		require.True(t, ok)
		assert.Equal(t, member.ID, id)
		assert.Equal(t, models.MembershipTierPremium, utils.GetMembershipTierFromContext(c))
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, "/", bearer(t, "user-1")).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "/", bearer(t, "user-2")).Code)
}

func TestAdminRequired(t *testing.T) {
	admin := &models.Member{MembershipTier: models.MembershipTierAdmin}
	admin.ID = uuid.New()
	regular := &models.Member{MembershipTier: models.MembershipTierFree}
	regular.ID = uuid.New()
	resolver := stubResolver{"admin": admin, "regular": regular}

	r := gin.New()
	r.GET("/", AuthRequired(), MemberRequired(resolver), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, "/", bearer(t, "admin")).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "/", bearer(t, "regular")).Code)
}

func TestOptionalAuth(t *testing.T) {
	member := &models.Member{MembershipTier: models.MembershipTierFree}
	member.ID = uuid.New()
	resolver := stubResolver{"user-1": member}

	r := gin.New()
	r.GET("/", OptionalAuth(resolver), func(c *gin.Context) {
		if id, ok := utils.GetMemberIDFromContext(c); ok {
			c.String(http.StatusOK, id.String())
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	assert.Equal(t, "anonymous", serve(r, "/", "").Body.String())
	assert.Equal(t, "anonymous", serve(r, "/", "Bearer broken").Body.String())
	assert.Equal(t, "anonymous", serve(r, "/", bearer(t, "no-profile")).Body.String())
	assert.Equal(t, member.ID.String(), serve(r, "/", bearer(t, "user-1")).Body.String())
}

func TestRateLimiterRejectsOverBurst(t *testing.T) {
	limiter := NewRateLimiter(rate.Every(time.Hour), 2)
	r := gin.New()
	r.GET("/", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(r, "/", "").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "/", "").Code)

	w := serve(r, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiterPrunesIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(rate.Every(time.Second), 1)
	limiter.getVisitor("10.0.0.1")

	limiter.prune(time.Now())
	assert.Len(t, limiter.visitors, 1)

	limiter.prune(time.Now().Add(5 * time.Minute))
	assert.Empty(t, limiter.visitors)
}

func TestPreferredLanguage(t *testing.T) {
	assert.Equal(t, "hi", preferredLanguage("hi-IN,hi;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", preferredLanguage("fr-FR,de;q=0.8"))
	assert.Equal(t, "en", preferredLanguage(""))
}

func TestExtractResource(t *testing.T) {
	id := uuid.NewString()
	assert.Equal(t, "articles", extractResourceType("/v1/articles/"+id+"/publish"))
	assert.Equal(t, id, extractResourceID("/v1/articles/"+id+"/publish"))
	assert.Equal(t, "", extractResourceID("/v1/articles/search"))
	assert.Equal(t, "health", extractResourceType("/health"))
}
