// internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/unetra-global/member-portal-sub000/internal/i18n"
	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/services"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

// MemberResolver looks up the member profile owned by an identity.
type MemberResolver interface {
	GetByAuthUser(ctx context.Context, authUserID string) (*models.Member, error)
}

func bearerClaims(c *gin.Context) (*utils.IdentityClaims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, i18n.KeyAuthRequired
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, i18n.KeyAuthInvalidToken
	}

	claims, err := utils.ValidateJWT(parts[1])
	if err != nil {
		return nil, i18n.KeyAuthTokenExpired
	}
	return claims, ""
}

// AuthRequired verifies the identity provider's session and stores the
// identity in the context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, failure := bearerClaims(c)
		if claims == nil {
			utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), failure))
			c.Abort()
			return
		}

		c.Set(utils.ContextAuthUserID, claims.Subject)
		c.Set(utils.ContextEmail, claims.Email)
		c.Next()
	}
}

// MemberRequired must run after AuthRequired. Identities without a member
// profile are rejected until they complete one.
func MemberRequired(members MemberResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)
		authUserID, ok := utils.GetAuthUserIDFromContext(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		member, err := members.GetByAuthUser(c.Request.Context(), authUserID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthProfileRequired))
			} else {
				logrus.WithError(err).WithField("auth_user_id", authUserID).Error("Failed to resolve member")
				utils.InternalErrorResponse(c, "")
			}
			c.Abort()
			return
		}

		setMember(c, member)
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.GetMembershipTierFromContext(c) != models.MembershipTierAdmin {
			utils.ForbiddenResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAdminAccessDenied))
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the viewer when a valid session is present and
// otherwise lets the request through anonymously.
func OptionalAuth(members MemberResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := bearerClaims(c)
		if claims == nil {
			c.Next()
			return
		}

		c.Set(utils.ContextAuthUserID, claims.Subject)
		c.Set(utils.ContextEmail, claims.Email)
		if member, err := members.GetByAuthUser(c.Request.Context(), claims.Subject); err == nil {
			setMember(c, member)
		}
		c.Next()
	}
}

func setMember(c *gin.Context, member *models.Member) {
	c.Set(utils.ContextMemberID, member.ID)
	c.Set(utils.ContextMembershipTier, member.MembershipTier)
}
