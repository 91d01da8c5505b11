package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/unetra-global/member-portal-sub000/internal/models"
)

func TestCanMutateArticle(t *testing.T) {
	ownerID := uuid.New()
	article := &models.Article{MemberID: ownerID, Status: models.ArticleStatusPublished}

	owner := Caller{MemberID: ownerID, Tier: models.MembershipTierFree}
	stranger := Caller{MemberID: uuid.New(), Tier: models.MembershipTierPremium}
	admin := Caller{MemberID: uuid.New(), Tier: models.MembershipTierAdmin}
	anonymous := Caller{}

	actions := []ArticleAction{
		ArticleActionUpdate,
		ArticleActionPublish,
		ArticleActionUnpublish,
		ArticleActionDelete,
		ArticleActionVersions,
	}

	for _, action := range actions {
		t.Run(string(action), func(t *testing.T) {
			assert.NoError(t, CanMutateArticle(article, owner, action))
			assert.ErrorIs(t, CanMutateArticle(article, stranger, action), ErrForbidden)
			assert.ErrorIs(t, CanMutateArticle(article, anonymous, action), ErrForbidden)

			if action == ArticleActionDelete {
				assert.NoError(t, CanMutateArticle(article, admin, action))
			} else {
				assert.ErrorIs(t, CanMutateArticle(article, admin, action), ErrForbidden)
			}
		})
	}
}

func TestCanViewArticle(t *testing.T) {
	ownerID := uuid.New()
	owner := &Caller{MemberID: ownerID}
	stranger := &Caller{MemberID: uuid.New(), Tier: models.MembershipTierAdmin}

	for _, status := range []models.ArticleStatus{
		models.ArticleStatusDraft,
		models.ArticleStatusUnderReview,
		models.ArticleStatusArchived,
	} {
		article := &models.Article{MemberID: ownerID, Status: status}
		assert.True(t, canViewArticle(article, owner), status)
		assert.False(t, canViewArticle(article, stranger), status)
		assert.False(t, canViewArticle(article, nil), status)
	}

	published := &models.Article{MemberID: ownerID, Status: models.ArticleStatusPublished}
	assert.True(t, canViewArticle(published, nil))
	assert.True(t, canViewArticle(published, stranger))
}
