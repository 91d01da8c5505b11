package services

import "github.com/unetra-global/member-portal-sub000/internal/models"

type ArticleAction string

const (
	ArticleActionUpdate    ArticleAction = "update"
	ArticleActionPublish   ArticleAction = "publish"
	ArticleActionUnpublish ArticleAction = "unpublish"
	ArticleActionDelete    ArticleAction = "delete"
	ArticleActionVersions  ArticleAction = "versions"
)

// CanMutateArticle is the single authority on who may act on an article.
// Owners may do everything; admins may only delete.
func CanMutateArticle(article *models.Article, caller Caller, action ArticleAction) error {
	if caller.Owns(article.MemberID) {
		return nil
	}
	if action == ArticleActionDelete && caller.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

// canViewArticle hides unpublished articles from everyone but their owner.
func canViewArticle(article *models.Article, viewer *Caller) bool {
	if article.IsPublished() {
		return true
	}
	return viewer != nil && viewer.Owns(article.MemberID)
}
