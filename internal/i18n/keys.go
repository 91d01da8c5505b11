// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyError         = "error"
	KeyInternalError = "error.internal"

	// Authentication
	KeyAuthRequired        = "auth.required"
	KeyAuthInvalidToken    = "auth.invalid_token"
	KeyAuthTokenExpired    = "auth.token_expired"
	KeyAuthProfileRequired = "auth.profile_required"
	KeyAuthForbidden       = "auth.forbidden"
	KeyAdminAccessDenied   = "admin.access_denied"

	// Members
	KeyMemberCreated        = "member.created"
	KeyMemberUpdated        = "member.updated"
	KeyMemberDeleted        = "member.deleted"
	KeyMemberNotFound       = "member.not_found"
	KeyMemberExists         = "member.exists"
	KeyMemberEmailTaken     = "member.email_taken"
	KeyMemberLinkedInFailed = "member.linkedin_failed"

	// Articles
	KeyArticleCreated      = "article.created"
	KeyArticleUpdated      = "article.updated"
	KeyArticleDeleted      = "article.deleted"
	KeyArticlePublished    = "article.published"
	KeyArticleUnpublished  = "article.unpublished"
	KeyArticleNotFound     = "article.not_found"
	KeyArticleRateLimited  = "article.rate_limited"
	KeyArticleInvalidState = "article.invalid_state"

	// Posts
	KeyPostCreated  = "post.created"
	KeyPostUpdated  = "post.updated"
	KeyPostDeleted  = "post.deleted"
	KeyPostNotFound = "post.not_found"

	// Taxonomy
	KeyCategoryNotFound      = "category.not_found"
	KeyServiceNotFound       = "service.not_found"
	KeyMemberServiceNotFound = "member_service.not_found"
	KeyConflict              = "conflict.exists"

	// Membership
	KeyPaymentNotFound  = "payment.not_found"
	KeyMembershipActive = "membership.upgraded"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidKind   = "file.invalid_kind"
	KeyFileNotFound      = "file.not_found"

	// Rate limiting
	KeyRateLimitExceeded = "rate_limit.exceeded"
)
