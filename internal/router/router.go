// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/unetra-global/member-portal-sub000/internal/config"
	"github.com/unetra-global/member-portal-sub000/internal/handlers"
	"github.com/unetra-global/member-portal-sub000/internal/limiter"
	"github.com/unetra-global/member-portal-sub000/internal/middleware"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
	"github.com/unetra-global/member-portal-sub000/internal/services"
	"github.com/unetra-global/member-portal-sub000/internal/tasks"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

// Dependencies are the infrastructure pieces the route table is built on.
type Dependencies struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Limiter  limiter.CreationLimiter
	Tasks    tasks.Dispatcher
	Storage  *services.StorageService
	Payments services.PaymentGateway
	// HealthCheck reports whether the backing store is reachable. Nil means healthy.
	HealthCheck func(ctx context.Context) error
}

func Initialize(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	// Initialize services
	memberService := services.NewMemberService(deps.Repos.Member, deps.Repos.Service)
	articleService := services.NewArticleService(deps.Repos.Article, deps.Limiter, deps.Tasks, cfg.RateLimit.ArticleWindow)
	categoryService := services.NewCategoryService(deps.Repos.Category)
	servicesService := services.NewServicesService(deps.Repos.Service, deps.Repos.Category)
	linkService := services.NewMemberServicesService(deps.Repos.MemberService, deps.Repos.Service)
	postService := services.NewPostService(deps.Repos.Post)
	linkedInService := services.NewLinkedInService(cfg.LinkedIn)
	membershipService := services.NewMembershipService(deps.Repos.Member, deps.Repos.Payment, deps.Payments, cfg.Payment)
	auditService := services.NewAuditService(deps.Repos.AuditLog, deps.Tasks)

	// Initialize handlers
	articleHandler := handlers.NewArticleHandler(articleService)
	memberHandler := handlers.NewMemberHandler(memberService, linkedInService, linkService)
	taxonomyHandler := handlers.NewTaxonomyHandler(categoryService, servicesService)
	postHandler := handlers.NewPostHandler(postService)
	uploadHandler := handlers.NewUploadHandler(deps.Storage)
	membershipHandler := handlers.NewMembershipHandler(membershipService)

	// Identity provider settings
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	utils.SetJWTIssuer(cfg.JWT.Issuer)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.I18nMiddleware())
	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.GeneralRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.RequestBurst))
	}
	r.Use(middleware.AuditLogMiddleware(auditService))

	r.GET("/health", healthHandler(deps.HealthCheck))

	authenticated := middleware.AuthRequired()
	member := middleware.MemberRequired(memberService)
	optional := middleware.OptionalAuth(memberService)
	admin := middleware.AdminRequired()

	v1 := r.Group("/v1")
	{
		v1.GET("/auth/me", authenticated, memberHandler.Me)

		// Article routes; fixed paths are registered before /:id
		articles := v1.Group("/articles")
		{
			articles.GET("", articleHandler.ListArticles)
			articles.GET("/search", articleHandler.SearchArticles)
			articles.GET("/mine", authenticated, member, articleHandler.ListMyArticles)
			articles.GET("/slug/:slug", optional, articleHandler.GetArticleBySlug)
			articles.GET("/:id", optional, articleHandler.GetArticle)

			protected := articles.Group("")
			protected.Use(authenticated, member)
			{
				protected.POST("", articleHandler.CreateArticle)
				protected.PUT("/:id", articleHandler.UpdateArticle)
				protected.POST("/:id/publish", articleHandler.PublishArticle)
				protected.POST("/:id/unpublish", articleHandler.UnpublishArticle)
				protected.DELETE("/:id", articleHandler.DeleteArticle)
				protected.GET("/:id/versions", articleHandler.ListVersions)
				protected.POST("/:id/like", articleHandler.LikeArticle)
				protected.POST("/:id/unlike", articleHandler.UnlikeArticle)
			}
		}

		// Member routes
		members := v1.Group("/members")
		{
			members.GET("", memberHandler.ListMembers)
			members.POST("", authenticated, memberHandler.CreateMember)
			members.POST("/linkedin-import", authenticated, memberHandler.ImportLinkedIn)
			members.PUT("/me", authenticated, member, memberHandler.UpdateMe)
			members.GET("/:id", memberHandler.GetMember)
			members.GET("/:id/services", memberHandler.ListMemberServices)
			members.DELETE("/:id", authenticated, member, admin, memberHandler.DeleteMember)
		}

		memberServices := v1.Group("/member-services")
		memberServices.Use(authenticated, member)
		{
			memberServices.POST("", memberHandler.AddService)
			memberServices.PUT("/:id", memberHandler.UpdateService)
			memberServices.DELETE("/:id", memberHandler.RemoveService)
		}

		// Taxonomy routes; mutations are admin only
		categories := v1.Group("/categories")
		{
			categories.GET("", taxonomyHandler.ListCategories)
			categories.GET("/:id", taxonomyHandler.GetCategory)
			categories.POST("", authenticated, member, admin, taxonomyHandler.CreateCategory)
			categories.PUT("/:id", authenticated, member, admin, taxonomyHandler.UpdateCategory)
			categories.DELETE("/:id", authenticated, member, admin, taxonomyHandler.DeleteCategory)
		}

		serviceRoutes := v1.Group("/services")
		{
			serviceRoutes.GET("", taxonomyHandler.ListServices)
			serviceRoutes.GET("/:id", taxonomyHandler.GetService)
			serviceRoutes.POST("", authenticated, member, admin, taxonomyHandler.CreateService)
			serviceRoutes.PUT("/:id", authenticated, member, admin, taxonomyHandler.UpdateService)
			serviceRoutes.DELETE("/:id", authenticated, member, admin, taxonomyHandler.DeleteService)
		}

		// Post routes
		posts := v1.Group("/posts")
		{
			posts.GET("", postHandler.Feed)
			posts.GET("/:id", postHandler.GetPost)

			protected := posts.Group("")
			protected.Use(authenticated, member)
			{
				protected.POST("", postHandler.CreatePost)
				protected.PUT("/:id", postHandler.ReplacePost)
				protected.DELETE("/:id", postHandler.DeletePost)
				protected.POST("/:id/like", postHandler.LikePost)
				protected.POST("/:id/unlike", postHandler.UnlikePost)
				protected.POST("/:id/repost", postHandler.Repost)
				protected.POST("/:id/unrepost", postHandler.Unrepost)
			}
		}

		v1.POST("/uploads/:kind", authenticated, member, middleware.UploadRateLimit(), uploadHandler.Upload)

		membership := v1.Group("/membership")
		membership.Use(authenticated, member)
		{
			membership.POST("/upgrade", membershipHandler.StartUpgrade)
			membership.POST("/confirm", membershipHandler.ConfirmUpgrade)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" && cfg.AWS.AccessKeyID == "" {
		r.Static("/uploads", "./uploads")
	}

	return r
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logrus.WithError(err).Warn("Health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unhealthy",
					"database": "unreachable",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	}
}
