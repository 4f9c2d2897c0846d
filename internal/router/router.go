package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quizgenai/quizgen-backend/internal/config"
	"github.com/quizgenai/quizgen-backend/internal/handler"
	"github.com/quizgenai/quizgen-backend/internal/middleware"
	"github.com/quizgenai/quizgen-backend/internal/response"
	"github.com/quizgenai/quizgen-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth  *handler.AuthHandler
	Draft *handler.DraftHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// The session cookie needs credentialed CORS, and credentialed CORS
	// forbids the wildcard origin, so the dev fallback is the frontend URL
	// rather than "*".
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Resolve the session cookie on every request; anonymous is fine.
	router.Use(middleware.AttachIdentity(authService))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.GET("/google/login", handlers.Auth.Login)
		auth.GET("/google/callback", handlers.Auth.Callback)
		auth.POST("/logout", handlers.Auth.Logout)
		auth.GET("/me", handlers.Auth.Me)
	}

	// Rate limiter for the endpoints that call paid external APIs.
	callLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	// ─── 2. Draft Group ────────────────────────────────────────────────
	drafts := router.Group("/api/v1/drafts")
	{
		drafts.POST("", handlers.Draft.Create)
		drafts.GET("/:id", handlers.Draft.Get)
		drafts.DELETE("/:id", handlers.Draft.Discard)
		drafts.POST("/:id/reset", handlers.Draft.Reset)

		// Intake step
		drafts.POST("/:id/files", handlers.Draft.UploadFiles)
		drafts.DELETE("/:id/files/:name", handlers.Draft.RemoveFile)
		drafts.POST("/:id/generate", callLimiter.Middleware(), handlers.Draft.Generate)

		// Editing step
		drafts.PATCH("/:id/title", handlers.Draft.SetTitle)
		drafts.POST("/:id/questions", handlers.Draft.AddQuestion)
		drafts.DELETE("/:id/questions", handlers.Draft.ClearQuestions)
		drafts.PATCH("/:id/questions/:qi", handlers.Draft.SetQuestionText)
		drafts.DELETE("/:id/questions/:qi", handlers.Draft.RemoveQuestion)
		drafts.PATCH("/:id/questions/:qi/options/:oi", handlers.Draft.SetOptionText)
		drafts.POST("/:id/questions/:qi/correct", handlers.Draft.MarkCorrect)
		drafts.POST("/:id/reorder", handlers.Draft.Reorder)

		// Publish step
		drafts.POST("/:id/publish", callLimiter.Middleware(), handlers.Draft.Publish)
	}

	return router
}
