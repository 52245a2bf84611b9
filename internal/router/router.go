package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/prepiq/quiz-backend/internal/config"
	"github.com/prepiq/quiz-backend/internal/handler"
	"github.com/prepiq/quiz-backend/internal/middleware"
	"github.com/prepiq/quiz-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Result  *handler.ResultHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for session creation (30 per minute per IP).
	startLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Session Group ──────────────────────────────────────────────
	sessions := router.Group("/api/v1/sessions")
	{
		sessions.POST("", startLimiter.Middleware(), handlers.Session.StartSession)
		sessions.GET("/:session_id", handlers.Session.GetState)
		sessions.GET("/:session_id/questions/:index", handlers.Session.GetQuestion)
		sessions.POST("/:session_id/answers", handlers.Session.SelectAnswer)
		sessions.POST("/:session_id/review", handlers.Session.MarkForReview)
		sessions.POST("/:session_id/bookmarks", handlers.Session.ToggleBookmark)
		sessions.POST("/:session_id/position", handlers.Session.Navigate)
		sessions.POST("/:session_id/next", handlers.Session.Next)
		sessions.POST("/:session_id/previous", handlers.Session.Previous)
		sessions.POST("/:session_id/submit", handlers.Session.Submit)
		sessions.GET("/:session_id/result", handlers.Result.GetSessionResult)
	}

	// ─── 2. Results Group ──────────────────────────────────────────────
	results := router.Group("/api/v1/results")
	{
		results.GET("", handlers.Result.ListResults)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/sessions/:session_id/timer", handlers.WS.TimerStream)
	}

	return router
}
