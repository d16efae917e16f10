package api

import (
	"filekeep/internal/server/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupRouter creates and configures the echo router with all routes and
// middleware. The returned limiter should be stopped on shutdown.
func SetupRouter(handler *Handler, cfg *config.Config) (*echo.Echo, *RateLimiter) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization", TokenHeader},
	}))
	e.Use(RequestLogger())

	requireUser := RequireUser(handler.identity)
	optionalUser := OptionalUser(handler.identity)

	// Rate limiter on upload endpoint only
	uploadLimiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Service
	e.GET("/status", handler.HandleStatus)
	e.GET("/stats", handler.HandleStats)

	// Identity
	e.GET("/connect", handler.HandleConnect)
	e.GET("/disconnect", handler.HandleDisconnect, requireUser)

	// Users
	e.POST("/users", handler.HandleRegister)
	e.GET("/users/me", handler.HandleMe, requireUser)

	// Files
	files := e.Group("/files")
	files.POST("", handler.HandleCreateFile,
		uploadLimiter.Middleware(),
		middleware.BodyLimit(cfg.MaxUploadSize),
		requireUser,
	)
	files.GET("", handler.HandleListFiles, requireUser)
	files.GET("/:id", handler.HandleShowFile, requireUser)
	files.PUT("/:id/publish", handler.HandlePublish, requireUser)
	files.PUT("/:id/unpublish", handler.HandleUnpublish, requireUser)
	files.GET("/:id/data", handler.HandleFileContent, optionalUser)

	return e, uploadLimiter
}
