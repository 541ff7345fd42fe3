package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banterhq/cubby/internal/auth"
	"github.com/banterhq/cubby/internal/events"
	"github.com/banterhq/cubby/internal/redis"
)

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Files *FileHandler
	Users *UserHandler
	Hub   *events.Hub

	TokenService *auth.TokenService
	Redis        *redis.Client
}

// SetupRouter registers all API routes on the Echo instance. Every file and
// user route sits behind the token+session middleware; only health and
// metrics are open.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authMw := auth.Middleware(deps.TokenService, deps.Redis)

	// WebSocket file events
	e.GET("/events", deps.Hub.HandleSocket, authMw)

	protected := e.Group("", authMw)

	// Files
	protected.POST("/files", deps.Files.Upload,
		RateLimitMiddleware(deps.Redis, 20, time.Minute),
	)
	protected.GET("/files/:filename/download", deps.Files.Download)
	protected.GET("/files/:filename/view", deps.Files.View)
	protected.DELETE("/files/:id", deps.Files.Delete)

	// Users
	protected.GET("/users/@me", deps.Users.GetMe)
	protected.DELETE("/users/@me", deps.Users.DeleteMe)
	protected.PUT("/users/@me/avatar", deps.Users.SetAvatar)
	protected.DELETE("/users/@me/avatar", deps.Users.ClearAvatar)
	protected.GET("/users/:id/avatar", deps.Users.GetAvatar)
}
