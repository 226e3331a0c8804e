package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parentlink/backend/internal/auth"
	"github.com/parentlink/backend/internal/forum"
	"github.com/parentlink/backend/internal/match"
)

// RegisterRoutes constructs each feature package's repository, service, and
// handler from the shared dependencies, and mounts its routes. This is the
// single place where all routes are aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check endpoint for container health monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Uploaded avatars are served from the public uploads root.
	e.Static("/uploads", a.Config.Upload.PublicPath)

	// --- Auth ---
	authRepo := auth.NewUserRepository(a.DB)
	authService := auth.NewAuthService(
		authRepo,
		a.Redis,
		[]byte(a.Config.Auth.SecretKey),
		a.Config.Auth.TokenTTL,
		a.Config.Upload.PublicPath,
	)
	authHandler := auth.NewHandler(
		authService,
		a.Config.Auth.TokenTTL,
		a.Config.Upload.MaxAvatarSize,
		a.Config.IsDevelopment(),
	)
	auth.RegisterRoutes(e.Group("/api/auth"), authHandler, authService)

	requireAuth := auth.RequireAuth(authService)

	// --- Forum ---
	forumHandler := forum.NewHandler(forum.NewPostService(forum.NewPostRepository(a.DB)))
	forum.RegisterRoutes(e.Group("/api/forum"), forumHandler, requireAuth)

	// --- Parent matching ---
	matchHandler := match.NewHandler(match.NewProfileService(match.NewProfileRepository(a.DB)))
	match.RegisterRoutes(e.Group("/api/parentmatch"), matchHandler, requireAuth)
}
