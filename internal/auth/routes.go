package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all auth routes on the given group (mounted at
// /api/auth). The paths and methods here are the contract the frontend
// depends on.
func RegisterRoutes(g *echo.Group, h *Handler, service AuthService) {
	// Public routes — no session required.
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/forgot-password", h.ForgotPassword)
	g.GET("/check", h.Check)
	g.POST("/logout", h.Logout)

	// Routes below require a valid session.
	authed := RequireAuth(service)
	g.GET("/me", h.Me, authed)
	g.PUT("/me", h.UpdateMe, authed)
	g.POST("/upload-avatar", h.UploadAvatar, authed)
}
