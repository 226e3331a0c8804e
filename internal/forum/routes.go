package forum

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up forum routes on the given group (mounted at
// /api/forum). Reads are public; writes require a session.
func RegisterRoutes(g *echo.Group, h *Handler, requireAuth echo.MiddlewareFunc) {
	g.GET("/posts", h.List)
	g.GET("/posts/:id", h.Get)
	g.POST("/posts", h.Create, requireAuth)
}
