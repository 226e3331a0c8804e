package match

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up parent-match routes on the given group (mounted at
// /api/parentmatch). Browsing is public; publishing requires a session.
func RegisterRoutes(g *echo.Group, h *Handler, requireAuth echo.MiddlewareFunc) {
	g.GET("", h.List)
	g.POST("", h.Create, requireAuth)
}
