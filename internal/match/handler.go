package match

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parentlink/backend/internal/apperror"
	"github.com/parentlink/backend/internal/auth"
)

// Handler handles HTTP requests for parent matching.
type Handler struct {
	service ProfileService
}

// NewHandler creates a new match handler.
func NewHandler(service ProfileService) *Handler {
	return &Handler{service: service}
}

// List returns match profiles, filtered by ?region= when given
// (GET /api/parentmatch).
func (h *Handler) List(c echo.Context) error {
	profiles, err := h.service.List(c.Request().Context(), c.QueryParam("region"))
	if err != nil {
		return err
	}
	if profiles == nil {
		profiles = []Profile{}
	}
	return c.JSON(http.StatusOK, profiles)
}

// Create publishes a profile for the authenticated user (POST /api/parentmatch).
func (h *Handler) Create(c echo.Context) error {
	var req CreateProfileRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	profile, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, profile)
}
