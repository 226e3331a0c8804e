package forum

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/parentlink/backend/internal/apperror"
	"github.com/parentlink/backend/internal/auth"
)

// Handler handles HTTP requests for forum posts.
type Handler struct {
	service PostService
}

// NewHandler creates a new forum handler.
func NewHandler(service PostService) *Handler {
	return &Handler{service: service}
}

// List returns recent posts (GET /api/forum/posts).
func (h *Handler) List(c echo.Context) error {
	posts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []Post{}
	}
	return c.JSON(http.StatusOK, posts)
}

// Get returns a single post (GET /api/forum/posts/:id).
func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.NewBadRequest("invalid post id")
	}

	post, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Create adds a new post for the authenticated user (POST /api/forum/posts).
func (h *Handler) Create(c echo.Context) error {
	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	post, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}
