package auth

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parentlink/backend/internal/apperror"
)

// sessionCookieName is the HTTP cookie used to carry the session token.
const sessionCookieName = "token"

// Handler handles HTTP requests for authentication and profile management.
// Handlers are thin: they bind the request, call the service, and render
// the response. No business logic lives here.
type Handler struct {
	service AuthService

	tokenTTL      time.Duration
	maxAvatarSize int64

	// allowInsecure permits issuing the session cookie over plain HTTP.
	// Only ever true in development: the cookie is Secure + SameSite=None,
	// so in production a login on an unencrypted connection is refused
	// outright instead of silently issuing a cookie the browser will
	// (rightly) never send back.
	allowInsecure bool
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService, tokenTTL time.Duration, maxAvatarSize int64, allowInsecure bool) *Handler {
	return &Handler{
		service:       service,
		tokenTTL:      tokenTTL,
		maxAvatarSize: maxAvatarSize,
		allowInsecure: allowInsecure,
	}
}

// loginResponse mirrors the body shape the frontend already consumes.
type loginResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Token   string    `json:"token"`
	Data    loginData `json:"data"`
}

type loginData struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Register creates a new account (POST /api/auth/register).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	if req.FullName == "" || req.Email == "" || req.Password == "" {
		return apperror.NewBadRequest("fullName, email and password are required")
	}

	input := RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	}

	if _, err := h.service.Register(c.Request().Context(), input); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"status":  "success",
		"message": "registration successful",
	})
}

// Login verifies credentials and issues a session (POST /api/auth/login).
// The cookie is set on the same response that carries the token — session
// state changes are never deferred to a later response.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return apperror.NewBadRequest("email and password are required")
	}

	token, user, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	// Fail closed: without an encrypted channel the Secure cookie would be
	// a silent downgrade, so refuse to establish the session at all.
	if !h.allowInsecure && !secureChannel(c.Request()) {
		return apperror.NewInternal(errors.New("refusing to issue session cookie over insecure channel"))
	}

	setSessionCookie(c, token, h.tokenTTL)

	return c.JSON(http.StatusOK, loginResponse{
		Status:  "success",
		Message: "login successful",
		Token:   token,
		Data:    loginData{User: user, Token: token},
	})
}

// ForgotPassword records a simulated reset link (POST /api/auth/forgot-password).
// The response never includes the token.
func (h *Handler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if req.Email == "" {
		return apperror.NewBadRequest("email is required")
	}

	if err := h.service.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "reset link sent (simulated)",
	})
}

// Check reports whether the request carries a valid session (GET /api/auth/check).
func (h *Handler) Check(c echo.Context) error {
	token := tokenFromRequest(c)
	if token == "" {
		return apperror.NewUnauthorized("authentication required")
	}

	claims, err := h.service.VerifyToken(token)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":    claims.UserID,
			"email": claims.Email,
		},
	})
}

// Me returns the authenticated user's profile (GET /api/auth/me).
func (h *Handler) Me(c echo.Context) error {
	user, err := h.service.CurrentUser(c.Request().Context(), GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe applies a partial profile update (PUT /api/auth/me).
func (h *Handler) UpdateMe(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), GetUserID(c), UpdateProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie (POST /api/auth/logout). Tokens are
// stateless, so this cannot invalidate a copy of the token elsewhere —
// it only removes the cookie that carries it. Idempotent.
func (h *Handler) Logout(c echo.Context) error {
	clearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "logged out",
	})
}

// UploadAvatar stores a new avatar image (POST /api/auth/upload-avatar).
// The multipart field is "avatar"; payloads over the configured cap are
// rejected before the stream is read in full, bounding memory use.
func (h *Handler) UploadAvatar(c echo.Context) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return apperror.NewBadRequest("avatar file is required")
	}

	if file.Size > h.maxAvatarSize {
		return apperror.NewPayloadTooLarge("avatar exceeds the maximum size")
	}

	src, err := file.Open()
	if err != nil {
		return apperror.NewInternal(err)
	}
	defer src.Close()

	// The declared size is client-controlled; cap the actual read too.
	data, err := io.ReadAll(io.LimitReader(src, h.maxAvatarSize+1))
	if err != nil {
		// A disconnect mid-upload lands here; nothing was written yet.
		return apperror.NewInternal(err)
	}
	if int64(len(data)) > h.maxAvatarSize {
		return apperror.NewPayloadTooLarge("avatar exceeds the maximum size")
	}

	path, err := h.service.SaveAvatar(c.Request().Context(), GetUserID(c), AvatarUpload{
		Filename: file.Filename,
		Data:     data,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"path": path})
}

// --- Cookie helpers ---

// setSessionCookie sets the session cookie on the response. HttpOnly keeps
// scripts away from the token; Secure + SameSite=None lets the cross-origin
// frontend send it on credentialed requests.
func setSessionCookie(c echo.Context, token string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// clearSessionCookie removes the session cookie by setting MaxAge to -1.
func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   -1,
	})
}

// secureChannel reports whether the request arrived over TLS, directly or
// via a TLS-terminating reverse proxy.
func secureChannel(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
