package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parentlink/backend/internal/apperror"
)

// --- Mock Service ---

// mockAuthService implements AuthService for handler tests.
type mockAuthService struct {
	registerFn       func(ctx context.Context, input RegisterInput) (*User, error)
	loginFn          func(ctx context.Context, input LoginInput) (string, *User, error)
	forgotPasswordFn func(ctx context.Context, email string) error
	verifyTokenFn    func(tokenString string) (*Claims, error)
	currentUserFn    func(ctx context.Context, userID int64) (*User, error)
	updateProfileFn  func(ctx context.Context, userID int64, input UpdateProfileInput) (*User, error)
	saveAvatarFn     func(ctx context.Context, userID int64, upload AvatarUpload) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, input)
	}
	return &User{ID: 1, FullName: input.FullName, Email: input.Email}, nil
}

func (m *mockAuthService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, input)
	}
	return "mock-token", &User{ID: 1, Email: input.Email}, nil
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error {
	if m.forgotPasswordFn != nil {
		return m.forgotPasswordFn(ctx, email)
	}
	return nil
}

func (m *mockAuthService) VerifyToken(tokenString string) (*Claims, error) {
	if m.verifyTokenFn != nil {
		return m.verifyTokenFn(tokenString)
	}
	return nil, apperror.NewUnauthorized("invalid or expired session")
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID int64) (*User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, userID)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, input)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockAuthService) SaveAvatar(ctx context.Context, userID int64, upload AvatarUpload) (string, error) {
	if m.saveAvatarFn != nil {
		return m.saveAvatarFn(ctx, userID, upload)
	}
	return "/uploads/avatars/mock.png", nil
}

// --- Test Helpers ---

const testMaxAvatarSize = 3 * 1024 * 1024

func newTestHandler(service AuthService, allowInsecure bool) *Handler {
	return NewHandler(service, time.Hour, testMaxAvatarSize, allowInsecure)
}

// newJSONContext builds an Echo context for a JSON request.
func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// findCookie returns the named cookie from a recorded response, or nil.
func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// --- Register ---

func TestHandlerRegister_Success(t *testing.T) {
	svc := &mockAuthService{}
	h := newTestHandler(svc, true)

	c, rec := newJSONContext(http.MethodPost, "/api/auth/register",
		`{"fullName":"Ana","email":"ana@x.com","password":"secret123"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandlerRegister_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no full name", `{"email":"ana@x.com","password":"secret123"}`},
		{"no email", `{"fullName":"Ana","password":"secret123"}`},
		{"no password", `{"fullName":"Ana","email":"ana@x.com"}`},
		{"empty body", `{}`},
	}

	called := false
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, input RegisterInput) (*User, error) {
			called = true
			return nil, nil
		},
	}
	h := newTestHandler(svc, true)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newJSONContext(http.MethodPost, "/api/auth/register", tt.body)
			err := h.Register(c)
			assertAppError(t, err, 400)
		})
	}
	if called {
		t.Error("expected service not to be called for incomplete requests")
	}
}

// --- Login ---

func TestHandlerLogin_SetsSessionCookie(t *testing.T) {
	user := &User{ID: 3, FullName: "Ana", Email: "ana@x.com", PasswordHash: "$2a$10$hash"}
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, input LoginInput) (string, *User, error) {
			return "issued-token", user, nil
		},
	}
	h := newTestHandler(svc, false)

	c, rec := newJSONContext(http.MethodPost, "/api/auth/login",
		`{"email":"ana@x.com","password":"secret123"}`)
	// Simulate a TLS-terminating proxy in front of the server.
	c.Request().Header.Set("X-Forwarded-Proto", "https")

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	cookie := findCookie(rec, "token")
	if cookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if cookie.Value != "issued-token" {
		t.Errorf("expected cookie to carry the token, got %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if !cookie.Secure {
		t.Error("expected Secure cookie")
	}
	if cookie.SameSite != http.SameSiteNoneMode {
		t.Errorf("expected SameSite=None, got %v", cookie.SameSite)
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("expected MaxAge 3600, got %d", cookie.MaxAge)
	}

	var body struct {
		Status string `json:"status"`
		Token  string `json:"token"`
		Data   struct {
			Token string          `json:"token"`
			User  json.RawMessage `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != "success" || body.Token != "issued-token" || body.Data.Token != "issued-token" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	// The password hash must never serialize.
	if strings.Contains(string(body.Data.User), "$2a$") {
		t.Error("response body leaked the password hash")
	}
}

func TestHandlerLogin_WrongPassword(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, input LoginInput) (string, *User, error) {
			return "", nil, apperror.NewUnauthorized("incorrect password")
		},
	}
	h := newTestHandler(svc, true)

	c, rec := newJSONContext(http.MethodPost, "/api/auth/login",
		`{"email":"ana@x.com","password":"wrong"}`)

	err := h.Login(c)
	assertAppError(t, err, 401)
	if findCookie(rec, "token") != nil {
		t.Error("expected no session cookie on failed login")
	}
}

func TestHandlerLogin_InsecureChannelRefused(t *testing.T) {
	svc := &mockAuthService{}
	h := newTestHandler(svc, false)

	// Plain HTTP, no forwarding header: issuing the Secure cookie here would
	// be a silent downgrade, so the login must fail outright.
	c, rec := newJSONContext(http.MethodPost, "/api/auth/login",
		`{"email":"ana@x.com","password":"secret123"}`)

	err := h.Login(c)
	assertAppError(t, err, 500)
	if findCookie(rec, "token") != nil {
		t.Error("expected no session cookie over insecure channel")
	}
}

func TestHandlerLogin_InsecureAllowedInDevelopment(t *testing.T) {
	svc := &mockAuthService{}
	h := newTestHandler(svc, true)

	c, rec := newJSONContext(http.MethodPost, "/api/auth/login",
		`{"email":"ana@x.com","password":"secret123"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if findCookie(rec, "token") == nil {
		t.Error("expected session cookie when insecure channel is allowed")
	}
}

// --- Check ---

func TestHandlerCheck_NoToken(t *testing.T) {
	h := newTestHandler(&mockAuthService{}, true)

	c, _ := newJSONContext(http.MethodGet, "/api/auth/check", "")
	err := h.Check(c)
	assertAppError(t, err, 401)
}

func TestHandlerCheck_BearerFallback(t *testing.T) {
	svc := &mockAuthService{
		verifyTokenFn: func(tokenString string) (*Claims, error) {
			if tokenString != "bearer-token" {
				t.Errorf("expected bearer token, got %q", tokenString)
			}
			return &Claims{UserID: 3, Email: "ana@x.com"}, nil
		},
	}
	h := newTestHandler(svc, true)

	c, rec := newJSONContext(http.MethodGet, "/api/auth/check", "")
	c.Request().Header.Set("Authorization", "Bearer bearer-token")

	if err := h.Check(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if !body.Authenticated || body.User.ID != 3 || body.User.Email != "ana@x.com" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

// --- Logout ---

func TestHandlerLogout_ClearsCookie(t *testing.T) {
	h := newTestHandler(&mockAuthService{}, true)

	c, rec := newJSONContext(http.MethodPost, "/api/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cookie := findCookie(rec, "token")
	if cookie == nil {
		t.Fatal("expected clearing cookie to be set")
	}
	if cookie.Value != "" {
		t.Errorf("expected empty cookie value, got %q", cookie.Value)
	}
	if cookie.MaxAge >= 0 {
		t.Errorf("expected negative MaxAge to expire the cookie, got %d", cookie.MaxAge)
	}
}

// Logout without any session is still a success: clearing an absent cookie
// is a no-op, not an error.
func TestHandlerLogout_Idempotent(t *testing.T) {
	h := newTestHandler(&mockAuthService{}, true)

	for i := 0; i < 2; i++ {
		c, rec := newJSONContext(http.MethodPost, "/api/auth/logout", "")
		if err := h.Logout(c); err != nil {
			t.Fatalf("unexpected error on attempt %d: %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 on attempt %d, got %d", i+1, rec.Code)
		}
	}
}

// --- UploadAvatar ---

// newMultipartContext builds an Echo context with a multipart "avatar" field.
func newMultipartContext(t *testing.T, data []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("avatar", "avatar.png")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/upload-avatar", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandlerUploadAvatar_Success(t *testing.T) {
	var captured AvatarUpload
	svc := &mockAuthService{
		saveAvatarFn: func(ctx context.Context, userID int64, upload AvatarUpload) (string, error) {
			captured = upload
			return "/uploads/avatars/abc.png", nil
		},
	}
	h := newTestHandler(svc, true)

	c, rec := newMultipartContext(t, pngBytes)
	if err := h.UploadAvatar(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !bytes.Equal(captured.Data, pngBytes) {
		t.Error("expected uploaded bytes to reach the service")
	}
	if !strings.Contains(rec.Body.String(), "/uploads/avatars/abc.png") {
		t.Errorf("expected path in response, got %s", rec.Body.String())
	}
}

func TestHandlerUploadAvatar_TooLarge(t *testing.T) {
	called := false
	svc := &mockAuthService{
		saveAvatarFn: func(ctx context.Context, userID int64, upload AvatarUpload) (string, error) {
			called = true
			return "", nil
		},
	}
	h := newTestHandler(svc, true)

	c, _ := newMultipartContext(t, make([]byte, testMaxAvatarSize+1))
	err := h.UploadAvatar(c)
	assertAppError(t, err, 413)
	if called {
		t.Error("expected oversized upload to be rejected before the service")
	}
}

func TestHandlerUploadAvatar_MissingFile(t *testing.T) {
	h := newTestHandler(&mockAuthService{}, true)

	c, _ := newJSONContext(http.MethodPost, "/api/auth/upload-avatar", "{}")
	err := h.UploadAvatar(c)
	assertAppError(t, err, 400)
}

// --- RequireAuth middleware ---

func TestRequireAuth_NoToken(t *testing.T) {
	mw := RequireAuth(&mockAuthService{})

	c, _ := newJSONContext(http.MethodGet, "/api/auth/me", "")
	err := mw(func(c echo.Context) error { return nil })(c)
	assertAppError(t, err, 401)
}

func TestRequireAuth_InjectsIdentity(t *testing.T) {
	svc := &mockAuthService{
		verifyTokenFn: func(tokenString string) (*Claims, error) {
			return &Claims{UserID: 7, Email: "ana@x.com"}, nil
		},
	}
	mw := RequireAuth(svc)

	c, _ := newJSONContext(http.MethodGet, "/api/auth/me", "")
	c.Request().AddCookie(&http.Cookie{Name: "token", Value: "some-token"})

	var seenID int64
	err := mw(func(c echo.Context) error {
		seenID = GetUserID(c)
		if GetClaims(c) == nil {
			t.Error("expected claims in context")
		}
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seenID != 7 {
		t.Errorf("expected user id 7 in context, got %d", seenID)
	}
}

// --- Session flow ---

// memoryUserRepo is an in-memory UserRepository backing the flow test.
type memoryUserRepo struct {
	nextID int64
	users  map[int64]*User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[int64]*User)}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperror.NewConflict("email already registered")
		}
	}
	r.nextID++
	user.ID = r.nextID
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NewNotFound("user not found")
	}
	clone := *u
	return &clone, nil
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("email not found")
}

func (r *memoryUserRepo) Update(ctx context.Context, id int64, fields UpdateFields) error {
	u, ok := r.users[id]
	if !ok {
		return apperror.NewNotFound("user not found")
	}
	if fields.FullName != nil {
		u.FullName = *fields.FullName
	}
	if fields.Email != nil {
		u.Email = *fields.Email
	}
	return nil
}

func (r *memoryUserRepo) UpdateAvatar(ctx context.Context, id int64, avatarPath string) error {
	u, ok := r.users[id]
	if !ok {
		return apperror.NewNotFound("user not found")
	}
	u.AvatarPath = &avatarPath
	return nil
}

// TestSessionFlow walks the full lifecycle with a real service over an
// in-memory store: register, login, fetch the profile with the cookie,
// log out, and confirm the profile is unreachable without the cookie.
func TestSessionFlow(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewAuthService(repo, nil, []byte("flow-test-secret"), time.Hour, t.TempDir())
	h := newTestHandler(svc, true)
	requireAuth := RequireAuth(svc)
	me := requireAuth(h.Me)

	// Register.
	c, rec := newJSONContext(http.MethodPost, "/api/auth/register",
		`{"fullName":"Ana","email":"ana@x.com","password":"secret123"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}

	// Login and capture the session cookie.
	c, rec = newJSONContext(http.MethodPost, "/api/auth/login",
		`{"email":"ana@x.com","password":"secret123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	cookie := findCookie(rec, "token")
	if cookie == nil {
		t.Fatal("login: expected session cookie")
	}

	// Fetch the profile with the cookie.
	c, rec = newJSONContext(http.MethodGet, "/api/auth/me", "")
	c.Request().AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	if err := me(c); err != nil {
		t.Fatalf("me: %v", err)
	}
	var profile User
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("me: decoding body: %v", err)
	}
	if profile.Email != "ana@x.com" || profile.FullName != "Ana" {
		t.Errorf("me: unexpected profile: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "passwordHash") {
		t.Error("me: response leaked the password hash")
	}

	// Logout clears the cookie client-side.
	c, rec = newJSONContext(http.MethodPost, "/api/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	cleared := findCookie(rec, "token")
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatal("logout: expected expiring cookie")
	}

	// Without the cookie the profile is unreachable.
	c, _ = newJSONContext(http.MethodGet, "/api/auth/me", "")
	err := me(c)
	assertAppError(t, err, 401)

	// The old token itself is still valid until expiry: logout only removed
	// the cookie, it cannot revoke an already-issued stateless token.
	c, _ = newJSONContext(http.MethodGet, "/api/auth/me", "")
	c.Request().AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	if err := me(c); err != nil {
		t.Fatalf("me after logout with retained token: %v", err)
	}
}
