package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/parentlink/backend/internal/apperror"
)

// resetKeyPrefix is the Redis key prefix for simulated password-reset tokens.
const resetKeyPrefix = "pwreset:"

// resetTokenBytes is the number of random bytes in a reset token.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
const resetTokenBytes = 32

// resetTokenTTL is how long a password-reset token stays redeemable.
const resetTokenTTL = time.Hour

// AuthService defines the business logic contract for authentication.
// Handlers call these methods — they never touch the repository directly.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (token string, user *User, err error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyToken(tokenString string) (*Claims, error)
	CurrentUser(ctx context.Context, userID int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*User, error)
	SaveAvatar(ctx context.Context, userID int64, upload AvatarUpload) (string, error)
}

// authService implements AuthService with bcrypt hashing and signed
// stateless session tokens. The signing secret is fixed at construction
// and never mutated, so concurrent requests need no locking around it.
type authService struct {
	repo      UserRepository
	redis     *redis.Client
	secret    []byte
	tokenTTL  time.Duration
	uploadDir string
}

// NewAuthService creates a new auth service with the given dependencies.
// uploadDir is the public uploads root; avatars land in uploadDir/avatars.
func NewAuthService(repo UserRepository, rdb *redis.Client, secret []byte, tokenTTL time.Duration, uploadDir string) AuthService {
	return &authService{
		repo:      repo,
		redis:     rdb,
		secret:    secret,
		tokenTTL:  tokenTTL,
		uploadDir: uploadDir,
	}
}

// Register creates a new user account. The FindByEmail pre-check gives a
// friendly conflict without paying for a bcrypt hash; the unique index on
// users.email (surfaced by the repository as a conflict) remains the final
// arbiter when two registrations race past the pre-check.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	_, err := s.repo.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperror.NewConflict("email already registered")
	}
	if !isNotFound(err) {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := &User{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates a user by email and password. On success it issues a
// signed session token for the cookie. The hash comparison always happens
// server-side — client-supplied equality is never trusted.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if isNotFound(err) {
			return "", nil, apperror.NewNotFound("email not found")
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !verifyPassword(input.Password, user.PasswordHash) {
		return "", nil, apperror.NewUnauthorized("incorrect password")
	}

	token, err := issueToken(user, s.secret, s.tokenTTL)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("issuing session token: %w", err))
	}

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return token, user, nil
}

// ForgotPassword records a simulated password-reset token for the user.
// The token is stored SHA-256-hashed in Redis with a 1 hour TTL and the
// reset link is only logged — actual delivery is out of scope, and the
// caller never receives the token.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return apperror.NewNotFound("email not found")
		}
		return apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	token, err := generateResetToken()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("generating reset token: %w", err))
	}

	// Store the hash, never the plaintext token: a Redis dump must not be
	// enough to take over accounts.
	key := resetKeyPrefix + hashToken(token)
	if err := s.redis.Set(ctx, key, user.ID, resetTokenTTL).Err(); err != nil {
		return apperror.NewInternal(fmt.Errorf("storing reset token: %w", err))
	}

	slog.Info("password reset link (simulated)",
		slog.Int64("user_id", user.ID),
		slog.String("link", "/reset-password/"+token),
	)

	return nil
}

// VerifyToken validates a session token and returns its claims. All token
// failures map to 401 — the caller cannot distinguish a forged token from
// an expired one.
func (s *authService) VerifyToken(tokenString string) (*Claims, error) {
	claims, err := parseToken(tokenString, s.secret)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired session")
	}
	return claims, nil
}

// CurrentUser loads the profile for an authenticated user. A valid token
// whose user row has vanished yields 404, not 401 — the session was real,
// the record is gone.
func (s *authService) CurrentUser(ctx context.Context, userID int64) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NewNotFound("user not found")
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}
	return user, nil
}

// UpdateProfile applies a partial update to the authenticated user's profile
// and returns the refreshed record.
func (s *authService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*User, error) {
	if input.FullName == nil && input.Email == nil {
		return nil, apperror.NewBadRequest("no updatable fields provided")
	}
	if input.FullName != nil && strings.TrimSpace(*input.FullName) == "" {
		return nil, apperror.NewBadRequest("fullName must not be empty")
	}
	if input.Email != nil && strings.TrimSpace(*input.Email) == "" {
		return nil, apperror.NewBadRequest("email must not be empty")
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if isNotFound(err) {
			return nil, apperror.NewNotFound("user not found")
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	fields := UpdateFields{FullName: input.FullName, Email: input.Email}
	if err := s.repo.Update(ctx, userID, fields); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("updating user: %w", err))
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reloading user: %w", err))
	}

	slog.Info("profile updated", slog.Int64("user_id", user.ID))

	return user, nil
}

// SaveAvatar validates and stores an uploaded avatar, then records its
// public path on the user. The handler has already enforced the size cap;
// this method owns content-type validation and the file write. On a store
// failure the file is removed again so no orphan bytes outlive the request.
func (s *authService) SaveAvatar(ctx context.Context, userID int64, upload AvatarUpload) (string, error) {
	mtype := mimetype.Detect(upload.Data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", apperror.NewUnsupportedMedia("avatar must be an image")
	}

	dir := filepath.Join(s.uploadDir, "avatars")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperror.NewInternal(fmt.Errorf("creating avatar directory: %w", err))
	}

	// Store-assigned name: never trust the client's filename on disk.
	filename := uuid.NewString() + mtype.Extension()
	fullPath := filepath.Join(dir, filename)
	if err := os.WriteFile(fullPath, upload.Data, 0o644); err != nil {
		return "", apperror.NewInternal(fmt.Errorf("writing avatar file: %w", err))
	}

	publicPath := "/uploads/avatars/" + filename
	if err := s.repo.UpdateAvatar(ctx, userID, publicPath); err != nil {
		os.Remove(fullPath)
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return "", appErr
		}
		return "", apperror.NewInternal(fmt.Errorf("saving avatar path: %w", err))
	}

	slog.Info("avatar uploaded",
		slog.Int64("user_id", userID),
		slog.String("path", publicPath),
		slog.String("original_name", upload.Filename),
		slog.Int("size", len(upload.Data)),
	)

	return publicPath, nil
}

// --- Helpers ---

// generateResetToken creates a cryptographically random hex-encoded token.
func generateResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashToken returns the SHA-256 hex digest of a token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// isNotFound checks if an error is an apperror with a 404 code.
func isNotFound(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == 404
}
