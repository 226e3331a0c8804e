// Package auth handles user accounts, credential verification, and session
// issuance for the ParentLink backend. Sessions are stateless signed tokens
// carried in an HTTP-only cookie (or an Authorization bearer header for
// non-browser clients) — there is no server-side session table, so logging
// out only removes the cookie and cannot invalidate a still-unexpired token.
package auth

import "time"

// User represents a registered ParentLink user. This is the domain model
// used throughout the application. Database scanning and JSON marshaling
// use this struct directly.
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON responses.
	AvatarPath   *string   `json:"avatarPath,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the data submitted by the registration form.
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest holds the data submitted by the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest holds the email to send a reset link to.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// UpdateProfileRequest holds the partial profile fields for PUT /api/auth/me.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the validated input for creating a new user.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// LoginInput is the validated input for authenticating a user.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput is the validated partial update for a user profile.
type UpdateProfileInput struct {
	FullName *string
	Email    *string
}

// AvatarUpload carries a fully read avatar payload from handler to service.
// The handler enforces the size cap before reading; the service validates
// the content type and owns the file write.
type AvatarUpload struct {
	Filename string
	Data     []byte
}
