package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/parentlink/backend/internal/apperror"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
// The unique index on users.email is the real duplicate-email arbiter: two
// concurrent registrations can both pass the FindByEmail pre-check, and the
// loser of the race is caught here, not there.
const mysqlDuplicateEntry = 1062

// UpdateFields holds the mutable profile columns for a partial update.
// Nil fields are left untouched.
type UpdateFields struct {
	FullName *string
	Email    *string
}

// UserRepository defines the data access contract for user records.
// All SQL lives in the concrete implementation — no SQL leaks out.
type UserRepository interface {
	// Create inserts a new user and fills in the store-assigned ID.
	// Returns a conflict error if the email is already registered.
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id int64, fields UpdateFields) error
	UpdateAvatar(ctx context.Context, id int64, avatarPath string) error
}

// userRepository implements UserRepository with hand-written MySQL queries.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// userColumns is the SELECT column list for user queries.
const userColumns = `id, full_name, email, password_hash, avatar_path, created_at`

// Create inserts a new user row. The ID is assigned by the store
// (AUTO_INCREMENT) and written back to the struct.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (full_name, email, password_hash) VALUES (?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, user.FullName, user.Email, user.PasswordHash)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperror.NewConflict("email already registered")
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted user id: %w", err)
	}
	user.ID = id

	return nil
}

// FindByID retrieves a user by ID.
// Returns apperror.NotFound if no user exists with this ID.
func (r *userRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarPath,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}

	return user, nil
}

// FindByEmail retrieves a user by email address. The email column uses a
// binary collation, so the comparison is case-sensitive.
// Returns apperror.NotFound if no user exists with this email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarPath,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("email not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	return user, nil
}

// Update applies a partial update to a user row. Only non-nil fields are
// written. Returns apperror.NotFound if the row does not exist and a
// conflict error if the new email collides with another account.
func (r *userRepository) Update(ctx context.Context, id int64, fields UpdateFields) error {
	var sets []string
	var args []any

	if fields.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *fields.FullName)
	}
	if fields.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *fields.Email)
	}
	if len(sets) == 0 {
		return nil
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperror.NewConflict("email already registered")
		}
		return fmt.Errorf("updating user: %w", err)
	}

	return nil
}

// UpdateAvatar sets the avatar path for a user.
func (r *userRepository) UpdateAvatar(ctx context.Context, id int64, avatarPath string) error {
	query := `UPDATE users SET avatar_path = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, avatarPath, id)
	if err != nil {
		return fmt.Errorf("updating avatar path: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}

	return nil
}

// isDuplicateEntry reports whether err is a MySQL unique key violation.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
