package match

import (
	"context"
	"database/sql"
	"fmt"
)

// ProfileRepository defines the data access contract for match profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error

	// List returns profiles, optionally filtered by exact region match.
	// An empty region returns all profiles.
	List(ctx context.Context, region string, limit int) ([]Profile, error)
}

// profileRepository implements ProfileRepository with hand-written MySQL queries.
type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository backed by the given DB pool.
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create inserts a new profile row and fills in the store-assigned ID.
func (r *profileRepository) Create(ctx context.Context, profile *Profile) error {
	query := `INSERT INTO match_profiles (user_id, region, child_age_months, bio)
	          VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		profile.UserID,
		profile.Region,
		profile.ChildAgeMonths,
		profile.Bio,
	)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted profile id: %w", err)
	}
	profile.ID = id

	return nil
}

// List returns profiles newest first, equality-filtered by region when set.
func (r *profileRepository) List(ctx context.Context, region string, limit int) ([]Profile, error) {
	query := `SELECT id, user_id, region, child_age_months, bio, created_at
	          FROM match_profiles`
	args := []any{}

	if region != "" {
		query += ` WHERE region = ?`
		args = append(args, region)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Region, &p.ChildAgeMonths, &p.Bio, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}
