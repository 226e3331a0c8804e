package forum

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/parentlink/backend/internal/apperror"
)

// PostRepository defines the data access contract for forum posts.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	FindByID(ctx context.Context, id int64) (*Post, error)
	List(ctx context.Context, limit int) ([]Post, error)
}

// postRepository implements PostRepository with hand-written MySQL queries.
type postRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new post repository backed by the given DB pool.
func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post row and fills in the store-assigned ID.
func (r *postRepository) Create(ctx context.Context, post *Post) error {
	query := `INSERT INTO forum_posts (user_id, title, content) VALUES (?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, post.UserID, post.Title, post.Content)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted post id: %w", err)
	}
	post.ID = id

	return nil
}

// FindByID retrieves a post by ID.
// Returns apperror.NotFound if no post exists with this ID.
func (r *postRepository) FindByID(ctx context.Context, id int64) (*Post, error) {
	query := `SELECT id, user_id, title, content, created_at FROM forum_posts WHERE id = ?`

	post := &Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.UserID,
		&post.Title,
		&post.Content,
		&post.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying post by id: %w", err)
	}

	return post, nil
}

// List returns the most recent posts, newest first.
func (r *postRepository) List(ctx context.Context, limit int) ([]Post, error) {
	query := `SELECT id, user_id, title, content, created_at
	          FROM forum_posts ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning post row: %w", err)
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}
