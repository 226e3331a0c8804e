package forum

import (
	"context"
	"strings"

	"github.com/parentlink/backend/internal/apperror"
	"github.com/parentlink/backend/internal/sanitize"
)

// defaultListLimit caps how many posts a single listing returns.
const defaultListLimit = 50

// PostService defines the business logic contract for forum posts.
type PostService interface {
	Create(ctx context.Context, userID int64, req CreatePostRequest) (*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	List(ctx context.Context) ([]Post, error)
}

// postService implements PostService.
type postService struct {
	repo PostRepository
}

// NewPostService creates a new post service.
func NewPostService(repo PostRepository) PostService {
	return &postService{repo: repo}
}

// Create validates, sanitizes, and persists a new post. Content is run
// through the UGC sanitizer before it ever reaches the database.
func (s *postService) Create(ctx context.Context, userID int64, req CreatePostRequest) (*Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.NewBadRequest("title is required")
	}
	if len(title) > 200 {
		return nil, apperror.NewBadRequest("title must be 200 characters or less")
	}

	content := sanitize.HTML(strings.TrimSpace(req.Content))
	if content == "" {
		return nil, apperror.NewBadRequest("content is required")
	}

	post := &Post{
		UserID:  userID,
		Title:   title,
		Content: content,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, apperror.NewInternal(err)
	}

	return s.repo.FindByID(ctx, post.ID)
}

// GetByID retrieves a post by ID.
func (s *postService) GetByID(ctx context.Context, id int64) (*Post, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns the most recent posts.
func (s *postService) List(ctx context.Context) ([]Post, error) {
	posts, err := s.repo.List(ctx, defaultListLimit)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return posts, nil
}
