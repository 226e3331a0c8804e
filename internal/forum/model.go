// Package forum implements the community forum: short posts other parents
// can read. Plain CRUD — the interesting logic (sessions, identity) lives
// in the auth package; posts only record who wrote what.
package forum

import "time"

// Post is a single forum post.
type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreatePostRequest holds the data submitted when creating a post.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
