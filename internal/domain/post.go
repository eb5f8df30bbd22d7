package domain

import (
	"context"
	"time"
)

type PostStatus string

const (
	PostPending  PostStatus = "pending"
	PostApproved PostStatus = "approved"
)

type Post struct {
	ID         int        `json:"id" gorm:"primaryKey"`
	AuthorID   int        `json:"author_id" gorm:"not null;index"`
	Title      string     `json:"title" gorm:"size:200;not null"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	Tags       []string   `json:"tags" gorm:"type:text;serializer:json"`
	Status     PostStatus `json:"status" gorm:"size:20;not null;default:pending;index"`
	ApprovedBy *int       `json:"approved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (p *Post) IsApproved() bool { return p.Status == PostApproved }

type PostRepository interface {
	CreatePost(ctx context.Context, post *Post) (*Post, error)
	GetPostByID(ctx context.Context, id int) (*Post, error)
	GetPostByAuthor(ctx context.Context, authorID, postID int) (*Post, error)
	ApprovePost(ctx context.Context, id int, approverID int) (*Post, error)
	DeletePost(ctx context.Context, id int) error
}
