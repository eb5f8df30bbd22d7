package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storefront/internal/domain"
)

type gormPostRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewPostRepository(db *gorm.DB, logger *logrus.Logger) domain.PostRepository {
	return &gormPostRepository{
		db:  db,
		log: logger,
	}
}

func (r *gormPostRepository) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if post.Status == "" {
		post.Status = domain.PostPending
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.Errorf("Failed to create post for author %d: %v", post.AuthorID, err)
		return nil, fmt.Errorf("could not create post: %w", err)
	}
	r.log.Infof("Post created successfully with ID: %d", post.ID)
	return post, nil
}

func (r *gormPostRepository) GetPostByID(ctx context.Context, id int) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.NewNotFound("post", id)
		}
		return nil, fmt.Errorf("could not get post: %w", err)
	}
	return &post, nil
}

func (r *gormPostRepository) GetPostByAuthor(ctx context.Context, authorID, postID int) (*domain.Post, error) {
	var post domain.Post
	err := r.db.WithContext(ctx).Where("id = ? AND author_id = ?", postID, authorID).First(&post).Error
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NewNotFound("post", postID)
		}
		return nil, fmt.Errorf("could not get post: %w", err)
	}
	return &post, nil
}

func (r *gormPostRepository) ApprovePost(ctx context.Context, id int, approverID int) (*domain.Post, error) {
	res := r.db.WithContext(ctx).Model(&domain.Post{ID: id}).Updates(map[string]interface{}{
		"status":      domain.PostApproved,
		"approved_by": approverID,
		"updated_at":  time.Now(),
	})
	if res.Error != nil {
		r.log.Errorf("Failed to approve post ID %d: %v", id, res.Error)
		return nil, fmt.Errorf("could not approve post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.NewNotFound("post", id)
	}
	r.log.Infof("Post ID %d approved by user %d", id, approverID)
	return r.GetPostByID(ctx, id)
}

func (r *gormPostRepository) DeletePost(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&domain.Post{}, id)
	if res.Error != nil {
		r.log.Errorf("Failed to delete post ID %d: %v", id, res.Error)
		return fmt.Errorf("could not delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFound("post", id)
	}
	r.log.Infof("Post ID %d deleted", id)
	return nil
}
