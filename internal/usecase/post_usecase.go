package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/validation"
)

var _ domain.PostUseCase = (*postUseCase)(nil)

type postUseCase struct {
	postRepo domain.PostRepository
	log      *logrus.Logger
}

func NewPostUseCase(repo domain.PostRepository, logger *logrus.Logger) domain.PostUseCase {
	return &postUseCase{
		postRepo: repo,
		log:      logger,
	}
}

// CreatePost strips markup from title and content and stores the post as
// pending until a moderator approves it.
func (uc *postUseCase) CreatePost(ctx context.Context, author *domain.User, in domain.BlogPostCreate) (*domain.Post, error) {
	post := &domain.Post{
		AuthorID: author.ID,
		Title:    validation.SanitizeText(in.Title),
		Content:  validation.SanitizeText(in.Content),
		Tags:     domain.NormalizeTags(in.Tags),
		Status:   domain.PostPending,
	}
	if post.Title == "" {
		return nil, domain.NewFieldValidation("title", "title cannot be empty after removing HTML")
	}
	if post.Content == "" {
		return nil, domain.NewFieldValidation("content", "content cannot be empty after removing HTML")
	}

	created, err := uc.postRepo.CreatePost(ctx, post)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create post for user %d: %v", author.ID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Post %d created by user %d, awaiting approval", created.ID, author.ID)
	return created, nil
}

// GetApprovedPost hides pending posts behind a not found error.
func (uc *postUseCase) GetApprovedPost(ctx context.Context, authorID, postID int) (*domain.Post, error) {
	post, err := uc.postRepo.GetPostByAuthor(ctx, authorID, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsApproved() {
		return nil, domain.NewNotFound("post", postID)
	}
	return post, nil
}

func (uc *postUseCase) ApprovePost(ctx context.Context, approver *domain.User, id int) (*domain.Post, error) {
	post, err := uc.postRepo.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.IsApproved() {
		return nil, domain.NewConflict("Post %d is already approved", id)
	}
	uc.log.Infof("Use Case: User %d approving post %d", approver.ID, id)
	return uc.postRepo.ApprovePost(ctx, id, approver.ID)
}

func (uc *postUseCase) DeletePost(ctx context.Context, id int) error {
	uc.log.Infof("Use Case: Deleting post %d", id)
	return uc.postRepo.DeletePost(ctx, id)
}
