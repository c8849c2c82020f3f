package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"blogCPT/internal/models"
	"blogCPT/internal/repository"
)

type CommentService interface {
	AddComment(ctx context.Context, postID int64, author *models.User, text string) (*models.Comment, error)
}

type commentService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

func NewCommentService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) CommentService {
	return &commentService{postRepo: postRepo, commentRepo: commentRepo}
}

// AddComment attaches a comment by author to an existing post.
func (c *commentService) AddComment(ctx context.Context, postID int64, author *models.User, text string) (comment *models.Comment, err error) {
	ctx, span := startSpan(ctx, "CommentService.AddComment", attribute.Int64("post.id", postID))
	defer func() { endSpan(span, err) }()

	if _, err := c.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment = &models.Comment{
		Text:        text,
		AuthorID:    author.ID,
		PostID:      postID,
		AuthorName:  author.Username,
		AuthorEmail: author.Email,
	}

	if err := c.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}
