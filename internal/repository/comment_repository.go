package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"blogCPT/internal/models"
)

type commentRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db, sb: builder(db)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query, args, err := r.sb.Insert("comments").
		Columns("text", "author_id", "post_id").
		Values(comment.Text, comment.AuthorID, comment.PostID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build comment insert: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&comment.ID); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// ListByPostID returns the comments of a post, oldest first, with author details.
func (r *commentRepository) ListByPostID(ctx context.Context, postID int64) ([]models.Comment, error) {
	query, args, err := r.sb.Select(
		"c.id", "c.text", "c.author_id", "c.post_id",
		"u.username AS author_name", "u.email AS author_email",
	).
		From("comments c").
		Join("users u ON u.id = c.author_id").
		Where(sq.Eq{"c.post_id": postID}).
		OrderBy("c.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build comments query: %w", err)
	}

	comments := []models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list comments of post %d: %w", postID, err)
	}

	return comments, nil
}
