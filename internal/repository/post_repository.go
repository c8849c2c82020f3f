package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"blogCPT/internal/models"
)

type postRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db, sb: builder(db)}
}

func (r *postRepository) selectPosts() sq.SelectBuilder {
	return r.sb.Select(
		"p.id", "p.title", "p.subtitle", "p.date", "p.body", "p.img_url", "p.author_id",
		"u.username AS author_name",
	).
		From("blog_posts p").
		Join("users u ON u.id = p.author_id")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query, args, err := r.sb.Insert("blog_posts").
		Columns("title", "subtitle", "date", "body", "img_url", "author_id").
		Values(post.Title, post.Subtitle, post.Date, post.Body, post.ImgURL, post.AuthorID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build post insert: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&post.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	query, args, err := r.selectPosts().Where(sq.Eq{"p.id": postID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build post query: %w", err)
	}

	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post %d: %w", postID, err)
	}

	return &post, nil
}

// List returns every post in insertion order.
func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	query, args, err := r.selectPosts().OrderBy("p.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build posts query: %w", err)
	}

	posts := []models.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

// Update overwrites every mutable column, author included. The date is kept.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query, args, err := r.sb.Update("blog_posts").
		Set("title", post.Title).
		Set("subtitle", post.Subtitle).
		Set("body", post.Body).
		Set("img_url", post.ImgURL).
		Set("author_id", post.AuthorID).
		Where(sq.Eq{"id": post.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build post update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the post and its comments in one transaction.
func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	deleteComments, commentArgs, err := r.sb.Delete("comments").Where(sq.Eq{"post_id": postID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build comments delete: %w", err)
	}
	deletePost, postArgs, err := r.sb.Delete("blog_posts").Where(sq.Eq{"id": postID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build post delete: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteComments, commentArgs...); err != nil {
		return fmt.Errorf("failed to delete post comments: %w", err)
	}

	result, err := tx.ExecContext(ctx, deletePost, postArgs...)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit post delete: %w", err)
	}

	return nil
}
