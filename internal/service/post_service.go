package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"blogCPT/internal/models"
	"blogCPT/internal/repository"
	"blogCPT/internal/storage"
)

// PostRequest carries the editable fields of a post.
type PostRequest struct {
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
}

type PostService interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	FindPost(ctx context.Context, postID int64) (*models.Post, error)
	GetPost(ctx context.Context, postID int64) (*models.PostDetail, error)
	CreatePost(ctx context.Context, author *models.User, req PostRequest) (*models.Post, error)
	UpdatePost(ctx context.Context, postID int64, editor *models.User, req PostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, postID int64) error
	UploadImage(ctx context.Context, fileName string, file io.Reader, size int64) (string, error)
	DiscardImage(ctx context.Context, imageURL string)
}

type postService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	storage     storage.Storage
	now         func() time.Time
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, store storage.Storage) PostService {
	return &postService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		storage:     store,
		now:         time.Now,
	}
}

func (p *postService) ListPosts(ctx context.Context) (posts []models.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.ListPosts")
	defer func() { endSpan(span, err) }()

	return p.postRepo.List(ctx)
}

func (p *postService) FindPost(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (p *postService) GetPost(ctx context.Context, postID int64) (detail *models.PostDetail, err error) {
	ctx, span := startSpan(ctx, "PostService.GetPost", attribute.Int64("post.id", postID))
	defer func() { endSpan(span, err) }()

	post, err := p.FindPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := p.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &models.PostDetail{Post: post, Comments: comments}, nil
}

// CreatePost stamps today's date and the author.
func (p *postService) CreatePost(ctx context.Context, author *models.User, req PostRequest) (post *models.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.CreatePost", attribute.Int64("author.id", author.ID))
	defer func() { endSpan(span, err) }()

	post = &models.Post{
		Title:      req.Title,
		Subtitle:   req.Subtitle,
		Date:       p.now().Format(models.DateLayout),
		Body:       req.Body,
		ImgURL:     req.ImgURL,
		AuthorID:   author.ID,
		AuthorName: author.Username,
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTitleTaken
		}
		return nil, err
	}

	return post, nil
}

// UpdatePost overwrites the fields and makes the editor the author. A replaced
// uploaded image is removed from storage.
func (p *postService) UpdatePost(ctx context.Context, postID int64, editor *models.User, req PostRequest) (post *models.Post, err error) {
	ctx, span := startSpan(ctx, "PostService.UpdatePost", attribute.Int64("post.id", postID))
	defer func() { endSpan(span, err) }()

	post, err = p.FindPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	previousImage := post.ImgURL
	post.Title = req.Title
	post.Subtitle = req.Subtitle
	post.Body = req.Body
	post.ImgURL = req.ImgURL
	post.AuthorID = editor.ID
	post.AuthorName = editor.Username

	if err := p.postRepo.Update(ctx, post); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrTitleTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if previousImage != post.ImgURL {
		p.DiscardImage(ctx, previousImage)
	}

	return post, nil
}

// DeletePost removes the post with its comments, then its uploaded image if any.
func (p *postService) DeletePost(ctx context.Context, postID int64) (err error) {
	ctx, span := startSpan(ctx, "PostService.DeletePost", attribute.Int64("post.id", postID))
	defer func() { endSpan(span, err) }()

	post, err := p.FindPost(ctx, postID)
	if err != nil {
		return err
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	p.DiscardImage(ctx, post.ImgURL)
	return nil
}

func (p *postService) UploadImage(ctx context.Context, fileName string, file io.Reader, size int64) (url string, err error) {
	ctx, span := startSpan(ctx, "PostService.UploadImage", attribute.Int64("file.size", size))
	defer func() { endSpan(span, err) }()

	if p.storage == nil {
		return "", ErrStorageDisabled
	}

	url, err = p.storage.UploadImage(ctx, fileName, file, size)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

// DiscardImage removes an uploaded image that no post refers to any more.
// Links outside the bucket are left alone and failures are only logged.
func (p *postService) DiscardImage(ctx context.Context, imageURL string) {
	if p.storage == nil || imageURL == "" {
		return
	}
	if err := p.storage.DeleteImage(ctx, imageURL); err != nil {
		log.Warn().Err(err).Str("img_url", imageURL).Msg("failed to remove post image")
	}
}
