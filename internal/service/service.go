package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"blogCPT/internal/repository"
	"blogCPT/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("username or email already registered")
	ErrPostNotFound       = errors.New("post not found")
	ErrTitleTaken         = errors.New("a post with this title already exists")
	ErrStorageDisabled    = errors.New("image storage is not configured")
)

var tracer = otel.Tracer("blogCPT/internal/service")

type Service struct {
	Auth    AuthService
	Post    PostService
	Comment CommentService
}

// NewService wires the services. store may be nil when uploads are disabled.
func NewService(rep *repository.Repository, store storage.Storage) *Service {
	return &Service{
		Auth:    NewAuthService(rep.User),
		Post:    NewPostService(rep.Post, rep.Comment, store),
		Comment: NewCommentService(rep.Post, rep.Comment),
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
