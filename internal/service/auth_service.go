package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"blogCPT/internal/models"
	"blogCPT/internal/repository"
)

type RegisterRequest struct {
	Email    string
	Username string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// Register creates a non-admin account. A taken email or username gives ErrUserExists.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (user *models.User, err error) {
	ctx, span := startSpan(ctx, "AuthService.Register")
	defer func() { endSpan(span, err) }()

	user = &models.User{
		Email:    req.Email,
		Username: req.Username,
	}

	if err := s.userRepo.CreateUser(ctx, user, req.Password); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

// Login never tells an unknown email apart from a wrong password.
func (s *authService) Login(ctx context.Context, email, password string) (user *models.User, err error) {
	ctx, span := startSpan(ctx, "AuthService.Login")
	defer func() { endSpan(span, err) }()

	user, err = s.userRepo.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrWrongPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return user, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) SetAdmin(ctx context.Context, email string, isAdmin bool) (err error) {
	ctx, span := startSpan(ctx, "AuthService.SetAdmin", attribute.Bool("user.admin", isAdmin))
	defer func() { endSpan(span, err) }()

	return s.userRepo.SetAdmin(ctx, email, isAdmin)
}
