package handlers

import (
	"context"
	"html/template"

	"blogCPT/internal/config"
	"blogCPT/internal/forms"
	"blogCPT/internal/service"
	"blogCPT/internal/session"
)

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	AuthService    service.AuthService
	PostService    service.PostService
	CommentService service.CommentService
	Sessions       *session.Manager
	Validator      *forms.Validator
	DB             HealthChecker
	Cfg            *config.Config

	pages map[string]*template.Template
}

func NewHandlers(services *service.Service, sessions *session.Manager, db HealthChecker, cfg *config.Config) (*Handlers, error) {
	pages, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	return &Handlers{
		AuthService:    services.Auth,
		PostService:    services.Post,
		CommentService: services.Comment,
		Sessions:       sessions,
		Validator:      forms.NewValidator(),
		DB:             db,
		Cfg:            cfg,
		pages:          pages,
	}, nil
}
