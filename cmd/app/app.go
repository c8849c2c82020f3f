package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"blogCPT/internal/config"
	"blogCPT/internal/database"
	handlers "blogCPT/internal/handler"
	"blogCPT/internal/repository"
	"blogCPT/internal/service"
	"blogCPT/internal/session"
	"blogCPT/internal/storage"
)

type App struct {
	Cfg      *config.Config
	DB       *database.DB
	Repo     *repository.Repository
	Services *service.Service
	Sessions *session.Manager
}

// New connects the database and object storage and wires the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	// connection MinIO, uploads stay off without an endpoint
	var store storage.Storage
	if cfg.MinIO.Enabled() {
		minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to initialize MinIO: %w", err)
		}
		store = minioClient
		log.Info().Str("endpoint", cfg.MinIO.Endpoint).Str("bucket", cfg.MinIO.BucketName).Msg("image uploads enabled")
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)

	return &App{
		Cfg:      cfg,
		DB:       db,
		Repo:     repo,
		Services: service.NewService(repo, store),
		Sessions: session.NewManager(cfg.SecretKey, cfg.SessionDuration, cfg.CookieSecure),
	}, nil
}

// Handler builds the HTTP handler with all routes.
func (a *App) Handler() (http.Handler, error) {
	h, err := handlers.NewHandlers(a.Services, a.Sessions, a.DB, a.Cfg)
	if err != nil {
		return nil, err
	}
	return h.Routes(), nil
}

func (a *App) Close() error {
	return a.DB.CloseDB()
}
