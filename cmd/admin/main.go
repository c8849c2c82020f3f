// Command admin grants or revokes the admin flag of a registered user.
//
//	admin -email someone@example.com
//	admin -email someone@example.com -revoke
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"blogCPT/cmd/app"
	"blogCPT/internal/config"
	"blogCPT/internal/logger"
	"blogCPT/internal/repository"
)

func main() {
	email := flag.String("email", "", "email of the user to change")
	revoke := flag.Bool("revoke", false, "remove admin rights instead of granting them")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	logger.Init(cfg.LogLevel, cfg.LogPretty)

	if err := run(cfg, *email, !*revoke); err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("failed to update admin flag")
	}
}

func run(cfg *config.Config, email string, isAdmin bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// uploads are not needed here
	cfg.MinIO = config.MinIO{}

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Services.Auth.SetAdmin(ctx, email, isAdmin); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("no user registered with email %s", email)
		}
		return err
	}

	log.Info().Str("email", email).Bool("is_admin", isAdmin).Msg("admin flag updated")
	return nil
}
