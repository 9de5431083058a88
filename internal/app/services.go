package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bluebuchu/collect-sub000/internal/adapter/mailer"
	"github.com/bluebuchu/collect-sub000/internal/adapter/objectstore"
	"github.com/bluebuchu/collect-sub000/internal/adapter/provider/google"
	"github.com/bluebuchu/collect-sub000/internal/auth"
	"github.com/bluebuchu/collect-sub000/internal/config"
	authsvc "github.com/bluebuchu/collect-sub000/internal/service/auth"
	"github.com/bluebuchu/collect-sub000/internal/service/book"
	"github.com/bluebuchu/collect-sub000/internal/service/community"
	"github.com/bluebuchu/collect-sub000/internal/service/export"
	"github.com/bluebuchu/collect-sub000/internal/service/sentence"
	"github.com/bluebuchu/collect-sub000/internal/store"
)

// Services holds every service built on one store.
type Services struct {
	Tokens    *auth.JWTManager
	Auth      *authsvc.Service
	Sentence  *sentence.Service
	Community *community.Service
	Book      *book.Service
	Export    *export.Service
}

// NewServices wires the services. Object storage and Google sign-in are
// attached only when configured.
func NewServices(ctx context.Context, cfg *config.Config, logger *slog.Logger, st store.Store) (*Services, error) {
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)

	var opts []authsvc.Option
	if cfg.ObjectStore.Enabled() {
		images, err := objectstore.NewMinio(ctx, cfg.ObjectStore, logger)
		if err != nil {
			return nil, fmt.Errorf("object store: %w", err)
		}
		opts = append(opts, authsvc.WithImages(images, cfg.ObjectStore))
	}
	if cfg.Auth.GoogleEnabled() {
		opts = append(opts, authsvc.WithGoogle(google.NewVerifier(
			cfg.Auth.GoogleClientID,
			cfg.Auth.GoogleClientSecret,
			cfg.Auth.GoogleRedirectURI,
			logger,
		)))
	}

	return &Services{
		Tokens: tokens,
		Auth: authsvc.NewService(logger, st, st, tokens,
			mailer.NewLog(cfg.Auth.FrontendURL, logger), cfg.Auth, opts...),
		Sentence:  sentence.NewService(logger, st, st, st),
		Community: community.NewService(logger, st, st, st),
		Book:      book.NewService(logger, st, st, st),
		Export:    export.NewService(logger, st, st, cfg.Export),
	}, nil
}
