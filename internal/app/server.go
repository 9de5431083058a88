package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/bluebuchu/collect-sub000/internal/auth"
	"github.com/bluebuchu/collect-sub000/internal/config"
	"github.com/bluebuchu/collect-sub000/internal/store"
	"github.com/bluebuchu/collect-sub000/internal/transport/dataloader"
	"github.com/bluebuchu/collect-sub000/internal/transport/middleware"
	"github.com/bluebuchu/collect-sub000/internal/transport/rest"
)

// NewSessions returns the session store selected by auth.session_store.
func NewSessions(cfg config.AuthConfig, rdb *redis.Client) auth.Sessions {
	opts := auth.SessionOptions{
		Name:   cfg.SessionName,
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Secure: cfg.CookieSecure,
	}
	if cfg.SessionStore == config.SessionStoreRedis && rdb != nil {
		return auth.NewRedisSessions(rdb, opts)
	}
	return auth.NewCookieSessions(opts)
}

// newLimits builds the two rate limit tiers. Counters live in Redis when it
// is configured so that every instance shares them. The returned func
// stops background cleanup of the in-memory limiters.
func newLimits(cfg config.RateLimitConfig, rdb *redis.Client, logger *slog.Logger) (rest.Limits, func(), error) {
	limits := rest.Limits{RetryAfter: cfg.Window}
	if !cfg.Enabled {
		return limits, func() {}, nil
	}

	if rdb != nil {
		global, err := middleware.NewRedisLimiter(rdb, "ratelimit:api", cfg.Requests, cfg.Window, logger)
		if err != nil {
			return limits, nil, fmt.Errorf("global limiter: %w", err)
		}
		strict, err := middleware.NewRedisLimiter(rdb, "ratelimit:auth", cfg.AuthRequests, cfg.Window, logger)
		if err != nil {
			return limits, nil, fmt.Errorf("auth limiter: %w", err)
		}
		limits.Global, limits.Auth = global, strict
		return limits, func() {}, nil
	}

	global := middleware.NewRateLimiter(cfg.Requests, cfg.Window, cfg.Window)
	strict := middleware.NewRateLimiter(cfg.AuthRequests, cfg.Window, cfg.Window)
	limits.Global, limits.Auth = global, strict
	return limits, func() {
		global.Stop()
		strict.Stop()
	}, nil
}

// NewHandler assembles the full HTTP handler: request-scoped middleware
// around the REST router.
func NewHandler(cfg *config.Config, logger *slog.Logger, st store.Store, svcs *Services, rdb *redis.Client) (http.Handler, func(), error) {
	sessions := NewSessions(cfg.Auth, rdb)

	limits, stop, err := newLimits(cfg.RateLimit, rdb, logger)
	if err != nil {
		return nil, nil, err
	}

	deps := map[string]rest.Pinger{"database": st}
	if rdb != nil {
		deps["redis"] = rest.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	rs := rest.Responder{Log: logger, Debug: !cfg.App.IsProduction()}
	router := rest.NewRouter(rest.Handlers{
		Auth: rest.NewAuthHandler(svcs.Auth, sessions, rest.AuthOptions{
			FrontendURL:    cfg.Auth.FrontendURL,
			CookieSecure:   cfg.Auth.CookieSecure,
			MaxUploadBytes: cfg.ObjectStore.MaxUploadBytes,
		}, rs),
		Sentence:  rest.NewSentenceHandler(svcs.Sentence, rs),
		Community: rest.NewCommunityHandler(svcs.Community, rs),
		Book:      rest.NewBookHandler(svcs.Book, rs),
		Export:    rest.NewExportHandler(svcs.Export, rs),
		Health:    rest.NewHealthHandler(deps, BuildVersion()),
	}, limits)

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.Actor(svcs.Tokens, sessions, st, logger),
		dataloader.Middleware(st),
	)
	return chain(router), stop, nil
}
