package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.App.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("app.env must be %q or %q (got %q)", EnvDevelopment, EnvProduction, c.App.Env)
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if len(c.Auth.SessionSecret) < 32 {
		return fmt.Errorf("auth.session_secret must be at least 32 characters (got %d)", len(c.Auth.SessionSecret))
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0 (got %v)", c.Auth.TokenTTL)
	}
	if c.Auth.PasswordHashCost < 4 || c.Auth.PasswordHashCost > 31 {
		return fmt.Errorf("auth.password_hash_cost must be between 4 and 31 (got %d)", c.Auth.PasswordHashCost)
	}
	if c.Auth.ResetTokenTTL <= 0 {
		return fmt.Errorf("auth.reset_token_ttl must be > 0 (got %v)", c.Auth.ResetTokenTTL)
	}

	switch c.Auth.SessionStore {
	case SessionStoreCookie:
	case SessionStoreRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("auth.session_store %q requires redis.addr", SessionStoreRedis)
		}
	default:
		return fmt.Errorf("auth.session_store must be %q or %q (got %q)", SessionStoreCookie, SessionStoreRedis, c.Auth.SessionStore)
	}

	if err := c.validateGoogle(); err != nil {
		return err
	}

	switch c.Storage.Backend {
	case BackendPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for storage.backend %q", BackendPostgres)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be %q or %q (got %q)", BackendPostgres, BackendMemory, c.Storage.Backend)
	}

	if err := c.validateObjectStore(); err != nil {
		return err
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 || c.RateLimit.AuthRequests <= 0 {
			return fmt.Errorf("ratelimit.requests and ratelimit.auth_requests must be > 0")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("ratelimit.window must be > 0 (got %v)", c.RateLimit.Window)
		}
	}

	if _, err := language.Parse(c.Export.Locale); err != nil {
		return fmt.Errorf("export.locale %q: %w", c.Export.Locale, err)
	}

	return nil
}

func (c *Config) validateGoogle() error {
	a := c.Auth
	set := 0
	for _, v := range []string{a.GoogleClientID, a.GoogleClientSecret, a.GoogleRedirectURI} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("auth.google_client_id, google_client_secret and google_redirect_uri must be set together")
	}
	return nil
}

func (c *Config) validateObjectStore() error {
	o := c.ObjectStore
	if !o.Enabled() {
		return nil
	}
	if o.AccessKey == "" || o.SecretKey == "" || o.Bucket == "" {
		return fmt.Errorf("object_store: access_key, secret_key and bucket are required when endpoint is set")
	}
	if o.MaxUploadBytes <= 0 {
		return fmt.Errorf("object_store.max_upload_bytes must be > 0 (got %d)", o.MaxUploadBytes)
	}
	return nil
}
