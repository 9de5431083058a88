package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	App         AppConfig         `yaml:"app"`
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Auth        AuthConfig        `yaml:"auth"`
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
	RateLimit   RateLimitConfig   `yaml:"ratelimit"`
	Export      ExportConfig      `yaml:"export"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
}

// Environment names accepted in app.env.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage backends accepted in storage.backend.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Session stores accepted in auth.session_store.
const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

// AppConfig holds process-wide settings.
type AppConfig struct {
	Name string `yaml:"name" env:"APP_NAME" env-default:"sentence-collector"`
	Env  string `yaml:"env"  env:"APP_ENV"  env-default:"development"`
}

// IsProduction reports whether detailed error messages must be hidden.
func (c AppConfig) IsProduction() bool { return c.Env == EnvProduction }

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"http://localhost:5173"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"5000"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// StorageConfig selects the Store implementation.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"postgres"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	ApplicationName string        `yaml:"application_name"   env:"DATABASE_APPLICATION_NAME"   env-default:"collect"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"    env:"DATABASE_CONNECT_TIMEOUT"    env-default:"5s"`
}

// RedisConfig holds the optional Redis connection used for sessions and
// rate limiting. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// AuthConfig holds authentication, session and OAuth settings.
type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"           env:"AUTH_JWT_SECRET"           env-required:"true"`
	JWTIssuer          string        `yaml:"jwt_issuer"           env:"AUTH_JWT_ISSUER"           env-default:"sentence-collector"`
	TokenTTL           time.Duration `yaml:"token_ttl"            env:"AUTH_TOKEN_TTL"            env-default:"168h"`
	SessionSecret      string        `yaml:"session_secret"       env:"AUTH_SESSION_SECRET"       env-required:"true"`
	SessionName        string        `yaml:"session_name"         env:"AUTH_SESSION_NAME"         env-default:"collect_session"`
	SessionTTL         time.Duration `yaml:"session_ttl"          env:"AUTH_SESSION_TTL"          env-default:"168h"`
	SessionStore       string        `yaml:"session_store"        env:"AUTH_SESSION_STORE"        env-default:"cookie"`
	CookieSecure       bool          `yaml:"cookie_secure"        env:"AUTH_COOKIE_SECURE"        env-default:"false"`
	ResetTokenTTL      time.Duration `yaml:"reset_token_ttl"      env:"AUTH_RESET_TOKEN_TTL"      env-default:"1h"`
	PasswordHashCost   int           `yaml:"password_hash_cost"   env:"AUTH_PASSWORD_HASH_COST"   env-default:"10"`
	FrontendURL        string        `yaml:"frontend_url"         env:"AUTH_FRONTEND_URL"         env-default:"http://localhost:5173"`
	GoogleClientID     string        `yaml:"google_client_id"     env:"AUTH_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `yaml:"google_client_secret" env:"AUTH_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string        `yaml:"google_redirect_uri"  env:"AUTH_GOOGLE_REDIRECT_URI"`
}

// GoogleEnabled reports whether Google sign-in is fully configured.
func (c AuthConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURI != ""
}

// ObjectStoreConfig holds MinIO/S3 settings for profile images.
// An empty Endpoint disables uploads.
type ObjectStoreConfig struct {
	Endpoint       string        `yaml:"endpoint"         env:"OBJECT_STORE_ENDPOINT"`
	AccessKey      string        `yaml:"access_key"       env:"OBJECT_STORE_ACCESS_KEY"`
	SecretKey      string        `yaml:"secret_key"       env:"OBJECT_STORE_SECRET_KEY"`
	Bucket         string        `yaml:"bucket"           env:"OBJECT_STORE_BUCKET"           env-default:"profile-images"`
	UseSSL         bool          `yaml:"use_ssl"          env:"OBJECT_STORE_USE_SSL"          env-default:"false"`
	PresignTTL     time.Duration `yaml:"presign_ttl"      env:"OBJECT_STORE_PRESIGN_TTL"      env-default:"15m"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" env:"OBJECT_STORE_MAX_UPLOAD_BYTES" env-default:"5242880"`
}

// Enabled reports whether object storage is configured.
func (c ObjectStoreConfig) Enabled() bool { return c.Endpoint != "" }

// RateLimitConfig holds per-client request limits. Auth endpoints get the
// tighter AuthRequests budget.
type RateLimitConfig struct {
	Enabled      bool          `yaml:"enabled"       env:"RATELIMIT_ENABLED"       env-default:"true"`
	Requests     int           `yaml:"requests"      env:"RATELIMIT_REQUESTS"      env-default:"300"`
	AuthRequests int           `yaml:"auth_requests" env:"RATELIMIT_AUTH_REQUESTS" env-default:"20"`
	Window       time.Duration `yaml:"window"        env:"RATELIMIT_WINDOW"        env-default:"1m"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	Locale      string `yaml:"locale"       env:"EXPORT_LOCALE"       env-default:"ko"`
	MaxSentence int    `yaml:"max_sentence" env:"EXPORT_MAX_SENTENCE" env-default:"10000"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
