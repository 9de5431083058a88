package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const sessionValueKey = "uid"

// ErrNoSession is returned by Sessions.UserID when the request carries no
// valid session.
var ErrNoSession = errors.New("no session")

// Sessions establishes and resolves cookie-based logins.
type Sessions interface {
	Create(w http.ResponseWriter, r *http.Request, userID int64) error
	UserID(r *http.Request) (int64, error)
	Destroy(w http.ResponseWriter, r *http.Request) error
}

// SessionOptions configures the session cookie.
type SessionOptions struct {
	Name   string
	Secret string
	TTL    time.Duration
	Secure bool
}

func newCookieStore(opts SessionOptions) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(opts.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// ---------------------------------------------------------------------------
// Cookie store
// ---------------------------------------------------------------------------

// CookieSessions keeps the user id inside a signed cookie.
type CookieSessions struct {
	store *sessions.CookieStore
	name  string
}

// NewCookieSessions creates a cookie-only session store.
func NewCookieSessions(opts SessionOptions) *CookieSessions {
	return &CookieSessions{store: newCookieStore(opts), name: opts.Name}
}

func (c *CookieSessions) Create(w http.ResponseWriter, r *http.Request, userID int64) error {
	sess, _ := c.store.Get(r, c.name)
	sess.Values[sessionValueKey] = userID
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (c *CookieSessions) UserID(r *http.Request) (int64, error) {
	sess, err := c.store.Get(r, c.name)
	if err != nil || sess.IsNew {
		return 0, ErrNoSession
	}
	id, ok := sess.Values[sessionValueKey].(int64)
	if !ok || id <= 0 {
		return 0, ErrNoSession
	}
	return id, nil
}

func (c *CookieSessions) Destroy(w http.ResponseWriter, r *http.Request) error {
	sess, _ := c.store.Get(r, c.name)
	sess.Options.MaxAge = -1
	delete(sess.Values, sessionValueKey)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Redis store
// ---------------------------------------------------------------------------

// RedisSessions keeps only a random session id in the signed cookie and maps
// it to the user id in Redis, so sessions can be revoked server-side.
type RedisSessions struct {
	cookies *sessions.CookieStore
	client  redis.Cmdable
	name    string
	ttl     time.Duration
	prefix  string
}

// NewRedisSessions creates a Redis-backed session store.
func NewRedisSessions(client redis.Cmdable, opts SessionOptions) *RedisSessions {
	return &RedisSessions{
		cookies: newCookieStore(opts),
		client:  client,
		name:    opts.Name,
		ttl:     opts.TTL,
		prefix:  "session:",
	}
}

func (s *RedisSessions) key(id string) string { return s.prefix + id }

func (s *RedisSessions) Create(w http.ResponseWriter, r *http.Request, userID int64) error {
	ctx := r.Context()
	id := uuid.NewString()

	ok, err := s.client.SetNX(ctx, s.key(id), strconv.FormatInt(userID, 10), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return fmt.Errorf("store session: id collision")
	}

	sess, _ := s.cookies.Get(r, s.name)
	if old, ok := sess.Values[sessionValueKey].(string); ok && old != "" {
		s.client.Del(ctx, s.key(old))
	}
	sess.Values[sessionValueKey] = id
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisSessions) UserID(r *http.Request) (int64, error) {
	id, ok := s.sessionID(r)
	if !ok {
		return 0, ErrNoSession
	}
	return s.lookup(r.Context(), id)
}

func (s *RedisSessions) lookup(ctx context.Context, id string) (int64, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNoSession
		}
		return 0, fmt.Errorf("load session: %w", err)
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrNoSession
	}
	return userID, nil
}

func (s *RedisSessions) Destroy(w http.ResponseWriter, r *http.Request) error {
	if id, ok := s.sessionID(r); ok {
		if err := s.client.Del(r.Context(), s.key(id)).Err(); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	sess, _ := s.cookies.Get(r, s.name)
	sess.Options.MaxAge = -1
	delete(sess.Values, sessionValueKey)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *RedisSessions) sessionID(r *http.Request) (string, bool) {
	sess, err := s.cookies.Get(r, s.name)
	if err != nil || sess.IsNew {
		return "", false
	}
	id, ok := sess.Values[sessionValueKey].(string)
	return id, ok && id != ""
}
