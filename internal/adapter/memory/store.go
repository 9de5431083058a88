// Package memory implements store.Store in process memory. It backs local
// development and service tests; data does not survive a restart and the
// store is not shared between processes.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bluebuchu/collect-sub000/internal/domain"
	"github.com/bluebuchu/collect-sub000/internal/store"
)

var _ store.Store = (*Store)(nil)

type likeKey struct {
	sentenceID int64
	userID     int64
}

type memberKey struct {
	communityID int64
	userID      int64
}

type linkKey struct {
	communityID int64
	sentenceID  int64
}

// Store keeps every table in maps guarded by one RWMutex. Each method holds
// the lock for its whole duration, which makes multi-row updates atomic.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	nextID int64

	users       map[int64]domain.User
	sentences   map[int64]domain.Sentence
	likes       map[likeKey]struct{}
	books       map[int64]domain.Book
	communities map[int64]domain.Community
	members     map[memberKey]domain.CommunityMember
	links       map[linkKey]domain.CommunitySentence
	tokens      map[int64]domain.PasswordResetToken
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:         func() time.Time { return time.Now().UTC() },
		users:       make(map[int64]domain.User),
		sentences:   make(map[int64]domain.Sentence),
		likes:       make(map[likeKey]struct{}),
		books:       make(map[int64]domain.Book),
		communities: make(map[int64]domain.Community),
		members:     make(map[memberKey]domain.CommunityMember),
		links:       make(map[linkKey]domain.CommunitySentence),
		tokens:      make(map[int64]domain.PasswordResetToken),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
}

func alreadyExists(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, domain.ErrAlreadyExists)
}

// containsFold is the in-memory counterpart of ILIKE '%q%'.
func containsFold(value *string, q string) bool {
	return value != nil && strings.Contains(strings.ToLower(*value), strings.ToLower(q))
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email || existing.Nickname == u.Nickname {
			return nil, alreadyExists("user", 0)
		}
	}

	now := s.now()
	out := *u
	out.ID = s.id()
	out.CreatedAt = now
	out.UpdatedAt = now
	s.users[out.ID] = out
	return &out, nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return s.findUser(func(u domain.User) bool { return u.Email == email })
}

func (s *Store) GetUserByNickname(_ context.Context, nickname string) (*domain.User, error) {
	return s.findUser(func(u domain.User) bool { return u.Nickname == nickname })
}

func (s *Store) findUser(match func(domain.User) bool) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, notFound("user", 0)
}

func (s *Store) UpdateUser(_ context.Context, id int64, p domain.UserUpdateParams) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	if p.Nickname != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Nickname == *p.Nickname {
				return nil, alreadyExists("user", id)
			}
		}
		u.Nickname = *p.Nickname
	}
	if p.Bio != nil {
		u.Bio = domain.OptionalText(p.Bio)
	}
	if p.ProfileImage != nil {
		u.ProfileImage = domain.OptionalText(p.ProfileImage)
	}
	u.UpdatedAt = s.now()
	s.users[id] = u
	return &u, nil
}

func (s *Store) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatePasswordLocked(id, passwordHash)
}

func (s *Store) updatePasswordLocked(id int64, passwordHash string) error {
	u, ok := s.users[id]
	if !ok {
		return notFound("user", id)
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

// DeleteUser removes the user with everything that cascades from it and
// keeps the counters of surviving rows consistent.
func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return notFound("user", id)
	}

	for k := range s.likes {
		if k.userID == id {
			s.removeLikeLocked(k)
		}
	}
	for sid, sent := range s.sentences {
		if sent.IsOwnedBy(id) {
			s.deleteSentenceLocked(sid)
		}
	}
	for cid, c := range s.communities {
		if c.CreatorID == id {
			s.deleteCommunityLocked(cid)
		}
	}
	for k := range s.members {
		if k.userID == id {
			delete(s.members, k)
			if c, ok := s.communities[k.communityID]; ok {
				c.MemberCount = clampZero(c.MemberCount - 1)
				s.communities[k.communityID] = c
			}
		}
	}
	for k, link := range s.links {
		if link.AddedBy == id {
			link.AddedBy = 0
			s.links[k] = link
		}
	}
	for tid, t := range s.tokens {
		if t.UserID == id {
			delete(s.tokens, tid)
		}
	}
	delete(s.users, id)
	return nil
}

// ---------------------------------------------------------------------------
// Reset tokens
// ---------------------------------------------------------------------------

func (s *Store) ReplaceResetToken(_ context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return notFound("user", userID)
	}
	for id, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, id)
		} else if t.TokenHash == tokenHash {
			return alreadyExists("password_reset_token", userID)
		}
	}
	id := s.id()
	s.tokens[id] = domain.PasswordResetToken{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	return nil
}

func (s *Store) GetResetToken(_ context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.TokenHash == tokenHash {
			return &t, nil
		}
	}
	return nil, notFound("password_reset_token", 0)
}

func (s *Store) ConsumeResetToken(_ context.Context, tokenID, userID int64, passwordHash string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenID]
	if !ok || t.IsExpired(now) {
		return notFound("password_reset_token", tokenID)
	}
	if err := s.updatePasswordLocked(userID, passwordHash); err != nil {
		return err
	}
	delete(s.tokens, tokenID)
	return nil
}

func (s *Store) DeleteExpiredResetTokens(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, t := range s.tokens {
		if t.IsExpired(now) {
			delete(s.tokens, id)
			n++
		}
	}
	return n, nil
}
