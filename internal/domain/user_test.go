package domain

import (
	"testing"
	"time"
)

func TestPasswordResetToken_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("not expired", func(t *testing.T) {
		t.Parallel()
		token := &PasswordResetToken{ExpiresAt: now.Add(time.Hour)}
		if token.IsExpired(now) {
			t.Error("expected not expired")
		}
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		token := &PasswordResetToken{ExpiresAt: now.Add(-time.Second)}
		if !token.IsExpired(now) {
			t.Error("expected expired")
		}
	})

	t.Run("exactly at expiry", func(t *testing.T) {
		t.Parallel()
		token := &PasswordResetToken{ExpiresAt: now}
		if !token.IsExpired(now) {
			t.Error("token should be expired at its expiry instant")
		}
	})
}
