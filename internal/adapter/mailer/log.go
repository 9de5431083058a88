// Package mailer delivers password reset links.
package mailer

import (
	"context"
	"log/slog"
	"net/url"
)

// Log writes reset links to the structured log instead of sending mail.
// It is the only delivery channel; wiring SMTP means adding a sibling type
// with the same method.
type Log struct {
	frontendURL string
	log         *slog.Logger
}

// NewLog creates a log mailer. Links point at frontendURL/reset-password.
func NewLog(frontendURL string, logger *slog.Logger) *Log {
	return &Log{frontendURL: frontendURL, log: logger.With("adapter", "mailer")}
}

// ResetLink builds the frontend URL for a raw reset token.
func (m *Log) ResetLink(rawToken string) string {
	return m.frontendURL + "/reset-password?token=" + url.QueryEscape(rawToken)
}

// SendPasswordReset logs the reset link for email.
func (m *Log) SendPasswordReset(ctx context.Context, email, rawToken string) error {
	m.log.InfoContext(ctx, "password reset requested",
		slog.String("email", email),
		slog.String("link", m.ResetLink(rawToken)),
	)
	return nil
}
