// Package google implements Google sign-in on top of golang.org/x/oauth2.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/bluebuchu/collect-sub000/internal/auth"
)

const defaultUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Verifier builds consent URLs and exchanges authorization codes for a
// verified Google identity.
type Verifier struct {
	conf        *oauth2.Config
	userinfoURL string
	httpClient  *http.Client
	log         *slog.Logger
}

// Option customises a Verifier.
type Option func(*Verifier)

// WithEndpoint overrides the Google OAuth endpoints.
func WithEndpoint(ep oauth2.Endpoint, userinfoURL string) Option {
	return func(v *Verifier) {
		v.conf.Endpoint = ep
		v.userinfoURL = userinfoURL
	}
}

// NewVerifier creates a Google OAuth verifier.
// Parameters come from config.AuthConfig: GoogleClientID, GoogleClientSecret, GoogleRedirectURI.
func NewVerifier(clientID, clientSecret, redirectURI string, logger *slog.Logger, opts ...Option) *Verifier {
	v := &Verifier{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userinfoURL: defaultUserinfoURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		log:         logger.With("adapter", "google_oauth"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// userinfoResponse represents the response from Google's userinfo endpoint.
type userinfoResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// AuthCodeURL returns the consent page URL carrying state.
func (v *Verifier) AuthCodeURL(state string) string {
	return v.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// VerifyCode exchanges an authorization code for user identity.
func (v *Verifier) VerifyCode(ctx context.Context, code string) (*auth.OAuthIdentity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)

	tok, err := v.conf.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode == http.StatusBadRequest {
			v.log.ErrorContext(ctx, "google oauth token exchange failed", slog.String("error", re.ErrorCode))
			return nil, fmt.Errorf("oauth: invalid or expired code")
		}
		v.log.ErrorContext(ctx, "google oauth token exchange failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("oauth: google unavailable")
	}

	userinfo, err := v.fetchUserinfo(ctx, tok)
	if err != nil {
		return nil, err
	}

	if !userinfo.VerifiedEmail {
		return nil, fmt.Errorf("oauth: email not verified")
	}

	identity := &auth.OAuthIdentity{
		Email:      userinfo.Email,
		ProviderID: userinfo.ID,
	}
	if userinfo.Name != "" {
		identity.Name = &userinfo.Name
	}
	if userinfo.Picture != "" {
		identity.AvatarURL = &userinfo.Picture
	}

	v.log.DebugContext(ctx, "google oauth success", slog.String("email", userinfo.Email))

	return identity, nil
}

func (v *Verifier) fetchUserinfo(ctx context.Context, tok *oauth2.Token) (*userinfoResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	tok.SetAuthHeader(req)

	resp, err := v.doWithRetry(ctx, req)
	if err != nil {
		v.log.ErrorContext(ctx, "google oauth userinfo failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("oauth: failed to fetch user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.log.ErrorContext(ctx, "google oauth userinfo failed", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("oauth: failed to fetch user info")
	}

	var userinfo userinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&userinfo); err != nil {
		v.log.ErrorContext(ctx, "google oauth userinfo failed", slog.String("error", "invalid json"))
		return nil, fmt.Errorf("oauth: invalid userinfo response")
	}

	if userinfo.ID == "" || userinfo.Email == "" {
		v.log.ErrorContext(ctx, "google oauth userinfo failed", slog.String("error", "missing required fields"))
		return nil, fmt.Errorf("oauth: invalid userinfo response")
	}

	return &userinfo, nil
}

// doWithRetry retries a GET once on 5xx or network errors with 500ms backoff.
func (v *Verifier) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err == nil && resp.StatusCode < 500 {
		return resp, nil
	}
	if resp != nil {
		resp.Body.Close()
	}

	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return v.httpClient.Do(req)
}
