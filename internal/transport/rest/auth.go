package rest

import (
	"context"
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bluebuchu/collect-sub000/internal/auth"
	"github.com/bluebuchu/collect-sub000/internal/domain"
	authsvc "github.com/bluebuchu/collect-sub000/internal/service/auth"
	"github.com/bluebuchu/collect-sub000/pkg/ctxutil"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
	sniffLen         = 512
)

// authService defines what the auth handler needs from the auth service.
type authService interface {
	Register(ctx context.Context, input authsvc.RegisterInput) (*authsvc.AuthResult, error)
	Login(ctx context.Context, input authsvc.LoginInput) (*authsvc.AuthResult, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, input authsvc.UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, input authsvc.ChangePasswordInput) error
	UploadProfileImage(ctx context.Context, userID int64, img authsvc.ImageUpload) (*domain.User, error)
	ImageURL(ctx context.Context, key string) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input authsvc.ResetPasswordInput) error
	GoogleAuthURL(state string) (string, error)
	LoginWithGoogle(ctx context.Context, code string) (*authsvc.AuthResult, error)
	ImagesEnabled() bool
}

// AuthOptions carries the HTTP-level auth settings.
type AuthOptions struct {
	FrontendURL    string
	CookieSecure   bool
	MaxUploadBytes int64
}

// AuthHandler serves /api/auth/* and the uploaded image redirect.
type AuthHandler struct {
	svc      authService
	sessions auth.Sessions
	opts     AuthOptions
	rs       Responder
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc authService, sessions auth.Sessions, opts AuthOptions, rs Responder) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions, opts: opts, rs: rs.named("auth")}
}

type authResponse struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

type userResponse struct {
	User userView `json:"user"`
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Nickname string  `json:"nickname"`
		Bio      *string `json:"bio"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), authsvc.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		Bio:      req.Bio,
	})
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	h.signIn(w, r, res)
}

// Login verifies credentials and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), authsvc.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	h.signIn(w, r, res)
}

// signIn attaches the session cookie. A session failure is logged and the
// bearer token is still returned.
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, res *authsvc.AuthResult) {
	if err := h.sessions.Create(w, r, res.User.ID); err != nil {
		h.rs.Log.WarnContext(r.Context(), "create session",
			slog.Int64("user_id", res.User.ID),
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, http.StatusOK, authResponse{User: toUserView(res.User), Token: res.Token})
}

// Logout destroys the session cookie. Bearer tokens simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		h.rs.Log.WarnContext(r.Context(), "destroy session", slog.String("error", err.Error()))
	}
	writeOK(w)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context(), viewerID(r))
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: toUserView(user)})
}

// UpdateProfile changes nickname, bio or profile image path.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname     *string `json:"nickname"`
		Bio          *string `json:"bio"`
		ProfileImage *string `json:"profileImage"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), viewerID(r), authsvc.UpdateProfileInput{
		Nickname:     req.Nickname,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: toUserView(user)})
}

// ChangePassword replaces the password after checking the current one.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	err := h.svc.ChangePassword(r.Context(), viewerID(r), authsvc.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeOK(w)
}

// UploadImage accepts a multipart "image" field and stores it as the
// profile picture. The declared part type is ignored; the content is sniffed.
func (h *AuthHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.svc.ImagesEnabled() {
		h.rs.handleError(w, r, domain.ErrUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+sniffLen*2)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		h.rs.handleError(w, r, domain.NewValidationError("image", "upload is too large or malformed"))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("image")
	if err != nil {
		h.rs.handleError(w, r, domain.NewValidationError("image", "required"))
		return
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		h.rs.handleError(w, r, err)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	contentType := http.DetectContentType(head[:n])
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	user, err := h.svc.UploadProfileImage(r.Context(), viewerID(r), authsvc.ImageUpload{
		Body:        file,
		Size:        header.Size,
		ContentType: contentType,
	})
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: toUserView(user)})
}

// ServeUpload redirects to a short-lived URL of a stored image.
func (h *AuthHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	target, err := h.svc.ImageURL(r.Context(), r.PathValue("key"))
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// ForgotPassword always answers 200 so the endpoint does not reveal which
// emails are registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "if the address is registered, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	err := h.svc.ResetPassword(r.Context(), authsvc.ResetPasswordInput{Token: req.Token, Password: req.Password})
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	writeOK(w)
}

// GoogleStart redirects to the Google consent screen. The state value is
// kept in a short-lived cookie and checked on callback.
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	state, _, err := auth.GenerateOpaqueToken()
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}
	target, err := h.svc.GoogleAuthURL(state)
	if err != nil {
		h.rs.handleError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, target, http.StatusFound)
}

// GoogleCallback finishes the OAuth flow and hands the token to the web
// client in the URL fragment.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	cookie, err := r.Cookie(oauthStateCookie)
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Path:     "/api/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
	})
	if err != nil || q.Get("state") == "" ||
		subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(q.Get("state"))) != 1 {
		h.rs.Log.WarnContext(ctx, "google callback state mismatch")
		h.redirectFailure(w, r, "invalid_state")
		return
	}
	if reason := q.Get("error"); reason != "" {
		h.redirectFailure(w, r, reason)
		return
	}

	res, err := h.svc.LoginWithGoogle(ctx, q.Get("code"))
	if err != nil {
		h.rs.Log.WarnContext(ctx, "google login failed", slog.String("error", err.Error()))
		h.redirectFailure(w, r, "oauth_failed")
		return
	}
	if err := h.sessions.Create(w, r, res.User.ID); err != nil {
		h.rs.Log.WarnContext(ctx, "create session",
			slog.Int64("user_id", res.User.ID),
			slog.String("error", err.Error()),
		)
	}

	h.rs.Log.InfoContext(ctx, "google login",
		slog.Int64("user_id", res.User.ID),
		slog.String("request_id", ctxutil.RequestIDFromCtx(ctx)),
	)
	http.Redirect(w, r, strings.TrimRight(h.opts.FrontendURL, "/")+"/#token="+url.QueryEscape(res.Token), http.StatusFound)
}

func (h *AuthHandler) redirectFailure(w http.ResponseWriter, r *http.Request, reason string) {
	target := strings.TrimRight(h.opts.FrontendURL, "/") + "/login?error=" + url.QueryEscape(reason)
	http.Redirect(w, r, target, http.StatusFound)
}
