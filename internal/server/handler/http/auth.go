// Package http provides the HTTP handlers and routing of the GophTube
// development backend.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/middleware"
	"github.com/atinyakov/GophTube/internal/models"
	"github.com/atinyakov/GophTube/internal/service"
)

// RefreshCookie is the cookie carrying the refresh token.
const RefreshCookie = "refreshToken"

// AuthService defines the account operations required by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, in service.Registration) (service.Session, error)
	Login(ctx context.Context, creds models.Credentials) (service.Session, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (service.Session, error)
	ChangePassword(ctx context.Context, userID string, in models.PasswordChange) error
	UpdateDetails(ctx context.Context, userID string, in models.UserDetails) (models.User, error)
	UpdateAvatar(ctx context.Context, userID, uri string) (models.User, error)
	UpdateCoverImage(ctx context.Context, userID, uri string) (models.User, error)
}

// ChannelService defines the per-user reads served under /users.
type ChannelService interface {
	ChannelProfile(ctx context.Context, viewerID, username string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.Video, error)
}

// AuthHandler handles the /users endpoints: registration, login, session
// cookies and profile maintenance.
type AuthHandler struct {
	AuthService    AuthService
	ChannelService ChannelService
	Logger         *zap.Logger
	// SecureCookies marks session cookies Secure; set when serving HTTPS.
	SecureCookies bool
}

// Register handles POST /users/register. It expects a multipart body with
// username, email, password, fullName and optional avatar and coverImage
// files, and opens a session for the new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		badRequest(w, "invalid request")
		return
	}
	sess, err := h.AuthService.Register(r.Context(), service.Registration{
		Username:   r.FormValue("username"),
		Email:      r.FormValue("email"),
		Password:   r.FormValue("password"),
		FullName:   r.FormValue("fullName"),
		Avatar:     mediaURI(r, "avatar"),
		CoverImage: mediaURI(r, "coverImage"),
	})
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	h.setSession(w, sess)
	respond(w, http.StatusCreated, authUser(sess), "User registered successfully")
}

// Login handles POST /users/login with a JSON body of username or email
// and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		badRequest(w, "invalid request")
		return
	}
	sess, err := h.AuthService.Login(r.Context(), creds)
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	h.setSession(w, sess)
	respond(w, http.StatusOK, authUser(sess), "User logged in successfully")
}

// Logout handles POST /users/logout. Cookies are cleared even when the
// token could not be revoked.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.AuthService.Logout(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	h.clearSession(w)
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, struct{}{}, "User logged out")
}

// RefreshToken handles POST /users/refresh-access-token. The refresh
// token comes from its cookie or a JSON body {"refreshToken": "..."}.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(RefreshCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		var body models.Tokens
		if err := decodeJSON(r, &body); err != nil {
			badRequest(w, "invalid request")
			return
		}
		token = body.RefreshToken
	}

	sess, err := h.AuthService.Refresh(r.Context(), token)
	if err != nil {
		h.clearSession(w)
		fail(w, h.Logger, err)
		return
	}
	h.setSession(w, sess)
	respond(w, http.StatusOK, models.Tokens{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	}, "Access token refreshed")
}

// CurrentUser handles GET /users/current-user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	respond(w, http.StatusOK, user, "User fetched successfully")
}

// ChangePassword handles POST /users/change-password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in models.PasswordChange
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid request")
		return
	}
	if err := h.AuthService.ChangePassword(r.Context(), middleware.GetUserIDFromContext(r.Context()), in); err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, struct{}{}, "Password changed successfully")
}

// UpdateDetails handles POST /users/update-user-detail.
func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var in models.UserDetails
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid request")
		return
	}
	user, err := h.AuthService.UpdateDetails(r.Context(), middleware.GetUserIDFromContext(r.Context()), in)
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, user, "Account details updated successfully")
}

// UpdateAvatar handles POST /users/update-avatar with an avatar file.
func (h *AuthHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.AuthService.UpdateAvatar)
}

// UpdateCoverImage handles POST /users/update-cover-image with a
// coverImage file.
func (h *AuthHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.AuthService.UpdateCoverImage)
}

func (h *AuthHandler) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	update func(ctx context.Context, userID, uri string) (models.User, error),
) {
	if err := parseMultipart(w, r); err != nil {
		badRequest(w, "invalid request")
		return
	}
	user, err := update(r.Context(), middleware.GetUserIDFromContext(r.Context()), mediaURI(r, field))
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, user, "Image updated successfully")
}

// ChannelProfile handles GET /users/channel/{username}.
func (h *AuthHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.ChannelService.ChannelProfile(r.Context(),
		middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, profile, "Channel fetched successfully")
}

// WatchHistory handles GET /users/watch-history.
func (h *AuthHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	videos, err := h.ChannelService.WatchHistory(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, videos, "Watch history fetched successfully")
}

func authUser(sess service.Session) models.AuthUser {
	return models.AuthUser{
		User:         sess.User,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	}
}

func (h *AuthHandler) setSession(w http.ResponseWriter, sess service.Session) {
	http.SetCookie(w, h.cookie(middleware.AccessCookie, sess.AccessToken, sess.AccessExpires))
	http.SetCookie(w, h.cookie(RefreshCookie, sess.RefreshToken, sess.RefreshExpires))
}

func (h *AuthHandler) clearSession(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessCookie, RefreshCookie} {
		c := h.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (h *AuthHandler) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
