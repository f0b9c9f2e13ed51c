package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/atinyakov/GophTube/internal/models"
)

// Register creates an account from a multipart body with username, email,
// password, fullName and optional avatar and coverImage files.
func (c *Client) Register(ctx context.Context, form *Form) (*models.Envelope[models.AuthUser], error) {
	return call[models.AuthUser](ctx, c, "/users/register", post(form))
}

// Login authenticates with a password and a username or email.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.Envelope[models.AuthUser], error) {
	return call[models.AuthUser](ctx, c, "/users/login", post(creds))
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) (*models.Envelope[models.Empty], error) {
	return call[models.Empty](ctx, c, "/users/logout", post(nil))
}

// RefreshToken exchanges the refresh cookie for a new access token.
func (c *Client) RefreshToken(ctx context.Context) (*models.Envelope[models.Tokens], error) {
	return call[models.Tokens](ctx, c, "/users/refresh-access-token", post(nil))
}

// CurrentUser returns the identity bound to the session cookie.
func (c *Client) CurrentUser(ctx context.Context) (*models.Envelope[models.User], error) {
	return call[models.User](ctx, c, "/users/current-user", RequestOptions{Method: http.MethodGet})
}

// ChangePassword updates the account password.
func (c *Client) ChangePassword(ctx context.Context, in models.PasswordChange) (*models.Envelope[models.Empty], error) {
	return call[models.Empty](ctx, c, "/users/change-password", post(in))
}

// UpdateUserDetails edits the full name and/or email.
func (c *Client) UpdateUserDetails(ctx context.Context, in models.UserDetails) (*models.Envelope[models.User], error) {
	return call[models.User](ctx, c, "/users/update-user-detail", post(in))
}

// UpdateAvatar replaces the avatar image.
func (c *Client) UpdateAvatar(ctx context.Context, file Upload) (*models.Envelope[models.User], error) {
	form := NewForm().Upload("avatar", file)
	return call[models.User](ctx, c, "/users/update-avatar", post(form))
}

// UpdateCoverImage replaces the cover image.
func (c *Client) UpdateCoverImage(ctx context.Context, file Upload) (*models.Envelope[models.User], error) {
	form := NewForm().Upload("coverImage", file)
	return call[models.User](ctx, c, "/users/update-cover-image", post(form))
}

// ChannelProfile returns the public channel page of username.
func (c *Client) ChannelProfile(ctx context.Context, username string) (*models.Envelope[models.ChannelProfile], error) {
	return call[models.ChannelProfile](ctx, c, "/users/channel/"+url.PathEscape(username), RequestOptions{})
}

// WatchHistory lists the videos the current user watched.
func (c *Client) WatchHistory(ctx context.Context) (*models.Envelope[[]models.Video], error) {
	return call[[]models.Video](ctx, c, "/users/watch-history", RequestOptions{})
}
