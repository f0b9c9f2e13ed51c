// Package models defines the records exchanged with the GophTube backend:
// users, videos, comments, community posts, playlists and the response
// envelope every endpoint wraps them in.
package models

import (
	"errors"
	"time"
)

// ErrInvalidCredentials is returned when a credential pair does not carry
// a password and exactly one of username or email.
var ErrInvalidCredentials = errors.New("password and exactly one of username or email are required")

// User is the identity held by an authenticated session.
type User struct {
	// ID is the backend identifier of the user.
	ID string `json:"_id"`
	// Username is the unique handle, also used for channel URLs.
	Username string `json:"username"`
	// Email is the account e-mail address.
	Email string `json:"email"`
	// FullName is the display name.
	FullName string `json:"fullName"`
	// Avatar is the URI of the avatar image.
	Avatar string `json:"avatar"`
	// CoverImage is the URI of the channel cover image.
	CoverImage string `json:"coverImage"`
	// WatchHistory holds ids of watched videos.
	WatchHistory []string `json:"watchHistory,omitempty"`
	// SubscribersCount is only present on channel profile responses.
	SubscribersCount *int64 `json:"subscribersCount,omitempty"`
	// SubscribedChannelCount is only present on channel profile responses.
	SubscribedChannelCount *int64 `json:"subscribedChannelCount,omitempty"`
	// IsSubscribed reports whether the viewer follows this channel.
	IsSubscribed *bool `json:"isSubscribed,omitempty"`
	// CreatedAt is the account creation time.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the last profile modification time.
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthUser is the payload of login and register responses: the user plus
// the tokens the backend also sets as cookies.
type AuthUser struct {
	User
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Tokens is the payload of the refresh endpoint.
type Tokens struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// Validate checks the structural shape of the pair. Form-level rules
// (lengths, e-mail syntax) live in the form package.
func (c Credentials) Validate() error {
	if c.Password == "" {
		return ErrInvalidCredentials
	}
	if (c.Username == "") == (c.Email == "") {
		return ErrInvalidCredentials
	}
	return nil
}

// PasswordChange is the change-password request body.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserDetails is the update-user-detail request body.
type UserDetails struct {
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ChannelProfile is returned by the channel endpoint.
type ChannelProfile struct {
	User
}
