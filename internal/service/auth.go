// Package service implements the business rules of the development
// backend: accounts and sessions, videos, comments, community posts,
// likes, subscriptions and playlists. Persistence is delegated to
// repository tables.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/GophTube/internal/models"
	"github.com/atinyakov/GophTube/internal/repository"
)

// Table is the persistence contract of one record kind.
type Table[T any] interface {
	Insert(ctx context.Context, v T) error
	Get(ctx context.Context, id string) (T, error)
	Find(ctx context.Context, match func(T) bool) (T, error)
	Update(ctx context.Context, id string, fn func(*T) error) (T, error)
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, match func(T) bool) (int, error)
	Filter(ctx context.Context, match func(T) bool) ([]T, error)
	Toggle(ctx context.Context, match func(T) bool, create func() T) (bool, error)
}

// Registration is the input of account creation. Avatar and CoverImage are
// optional URIs.
type Registration struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	Avatar     string
	CoverImage string
}

// Session is the outcome of login, registration and refresh.
type Session struct {
	User           models.User
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// AuthService manages accounts and session tokens.
type AuthService struct {
	users      Table[repository.UserRecord]
	tokens     *TokenIssuer
	log        *zap.Logger
	now        func() time.Time
	bcryptCost int
}

// NewAuthService constructs an AuthService over the users table.
func NewAuthService(users Table[repository.UserRecord], tokens *TokenIssuer, log *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		log:        log,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates an account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, in Registration) (Session, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if username == "" || email == "" || fullName == "" || in.Password == "" {
		return Session{}, fail(KindInvalid, "All fields are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return Session{}, internal(err)
	}
	now := s.now()
	rec := repository.UserRecord{
		User: models.User{
			ID:         uuid.NewString(),
			Username:   username,
			Email:      email,
			FullName:   fullName,
			Avatar:     in.Avatar,
			CoverImage: in.CoverImage,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		PasswordHash: hash,
	}
	if err := s.users.Insert(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return Session{}, &Error{Kind: KindConflict, Message: "User with email or username already exists", Err: err}
		}
		return Session{}, internal(err)
	}
	s.log.Info("user registered", zap.String("user_id", rec.ID), zap.String("username", username))
	return s.open(ctx, rec.ID)
}

// Login checks the password of the account named by username or email.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (Session, error) {
	if creds.Username == "" && creds.Email == "" {
		return Session{}, fail(KindInvalid, "username or email is required")
	}
	if creds.Password == "" {
		return Session{}, fail(KindInvalid, "Password is required")
	}

	rec, err := s.users.Find(ctx, func(u repository.UserRecord) bool {
		return (creds.Username != "" && strings.EqualFold(u.Username, creds.Username)) ||
			(creds.Email != "" && strings.EqualFold(u.Email, creds.Email))
	})
	if err != nil {
		return Session{}, notFound(err, "User does not exist")
	}
	if bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(creds.Password)) != nil {
		return Session{}, fail(KindUnauthorized, "Invalid user credentials")
	}
	return s.open(ctx, rec.ID)
}

// Logout revokes the refresh token of userID.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	_, err := s.users.Update(ctx, userID, func(u *repository.UserRecord) error {
		u.RefreshToken = ""
		return nil
	})
	if err != nil {
		return notFound(err, "User does not exist")
	}
	return nil
}

// Refresh rotates the token pair. A refresh token is accepted once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if refreshToken == "" {
		return Session{}, fail(KindUnauthorized, "Unauthorized request")
	}
	userID, err := s.tokens.Verify(refreshToken, RefreshToken)
	if err != nil {
		return Session{}, &Error{Kind: KindUnauthorized, Message: "Invalid refresh token", Err: err}
	}
	rec, err := s.users.Get(ctx, userID)
	if err != nil {
		return Session{}, &Error{Kind: KindUnauthorized, Message: "Invalid refresh token", Err: err}
	}
	if rec.RefreshToken != refreshToken {
		return Session{}, fail(KindUnauthorized, "Refresh token is expired or used")
	}
	return s.open(ctx, userID)
}

// Authenticate resolves an access token to its user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (models.User, error) {
	if accessToken == "" {
		return models.User{}, fail(KindUnauthorized, "Unauthorized request")
	}
	userID, err := s.tokens.Verify(accessToken, AccessToken)
	if err != nil {
		return models.User{}, &Error{Kind: KindUnauthorized, Message: "Invalid access token", Err: err}
	}
	rec, err := s.users.Get(ctx, userID)
	if err != nil {
		return models.User{}, &Error{Kind: KindUnauthorized, Message: "Invalid access token", Err: err}
	}
	return rec.User, nil
}

// CurrentUser returns the account of userID.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	rec, err := s.users.Get(ctx, userID)
	if err != nil {
		return models.User{}, notFound(err, "User does not exist")
	}
	return rec.User, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in models.PasswordChange) error {
	if in.NewPassword == "" {
		return fail(KindInvalid, "New password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.bcryptCost)
	if err != nil {
		return internal(err)
	}
	_, err = s.users.Update(ctx, userID, func(u *repository.UserRecord) error {
		if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.CurrentPassword)) != nil {
			return fail(KindInvalid, "Invalid old password")
		}
		u.PasswordHash = hash
		u.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return notFound(err, "User does not exist")
	}
	return nil
}

// UpdateDetails changes the full name and/or e-mail address.
func (s *AuthService) UpdateDetails(ctx context.Context, userID string, in models.UserDetails) (models.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.TrimSpace(in.Email)
	if fullName == "" && email == "" {
		return models.User{}, fail(KindInvalid, "All fields are required")
	}
	rec, err := s.users.Update(ctx, userID, func(u *repository.UserRecord) error {
		if fullName != "" {
			u.FullName = fullName
		}
		if email != "" {
			u.Email = email
		}
		u.UpdatedAt = s.now()
		return nil
	})
	switch {
	case errors.Is(err, repository.ErrConflict):
		return models.User{}, &Error{Kind: KindConflict, Message: "Email is already in use", Err: err}
	case err != nil:
		return models.User{}, notFound(err, "User does not exist")
	}
	return rec.User, nil
}

// UpdateAvatar points the avatar at uri.
func (s *AuthService) UpdateAvatar(ctx context.Context, userID, uri string) (models.User, error) {
	if uri == "" {
		return models.User{}, fail(KindInvalid, "Avatar file is missing")
	}
	return s.setImage(ctx, userID, func(u *models.User) { u.Avatar = uri })
}

// UpdateCoverImage points the cover image at uri.
func (s *AuthService) UpdateCoverImage(ctx context.Context, userID, uri string) (models.User, error) {
	if uri == "" {
		return models.User{}, fail(KindInvalid, "Cover image file is missing")
	}
	return s.setImage(ctx, userID, func(u *models.User) { u.CoverImage = uri })
}

func (s *AuthService) setImage(ctx context.Context, userID string, set func(*models.User)) (models.User, error) {
	rec, err := s.users.Update(ctx, userID, func(u *repository.UserRecord) error {
		set(&u.User)
		u.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.User{}, notFound(err, "User does not exist")
	}
	return rec.User, nil
}

// open issues a fresh token pair and records the refresh token.
func (s *AuthService) open(ctx context.Context, userID string) (Session, error) {
	access, accessExp, err := s.tokens.Issue(userID, AccessToken)
	if err != nil {
		return Session{}, internal(err)
	}
	refresh, refreshExp, err := s.tokens.Issue(userID, RefreshToken)
	if err != nil {
		return Session{}, internal(err)
	}
	rec, err := s.users.Update(ctx, userID, func(u *repository.UserRecord) error {
		u.RefreshToken = refresh
		return nil
	})
	if err != nil {
		return Session{}, notFound(err, "User does not exist")
	}
	return Session{
		User:           rec.User,
		AccessToken:    access,
		AccessExpires:  accessExp,
		RefreshToken:   refresh,
		RefreshExpires: refreshExp,
	}, nil
}
