package repository

import (
	"strings"
	"time"

	"github.com/atinyakov/GophTube/internal/models"
)

// UserRecord is a stored account.
type UserRecord struct {
	models.User
	// PasswordHash is the bcrypt hash of the password.
	PasswordHash []byte
	// RefreshToken is the only refresh token the account currently accepts.
	RefreshToken string
}

// LikeKind names what a like points at.
type LikeKind string

const (
	LikeVideo   LikeKind = "video"
	LikeComment LikeKind = "comment"
	LikePost    LikeKind = "post"
)

// Like is one user's like of a video, comment or post.
type Like struct {
	ID        string
	Kind      LikeKind
	TargetID  string
	UserID    string
	CreatedAt time.Time
}

// Subscription links a subscriber to a channel.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// PlaylistRecord is a stored playlist. Videos are kept as ids and expanded
// on read.
type PlaylistRecord struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	VideoIDs    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store groups the tables of the development backend.
type Store struct {
	Users         *Table[UserRecord]
	Videos        *Table[models.Video]
	Comments      *Table[models.Comment]
	Posts         *Table[models.CommunityPost]
	Likes         *Table[Like]
	Subscriptions *Table[Subscription]
	Playlists     *Table[PlaylistRecord]
}

// NewStore creates an empty store. Usernames and e-mail addresses are
// unique ignoring case.
func NewStore() *Store {
	return &Store{
		Users: NewTable(
			func(u UserRecord) string { return u.ID },
			func(a, b UserRecord) bool {
				return strings.EqualFold(a.Username, b.Username) || strings.EqualFold(a.Email, b.Email)
			},
		),
		Videos:   NewTable(func(v models.Video) string { return v.ID }, nil),
		Comments: NewTable(func(c models.Comment) string { return c.ID }, nil),
		Posts:    NewTable(func(p models.CommunityPost) string { return p.ID }, nil),
		Likes: NewTable(
			func(l Like) string { return l.ID },
			func(a, b Like) bool { return a.Kind == b.Kind && a.TargetID == b.TargetID && a.UserID == b.UserID },
		),
		Subscriptions: NewTable(
			func(s Subscription) string { return s.ID },
			func(a, b Subscription) bool { return a.SubscriberID == b.SubscriberID && a.ChannelID == b.ChannelID },
		),
		Playlists: NewTable(func(p PlaylistRecord) string { return p.ID }, nil),
	}
}
