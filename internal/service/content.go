package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/models"
	"github.com/atinyakov/GophTube/internal/repository"
)

// Tables are the repositories the content service works on.
type Tables struct {
	Users         Table[repository.UserRecord]
	Videos        Table[models.Video]
	Comments      Table[models.Comment]
	Posts         Table[models.CommunityPost]
	Likes         Table[repository.Like]
	Subscriptions Table[repository.Subscription]
	Playlists     Table[repository.PlaylistRecord]
}

// StoreTables exposes the tables of an in-memory store.
func StoreTables(s *repository.Store) Tables {
	return Tables{
		Users:         s.Users,
		Videos:        s.Videos,
		Comments:      s.Comments,
		Posts:         s.Posts,
		Likes:         s.Likes,
		Subscriptions: s.Subscriptions,
		Playlists:     s.Playlists,
	}
}

// ContentService implements everything users publish and react to.
type ContentService struct {
	db    Tables
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewContentService constructs a ContentService over db.
func NewContentService(db Tables, log *zap.Logger) *ContentService {
	return &ContentService{
		db:    db,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// owner expands a user reference. Unknown users stay bare ids.
func (s *ContentService) owner(ctx context.Context, userID string) models.Owner {
	rec, err := s.db.Users.Get(ctx, userID)
	if err != nil {
		return models.OwnerID(userID)
	}
	u := rec.User
	u.WatchHistory = nil
	return models.ExpandedOwner(u)
}

func (s *ContentService) expandVideo(ctx context.Context, v models.Video) models.Video {
	v.Owner = s.owner(ctx, v.Owner.UserID())
	return v
}

func (s *ContentService) requireUser(ctx context.Context, userID, msg string) (repository.UserRecord, error) {
	rec, err := s.db.Users.Get(ctx, userID)
	if err != nil {
		return repository.UserRecord{}, notFound(err, msg)
	}
	return rec, nil
}
