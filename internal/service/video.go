package service

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/models"
	"github.com/atinyakov/GophTube/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// VideoQuery selects a page of the video listing.
type VideoQuery struct {
	Page     int
	Limit    int
	SortBy   string
	SortType models.SortType
	// Query matches title or description, ignoring case.
	Query string
	// UserID restricts the listing to one channel.
	UserID string
}

// NewVideo is the input of a video upload.
type NewVideo struct {
	Title       string
	Description string
	VideoFile   string
	Thumbnail   string
	Duration    float64
}

// VideoChanges are the editable fields of a video. Empty fields are kept.
type VideoChanges struct {
	Title       string
	Description string
	Thumbnail   string
}

// visible reports whether viewerID may see v: published videos are
// public, drafts only to their owner.
func visible(v models.Video, viewerID string) bool {
	return v.IsPublished || (viewerID != "" && v.Owner.UserID() == viewerID)
}

// ListVideos returns one page of the videos viewerID may see.
func (s *ContentService) ListVideos(ctx context.Context, viewerID string, q VideoQuery) ([]models.Video, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	videos, err := s.db.Videos.Filter(ctx, func(v models.Video) bool {
		if !visible(v, viewerID) {
			return false
		}
		if q.UserID != "" && v.Owner.UserID() != q.UserID {
			return false
		}
		return needle == "" ||
			strings.Contains(strings.ToLower(v.Title), needle) ||
			strings.Contains(strings.ToLower(v.Description), needle)
	})
	if err != nil {
		return nil, internal(err)
	}

	slices.SortStableFunc(videos, videoOrder(q.SortBy, q.SortType))

	page := max(q.Page, 1)
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	start := min((page-1)*limit, len(videos))
	end := min(start+limit, len(videos))

	out := make([]models.Video, 0, end-start)
	for _, v := range videos[start:end] {
		out = append(out, s.expandVideo(ctx, v))
	}
	return out, nil
}

func videoOrder(sortBy string, dir models.SortType) func(a, b models.Video) int {
	var by func(a, b models.Video) int
	switch sortBy {
	case "views":
		by = func(a, b models.Video) int { return cmp.Compare(a.Views, b.Views) }
	case "duration":
		by = func(a, b models.Video) int { return cmp.Compare(a.Duration, b.Duration) }
	case "title":
		by = func(a, b models.Video) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) }
	default:
		by = func(a, b models.Video) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	if dir == models.SortAsc {
		return by
	}
	return func(a, b models.Video) int { return by(b, a) }
}

// GetVideo returns a video, counts the view and records it in the
// viewer's watch history.
func (s *ContentService) GetVideo(ctx context.Context, viewerID, videoID string) (models.Video, error) {
	v, err := s.db.Videos.Get(ctx, videoID)
	if err != nil {
		return models.Video{}, notFound(err, "Video not found")
	}
	if !visible(v, viewerID) {
		return models.Video{}, fail(KindNotFound, "Video not found")
	}

	v, err = s.db.Videos.Update(ctx, videoID, func(v *models.Video) error {
		v.Views++
		return nil
	})
	if err != nil {
		return models.Video{}, notFound(err, "Video not found")
	}

	if viewerID != "" {
		_, err := s.db.Users.Update(ctx, viewerID, func(u *repository.UserRecord) error {
			history := slices.DeleteFunc(slices.Clone(u.WatchHistory), func(id string) bool { return id == videoID })
			u.WatchHistory = append([]string{videoID}, history...)
			return nil
		})
		if err != nil {
			s.log.Warn("watch history not updated", zap.String("user_id", viewerID), zap.Error(err))
		}
	}
	return s.expandVideo(ctx, v), nil
}

// PublishVideo stores an upload. New videos are published immediately.
func (s *ContentService) PublishVideo(ctx context.Context, ownerID string, in NewVideo) (models.Video, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	switch {
	case title == "":
		return models.Video{}, fail(KindInvalid, "Title is required")
	case in.VideoFile == "":
		return models.Video{}, fail(KindInvalid, "Video file is required")
	case in.Thumbnail == "":
		return models.Video{}, fail(KindInvalid, "Thumbnail is required")
	}

	now := s.now()
	v := models.Video{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		VideoFile:   in.VideoFile,
		Thumbnail:   in.Thumbnail,
		Duration:    in.Duration,
		IsPublished: true,
		Owner:       models.OwnerID(ownerID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.Videos.Insert(ctx, v); err != nil {
		return models.Video{}, internal(err)
	}
	s.log.Info("video published", zap.String("video_id", v.ID), zap.String("owner", ownerID))
	return s.expandVideo(ctx, v), nil
}

// UpdateVideo edits a video owned by userID.
func (s *ContentService) UpdateVideo(ctx context.Context, userID, videoID string, in VideoChanges) (models.Video, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" && description == "" && in.Thumbnail == "" {
		return models.Video{}, fail(KindInvalid, "Nothing to update")
	}
	v, err := s.db.Videos.Update(ctx, videoID, func(v *models.Video) error {
		if v.Owner.UserID() != userID {
			return fail(KindForbidden, "You are not allowed to update this video")
		}
		if title != "" {
			v.Title = title
		}
		if description != "" {
			v.Description = description
		}
		if in.Thumbnail != "" {
			v.Thumbnail = in.Thumbnail
		}
		v.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.Video{}, notFound(err, "Video not found")
	}
	return s.expandVideo(ctx, v), nil
}

// TogglePublishStatus flips the published flag of a video owned by userID.
func (s *ContentService) TogglePublishStatus(ctx context.Context, userID, videoID string) (models.Video, error) {
	v, err := s.db.Videos.Update(ctx, videoID, func(v *models.Video) error {
		if v.Owner.UserID() != userID {
			return fail(KindForbidden, "You are not allowed to update this video")
		}
		v.IsPublished = !v.IsPublished
		v.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.Video{}, notFound(err, "Video not found")
	}
	return s.expandVideo(ctx, v), nil
}

// DeleteVideo removes a video owned by userID with its comments, likes and
// playlist entries.
func (s *ContentService) DeleteVideo(ctx context.Context, userID, videoID string) error {
	v, err := s.db.Videos.Get(ctx, videoID)
	if err != nil {
		return notFound(err, "Video not found")
	}
	if v.Owner.UserID() != userID {
		return fail(KindForbidden, "You are not allowed to delete this video")
	}
	if err := s.db.Videos.Delete(ctx, videoID); err != nil {
		return notFound(err, "Video not found")
	}

	if _, err := s.db.Comments.DeleteWhere(ctx, func(c models.Comment) bool { return c.Video == videoID }); err != nil {
		return internal(err)
	}
	if _, err := s.db.Likes.DeleteWhere(ctx, func(l repository.Like) bool {
		return l.Kind == repository.LikeVideo && l.TargetID == videoID
	}); err != nil {
		return internal(err)
	}
	playlists, err := s.db.Playlists.Filter(ctx, func(p repository.PlaylistRecord) bool {
		return slices.Contains(p.VideoIDs, videoID)
	})
	if err != nil {
		return internal(err)
	}
	for _, p := range playlists {
		_, err := s.db.Playlists.Update(ctx, p.ID, func(p *repository.PlaylistRecord) error {
			p.VideoIDs = slices.DeleteFunc(slices.Clone(p.VideoIDs), func(id string) bool { return id == videoID })
			return nil
		})
		if err != nil && !isNotFound(err) {
			return internal(err)
		}
	}
	s.log.Info("video deleted", zap.String("video_id", videoID))
	return nil
}
