package service

import (
	"context"
	"slices"
	"strings"

	"github.com/atinyakov/GophTube/internal/models"
	"github.com/atinyakov/GophTube/internal/repository"
)

// CreatePlaylist creates an empty playlist owned by userID.
func (s *ContentService) CreatePlaylist(ctx context.Context, userID string, in models.PlaylistInput) (models.Playlist, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Playlist{}, fail(KindInvalid, "Name is required")
	}
	now := s.now()
	p := repository.PlaylistRecord{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		OwnerID:     userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.Playlists.Insert(ctx, p); err != nil {
		return models.Playlist{}, internal(err)
	}
	return s.expandPlaylist(ctx, p), nil
}

// Playlist returns one playlist with its videos expanded.
func (s *ContentService) Playlist(ctx context.Context, playlistID string) (models.Playlist, error) {
	p, err := s.db.Playlists.Get(ctx, playlistID)
	if err != nil {
		return models.Playlist{}, notFound(err, "Playlist not found")
	}
	return s.expandPlaylist(ctx, p), nil
}

// UserPlaylists lists the playlists owned by userID.
func (s *ContentService) UserPlaylists(ctx context.Context, userID string) ([]models.Playlist, error) {
	if _, err := s.requireUser(ctx, userID, "User does not exist"); err != nil {
		return nil, err
	}
	records, err := s.db.Playlists.Filter(ctx, func(p repository.PlaylistRecord) bool { return p.OwnerID == userID })
	if err != nil {
		return nil, internal(err)
	}
	out := make([]models.Playlist, 0, len(records))
	for _, p := range records {
		out = append(out, s.expandPlaylist(ctx, p))
	}
	return out, nil
}

// AddVideoToPlaylist appends a video unless the playlist already holds it.
func (s *ContentService) AddVideoToPlaylist(ctx context.Context, userID, playlistID, videoID string) (models.Playlist, error) {
	if _, err := s.db.Videos.Get(ctx, videoID); err != nil {
		return models.Playlist{}, notFound(err, "Video not found")
	}
	return s.editPlaylist(ctx, userID, playlistID, func(p *repository.PlaylistRecord) {
		if !slices.Contains(p.VideoIDs, videoID) {
			p.VideoIDs = append(slices.Clone(p.VideoIDs), videoID)
		}
	})
}

// RemoveVideoFromPlaylist drops a video from the playlist.
func (s *ContentService) RemoveVideoFromPlaylist(ctx context.Context, userID, playlistID, videoID string) (models.Playlist, error) {
	return s.editPlaylist(ctx, userID, playlistID, func(p *repository.PlaylistRecord) {
		p.VideoIDs = slices.DeleteFunc(slices.Clone(p.VideoIDs), func(id string) bool { return id == videoID })
	})
}

// UpdatePlaylist renames or re-describes a playlist owned by userID.
func (s *ContentService) UpdatePlaylist(ctx context.Context, userID, playlistID string, in models.PlaylistInput) (models.Playlist, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" && description == "" {
		return models.Playlist{}, fail(KindInvalid, "Nothing to update")
	}
	return s.editPlaylist(ctx, userID, playlistID, func(p *repository.PlaylistRecord) {
		if name != "" {
			p.Name = name
		}
		if description != "" {
			p.Description = description
		}
	})
}

// DeletePlaylist removes a playlist owned by userID.
func (s *ContentService) DeletePlaylist(ctx context.Context, userID, playlistID string) error {
	p, err := s.db.Playlists.Get(ctx, playlistID)
	if err != nil {
		return notFound(err, "Playlist not found")
	}
	if p.OwnerID != userID {
		return fail(KindForbidden, "You are not allowed to modify this playlist")
	}
	if err := s.db.Playlists.Delete(ctx, playlistID); err != nil {
		return notFound(err, "Playlist not found")
	}
	return nil
}

func (s *ContentService) editPlaylist(ctx context.Context, userID, playlistID string, edit func(*repository.PlaylistRecord)) (models.Playlist, error) {
	p, err := s.db.Playlists.Update(ctx, playlistID, func(p *repository.PlaylistRecord) error {
		if p.OwnerID != userID {
			return fail(KindForbidden, "You are not allowed to modify this playlist")
		}
		edit(p)
		p.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.Playlist{}, notFound(err, "Playlist not found")
	}
	return s.expandPlaylist(ctx, p), nil
}

// expandPlaylist resolves video ids. Videos that no longer exist stay
// bare ids.
func (s *ContentService) expandPlaylist(ctx context.Context, p repository.PlaylistRecord) models.Playlist {
	refs := make([]models.VideoRef, 0, len(p.VideoIDs))
	for _, id := range p.VideoIDs {
		v, err := s.db.Videos.Get(ctx, id)
		if err != nil {
			refs = append(refs, models.VideoRefID(id))
			continue
		}
		refs = append(refs, models.ExpandedVideoRef(s.expandVideo(ctx, v)))
	}
	return models.Playlist{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Videos:      refs,
		Owner:       p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
