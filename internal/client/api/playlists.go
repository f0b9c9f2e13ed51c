package api

import (
	"context"
	"net/url"

	"github.com/atinyakov/GophTube/internal/models"
)

// CreatePlaylist creates an empty playlist.
func (c *Client) CreatePlaylist(ctx context.Context, in models.PlaylistInput) (*models.Envelope[models.Playlist], error) {
	return call[models.Playlist](ctx, c, "/playlists/", post(in))
}

// AddVideoToPlaylist appends videoID to a playlist.
func (c *Client) AddVideoToPlaylist(ctx context.Context, playlistID, videoID string) (*models.Envelope[models.Playlist], error) {
	endpoint := "/playlists/add-videos/" + url.PathEscape(playlistID) + "/" + url.PathEscape(videoID)
	return call[models.Playlist](ctx, c, endpoint, post(nil))
}

// RemoveVideoFromPlaylist drops videoID from a playlist.
func (c *Client) RemoveVideoFromPlaylist(ctx context.Context, playlistID, videoID string) (*models.Envelope[models.Playlist], error) {
	endpoint := "/playlists/remove-video/" + url.PathEscape(playlistID) + "/" + url.PathEscape(videoID)
	return call[models.Playlist](ctx, c, endpoint, post(nil))
}

// GetPlaylist returns one playlist.
func (c *Client) GetPlaylist(ctx context.Context, playlistID string) (*models.Envelope[models.Playlist], error) {
	return call[models.Playlist](ctx, c, "/playlists/get-playlist/"+url.PathEscape(playlistID), RequestOptions{})
}

// UserPlaylists lists the playlists owned by userID.
func (c *Client) UserPlaylists(ctx context.Context, userID string) (*models.Envelope[[]models.Playlist], error) {
	return call[[]models.Playlist](ctx, c, "/playlists/get-user-playlist/"+url.PathEscape(userID), RequestOptions{})
}

// UpdatePlaylist renames or re-describes a playlist.
func (c *Client) UpdatePlaylist(ctx context.Context, playlistID string, in models.PlaylistInput) (*models.Envelope[models.Playlist], error) {
	return call[models.Playlist](ctx, c, "/playlists/update-playlist/"+url.PathEscape(playlistID), post(in))
}

// DeletePlaylist removes a playlist.
func (c *Client) DeletePlaylist(ctx context.Context, playlistID string) (*models.Envelope[models.Empty], error) {
	return call[models.Empty](ctx, c, "/playlists/delete-playlist/"+url.PathEscape(playlistID), post(nil))
}
