package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/middleware"
	"github.com/atinyakov/GophTube/internal/models"
)

// PlaylistService defines the playlist operations required by
// PlaylistHandler.
type PlaylistService interface {
	CreatePlaylist(ctx context.Context, userID string, in models.PlaylistInput) (models.Playlist, error)
	Playlist(ctx context.Context, playlistID string) (models.Playlist, error)
	UserPlaylists(ctx context.Context, userID string) ([]models.Playlist, error)
	AddVideoToPlaylist(ctx context.Context, userID, playlistID, videoID string) (models.Playlist, error)
	RemoveVideoFromPlaylist(ctx context.Context, userID, playlistID, videoID string) (models.Playlist, error)
	UpdatePlaylist(ctx context.Context, userID, playlistID string, in models.PlaylistInput) (models.Playlist, error)
	DeletePlaylist(ctx context.Context, userID, playlistID string) error
}

// PlaylistHandler handles the /playlists endpoints.
type PlaylistHandler struct {
	PlaylistService PlaylistService
	Logger          *zap.Logger
}

// Create handles POST /playlists/.
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.PlaylistInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid request")
		return
	}
	p, err := h.PlaylistService.CreatePlaylist(r.Context(), middleware.GetUserIDFromContext(r.Context()), in)
	h.reply(w, http.StatusCreated, p, err, "Playlist created successfully")
}

// Get handles GET /playlists/get-playlist/{playlistId}.
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.PlaylistService.Playlist(r.Context(), chi.URLParam(r, "playlistId"))
	h.reply(w, http.StatusOK, p, err, "Playlist fetched successfully")
}

// UserPlaylists handles GET /playlists/get-user-playlist/{userId}.
func (h *PlaylistHandler) UserPlaylists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.PlaylistService.UserPlaylists(r.Context(), chi.URLParam(r, "userId"))
	h.reply(w, http.StatusOK, lists, err, "Playlists fetched successfully")
}

// AddVideo handles POST /playlists/add-videos/{playlistId}/{videoId}.
func (h *PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	p, err := h.PlaylistService.AddVideoToPlaylist(r.Context(), middleware.GetUserIDFromContext(r.Context()),
		chi.URLParam(r, "playlistId"), chi.URLParam(r, "videoId"))
	h.reply(w, http.StatusOK, p, err, "Video added to playlist")
}

// RemoveVideo handles POST /playlists/remove-video/{playlistId}/{videoId}.
func (h *PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	p, err := h.PlaylistService.RemoveVideoFromPlaylist(r.Context(), middleware.GetUserIDFromContext(r.Context()),
		chi.URLParam(r, "playlistId"), chi.URLParam(r, "videoId"))
	h.reply(w, http.StatusOK, p, err, "Video removed from playlist")
}

// Update handles POST /playlists/update-playlist/{playlistId}.
func (h *PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.PlaylistInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid request")
		return
	}
	p, err := h.PlaylistService.UpdatePlaylist(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "playlistId"), in)
	h.reply(w, http.StatusOK, p, err, "Playlist updated successfully")
}

// Delete handles POST /playlists/delete-playlist/{playlistId}.
func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.PlaylistService.DeletePlaylist(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "playlistId"))
	h.reply(w, http.StatusOK, struct{}{}, err, "Playlist deleted successfully")
}

func (h *PlaylistHandler) reply(w http.ResponseWriter, status int, data any, err error, msg string) {
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, status, data, msg)
}
