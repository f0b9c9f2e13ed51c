package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/middleware"
	"github.com/atinyakov/GophTube/internal/models"
	"github.com/atinyakov/GophTube/internal/service"
)

// VideoService defines the video operations required by VideoHandler.
type VideoService interface {
	ListVideos(ctx context.Context, viewerID string, q service.VideoQuery) ([]models.Video, error)
	GetVideo(ctx context.Context, viewerID, videoID string) (models.Video, error)
	PublishVideo(ctx context.Context, ownerID string, in service.NewVideo) (models.Video, error)
	UpdateVideo(ctx context.Context, userID, videoID string, in service.VideoChanges) (models.Video, error)
	TogglePublishStatus(ctx context.Context, userID, videoID string) (models.Video, error)
	DeleteVideo(ctx context.Context, userID, videoID string) error
}

// VideoHandler handles the /videos endpoints.
type VideoHandler struct {
	VideoService VideoService
	Logger       *zap.Logger
}

// List handles GET /videos?page=&limit=&sortBy=&sortType=&query=&userId=.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := optionalInt(q.Get("page"))
	if err != nil {
		badRequest(w, "page must be a number")
		return
	}
	limit, err := optionalInt(q.Get("limit"))
	if err != nil {
		badRequest(w, "limit must be a number")
		return
	}

	videos, err := h.VideoService.ListVideos(r.Context(), middleware.GetUserIDFromContext(r.Context()), service.VideoQuery{
		Page:     page,
		Limit:    limit,
		SortBy:   q.Get("sortBy"),
		SortType: models.SortType(q.Get("sortType")),
		Query:    q.Get("query"),
		UserID:   q.Get("userId"),
	})
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, videos, "Videos fetched successfully")
}

// Get handles GET /videos/vid/{videoId}.
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.VideoService.GetVideo(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "videoId"))
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, v, "Video fetched successfully")
}

// Publish handles POST /videos/publish-video with a multipart body of
// title, description, optional duration, videoFile and thumbnail.
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		badRequest(w, "invalid request")
		return
	}
	var duration float64
	if raw := r.FormValue("duration"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 {
			badRequest(w, "duration must be a non-negative number")
			return
		}
		duration = d
	}

	v, err := h.VideoService.PublishVideo(r.Context(), middleware.GetUserIDFromContext(r.Context()), service.NewVideo{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		VideoFile:   mediaURI(r, "videoFile"),
		Thumbnail:   mediaURI(r, "thumbnail"),
		Duration:    duration,
	})
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusCreated, v, "Video published successfully")
}

// Update handles POST /videos/update-video/{videoId} with a multipart body
// of optional title, description and thumbnail.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		badRequest(w, "invalid request")
		return
	}
	v, err := h.VideoService.UpdateVideo(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "videoId"),
		service.VideoChanges{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Thumbnail:   mediaURI(r, "thumbnail"),
		})
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, v, "Video updated successfully")
}

// TogglePublish handles POST /videos/publish-status/{videoId}.
func (h *VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	v, err := h.VideoService.TogglePublishStatus(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "videoId"))
	if err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, v, "Publish status toggled")
}

// Delete handles POST /videos/delete/{videoId}.
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.VideoService.DeleteVideo(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "videoId")); err != nil {
		fail(w, h.Logger, err)
		return
	}
	respond(w, http.StatusOK, struct{}{}, "Video deleted successfully")
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
