package api

import (
	"context"
	"net/url"

	"github.com/atinyakov/GophTube/internal/models"
)

// ListVideos returns a page of videos. Unset parameters are omitted.
func (c *Client) ListVideos(ctx context.Context, params models.ListVideosParams) (*models.Envelope[[]models.Video], error) {
	endpoint := "/videos"
	if q := params.Query().Encode(); q != "" {
		endpoint += "?" + q
	}
	return call[[]models.Video](ctx, c, endpoint, RequestOptions{})
}

// GetVideo returns a single video.
func (c *Client) GetVideo(ctx context.Context, videoID string) (*models.Envelope[models.Video], error) {
	return call[models.Video](ctx, c, "/videos/vid/"+url.PathEscape(videoID), RequestOptions{})
}

// PublishVideo uploads a video from a multipart body with title,
// description, videoFile and thumbnail.
func (c *Client) PublishVideo(ctx context.Context, form *Form) (*models.Envelope[models.Video], error) {
	return call[models.Video](ctx, c, "/videos/publish-video", post(form))
}

// UpdateVideo edits title, description and/or thumbnail.
func (c *Client) UpdateVideo(ctx context.Context, videoID string, form *Form) (*models.Envelope[models.Video], error) {
	return call[models.Video](ctx, c, "/videos/update-video/"+url.PathEscape(videoID), post(form))
}

// DeleteVideo removes a video.
func (c *Client) DeleteVideo(ctx context.Context, videoID string) (*models.Envelope[models.Empty], error) {
	return call[models.Empty](ctx, c, "/videos/delete/"+url.PathEscape(videoID), post(nil))
}

// TogglePublishStatus flips the published flag server side.
func (c *Client) TogglePublishStatus(ctx context.Context, videoID string) (*models.Envelope[models.Video], error) {
	return call[models.Video](ctx, c, "/videos/publish-status/"+url.PathEscape(videoID), post(nil))
}
