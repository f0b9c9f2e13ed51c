package form

import (
	"slices"
	"strings"

	"github.com/atinyakov/GophTube/internal/client/api"
)

var (
	videoTypes     = []string{"video/mp4", "video/avi", "video/mov", "video/wmv"}
	thumbnailTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}
)

// checkImage validates an avatar or cover image.
func checkImage(u api.Upload) string {
	if u.Size > MaxImageSize {
		return "File size must be less than 5MB"
	}
	if !strings.HasPrefix(u.ContentType, "image/") {
		return "Please select an image file"
	}
	return ""
}

// CheckImage validates a standalone avatar or cover image upload.
func CheckImage(field string, u api.Upload) error {
	if msg := checkImage(u); msg != "" {
		return Errors{field: msg}
	}
	return nil
}

// Upload is the publish-video form.
type Upload struct {
	Title       string
	Description string
	Video       *api.Upload
	Thumbnail   *api.Upload
}

// Validate checks the form and returns Errors on failure.
func (u Upload) Validate() error {
	errs := Errors{}
	if blank(u.Title) {
		errs["title"] = "Title is required"
	}
	switch {
	case u.Video == nil:
		errs["videoFile"] = "Video file is required"
	case u.Video.Size > MaxVideoSize:
		errs["videoFile"] = "File size must be less than 100MB"
	case !slices.Contains(videoTypes, u.Video.ContentType):
		errs["videoFile"] = "Please select a valid video file"
	}
	switch {
	case u.Thumbnail == nil:
		errs["thumbnail"] = "Thumbnail is required"
	case u.Thumbnail.Size > MaxImageSize:
		errs["thumbnail"] = "File size must be less than 5MB"
	case !slices.Contains(thumbnailTypes, u.Thumbnail.ContentType):
		errs["thumbnail"] = "Please select a valid image file"
	}
	return errs.orNil()
}

// Form builds the multipart publish body.
func (u Upload) Form() *api.Form {
	f := api.NewForm().
		Set("title", u.Title).
		Set("description", u.Description)
	if u.Video != nil {
		f.Upload("videoFile", *u.Video)
	}
	if u.Thumbnail != nil {
		f.Upload("thumbnail", *u.Thumbnail)
	}
	return f
}

// Content validates the body of a comment or community post.
func Content(s string) error {
	if blank(s) {
		return Errors{"content": "Content is required"}
	}
	return nil
}
