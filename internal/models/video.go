package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Video is an uploaded video and its metadata.
type Video struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	VideoFile   string    `json:"videoFile"`
	Duration    float64   `json:"duration"` // seconds
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	Owner       Owner     `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SortType is the list ordering direction.
type SortType string

const (
	SortAsc  SortType = "asc"
	SortDesc SortType = "desc"
)

// ListVideosParams are the optional query parameters of the video listing.
type ListVideosParams struct {
	Page     int
	Limit    int
	SortBy   string
	SortType SortType
	// Search is a free-text match over title and description.
	Search string
	// UserID restricts the listing to one channel.
	UserID string
}

// Query encodes only the parameters that are set.
func (p ListVideosParams) Query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.SortType != "" {
		q.Set("sortType", string(p.SortType))
	}
	if p.Search != "" {
		q.Set("query", p.Search)
	}
	if p.UserID != "" {
		q.Set("userId", p.UserID)
	}
	return q
}

// LikedVideo pairs a like with the liked video.
type LikedVideo struct {
	ID        string    `json:"_id"`
	Video     Video     `json:"video"`
	LikedBy   string    `json:"likedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VideoRef is a playlist entry: either a bare video id or the full video.
type VideoRef struct {
	id    string
	video *Video
}

// VideoRefID returns an unexpanded entry.
func VideoRefID(id string) VideoRef { return VideoRef{id: id} }

// ExpandedVideoRef returns an entry carrying the full video.
func ExpandedVideoRef(v Video) VideoRef { return VideoRef{video: &v} }

// VideoID returns the referenced video's id.
func (r VideoRef) VideoID() string {
	if r.video != nil {
		return r.video.ID
	}
	return r.id
}

// Expanded returns the full video when populated.
func (r VideoRef) Expanded() (Video, bool) {
	if r.video == nil {
		return Video{}, false
	}
	return *r.video, true
}

// UnmarshalJSON accepts a string id or a video object.
func (r *VideoRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*r = VideoRef{}
	case b[0] == '"':
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = VideoRef{id: id}
	case b[0] == '{':
		var v Video
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*r = VideoRef{video: &v}
	default:
		return fmt.Errorf("video ref: unsupported json value %q", b)
	}
	return nil
}

// MarshalJSON writes the full video when present, the id otherwise.
func (r VideoRef) MarshalJSON() ([]byte, error) {
	if r.video != nil {
		return json.Marshal(r.video)
	}
	return json.Marshal(r.id)
}
