package view

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/atinyakov/GophTube/internal/client/api"
	"github.com/atinyakov/GophTube/internal/models"
)

// LibraryLimit is the page size of library listings.
const LibraryLimit = 50

// VideoAPI is the part of the backend client a Library needs.
type VideoAPI interface {
	ListVideos(ctx context.Context, params models.ListVideosParams) (*models.Envelope[[]models.Video], error)
	TogglePublishStatus(ctx context.Context, videoID string) (*models.Envelope[models.Video], error)
	DeleteVideo(ctx context.Context, videoID string) (*models.Envelope[models.Empty], error)
}

// Filter restricts a library listing by publication state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPublished Filter = "published"
	FilterDraft     Filter = "draft"
)

// ParseFilter maps user input to a Filter, defaulting to FilterAll.
func ParseFilter(s string) Filter {
	switch f := Filter(strings.ToLower(s)); f {
	case FilterPublished, FilterDraft:
		return f
	default:
		return FilterAll
	}
}

// Library is a list of videos. In browse mode only published videos are
// kept; otherwise it is the creator's own library with publish and delete.
type Library struct {
	api    VideoAPI
	browse bool
	gen    Generation

	mu     sync.RWMutex
	videos []models.Video
}

// NewLibrary returns an empty library.
func NewLibrary(client VideoAPI, browse bool) *Library {
	return &Library{api: client, browse: browse}
}

// Load fetches a page. Limit defaults to LibraryLimit and the order to
// newest first.
func (l *Library) Load(ctx context.Context, params models.ListVideosParams) error {
	params.Limit = cmp.Or(params.Limit, LibraryLimit)
	params.SortBy = cmp.Or(params.SortBy, "createdAt")
	params.SortType = cmp.Or(params.SortType, models.SortDesc)

	ctx, tok := l.gen.Next(ctx)
	env, err := l.api.ListVideos(ctx, params)
	if !l.gen.Valid(tok) {
		return ErrStale
	}
	if err != nil {
		return err
	}
	if !env.Success {
		return api.ErrRejected
	}

	videos := env.Data
	if l.browse {
		videos = slices.DeleteFunc(slices.Clone(videos), func(v models.Video) bool { return !v.IsPublished })
	}
	l.mu.Lock()
	l.videos = videos
	l.mu.Unlock()
	return nil
}

// TogglePublish flips the published flag of id once the backend confirms.
// A failed or rejected call leaves the flag unchanged.
func (l *Library) TogglePublish(ctx context.Context, id string) (published bool, err error) {
	env, err := l.api.TogglePublishStatus(ctx, id)
	if err != nil {
		return false, err
	}
	if !env.Success {
		return false, api.ErrRejected
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.videos {
		if l.videos[i].ID == id {
			l.videos[i].IsPublished = !l.videos[i].IsPublished
			return l.videos[i].IsPublished, nil
		}
	}
	return env.Data.IsPublished, nil
}

// Delete removes id once the backend confirms.
func (l *Library) Delete(ctx context.Context, id string) error {
	env, err := l.api.DeleteVideo(ctx, id)
	if err != nil {
		return err
	}
	if !env.Success {
		return api.ErrRejected
	}

	l.mu.Lock()
	l.videos = slices.DeleteFunc(l.videos, func(v models.Video) bool { return v.ID == id })
	l.mu.Unlock()
	return nil
}

// Videos returns the loaded videos matching f whose title or description
// contains query, case-insensitively.
func (l *Library) Videos(f Filter, query string) []models.Video {
	query = strings.ToLower(query)

	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Video, 0, len(l.videos))
	for _, v := range l.videos {
		switch {
		case f == FilterPublished && !v.IsPublished:
			continue
		case f == FilterDraft && v.IsPublished:
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(v.Title), query) &&
			!strings.Contains(strings.ToLower(v.Description), query) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Stats summarizes the loaded videos.
type Stats struct {
	Total     int
	Published int
	Drafts    int
	Views     int64
}

// Stats returns counts over every loaded video.
func (l *Library) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var s Stats
	for _, v := range l.videos {
		s.Total++
		s.Views += v.Views
		if v.IsPublished {
			s.Published++
		} else {
			s.Drafts++
		}
	}
	return s
}

// Close cancels an in-flight Load.
func (l *Library) Close() { l.gen.Close() }
