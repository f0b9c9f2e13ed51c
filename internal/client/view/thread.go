package view

import (
	"context"
	"slices"
	"sync"

	"github.com/atinyakov/GophTube/internal/client/api"
	"github.com/atinyakov/GophTube/internal/client/form"
	"github.com/atinyakov/GophTube/internal/models"
)

// CommentAPI is the part of the backend client a Thread needs.
type CommentAPI interface {
	VideoComments(ctx context.Context, videoID string) (*models.Envelope[[]models.Comment], error)
	AddComment(ctx context.Context, channelID, videoID, content string) (*models.Envelope[models.Comment], error)
	UpdateComment(ctx context.Context, commentID, content string) (*models.Envelope[models.Comment], error)
	DeleteComment(ctx context.Context, commentID string) (*models.Envelope[models.Empty], error)
	ToggleCommentLike(ctx context.Context, commentID string) (*models.Envelope[models.CommentLike], error)
}

// Thread is the comment list under one video.
type Thread struct {
	api     CommentAPI
	videoID string
	gen     Generation

	mu       sync.RWMutex
	comments []models.Comment
	liked    map[string]bool
}

// NewThread returns an empty thread for videoID.
func NewThread(client CommentAPI, videoID string) *Thread {
	return &Thread{api: client, videoID: videoID, liked: make(map[string]bool)}
}

// Load fetches the comments.
func (t *Thread) Load(ctx context.Context) error {
	ctx, tok := t.gen.Next(ctx)
	env, err := t.api.VideoComments(ctx, t.videoID)
	if !t.gen.Valid(tok) {
		return ErrStale
	}
	if err != nil {
		return err
	}
	if !env.Success {
		return api.ErrRejected
	}
	t.mu.Lock()
	t.comments = env.Data
	t.mu.Unlock()
	return nil
}

// Add posts content as userID and reloads the thread.
func (t *Thread) Add(ctx context.Context, userID, content string) error {
	if err := form.Content(content); err != nil {
		return err
	}
	env, err := t.api.AddComment(ctx, userID, t.videoID, content)
	if err != nil {
		return err
	}
	if !env.Success {
		return api.ErrRejected
	}
	return reloaded(t.Load(ctx))
}

// Edit replaces the content of a comment and reloads the thread.
func (t *Thread) Edit(ctx context.Context, commentID, content string) error {
	if err := form.Content(content); err != nil {
		return err
	}
	env, err := t.api.UpdateComment(ctx, commentID, content)
	if err != nil {
		return err
	}
	if !env.Success {
		return api.ErrRejected
	}
	return reloaded(t.Load(ctx))
}

// Remove deletes a comment once the backend confirms.
func (t *Thread) Remove(ctx context.Context, commentID string) error {
	env, err := t.api.DeleteComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !env.Success {
		return api.ErrRejected
	}
	t.mu.Lock()
	t.comments = slices.DeleteFunc(t.comments, func(c models.Comment) bool { return c.ID == commentID })
	delete(t.liked, commentID)
	t.mu.Unlock()
	return nil
}

// ToggleLike likes or unlikes a comment and returns the new state.
func (t *Thread) ToggleLike(ctx context.Context, commentID string) (bool, error) {
	env, err := t.api.ToggleCommentLike(ctx, commentID)
	if err != nil {
		return false, err
	}
	if !env.Success {
		return false, api.ErrRejected
	}
	t.mu.Lock()
	t.liked[commentID] = env.Data.IsCommentLiked
	t.mu.Unlock()
	return env.Data.IsCommentLiked, nil
}

// Comments returns a copy of the loaded comments.
func (t *Thread) Comments() []models.Comment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.comments)
}

// Liked reports the last confirmed like state of a comment.
func (t *Thread) Liked(commentID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.liked[commentID]
}

// Close cancels an in-flight Load.
func (t *Thread) Close() { t.gen.Close() }
