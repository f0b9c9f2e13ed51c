package view

import (
	"context"
	"slices"
	"sync"

	"github.com/atinyakov/GophTube/internal/client/api"
	"github.com/atinyakov/GophTube/internal/client/form"
	"github.com/atinyakov/GophTube/internal/models"
)

// PostAPI is the part of the backend client a Board needs.
type PostAPI interface {
	AllPosts(ctx context.Context) (*models.Envelope[[]models.CommunityPost], error)
	ChannelPosts(ctx context.Context, channelID string) (*models.Envelope[[]models.CommunityPost], error)
	CreatePost(ctx context.Context, content string) (*models.Envelope[models.CommunityPost], error)
	UpdatePost(ctx context.Context, postID, content string) (*models.Envelope[models.CommunityPost], error)
	DeletePost(ctx context.Context, postID string) (*models.Envelope[models.Empty], error)
	TogglePostLike(ctx context.Context, postID string) (*models.Envelope[models.PostLike], error)
}

// Board is the community post feed, either global or for one channel.
type Board struct {
	api       PostAPI
	channelID string
	gen       Generation

	mu    sync.RWMutex
	posts []models.CommunityPost
	liked map[string]bool
}

// NewBoard returns an empty board. An empty channelID means every post.
func NewBoard(client PostAPI, channelID string) *Board {
	return &Board{api: client, channelID: channelID, liked: make(map[string]bool)}
}

// Load fetches the posts.
func (b *Board) Load(ctx context.Context) error {
	ctx, tok := b.gen.Next(ctx)
	var (
		env *models.Envelope[[]models.CommunityPost]
		err error
	)
	if b.channelID == "" {
		env, err = b.api.AllPosts(ctx)
	} else {
		env, err = b.api.ChannelPosts(ctx, b.channelID)
	}
	if !b.gen.Valid(tok) {
		return ErrStale
	}
	if err != nil {
		return err
	}
	if !env.Success {
		return api.ErrRejected
	}
	b.mu.Lock()
	b.posts = env.Data
	b.mu.Unlock()
	return nil
}

// Create publishes a post and reloads the board.
func (b *Board) Create(ctx context.Context, content string) error {
	if err := form.Content(content); err != nil {
		return err
	}
	env, err := b.api.CreatePost(ctx, content)
	if err != nil {
		return err
	}
	if !env.Success {
		return api.ErrRejected
	}
	return reloaded(b.Load(ctx))
}

// Edit replaces the content of a post and reloads the board.
func (b *Board) Edit(ctx context.Context, postID, content string) error {
	if err := form.Content(content); err != nil {
		return err
	}
	env, err := b.api.UpdatePost(ctx, postID, content)
	if err != nil {
		return err
	}
	if !env.Success {
		return api.ErrRejected
	}
	return reloaded(b.Load(ctx))
}

// Remove deletes a post once the backend confirms.
func (b *Board) Remove(ctx context.Context, postID string) error {
	env, err := b.api.DeletePost(ctx, postID)
	if err != nil {
		return err
	}
	if !env.Success {
		return api.ErrRejected
	}
	b.mu.Lock()
	b.posts = slices.DeleteFunc(b.posts, func(p models.CommunityPost) bool { return p.ID == postID })
	delete(b.liked, postID)
	b.mu.Unlock()
	return nil
}

// ToggleLike likes or unlikes a post and returns the new state.
func (b *Board) ToggleLike(ctx context.Context, postID string) (bool, error) {
	env, err := b.api.TogglePostLike(ctx, postID)
	if err != nil {
		return false, err
	}
	if !env.Success {
		return false, api.ErrRejected
	}
	b.mu.Lock()
	b.liked[postID] = env.Data.IsCommunityLiked
	b.mu.Unlock()
	return env.Data.IsCommunityLiked, nil
}

// Posts returns a copy of the loaded posts.
func (b *Board) Posts() []models.CommunityPost {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.posts)
}

// Liked reports the last confirmed like state of a post.
func (b *Board) Liked(postID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.liked[postID]
}

// Close cancels an in-flight Load.
func (b *Board) Close() { b.gen.Close() }
