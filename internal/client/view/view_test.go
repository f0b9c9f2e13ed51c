package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/GophTube/internal/client/api"
	"github.com/atinyakov/GophTube/internal/client/form"
	"github.com/atinyakov/GophTube/internal/models"
)

func ok[T any](data T) *models.Envelope[T] {
	return &models.Envelope[T]{StatusCode: 200, Data: data, Success: true}
}

func rejected[T any]() *models.Envelope[T] {
	return &models.Envelope[T]{StatusCode: 200, Success: false, Message: "nope"}
}

type fakeVideos struct {
	list   func(ctx context.Context, p models.ListVideosParams) (*models.Envelope[[]models.Video], error)
	toggle func(id string) (*models.Envelope[models.Video], error)
	del    func(id string) (*models.Envelope[models.Empty], error)

	mu      sync.Mutex
	lastReq models.ListVideosParams
}

func (f *fakeVideos) ListVideos(ctx context.Context, p models.ListVideosParams) (*models.Envelope[[]models.Video], error) {
	f.mu.Lock()
	f.lastReq = p
	f.mu.Unlock()
	return f.list(ctx, p)
}

func (f *fakeVideos) TogglePublishStatus(_ context.Context, id string) (*models.Envelope[models.Video], error) {
	return f.toggle(id)
}

func (f *fakeVideos) DeleteVideo(_ context.Context, id string) (*models.Envelope[models.Empty], error) {
	return f.del(id)
}

func sampleVideos() []models.Video {
	return []models.Video{
		{ID: "v1", Title: "Go Concurrency", Description: "channels", IsPublished: true, Views: 10},
		{ID: "v2", Title: "Draft cut", Description: "unfinished GO talk", IsPublished: false, Views: 0},
		{ID: "v3", Title: "Cooking", Description: "pasta", IsPublished: true, Views: 5},
	}
}

func loadedLibrary(t *testing.T, f *fakeVideos, browse bool) *Library {
	t.Helper()
	f.list = func(context.Context, models.ListVideosParams) (*models.Envelope[[]models.Video], error) {
		return ok(sampleVideos()), nil
	}
	l := NewLibrary(f, browse)
	require.NoError(t, l.Load(context.Background(), models.ListVideosParams{}))
	return l
}

func TestLibrary_LoadDefaults(t *testing.T) {
	f := &fakeVideos{}
	l := loadedLibrary(t, f, false)

	assert.Equal(t, models.ListVideosParams{Limit: 50, SortBy: "createdAt", SortType: models.SortDesc}, f.lastReq)
	assert.Len(t, l.Videos(FilterAll, ""), 3)
	assert.Equal(t, Stats{Total: 3, Published: 2, Drafts: 1, Views: 15}, l.Stats())
}

func TestLibrary_BrowseKeepsPublished(t *testing.T) {
	l := loadedLibrary(t, &fakeVideos{}, true)
	got := l.Videos(FilterAll, "")
	require.Len(t, got, 2)
	for _, v := range got {
		assert.True(t, v.IsPublished)
	}
}

func TestLibrary_Filter(t *testing.T) {
	l := loadedLibrary(t, &fakeVideos{}, false)

	ids := func(vs []models.Video) []string {
		out := make([]string, 0, len(vs))
		for _, v := range vs {
			out = append(out, v.ID)
		}
		return out
	}
	assert.Equal(t, []string{"v1", "v3"}, ids(l.Videos(FilterPublished, "")))
	assert.Equal(t, []string{"v2"}, ids(l.Videos(FilterDraft, "")))
	assert.Equal(t, []string{"v1", "v2"}, ids(l.Videos(FilterAll, "go")))
	assert.Equal(t, []string{"v2"}, ids(l.Videos(FilterDraft, "GO")))
	assert.Empty(t, l.Videos(FilterPublished, "unfinished"))
}

func TestParseFilter(t *testing.T) {
	assert.Equal(t, FilterPublished, ParseFilter("Published"))
	assert.Equal(t, FilterDraft, ParseFilter("draft"))
	assert.Equal(t, FilterAll, ParseFilter("whatever"))
}

func TestLibrary_TogglePublish(t *testing.T) {
	tests := []struct {
		name    string
		toggle  func(string) (*models.Envelope[models.Video], error)
		wantErr error
		want    bool
	}{
		{"confirmed", func(string) (*models.Envelope[models.Video], error) { return ok(models.Video{}), nil }, nil, false},
		{"rejected", func(string) (*models.Envelope[models.Video], error) { return rejected[models.Video](), nil }, api.ErrRejected, true},
		{"failed", func(string) (*models.Envelope[models.Video], error) {
			return nil, &api.Error{Kind: api.KindHTTP, StatusCode: 403, Message: "forbidden"}
		}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeVideos{toggle: tt.toggle}
			l := loadedLibrary(t, f, false)

			_, err := l.TogglePublish(context.Background(), "v1")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.name == "failed":
				assert.EqualError(t, err, "forbidden")
			default:
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, l.Videos(FilterAll, "")[0].IsPublished)
		})
	}
}

func TestLibrary_Delete(t *testing.T) {
	f := &fakeVideos{del: func(id string) (*models.Envelope[models.Empty], error) {
		if id == "v2" {
			return rejected[models.Empty](), nil
		}
		return ok(models.Empty(nil)), nil
	}}
	l := loadedLibrary(t, f, false)

	require.NoError(t, l.Delete(context.Background(), "v1"))
	assert.ErrorIs(t, l.Delete(context.Background(), "v2"), api.ErrRejected)
	assert.Len(t, l.Videos(FilterAll, ""), 2)
	assert.Equal(t, "v2", l.Videos(FilterAll, "")[0].ID)
}

func TestLibrary_StaleLoadDiscarded(t *testing.T) {
	started := make(chan struct{})
	f := &fakeVideos{}
	var once sync.Once
	f.list = func(ctx context.Context, p models.ListVideosParams) (*models.Envelope[[]models.Video], error) {
		if p.SortType == models.SortAsc {
			once.Do(func() { close(started) })
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return ok(sampleVideos()[:1]), nil
	}
	l := NewLibrary(f, false)

	slow := make(chan error, 1)
	go func() { slow <- l.Load(context.Background(), models.ListVideosParams{SortType: models.SortAsc}) }()
	<-started

	require.NoError(t, l.Load(context.Background(), models.ListVideosParams{}))
	select {
	case err := <-slow:
		assert.ErrorIs(t, err, ErrStale)
	case <-time.After(time.Second):
		t.Fatal("superseded load was not cancelled")
	}
	assert.Len(t, l.Videos(FilterAll, ""), 1)
}

func TestGeneration(t *testing.T) {
	var g Generation
	ctx1, t1 := g.Next(context.Background())
	assert.True(t, g.Valid(t1))

	ctx2, t2 := g.Next(context.Background())
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.False(t, g.Valid(t1))
	assert.True(t, g.Valid(t2))

	g.Close()
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
	assert.False(t, g.Valid(t2))

	ctx3, t3 := g.Next(context.Background())
	assert.Error(t, ctx3.Err())
	assert.False(t, g.Valid(t3))
}

type fakeComments struct {
	comments []models.Comment
	loads    int
	addErr   error
	loadErr  error
	// onLoad runs once at the start of the next VideoComments call.
	onLoad func()
}

func (f *fakeComments) VideoComments(context.Context, string) (*models.Envelope[[]models.Comment], error) {
	f.loads++
	if hook := f.onLoad; hook != nil {
		f.onLoad = nil
		hook()
	}
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return ok(append([]models.Comment(nil), f.comments...)), nil
}

func (f *fakeComments) AddComment(_ context.Context, channelID, videoID, content string) (*models.Envelope[models.Comment], error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	c := models.Comment{ID: "c" + content, Content: content, Video: videoID, Owner: models.OwnerID(channelID)}
	f.comments = append(f.comments, c)
	return ok(c), nil
}

func (f *fakeComments) UpdateComment(_ context.Context, id, content string) (*models.Envelope[models.Comment], error) {
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments[i].Content = content
			return ok(f.comments[i]), nil
		}
	}
	return rejected[models.Comment](), nil
}

func (f *fakeComments) DeleteComment(context.Context, string) (*models.Envelope[models.Empty], error) {
	return ok(models.Empty(nil)), nil
}

func (f *fakeComments) ToggleCommentLike(context.Context, string) (*models.Envelope[models.CommentLike], error) {
	return ok(models.CommentLike{IsCommentLiked: true}), nil
}

func TestThread(t *testing.T) {
	ctx := context.Background()
	f := &fakeComments{comments: []models.Comment{{ID: "c0", Content: "first"}}}
	th := NewThread(f, "v1")
	require.NoError(t, th.Load(ctx))
	require.Len(t, th.Comments(), 1)

	require.NoError(t, th.Add(ctx, "u1", "second"))
	got := th.Comments()
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[1].Owner.UserID())
	assert.Equal(t, "v1", got[1].Video)

	var errs form.Errors
	require.ErrorAs(t, th.Add(ctx, "u1", "   "), &errs)
	assert.Equal(t, 2, f.loads)

	require.NoError(t, th.Edit(ctx, "c0", "edited"))
	assert.Equal(t, "edited", th.Comments()[0].Content)
	assert.ErrorIs(t, th.Edit(ctx, "missing", "x"), api.ErrRejected)

	liked, err := th.ToggleLike(ctx, "c0")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, th.Liked("c0"))

	require.NoError(t, th.Remove(ctx, "c0"))
	assert.Len(t, th.Comments(), 1)
	assert.False(t, th.Liked("c0"))
}

func TestThread_AddConfirmedDespiteReload(t *testing.T) {
	ctx := context.Background()

	t.Run("reload superseded", func(t *testing.T) {
		f := &fakeComments{}
		th := NewThread(f, "v1")
		// a newer Load starts while the post-add reload is in flight
		f.onLoad = func() { require.NoError(t, th.Load(ctx)) }

		require.NoError(t, th.Add(ctx, "u1", "saved"))
		assert.Len(t, th.Comments(), 1)
	})

	t.Run("reload failed", func(t *testing.T) {
		f := &fakeComments{loadErr: errors.New("connection reset")}
		th := NewThread(f, "v1")

		err := th.Add(ctx, "u1", "saved")
		assert.ErrorIs(t, err, ErrNotReloaded)
		assert.ErrorContains(t, err, "connection reset")
		assert.Len(t, f.comments, 1)

		err = th.Edit(ctx, "csaved", "edited")
		assert.ErrorIs(t, err, ErrNotReloaded)
		assert.Equal(t, "edited", f.comments[0].Content)
	})
}

func TestThread_AddFailureKeepsComments(t *testing.T) {
	f := &fakeComments{comments: []models.Comment{{ID: "c0"}}, addErr: errors.New("boom")}
	th := NewThread(f, "v1")
	require.NoError(t, th.Load(context.Background()))

	assert.EqualError(t, th.Add(context.Background(), "u1", "hello"), "boom")
	assert.Len(t, th.Comments(), 1)
}

type fakePosts struct {
	posts   []models.CommunityPost
	channel string
}

func (f *fakePosts) AllPosts(context.Context) (*models.Envelope[[]models.CommunityPost], error) {
	return ok(append([]models.CommunityPost(nil), f.posts...)), nil
}

func (f *fakePosts) ChannelPosts(_ context.Context, channelID string) (*models.Envelope[[]models.CommunityPost], error) {
	f.channel = channelID
	return ok(append([]models.CommunityPost(nil), f.posts...)), nil
}

func (f *fakePosts) CreatePost(_ context.Context, content string) (*models.Envelope[models.CommunityPost], error) {
	p := models.CommunityPost{ID: "p" + content, Content: content}
	f.posts = append([]models.CommunityPost{p}, f.posts...)
	return ok(p), nil
}

func (f *fakePosts) UpdatePost(_ context.Context, id, content string) (*models.Envelope[models.CommunityPost], error) {
	return rejected[models.CommunityPost](), nil
}

func (f *fakePosts) DeletePost(context.Context, string) (*models.Envelope[models.Empty], error) {
	return nil, &api.Error{Kind: api.KindHTTP, StatusCode: 403, Message: "You are not allowed to delete this post"}
}

func (f *fakePosts) TogglePostLike(context.Context, string) (*models.Envelope[models.PostLike], error) {
	return ok(models.PostLike{IsCommunityLiked: false}), nil
}

func TestBoard(t *testing.T) {
	ctx := context.Background()
	f := &fakePosts{posts: []models.CommunityPost{{ID: "p0", Content: "hello"}}}
	b := NewBoard(f, "")
	require.NoError(t, b.Load(ctx))

	require.NoError(t, b.Create(ctx, "news"))
	assert.Equal(t, "news", b.Posts()[0].Content)

	assert.ErrorIs(t, b.Edit(ctx, "p0", "changed"), api.ErrRejected)
	assert.Equal(t, "hello", b.Posts()[1].Content)

	err := b.Remove(ctx, "p0")
	assert.EqualError(t, err, "You are not allowed to delete this post")
	assert.Len(t, b.Posts(), 2)

	liked, err := b.ToggleLike(ctx, "p0")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestBoard_Channel(t *testing.T) {
	f := &fakePosts{}
	b := NewBoard(f, "u9")
	require.NoError(t, b.Load(context.Background()))
	assert.Equal(t, "u9", f.channel)
	b.Close()
	assert.ErrorIs(t, b.Load(context.Background()), ErrStale)
}
