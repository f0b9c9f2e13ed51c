package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/models"
	"github.com/atinyakov/GophTube/internal/repository"
)

type fixture struct {
	auth    *AuthService
	content *ContentService
	store   *repository.Store
	alice   models.User
	bob     models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	auth, store := newAuthService(t)
	content := NewContentService(StoreTables(store), zap.NewNop())

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	content.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	seq := 0
	content.newID = func() string {
		seq++
		return fmt.Sprintf("id%d", seq)
	}

	return &fixture{
		auth:    auth,
		content: content,
		store:   store,
		alice:   register(t, auth, "alice").User,
		bob:     register(t, auth, "bob").User,
	}
}

func (f *fixture) publish(t *testing.T, owner models.User, title string) models.Video {
	t.Helper()
	v, err := f.content.PublishVideo(context.Background(), owner.ID, NewVideo{
		Title:       title,
		Description: title + " description",
		VideoFile:   "/media/" + title + ".mp4",
		Thumbnail:   "/media/" + title + ".png",
		Duration:    60,
	})
	if err != nil {
		t.Fatalf("PublishVideo(%q) error: %v", title, err)
	}
	return v
}

func TestPublishVideo(t *testing.T) {
	f := newFixture(t)
	v := f.publish(t, f.alice, "intro")

	if !v.IsPublished {
		t.Error("new video should be published")
	}
	owner, ok := v.Owner.Expanded()
	if !ok || owner.Username != "alice" {
		t.Errorf("owner = %+v, expanded %v", owner, ok)
	}

	_, err := f.content.PublishVideo(context.Background(), f.alice.ID, NewVideo{Description: "y"})
	wantKind(t, err, KindInvalid, "Title is required")
	_, err = f.content.PublishVideo(context.Background(), f.alice.ID, NewVideo{Title: "x"})
	wantKind(t, err, KindInvalid, "Video file is required")
}

func TestListVideos_VisibilitySortAndPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a1 := f.publish(t, f.alice, "alpha")
	f.publish(t, f.alice, "beta")
	f.publish(t, f.bob, "gamma")
	if _, err := f.content.TogglePublishStatus(ctx, f.alice.ID, a1.ID); err != nil {
		t.Fatal(err)
	}

	titles := func(vs []models.Video) string {
		var s string
		for _, v := range vs {
			s += v.Title + " "
		}
		return s
	}

	tests := []struct {
		name   string
		viewer string
		q      VideoQuery
		want   string
	}{
		{name: "anonymous sees published newest first", q: VideoQuery{}, want: "gamma beta "},
		{name: "owner sees own draft", viewer: f.alice.ID, q: VideoQuery{}, want: "gamma beta alpha "},
		{name: "other user does not", viewer: f.bob.ID, q: VideoQuery{}, want: "gamma beta "},
		{name: "ascending", viewer: f.alice.ID, q: VideoQuery{SortType: models.SortAsc}, want: "alpha beta gamma "},
		{name: "by title desc", viewer: f.alice.ID, q: VideoQuery{SortBy: "title"}, want: "gamma beta alpha "},
		{name: "page two", viewer: f.alice.ID, q: VideoQuery{Page: 2, Limit: 2}, want: "alpha "},
		{name: "past the end", q: VideoQuery{Page: 5, Limit: 2}, want: ""},
		{name: "search", q: VideoQuery{Query: "GAM"}, want: "gamma "},
		{name: "channel", viewer: f.alice.ID, q: VideoQuery{UserID: f.bob.ID}, want: "gamma "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.content.ListVideos(ctx, tt.viewer, tt.q)
			if err != nil {
				t.Fatalf("ListVideos error: %v", err)
			}
			if titles(got) != tt.want {
				t.Errorf("ListVideos = %q; want %q", titles(got), tt.want)
			}
		})
	}
}

func TestGetVideo_CountsViewsAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v1 := f.publish(t, f.alice, "one")
	v2 := f.publish(t, f.alice, "two")

	for _, id := range []string{v1.ID, v2.ID, v1.ID} {
		if _, err := f.content.GetVideo(ctx, f.bob.ID, id); err != nil {
			t.Fatalf("GetVideo(%s) error: %v", id, err)
		}
	}
	got, _ := f.content.GetVideo(ctx, "", v1.ID)
	if got.Views != 3 {
		t.Errorf("views = %d; want 3", got.Views)
	}

	history, err := f.content.WatchHistory(ctx, f.bob.ID)
	if err != nil {
		t.Fatalf("WatchHistory error: %v", err)
	}
	if len(history) != 2 || history[0].ID != v1.ID || history[1].ID != v2.ID {
		t.Errorf("history = %+v", history)
	}

	_, err = f.content.GetVideo(ctx, f.bob.ID, "missing")
	wantKind(t, err, KindNotFound, "Video not found")

	if _, err := f.content.TogglePublishStatus(ctx, f.alice.ID, v2.ID); err != nil {
		t.Fatal(err)
	}
	_, err = f.content.GetVideo(ctx, f.bob.ID, v2.ID)
	wantKind(t, err, KindNotFound, "Video not found")
}

func TestVideoOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.publish(t, f.alice, "mine")

	_, err := f.content.UpdateVideo(ctx, f.bob.ID, v.ID, VideoChanges{Title: "stolen"})
	wantKind(t, err, KindForbidden, "")
	_, err = f.content.TogglePublishStatus(ctx, f.bob.ID, v.ID)
	wantKind(t, err, KindForbidden, "")
	wantKind(t, f.content.DeleteVideo(ctx, f.bob.ID, v.ID), KindForbidden, "")

	updated, err := f.content.UpdateVideo(ctx, f.alice.ID, v.ID, VideoChanges{Title: "renamed"})
	if err != nil {
		t.Fatalf("UpdateVideo error: %v", err)
	}
	if updated.Title != "renamed" || updated.Description != v.Description {
		t.Errorf("updated = %+v", updated)
	}
	_, err = f.content.UpdateVideo(ctx, f.alice.ID, v.ID, VideoChanges{})
	wantKind(t, err, KindInvalid, "Nothing to update")
}

func TestDeleteVideo_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.publish(t, f.alice, "doomed")
	keep := f.publish(t, f.alice, "kept")

	if _, err := f.content.AddComment(ctx, f.bob.ID, v.ID, "nice"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.content.ToggleLike(ctx, f.bob.ID, repository.LikeVideo, v.ID); err != nil {
		t.Fatal(err)
	}
	pl, _ := f.content.CreatePlaylist(ctx, f.bob.ID, models.PlaylistInput{Name: "mix"})
	_, _ = f.content.AddVideoToPlaylist(ctx, f.bob.ID, pl.ID, v.ID)
	_, _ = f.content.AddVideoToPlaylist(ctx, f.bob.ID, pl.ID, keep.ID)

	if err := f.content.DeleteVideo(ctx, f.alice.ID, v.ID); err != nil {
		t.Fatalf("DeleteVideo error: %v", err)
	}
	if n := f.store.Comments.Len(); n != 0 {
		t.Errorf("comments left = %d", n)
	}
	if n := f.store.Likes.Len(); n != 0 {
		t.Errorf("likes left = %d", n)
	}
	got, _ := f.content.Playlist(ctx, pl.ID)
	if len(got.Videos) != 1 || got.Videos[0].VideoID() != keep.ID {
		t.Errorf("playlist videos = %+v", got.Videos)
	}
	wantKind(t, f.content.DeleteVideo(ctx, f.alice.ID, v.ID), KindNotFound, "Video not found")
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.publish(t, f.alice, "talk")

	c, err := f.content.AddComment(ctx, f.bob.ID, v.ID, "  first  ")
	if err != nil {
		t.Fatalf("AddComment error: %v", err)
	}
	if c.Content != "first" {
		t.Errorf("content = %q", c.Content)
	}
	_, err = f.content.AddComment(ctx, f.bob.ID, v.ID, "   ")
	wantKind(t, err, KindInvalid, "Content is required")
	_, err = f.content.AddComment(ctx, f.bob.ID, "missing", "x")
	wantKind(t, err, KindNotFound, "Video not found")

	_, err = f.content.UpdateComment(ctx, f.alice.ID, c.ID, "hijack")
	wantKind(t, err, KindForbidden, "")
	if _, err := f.content.UpdateComment(ctx, f.bob.ID, c.ID, "edited"); err != nil {
		t.Fatalf("UpdateComment error: %v", err)
	}

	liked, err := f.content.ToggleLike(ctx, f.alice.ID, repository.LikeComment, c.ID)
	if err != nil || !liked {
		t.Fatalf("ToggleLike = %v, %v", liked, err)
	}

	list, err := f.content.VideoComments(ctx, v.ID)
	if err != nil {
		t.Fatalf("VideoComments error: %v", err)
	}
	if len(list) != 1 || list[0].Content != "edited" || list[0].Owner.Name() != "User bob" {
		t.Errorf("comments = %+v", list)
	}

	wantKind(t, f.content.DeleteComment(ctx, f.alice.ID, c.ID), KindForbidden, "")
	if err := f.content.DeleteComment(ctx, f.bob.ID, c.ID); err != nil {
		t.Fatalf("DeleteComment error: %v", err)
	}
	if f.store.Likes.Len() != 0 {
		t.Error("comment likes were not removed")
	}
}

func TestPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, _ := f.content.CreatePost(ctx, f.alice.ID, "hello")
	f.content.CreatePost(ctx, f.bob.ID, "hi")
	f.content.CreatePost(ctx, f.alice.ID, "again")

	all, err := f.content.Posts(ctx, "")
	if err != nil || len(all) != 3 || all[0].Content != "again" {
		t.Fatalf("Posts(all) = %+v, %v", all, err)
	}
	mine, _ := f.content.Posts(ctx, f.alice.ID)
	if len(mine) != 2 {
		t.Errorf("Posts(alice) = %d; want 2", len(mine))
	}
	_, err = f.content.Posts(ctx, "nobody")
	wantKind(t, err, KindNotFound, "Channel not found")

	_, err = f.content.UpdatePost(ctx, f.bob.ID, first.ID, "x")
	wantKind(t, err, KindForbidden, "")
	if p, err := f.content.UpdatePost(ctx, f.alice.ID, first.ID, "edited"); err != nil || p.Content != "edited" {
		t.Fatalf("UpdatePost = %+v, %v", p, err)
	}
	if err := f.content.DeletePost(ctx, f.alice.ID, first.ID); err != nil {
		t.Fatalf("DeletePost error: %v", err)
	}
	_, err = f.content.ToggleLike(ctx, f.bob.ID, repository.LikePost, first.ID)
	wantKind(t, err, KindNotFound, "Post not found")
}

func TestLikedVideos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.publish(t, f.alice, "fav")

	for i, want := range []bool{true, false, true} {
		got, err := f.content.ToggleLike(ctx, f.bob.ID, repository.LikeVideo, v.ID)
		if err != nil || got != want {
			t.Fatalf("toggle %d = %v, %v; want %v", i, got, err, want)
		}
	}
	liked, err := f.content.LikedVideos(ctx, f.bob.ID)
	if err != nil || len(liked) != 1 || liked[0].Video.ID != v.ID {
		t.Fatalf("LikedVideos = %+v, %v", liked, err)
	}
	if _, ok := liked[0].Video.Owner.Expanded(); !ok {
		t.Error("liked video owner not expanded")
	}
	_, err = f.content.ToggleLike(ctx, f.bob.ID, repository.LikeVideo, "missing")
	wantKind(t, err, KindNotFound, "Video not found")
}

func TestSubscriptionsAndChannelProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	on, err := f.content.ToggleSubscription(ctx, f.bob.ID, f.alice.ID)
	if err != nil || !on {
		t.Fatalf("ToggleSubscription = %v, %v", on, err)
	}
	_, err = f.content.ToggleSubscription(ctx, f.alice.ID, f.alice.ID)
	wantKind(t, err, KindInvalid, "You cannot subscribe to your own channel")
	_, err = f.content.ToggleSubscription(ctx, f.bob.ID, "nobody")
	wantKind(t, err, KindNotFound, "Channel not found")

	subs, _ := f.content.Subscribers(ctx, f.alice.ID)
	if len(subs) != 1 || subs[0].Subscriber.UserID() != f.bob.ID {
		t.Errorf("Subscribers = %+v", subs)
	}
	channels, _ := f.content.SubscribedChannels(ctx, f.bob.ID)
	if len(channels) != 1 || channels[0].Channel.Name() != "User alice" {
		t.Errorf("SubscribedChannels = %+v", channels)
	}

	profile, err := f.content.ChannelProfile(ctx, f.bob.ID, "ALICE")
	if err != nil {
		t.Fatalf("ChannelProfile error: %v", err)
	}
	if *profile.SubscribersCount != 1 || *profile.SubscribedChannelCount != 0 || !*profile.IsSubscribed {
		t.Errorf("profile counters = %d %d %v", *profile.SubscribersCount, *profile.SubscribedChannelCount, *profile.IsSubscribed)
	}
	anon, _ := f.content.ChannelProfile(ctx, "", "alice")
	if *anon.IsSubscribed {
		t.Error("anonymous viewer reported as subscribed")
	}
	_, err = f.content.ChannelProfile(ctx, "", "nobody")
	wantKind(t, err, KindNotFound, "Channel does not exist")
}

func TestPlaylists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.publish(t, f.alice, "clip")

	_, err := f.content.CreatePlaylist(ctx, f.bob.ID, models.PlaylistInput{})
	wantKind(t, err, KindInvalid, "Name is required")

	pl, err := f.content.CreatePlaylist(ctx, f.bob.ID, models.PlaylistInput{Name: "mix", Description: "d"})
	if err != nil {
		t.Fatalf("CreatePlaylist error: %v", err)
	}

	for i := 0; i < 2; i++ {
		pl, err = f.content.AddVideoToPlaylist(ctx, f.bob.ID, pl.ID, v.ID)
		if err != nil {
			t.Fatalf("AddVideoToPlaylist error: %v", err)
		}
	}
	if len(pl.Videos) != 1 {
		t.Fatalf("videos = %d; want 1 after duplicate add", len(pl.Videos))
	}
	if got, ok := pl.Videos[0].Expanded(); !ok || got.Title != "clip" {
		t.Errorf("video ref = %+v", pl.Videos[0])
	}

	_, err = f.content.AddVideoToPlaylist(ctx, f.alice.ID, pl.ID, v.ID)
	wantKind(t, err, KindForbidden, "")
	_, err = f.content.AddVideoToPlaylist(ctx, f.bob.ID, pl.ID, "missing")
	wantKind(t, err, KindNotFound, "Video not found")

	pl, err = f.content.UpdatePlaylist(ctx, f.bob.ID, pl.ID, models.PlaylistInput{Name: "renamed"})
	if err != nil || pl.Name != "renamed" || pl.Description != "d" {
		t.Fatalf("UpdatePlaylist = %+v, %v", pl, err)
	}

	pl, err = f.content.RemoveVideoFromPlaylist(ctx, f.bob.ID, pl.ID, v.ID)
	if err != nil || len(pl.Videos) != 0 {
		t.Fatalf("RemoveVideoFromPlaylist = %+v, %v", pl, err)
	}

	lists, _ := f.content.UserPlaylists(ctx, f.bob.ID)
	if len(lists) != 1 {
		t.Errorf("UserPlaylists = %d", len(lists))
	}
	wantKind(t, f.content.DeletePlaylist(ctx, f.alice.ID, pl.ID), KindForbidden, "")
	if err := f.content.DeletePlaylist(ctx, f.bob.ID, pl.ID); err != nil {
		t.Fatalf("DeletePlaylist error: %v", err)
	}
	_, err = f.content.Playlist(ctx, pl.ID)
	wantKind(t, err, KindNotFound, "Playlist not found")
}

func TestKindOf(t *testing.T) {
	if KindOf(fmt.Errorf("wrapped: %w", fail(KindConflict, "x"))) != KindConflict {
		t.Error("KindOf does not unwrap")
	}
	if KindOf(fmt.Errorf("plain")) != KindInternal {
		t.Error("plain errors should be internal")
	}
}
