package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/atinyakov/GophTube/internal/client/api"
	"github.com/atinyakov/GophTube/internal/client/form"
	"github.com/atinyakov/GophTube/internal/client/format"
	"github.com/atinyakov/GophTube/internal/client/view"
	"github.com/atinyakov/GophTube/internal/models"
)

func (s *Shell) commandTable() map[string]command {
	return map[string]command{
		"whoami":          {usage: "whoami", run: s.whoami},
		"login":           {usage: "login", run: s.login},
		"register":        {usage: "register", run: s.register},
		"refresh":         {usage: "refresh", run: s.refresh},
		"logout":          {usage: "logout", protected: true, run: s.logout},
		"videos":          {usage: "videos [all|published|draft] [search]", protected: true, run: s.videos},
		"browse":          {usage: "browse [search]", protected: true, run: s.browse},
		"video":           {usage: "video <id>", args: 1, protected: true, run: s.video},
		"upload":          {usage: "upload", protected: true, run: s.uploadVideo},
		"publish":         {usage: "publish <id>", args: 1, protected: true, run: s.publish},
		"delete":          {usage: "delete <id>", args: 1, protected: true, run: s.deleteVideo},
		"like":            {usage: "like <id>", args: 1, protected: true, run: s.like},
		"liked":           {usage: "liked", protected: true, run: s.liked},
		"comments":        {usage: "comments <videoId>", args: 1, protected: true, run: s.comments},
		"comment":         {usage: "comment <videoId>", args: 1, protected: true, run: s.comment},
		"posts":           {usage: "posts [channelId]", protected: true, run: s.posts},
		"post":            {usage: "post", protected: true, run: s.post},
		"subscribe":       {usage: "subscribe <channelId>", args: 1, protected: true, run: s.subscribe},
		"playlists":       {usage: "playlists", protected: true, run: s.playlists},
		"playlist-create": {usage: "playlist-create", protected: true, run: s.playlistCreate},
		"playlist-add":    {usage: "playlist-add <playlistId> <videoId>", args: 2, protected: true, run: s.playlistAdd},
		"history":         {usage: "history", protected: true, run: s.history},
	}
}

// data unwraps an envelope, treating success=false as a rejection.
func data[T any](env *models.Envelope[T], err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if !env.Success {
		return zero, api.ErrRejected
	}
	return env.Data, nil
}

func (s *Shell) whoami(context.Context, []string) error {
	snap := s.session.Snapshot()
	if snap.User == nil {
		fmt.Fprintln(s.out, snap.State)
		return nil
	}
	fmt.Fprintf(s.out, "%s (%s) <%s> id=%s\n", snap.User.Username, snap.User.FullName, snap.User.Email, snap.User.ID)
	return nil
}

func (s *Shell) login(ctx context.Context, _ []string) error {
	in, err := s.askAll("Username or email: ", "Password: ")
	if err != nil {
		return err
	}
	f := form.Login{Identifier: in[0], ByEmail: strings.Contains(in[0], "@"), Password: in[1]}
	if err := f.Validate(); err != nil {
		return err
	}
	if err := s.session.Login(ctx, f.Credentials()); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Login successful! Welcome, %s\n", s.session.User().Username)
	return nil
}

func (s *Shell) register(ctx context.Context, _ []string) error {
	in, err := s.askAll(
		"Username: ", "Email: ", "Full name: ", "Password: ", "Confirm password: ",
		"Avatar file (optional): ", "Cover image file (optional): ",
	)
	if err != nil {
		return err
	}
	reg := form.Registration{
		Username:        in[0],
		Email:           in[1],
		FullName:        in[2],
		Password:        in[3],
		ConfirmPassword: in[4],
	}
	if reg.Avatar, err = s.upload(in[5]); err != nil {
		return err
	}
	if reg.CoverImage, err = s.upload(in[6]); err != nil {
		return err
	}
	if err := s.session.Register(ctx, reg); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Account created. Welcome, %s\n", s.session.User().Username)
	return nil
}

func (s *Shell) logout(ctx context.Context, _ []string) error {
	s.session.Logout(ctx)
	fmt.Fprintln(s.out, "Signed out")
	return nil
}

func (s *Shell) refresh(ctx context.Context, _ []string) error {
	if err := s.session.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Session renewed: %s\n", s.session.State())
	return nil
}

func (s *Shell) videos(ctx context.Context, args []string) error {
	filter := view.FilterAll
	if len(args) > 0 {
		switch f := view.Filter(strings.ToLower(args[0])); f {
		case view.FilterAll, view.FilterPublished, view.FilterDraft:
			filter, args = f, args[1:]
		}
	}
	if err := s.library.Load(ctx, models.ListVideosParams{UserID: s.session.User().ID}); err != nil {
		return err
	}
	st := s.library.Stats()
	fmt.Fprintf(s.out, "%d videos, %d published, %d drafts, %s views\n", st.Total, st.Published, st.Drafts, format.Views(st.Views))
	s.printVideos(s.library.Videos(filter, strings.Join(args, " ")))
	return nil
}

func (s *Shell) browse(ctx context.Context, args []string) error {
	lib := view.NewLibrary(s.api, true)
	defer lib.Close()
	if err := lib.Load(ctx, models.ListVideosParams{Search: strings.Join(args, " ")}); err != nil {
		return err
	}
	s.printVideos(lib.Videos(view.FilterAll, ""))
	return nil
}

func (s *Shell) video(ctx context.Context, args []string) error {
	v, err := data(s.api.GetVideo(ctx, args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, v.Title)
	fmt.Fprintf(s.out, "%s views, %s, %s\n", format.Views(v.Views), format.TimeAgo(v.CreatedAt, s.now()), format.Duration(v.Duration))
	if name := v.Owner.Name(); name != "" {
		fmt.Fprintf(s.out, "Channel: %s\n", name)
	}
	if !v.IsPublished {
		fmt.Fprintln(s.out, "Draft")
	}
	if v.Description != "" {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, v.Description)
	}
	return nil
}

func (s *Shell) uploadVideo(ctx context.Context, _ []string) error {
	in, err := s.askAll("Title: ", "Description: ", "Video file: ", "Thumbnail file: ")
	if err != nil {
		return err
	}
	up := form.Upload{Title: in[0], Description: in[1]}
	if up.Video, err = s.upload(in[2]); err != nil {
		return err
	}
	if up.Thumbnail, err = s.upload(in[3]); err != nil {
		return err
	}
	if err := up.Validate(); err != nil {
		return err
	}
	v, err := data(s.api.PublishVideo(ctx, up.Form()))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Video uploaded: %s\n", v.ID)
	return nil
}

func (s *Shell) publish(ctx context.Context, args []string) error {
	published, err := s.library.TogglePublish(ctx, args[0])
	if err != nil {
		return err
	}
	if published {
		fmt.Fprintf(s.out, "Video %s is now published\n", args[0])
	} else {
		fmt.Fprintf(s.out, "Video %s is now a draft\n", args[0])
	}
	return nil
}

func (s *Shell) deleteVideo(ctx context.Context, args []string) error {
	if err := s.library.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Video deleted")
	return nil
}

func (s *Shell) like(ctx context.Context, args []string) error {
	res, err := data(s.api.ToggleVideoLike(ctx, args[0]))
	if err != nil {
		return err
	}
	if res.IsVideoLiked {
		fmt.Fprintln(s.out, "Liked")
	} else {
		fmt.Fprintln(s.out, "Like removed")
	}
	return nil
}

func (s *Shell) liked(ctx context.Context, _ []string) error {
	likes, err := data(s.api.LikedVideos(ctx))
	if err != nil {
		return err
	}
	videos := make([]models.Video, 0, len(likes))
	for _, l := range likes {
		videos = append(videos, l.Video)
	}
	s.printVideos(videos)
	return nil
}

func (s *Shell) comments(ctx context.Context, args []string) error {
	t := view.NewThread(s.api, args[0])
	defer t.Close()
	if err := t.Load(ctx); err != nil {
		return err
	}
	s.printComments(t.Comments())
	return nil
}

func (s *Shell) comment(ctx context.Context, args []string) error {
	content, ok := s.ask("Comment: ")
	if !ok {
		return errAborted
	}
	t := view.NewThread(s.api, args[0])
	defer t.Close()
	err := t.Add(ctx, s.session.User().ID, content)
	switch {
	case errors.Is(err, view.ErrNotReloaded):
		fmt.Fprintln(s.out, "Comment added, but the thread could not be reloaded")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintln(s.out, "Comment added")
	s.printComments(t.Comments())
	return nil
}

func (s *Shell) posts(ctx context.Context, args []string) error {
	var channelID string
	if len(args) > 0 {
		channelID = args[0]
	}
	b := view.NewBoard(s.api, channelID)
	defer b.Close()
	if err := b.Load(ctx); err != nil {
		return err
	}
	posts := b.Posts()
	if len(posts) == 0 {
		fmt.Fprintln(s.out, "No posts yet")
	}
	for _, p := range posts {
		fmt.Fprintf(s.out, "[%s] %s, %s\n  %s\n", p.ID, p.Owner.Name(), format.TimeAgo(p.CreatedAt, s.now()), p.Content)
	}
	return nil
}

func (s *Shell) post(ctx context.Context, _ []string) error {
	content, ok := s.ask("Post: ")
	if !ok {
		return errAborted
	}
	b := view.NewBoard(s.api, "")
	defer b.Close()
	if err := b.Create(ctx, content); err != nil && !errors.Is(err, view.ErrNotReloaded) {
		return err
	}
	fmt.Fprintln(s.out, "Post published")
	return nil
}

func (s *Shell) subscribe(ctx context.Context, args []string) error {
	res, err := data(s.api.ToggleSubscription(ctx, args[0]))
	if err != nil {
		return err
	}
	if res.IsSubscribed {
		fmt.Fprintln(s.out, "Subscribed")
	} else {
		fmt.Fprintln(s.out, "Unsubscribed")
	}
	return nil
}

func (s *Shell) playlists(ctx context.Context, _ []string) error {
	lists, err := data(s.api.UserPlaylists(ctx, s.session.User().ID))
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		fmt.Fprintln(s.out, "No playlists yet")
	}
	for _, p := range lists {
		fmt.Fprintf(s.out, "[%s] %s (%d videos)\n", p.ID, p.Name, len(p.Videos))
	}
	return nil
}

func (s *Shell) playlistCreate(ctx context.Context, _ []string) error {
	in, err := s.askAll("Name: ", "Description: ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(in[0]) == "" {
		return form.Errors{"name": "Name is required"}
	}
	p, err := data(s.api.CreatePlaylist(ctx, models.PlaylistInput{Name: in[0], Description: in[1]}))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Playlist created: %s\n", p.ID)
	return nil
}

func (s *Shell) playlistAdd(ctx context.Context, args []string) error {
	p, err := data(s.api.AddVideoToPlaylist(ctx, args[0], args[1]))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Added to %s (%d videos)\n", p.Name, len(p.Videos))
	return nil
}

func (s *Shell) history(ctx context.Context, _ []string) error {
	videos, err := data(s.api.WatchHistory(ctx))
	if err != nil {
		return err
	}
	s.printVideos(videos)
	return nil
}

func (s *Shell) printVideos(videos []models.Video) {
	if len(videos) == 0 {
		fmt.Fprintln(s.out, "No videos found")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tVIEWS\tLENGTH\tUPLOADED")
	for _, v := range videos {
		status := "draft"
		if v.IsPublished {
			status = "published"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Title, status, format.Views(v.Views), format.Duration(v.Duration), format.TimeAgo(v.CreatedAt, s.now()))
	}
	_ = tw.Flush()
}

func (s *Shell) printComments(comments []models.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(s.out, "No comments yet")
		return
	}
	for _, c := range comments {
		fmt.Fprintf(s.out, "[%s] %s, %s\n  %s\n", c.ID, c.Owner.Name(), format.TimeAgo(c.CreatedAt, s.now()), c.Content)
	}
}
