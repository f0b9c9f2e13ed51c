// Package shell is the interactive terminal front end of the client. It
// reads one command per line and renders the results as plain text.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/client/api"
	"github.com/atinyakov/GophTube/internal/client/form"
	"github.com/atinyakov/GophTube/internal/client/session"
	"github.com/atinyakov/GophTube/internal/client/view"
	"github.com/atinyakov/GophTube/internal/models"
)

const prompt = "gophtube> "

// API is the part of the backend client the shell drives directly or
// through the view models.
type API interface {
	session.API
	view.VideoAPI
	view.CommentAPI
	view.PostAPI

	GetVideo(ctx context.Context, videoID string) (*models.Envelope[models.Video], error)
	PublishVideo(ctx context.Context, form *api.Form) (*models.Envelope[models.Video], error)
	ToggleVideoLike(ctx context.Context, videoID string) (*models.Envelope[models.VideoLike], error)
	LikedVideos(ctx context.Context) (*models.Envelope[[]models.LikedVideo], error)
	ToggleSubscription(ctx context.Context, channelID string) (*models.Envelope[models.SubscriptionState], error)
	UserPlaylists(ctx context.Context, userID string) (*models.Envelope[[]models.Playlist], error)
	CreatePlaylist(ctx context.Context, in models.PlaylistInput) (*models.Envelope[models.Playlist], error)
	AddVideoToPlaylist(ctx context.Context, playlistID, videoID string) (*models.Envelope[models.Playlist], error)
	WatchHistory(ctx context.Context) (*models.Envelope[[]models.Video], error)
}

type command struct {
	usage     string
	args      int
	protected bool
	run       func(ctx context.Context, args []string) error
}

// Shell is a read-eval-print loop over one session.
type Shell struct {
	api     API
	session *session.Manager
	log     *zap.Logger
	in      *bufio.Scanner
	out     io.Writer
	now     func() time.Time
	open    func(path string) (*api.Upload, error)

	library  *view.Library
	commands map[string]command
}

// New returns a shell reading commands from in and writing to out.
func New(client API, mgr *session.Manager, in io.Reader, out io.Writer, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Shell{
		api:     client,
		session: mgr,
		log:     log.With(zap.String("component", "shell")),
		in:      bufio.NewScanner(in),
		out:     out,
		now:     time.Now,
		open:    OpenFile,
		library: view.NewLibrary(client, false),
	}
	s.commands = s.commandTable()
	return s
}

// Run reads commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	defer s.library.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, prompt)
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if s.Exec(ctx, s.in.Text()) {
			return nil
		}
	}
}

// Exec runs a single command line and reports whether the shell should
// stop.
func (s *Shell) Exec(ctx context.Context, line string) (quit bool) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}
	name := strings.ToLower(args[0])
	switch name {
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye")
		return true
	case "help":
		s.help()
		return false
	}

	cmd, ok := s.commands[name]
	if !ok {
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
		return false
	}
	if len(args)-1 < cmd.args {
		fmt.Fprintf(s.out, "Usage: %s\n", cmd.usage)
		return false
	}
	if cmd.protected && !s.signedIn(ctx) {
		fmt.Fprintln(s.out, "please log in")
		return false
	}
	if err := cmd.run(ctx, args[1:]); err != nil {
		s.report(err)
	}
	return false
}

func (s *Shell) help() {
	fmt.Fprintln(s.out, "Available commands:")
	for _, name := range slices.Sorted(maps.Keys(s.commands)) {
		fmt.Fprintf(s.out, "  %s\n", s.commands[name].usage)
	}
	fmt.Fprintln(s.out, "  help")
	fmt.Fprintln(s.out, "  exit")
}

// signedIn waits for the startup probe and reports whether a user is
// authenticated.
func (s *Shell) signedIn(ctx context.Context) bool {
	if s.session.State() == session.StateUnknown {
		fmt.Fprintln(s.out, "Loading session...")
		if err := s.session.Wait(ctx); err != nil {
			return false
		}
	}
	return s.session.State() == session.StateAuthenticated
}

// report prints err the way the user should see it: field errors one per
// line, everything else as a single message.
func (s *Shell) report(err error) {
	var fe form.Errors
	if errors.As(err, &fe) {
		for _, field := range slices.Sorted(maps.Keys(fe)) {
			fmt.Fprintf(s.out, "  %s: %s\n", field, fe[field])
		}
		return
	}
	s.log.Debug("command failed", zap.Error(err))
	fmt.Fprintf(s.out, "Error: %s\n", err)
}

// ask prints label and reads one line. ok is false at end of input.
func (s *Shell) ask(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

var errAborted = errors.New("input ended")

// askAll reads each label in order.
func (s *Shell) askAll(labels ...string) ([]string, error) {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		v, ok := s.ask(l)
		if !ok {
			return nil, errAborted
		}
		out = append(out, v)
	}
	return out, nil
}

// upload opens path when it is set; an empty path means no file.
func (s *Shell) upload(path string) (*api.Upload, error) {
	if path == "" {
		return nil, nil
	}
	return s.open(path)
}
