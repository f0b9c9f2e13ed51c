package shell

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/client/api"
	"github.com/atinyakov/GophTube/internal/client/session"
	"github.com/atinyakov/GophTube/internal/repository"
	handler "github.com/atinyakov/GophTube/internal/server/handler/http"
	"github.com/atinyakov/GophTube/internal/service"
)

type harness struct {
	t       *testing.T
	client  *api.Client
	session *session.Manager
	dir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zap.NewNop()
	store := repository.NewStore()
	auth := service.NewAuthService(store.Users, service.NewTokenIssuer("shell-secret", time.Minute, time.Hour), log)
	content := service.NewContentService(service.StoreTables(store), log)
	srv := httptest.NewServer(handler.NewRouter(handler.Handlers{
		Auth:      &handler.AuthHandler{AuthService: auth, ChannelService: content},
		Videos:    &handler.VideoHandler{VideoService: content},
		Social:    &handler.SocialHandler{SocialService: content},
		Playlists: &handler.PlaylistHandler{PlaylistService: content},
	}, handler.RouterOptions{Authenticator: auth}))
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL + "/api/v1")
	require.NoError(t, err)
	mgr := session.NewManager(client, log)
	mgr.Init(context.Background())

	dir := t.TempDir()
	for name, body := range map[string]string{"clip.mp4": "video bytes", "thumb.png": "png bytes", "notes.txt": "text"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return &harness{t: t, client: client, session: mgr, dir: dir}
}

func (h *harness) file(name string) string { return filepath.Join(h.dir, name) }

// run feeds script to a fresh shell over the shared session and returns
// everything it printed.
func (h *harness) run(script string) string {
	h.t.Helper()
	out := &bytes.Buffer{}
	sh := New(h.client, h.session, strings.NewReader(script), out, nil)
	require.NoError(h.t, sh.Run(context.Background()))
	return out.String()
}

// after returns the rest of the line following prefix in out.
func after(t *testing.T, out, prefix string) string {
	t.Helper()
	_, rest, ok := strings.Cut(out, prefix)
	require.True(t, ok, "%q not found in %q", prefix, out)
	line, _, _ := strings.Cut(rest, "\n")
	return strings.TrimSpace(line)
}

func (h *harness) registerAlice() {
	h.t.Helper()
	out := h.run(strings.Join([]string{
		"register", "alice", "alice@example.com", "Alice Liddell", "password1", "password1", h.file("thumb.png"), "",
	}, "\n") + "\n")
	require.Contains(h.t, out, "Account created. Welcome, alice")
}

func TestShell_AnonymousSession(t *testing.T) {
	h := newHarness(t)

	out := h.run("whoami\nvideos\nhistory\nlogout\nexit\n")

	assert.Contains(t, out, "anonymous")
	assert.Equal(t, 3, strings.Count(out, "please log in"))
	assert.Contains(t, out, "Bye")
}

func TestShell_UsageAndUnknown(t *testing.T) {
	h := newHarness(t)

	out := h.run("video\nplaylist-add only-one\nfrobnicate\nhelp\n")

	assert.Contains(t, out, "Usage: video <id>")
	assert.Contains(t, out, "Usage: playlist-add <playlistId> <videoId>")
	assert.Contains(t, out, "Unknown command. Type 'help' for a list of commands.")
	assert.Contains(t, out, "  comments <videoId>")
}

func TestShell_RegisterFieldErrors(t *testing.T) {
	h := newHarness(t)

	out := h.run("register\nal\nnot-an-email\nAl\npassword1\npassword2\n\n\n")

	assert.Contains(t, out, "  username: Username must be at least 3 characters")
	assert.Contains(t, out, "  email: Please enter a valid email address")
	assert.Contains(t, out, "  confirmPassword: Passwords do not match")
	assert.Equal(t, session.StateAnonymous, h.session.State())
}

func TestShell_UploadRejectsWrongFileType(t *testing.T) {
	h := newHarness(t)
	h.registerAlice()

	out := h.run("upload\n\n\n" + h.file("notes.txt") + "\n" + h.file("thumb.png") + "\n")

	assert.Contains(t, out, "  title: Title is required")
	assert.Contains(t, out, "  videoFile: Please select a valid video file")
	assert.NotContains(t, out, "thumbnail:")
}

func TestShell_LoginFailureShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	h.registerAlice()
	h.run("logout\n")

	out := h.run("login\nalice\nwrong-password\n")
	assert.Contains(t, out, "Error: Invalid user credentials")
	assert.Equal(t, session.StateAnonymous, h.session.State())

	out = h.run("login\nalice@example.com\npassword1\nwhoami\n")
	assert.Contains(t, out, "Login successful! Welcome, alice")
	assert.Contains(t, out, "alice (Alice Liddell) <alice@example.com>")
}

func TestShell_Workflow(t *testing.T) {
	h := newHarness(t)
	h.registerAlice()

	out := h.run("upload\nFirst upload\nhello world\n" + h.file("clip.mp4") + "\n" + h.file("thumb.png") + "\n")
	id := after(t, out, "Video uploaded: ")
	require.NotEmpty(t, id)

	out = h.run("videos\n")
	assert.Contains(t, out, "1 videos, 1 published, 0 drafts, 0 views")
	assert.Contains(t, out, "First upload")

	out = h.run("publish " + id + "\nbrowse\nvideos draft\n")
	assert.Contains(t, out, "Video "+id+" is now a draft")
	assert.Contains(t, out, "No videos found")
	assert.Contains(t, out, "First upload")

	out = h.run("video " + id + "\n")
	assert.Contains(t, out, "1 views, Just now, 0:00")
	assert.Contains(t, out, "Channel: Alice Liddell")
	assert.Contains(t, out, "Draft")
	assert.Contains(t, out, "hello world")

	out = h.run("comment " + id + "\nnice video\ncomments " + id + "\n")
	assert.Contains(t, out, "Comment added")
	assert.Equal(t, 2, strings.Count(out, "Alice Liddell, Just now"))

	out = h.run("like " + id + "\nliked\n")
	assert.Contains(t, out, "Liked")
	assert.Contains(t, out, "First upload")

	out = h.run("playlist-create\nFavourites\n\n")
	pl := after(t, out, "Playlist created: ")
	out = h.run("playlist-add " + pl + " " + id + "\nplaylists\n")
	assert.Contains(t, out, "Added to Favourites (1 videos)")
	assert.Contains(t, out, "["+pl+"] Favourites (1 videos)")

	out = h.run("post\nhello community\nposts\n")
	assert.Contains(t, out, "Post published")
	assert.Contains(t, out, "hello community")

	out = h.run("history\n")
	assert.Contains(t, out, "First upload")

	out = h.run("subscribe " + h.session.User().ID + "\n")
	assert.Contains(t, out, "Error: You cannot subscribe to your own channel")

	out = h.run("delete " + id + "\nvideo " + id + "\n")
	assert.Contains(t, out, "Video deleted")
	assert.Contains(t, out, "Error: Video not found")

	out = h.run("logout\nhistory\n")
	assert.Contains(t, out, "Signed out")
	assert.Contains(t, out, "please log in")
}

func TestOpenFile(t *testing.T) {
	h := newHarness(t)

	up, err := OpenFile(h.file("clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", up.Name)
	assert.Equal(t, "video/mp4", up.ContentType)
	assert.EqualValues(t, len("video bytes"), up.Size)

	up, err = OpenFile(h.file("notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", up.ContentType)

	_, err = OpenFile(h.file("missing.png"))
	require.Error(t, err)
}
