package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/client/api"
	"github.com/atinyakov/GophTube/internal/client/session"
	"github.com/atinyakov/GophTube/internal/client/storage"
)

// seededStore writes a session file holding a refresh cookie for baseURL.
func seededStore(t *testing.T, baseURL string) (*storage.SessionStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := storage.NewSessionStore(path, "")
	require.NoError(t, err)

	seed, err := api.New(baseURL)
	require.NoError(t, err)
	u, err := url.Parse(baseURL)
	require.NoError(t, err)
	seed.Jar().SetCookies(u, []*http.Cookie{{Name: "refreshToken", Value: "r-tok", Path: "/"}})
	require.NoError(t, store.Save(seed.Jar(), baseURL))
	return store, path
}

func startSession(t *testing.T, baseURL string, store *storage.SessionStore) *session.Manager {
	t.Helper()
	client, err := api.New(baseURL, api.WithTimeout(2*time.Second))
	require.NoError(t, err)
	n, err := store.Load(client.Jar(), client.BaseURL())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	mgr := session.NewManager(client, zap.NewNop())
	cancel := mgr.Subscribe(func(snap session.Snapshot) {
		persist(store, client, snap, zap.NewNop())
	})
	t.Cleanup(cancel)
	mgr.Init(context.Background())
	return mgr
}

func TestPersist_KeepsFileWhenBackendUnreachable(t *testing.T) {
	const baseURL = "http://127.0.0.1:1/api/v1"
	store, path := seededStore(t, baseURL)

	mgr := startSession(t, baseURL, store)

	assert.Equal(t, session.StateAnonymous, mgr.State())
	_, err := os.Stat(path)
	assert.NoError(t, err, "session file must survive a network failure")
}

func TestPersist_ClearsFileWhenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"statusCode":401,"message":"Unauthorized request","success":false}`))
	}))
	defer srv.Close()
	baseURL := srv.URL + "/api/v1"
	store, path := seededStore(t, baseURL)

	mgr := startSession(t, baseURL, store)

	assert.Equal(t, session.StateAnonymous, mgr.State())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "rejected credentials must be forgotten: %v", err)
}

func TestPersist_SavesAndClearsAroundLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/v1/users/logout" {
			_, _ = w.Write([]byte(`{"statusCode":200,"data":{},"success":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"statusCode":200,"data":{"_id":"u1","username":"a"},"success":true}`))
	}))
	defer srv.Close()
	baseURL := srv.URL + "/api/v1"
	store, path := seededStore(t, baseURL)

	mgr := startSession(t, baseURL, store)
	require.Equal(t, session.StateAuthenticated, mgr.State())
	_, err := os.Stat(path)
	require.NoError(t, err)

	mgr.Logout(context.Background())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "logout must remove the session file: %v", err)
}
