package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atinyakov/GophTube/internal/models"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type publicError string

func (e publicError) Error() string         { return "auth: " + string(e) }
func (e publicError) PublicMessage() string { return string(e) }

// fakeAuthenticator accepts a single token.
type fakeAuthenticator struct {
	token string
	user  models.User
	seen  string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (models.User, error) {
	f.seen = token
	if token == "" {
		return models.User{}, errors.New("no token")
	}
	if token != f.token {
		return models.User{}, publicError("Invalid access token")
	}
	return f.user, nil
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantCalled bool
		wantCode   int
		wantMsg    string
	}{
		{
			name:     "no credentials",
			prepare:  func(*http.Request) {},
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Unauthorized request",
		},
		{
			name: "valid cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessCookie, Value: "good"})
			},
			wantCalled: true,
			wantCode:   http.StatusOK,
		},
		{
			name: "valid bearer header",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer good")
			},
			wantCalled: true,
			wantCode:   http.StatusOK,
		},
		{
			name: "bad token keeps service message",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessCookie, Value: "bad"})
			},
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Invalid access token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dummy := &dummyHandler{}
			auth := &fakeAuthenticator{token: "good", user: models.User{ID: "u1", Username: "alice"}}
			h := Auth(auth)(dummy)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
			tt.prepare(req)
			h.ServeHTTP(rec, req)

			if dummy.called != tt.wantCalled {
				t.Errorf("next called = %v, want %v", dummy.called, tt.wantCalled)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCalled {
				if id := GetUserIDFromContext(dummy.ctx); id != "u1" {
					t.Errorf("context user = %q, want u1", id)
				}
				return
			}

			var env models.Envelope[any]
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("body is not an envelope: %v", err)
			}
			if env.Message != tt.wantMsg || env.Success || env.StatusCode != http.StatusUnauthorized {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
}

func TestAccessToken_CookieWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")
	if got := AccessToken(req); got != "from-cookie" {
		t.Errorf("AccessToken = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	if got := AccessToken(req); got != "" {
		t.Errorf("AccessToken(basic) = %q, want empty", got)
	}
}

func TestGetUserIDFromContext(t *testing.T) {
	// no value
	if empty := GetUserIDFromContext(context.Background()); empty != "" {
		t.Errorf("expected empty string for missing user, got '%s'", empty)
	}
	// with value
	ctx := WithUser(context.Background(), models.User{ID: "bob"})
	if val := GetUserIDFromContext(ctx); val != "bob" {
		t.Errorf("expected 'bob', got '%s'", val)
	}
}

func TestWithRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := WithRequestLogging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/ok", "/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.FilterMessage("http request").All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].ContextMap()["status"] != int64(200) {
		t.Errorf("first entry = %v %v", entries[0].Level, entries[0].ContextMap())
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["status"] != int64(404) {
		t.Errorf("second entry = %v %v", entries[1].Level, entries[1].ContextMap())
	}
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID, m.Middleware)
	r.Get("/videos/vid/{videoId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/videos/vid/"+id, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/videos/vid/{videoId}", "204"))
	if got != 3 {
		t.Errorf("requests_total = %v, want 3", got)
	}
	if n := testutil.CollectAndCount(m.requests); n != 1 {
		t.Errorf("series = %d, want 1", n)
	}
}
