// Package session holds the identity of the current user and drives the
// authentication lifecycle: the startup probe, login, registration,
// logout and token refresh.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/client/api"
	"github.com/atinyakov/GophTube/internal/client/form"
	"github.com/atinyakov/GophTube/internal/models"
)

// ErrRejected is returned when the backend answered 2xx with success=false.
var ErrRejected = api.ErrRejected

// ErrInvalidCredentials is returned by Login for a malformed credential pair.
var ErrInvalidCredentials = models.ErrInvalidCredentials

// State is the authentication state of the session.
type State int

const (
	// StateUnknown lasts until the startup probe resolves.
	StateUnknown State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// API is the part of the backend client the manager needs.
type API interface {
	CurrentUser(ctx context.Context) (*models.Envelope[models.User], error)
	Login(ctx context.Context, creds models.Credentials) (*models.Envelope[models.AuthUser], error)
	Register(ctx context.Context, form *api.Form) (*models.Envelope[models.AuthUser], error)
	Logout(ctx context.Context) (*models.Envelope[models.Empty], error)
	RefreshToken(ctx context.Context) (*models.Envelope[models.Tokens], error)
}

// Snapshot is a consistent view of the session.
type Snapshot struct {
	State State
	// User is nil unless State is StateAuthenticated.
	User *models.User
	// Cause is the failure that made the session anonymous. It is nil after
	// an explicit logout and on every other transition.
	Cause error
}

// Loading reports whether the startup probe is still running.
func (s Snapshot) Loading() bool { return s.State == StateUnknown }

// Revoked reports whether the stored credentials are no longer good: the
// user logged out or the backend rejected them. A session that went
// anonymous because the backend was unreachable is not revoked.
func (s Snapshot) Revoked() bool {
	if s.State != StateAnonymous {
		return false
	}
	return s.Cause == nil || api.IsUnauthorized(s.Cause) || errors.Is(s.Cause, ErrRejected)
}

// Manager owns the session. One instance is created per process and
// passed to every consumer. It is safe for concurrent use; concurrent
// calls are not ordered and the last one to resolve wins.
type Manager struct {
	api API
	log *zap.Logger

	mu          sync.RWMutex
	state       State
	user        *models.User
	accessToken string
	listeners   map[int]func(Snapshot)
	nextID      int

	ready     chan struct{}
	readyOnce sync.Once
}

// NewManager returns a manager in StateUnknown. Call Init to run the probe.
func NewManager(client API, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		api:       client,
		log:       log.With(zap.String("component", "session")),
		listeners: make(map[int]func(Snapshot)),
		ready:     make(chan struct{}),
	}
}

// Init runs the startup probe. Any failure, a 401 included, leaves the
// session anonymous; the error is logged and never returned.
func (m *Manager) Init(ctx context.Context) {
	m.probe(ctx)
}

func (m *Manager) probe(ctx context.Context) {
	env, err := m.api.CurrentUser(ctx)
	switch {
	case err != nil:
		m.log.Debug("session probe failed", zap.Error(err))
		m.clear(err)
	case !env.Success:
		m.log.Debug("session probe rejected", zap.String("message", env.Message))
		m.clear(ErrRejected)
	default:
		user := env.Data
		m.set(StateAuthenticated, &user, "", false, nil)
	}
}

// Wait blocks until the probe has resolved or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login authenticates with a password and exactly one of username or
// email. On failure the client error is returned unchanged and the
// session is left as it was.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	env, err := m.api.Login(ctx, creds)
	if err != nil {
		return err
	}
	return m.accept(env)
}

// Register validates the form, creates the account and authenticates
// with it. A validation failure returns form.Errors without any request.
func (m *Manager) Register(ctx context.Context, reg form.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	env, err := m.api.Register(ctx, reg.Form())
	if err != nil {
		return err
	}
	return m.accept(env)
}

func (m *Manager) accept(env *models.Envelope[models.AuthUser]) error {
	if !env.Success {
		return ErrRejected
	}
	user := env.Data.User
	m.set(StateAuthenticated, &user, env.Data.AccessToken, true, nil)
	m.log.Info("signed in", zap.String("user", user.Username))
	return nil
}

// Logout ends the server session. The local session is cleared whatever
// the outcome.
func (m *Manager) Logout(ctx context.Context) {
	if _, err := m.api.Logout(ctx); err != nil {
		m.log.Warn("logout request failed", zap.Error(err))
	}
	m.clear(nil)
}

// UpdateUser replaces the held identity without a request. It is a no-op
// unless the session is authenticated.
func (m *Manager) UpdateUser(u models.User) {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}
	m.user = &u
	snap := m.snapshotLocked()
	listeners := m.listenersLocked()
	m.mu.Unlock()
	notify(listeners, snap)
}

// Refresh exchanges the refresh cookie for a new access token and then
// re-runs the probe. A failed exchange clears the session and is returned.
func (m *Manager) Refresh(ctx context.Context) error {
	env, err := m.api.RefreshToken(ctx)
	if err == nil && !env.Success {
		err = ErrRejected
	}
	if err != nil {
		m.log.Debug("token refresh failed", zap.Error(err))
		m.clear(err)
		return err
	}

	m.mu.Lock()
	m.accessToken = env.Data.AccessToken
	m.mu.Unlock()

	m.probe(ctx)
	return nil
}

// Snapshot returns the current state and identity.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// User returns the current identity, or nil when not authenticated.
func (m *Manager) User() *models.User { return m.Snapshot().User }

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe registers fn to be called after every transition. The
// returned function removes it.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) clear(cause error) {
	m.set(StateAnonymous, nil, "", true, cause)
}

// set applies a transition atomically and notifies listeners outside the
// lock. When replaceToken is false the held access token is kept.
func (m *Manager) set(state State, user *models.User, token string, replaceToken bool, cause error) {
	m.mu.Lock()
	m.state = state
	m.user = user
	if replaceToken || state != StateAuthenticated {
		m.accessToken = token
	}
	snap := m.snapshotLocked()
	snap.Cause = cause
	listeners := m.listenersLocked()
	m.mu.Unlock()

	m.readyOnce.Do(func() { close(m.ready) })
	notify(listeners, snap)
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.state}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

func (m *Manager) listenersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
