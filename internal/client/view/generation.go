// Package view holds the state behind each screen of the client: the
// creator's video library, the comment thread under a video and the
// community board. Local state changes only after the backend confirms.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrStale is returned by a fetch that was superseded by a newer one or
// by Close. Its result has been discarded.
var ErrStale = errors.New("view: stale response discarded")

// ErrNotReloaded is returned when the backend confirmed a change but the
// reload that follows it failed. The change itself is saved.
var ErrNotReloaded = errors.New("view: saved, reload failed")

// reloaded maps the result of the reload after a confirmed change. A
// superseded reload is not a failure: the newer fetch carries the change.
func reloaded(err error) error {
	if err == nil || errors.Is(err, ErrStale) {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNotReloaded, err)
}

// Token identifies one fetch issued through a Generation.
type Token uint64

// Generation cancels superseded fetches. Each view owns one; starting a
// new fetch cancels the previous one and Close cancels the last.
type Generation struct {
	mu     sync.Mutex
	seq    Token
	cancel context.CancelFunc
	closed bool
}

// Next cancels the in-flight fetch, if any, and returns a context and
// token for a new one.
func (g *Generation) Next(parent context.Context) (context.Context, Token) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}
	g.seq++
	ctx, cancel := context.WithCancel(parent)
	if g.closed {
		cancel()
	}
	g.cancel = cancel
	return ctx, g.seq
}

// Valid reports whether t is still the latest fetch of a live view.
func (g *Generation) Valid(t Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.closed && t == g.seq
}

// Close cancels the in-flight fetch and invalidates every token.
func (g *Generation) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}
