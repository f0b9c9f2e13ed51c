package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	// DefaultRefreshInterval is used when no token expiry is known.
	DefaultRefreshInterval = 10 * time.Minute
	// refreshLead is how long before expiry the token is renewed.
	refreshLead     = 30 * time.Second
	minRefreshDelay = time.Second
)

// StartAutoRefresh renews the access token in the background while the
// session is authenticated. The delay is derived from the token's exp
// claim when the backend returned one, otherwise fallback is used. It
// returns immediately; the loop stops when ctx is cancelled.
func (m *Manager) StartAutoRefresh(ctx context.Context, fallback time.Duration) {
	if fallback <= 0 {
		fallback = DefaultRefreshInterval
	}
	go func() {
		timer := time.NewTimer(m.nextRefresh(fallback))
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				if m.State() == StateAuthenticated {
					if err := m.Refresh(ctx); err != nil {
						m.log.Warn("auto refresh failed", zap.Error(err))
					}
				}
				timer.Reset(m.nextRefresh(fallback))
			}
		}
	}()
}

// nextRefresh returns the delay until the next renewal.
func (m *Manager) nextRefresh(fallback time.Duration) time.Duration {
	m.mu.RLock()
	token := m.accessToken
	m.mu.RUnlock()

	exp, ok := tokenExpiry(token)
	if !ok {
		return fallback
	}
	return max(time.Until(exp)-refreshLead, minRefreshDelay)
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client has no key and only uses it for scheduling.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
