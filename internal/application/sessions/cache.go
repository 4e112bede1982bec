package sessions

import (
	"context"
	"time"

	sessionDomain "authgate/internal/domain/session"
	sharedConfig "authgate/internal/shared/config"
)

// snapshot returns the current configuration pointer. Reloads swap the
// pointer wholesale, so holders of a snapshot read a consistent view.
func (m *Manager) snapshot() *sharedConfig.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

func (m *Manager) cacheAppend(sess *sessionDomain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, sess)
}

// cacheFind returns the cached session for the token if it is still alive.
func (m *Manager) cacheFind(token string, now time.Time) *sessionDomain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sess := range m.sessions {
		if sess.Token == token && sess.IsAlive(now) {
			return sess
		}
	}
	return nil
}

func (m *Manager) cacheRemove(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sess := range m.sessions {
		if sess.Token == token {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			return true
		}
	}
	return false
}

// countLogin counts a login attempt towards the cleanup threshold and runs
// the prune once the threshold is reached.
func (m *Manager) countLogin(ctx context.Context) {
	threshold := m.snapshot().Authentication.LoginsUntilCleanup

	m.mu.Lock()
	m.loginsSincePrune++
	due := threshold > 0 && m.loginsSincePrune >= threshold
	if due {
		m.loginsSincePrune = 0
	}
	m.mu.Unlock()

	if due {
		m.pruneSessions(ctx)
	}
}

// pruneSessions sweeps the local cache in two passes. Sessions past their
// refresh time but still within their lifetime are dropped from the cache
// only; their records stay retrievable by other workers. Sessions past their
// lifetime are invalidated everywhere.
func (m *Manager) pruneSessions(ctx context.Context) {
	now := time.Now()
	var expired []string

	m.mu.Lock()
	kept := m.sessions[:0]
	for _, sess := range m.sessions {
		switch {
		case !sess.IsAlive(now):
			expired = append(expired, sess.Token)
		case sess.NeedsRevalidation(now):
			// stale but alive, local removal only
		default:
			kept = append(kept, sess)
		}
	}
	m.sessions = kept
	m.mu.Unlock()

	if m.repos.Records == nil {
		return
	}
	for _, token := range expired {
		if err := m.repos.Records.DeleteByToken(ctx, token); err != nil {
			m.logger.Error("failed to remove expired session record",
				"token", token, "error", err)
		}
	}
}
