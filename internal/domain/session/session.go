// Package session holds the session entity and the persisted record shapes
// that back it across workers.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Session is a worker-local view of an authenticated client context. The
// persisted Record with the same token is the cross-worker source of truth;
// the in-memory entity stays authoritative for this worker even when
// persistence fails.
type Session struct {
	Token           string
	User            string
	Groups          []string
	SessionLifetime time.Duration
	// RefreshTime of zero means unset: every access is considered stale
	// and must re-touch the persisted record.
	RefreshTime time.Duration
	LastAccess  time.Time

	root bool
}

// NewSession mints a session with a fresh random token.
func NewSession(user string, groups []string, lifetime, refresh time.Duration, isRoot bool) (*Session, error) {
	if user == "" {
		return nil, fmt.Errorf("user name is required")
	}

	token, err := GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return &Session{
		Token:           token,
		User:            user,
		Groups:          groups,
		SessionLifetime: lifetime,
		RefreshTime:     refresh,
		LastAccess:      time.Now(),
		root:            isRoot,
	}, nil
}

// Rehydrate builds a local session from a persisted record, keeping the
// record's token and last-access timestamp.
func Rehydrate(token, user string, groups []string, lifetime, refresh time.Duration, isRoot bool, lastAccess time.Time) *Session {
	if lastAccess.IsZero() {
		lastAccess = time.Now()
	}
	return &Session{
		Token:           token,
		User:            user,
		Groups:          groups,
		SessionLifetime: lifetime,
		RefreshTime:     refresh,
		LastAccess:      lastAccess,
		root:            isRoot,
	}
}

// IsRoot reports whether the session was created with superuser standing.
func (s *Session) IsRoot() bool {
	return s.root
}

// IsAlive reports whether the session is still within its lifetime. Once
// false it can never become true again; only a brand-new session helps.
func (s *Session) IsAlive(now time.Time) bool {
	return now.Sub(s.LastAccess) <= s.SessionLifetime
}

// NeedsRevalidation reports whether the session must re-touch its persisted
// record before further use.
func (s *Session) NeedsRevalidation(now time.Time) bool {
	if s.RefreshTime <= 0 {
		return true
	}
	return now.Sub(s.LastAccess) > s.RefreshTime
}

// Touch bumps the last-access timestamp.
func (s *Session) Touch(now time.Time) {
	s.LastAccess = now
}

// GenerateToken returns a random 128-bit session token rendered as hex.
func GenerateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
