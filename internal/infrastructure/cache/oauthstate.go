// Package cache holds transient shared state kept in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "authgate/internal/shared/errors"
)

const (
	// OAuthStatePrefix is the redis key prefix for in-flight OAuth logins.
	OAuthStatePrefix = "oauth:login:state:"
	// OAuthStateTTL bounds how long a login attempt may stay in flight.
	OAuthStateTTL = 15 * time.Minute
)

// OAuthLoginState is the CSRF/PKCE bookkeeping for one in-flight OAuth
// login, keyed by the state parameter and consumed exactly once by the
// callback handler. Any worker may serve the callback, so the state lives in
// redis rather than worker memory.
type OAuthLoginState struct {
	State        string    `json:"state"`
	CodeVerifier string    `json:"code_verifier"`
	Provider     string    `json:"provider"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// OAuthStateStore stores in-flight OAuth login state.
type OAuthStateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewOAuthStateStore(client *redis.Client) *OAuthStateStore {
	return &OAuthStateStore{
		client: client,
		prefix: OAuthStatePrefix,
		ttl:    OAuthStateTTL,
	}
}

// Store saves a login state under its state key. The redis TTL enforces the
// expiry; no sweeper is needed.
func (s *OAuthStateStore) Store(ctx context.Context, state *OAuthLoginState) error {
	if state == nil || state.State == "" {
		return errors.New("oauth login state requires a state key")
	}
	if state.Provider == "" {
		return errors.New("oauth login state requires a provider")
	}

	ttl := s.ttl
	if !state.ExpiresAt.IsZero() {
		if remaining := time.Until(state.ExpiresAt); remaining > 0 {
			ttl = remaining
		}
	} else {
		state.ExpiresAt = time.Now().Add(ttl)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal oauth login state: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+state.State, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store oauth login state: %w", err)
	}
	return nil
}

// Consume atomically fetches and deletes the state, so a replayed callback
// finds nothing.
func (s *OAuthStateStore) Consume(ctx context.Context, state string) (*OAuthLoginState, error) {
	data, err := s.client.GetDel(ctx, s.prefix+state).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.NewNotFoundError("oauth login state not found")
		}
		return nil, fmt.Errorf("failed to consume oauth login state: %w", err)
	}

	var loginState OAuthLoginState
	if err := json.Unmarshal(data, &loginState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal oauth login state: %w", err)
	}
	return &loginState, nil
}
