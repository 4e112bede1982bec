package session

import (
	"context"
	"time"
)

// Record is the durable counterpart of a Session and the only coherency
// mechanism between workers: a session minted by one worker becomes visible
// to another when that worker rehydrates the record on a cache miss.
type Record struct {
	ID         uint
	Token      string
	UserName   string
	Groups     []string
	LastAccess time.Time
}

// PersonalAccessToken is a long-lived credential independent of login
// sessions. Its group column is kept in sync when login-time group
// resolution produces fresh results.
type PersonalAccessToken struct {
	UserName   string
	Token      string
	Groups     []string
	Expiration time.Time
}

// OAuthToken stores the provider-issued tokens for a session created through
// the OAuth path. It lives exactly as long as its parent record.
type OAuthToken struct {
	AccessToken   string
	ExpiresAt     time.Time
	RefreshToken  string
	AuthSessionID uint
}

// RecordRepository is the transactional store of session records.
type RecordRepository interface {
	Create(ctx context.Context, record *Record) error
	GetByToken(ctx context.Context, token string) (*Record, error)
	GetByUserAndToken(ctx context.Context, userName, token string) (*Record, error)
	UpdateLastAccess(ctx context.Context, userName, token string, at time.Time) error
	UpdateGroupsByUser(ctx context.Context, userName string, groups []string) error
	DeleteByToken(ctx context.Context, token string) error
}

// PersonalAccessTokenRepository looks up and maintains personal access
// tokens. UpdateGroupsByUser is an update-affects-zero-rows no-op for users
// without tokens.
type PersonalAccessTokenRepository interface {
	GetByUserAndToken(ctx context.Context, userName, token string) (*PersonalAccessToken, error)
	UpdateGroupsByUser(ctx context.Context, userName string, groups []string) error
}

// OAuthTokenRepository stores provider token material keyed to a session
// record.
type OAuthTokenRepository interface {
	Create(ctx context.Context, token *OAuthToken) error
}

// SystemPermissionRepository answers whether a user holds a stored superuser
// grant, independent of the configured super_user name.
type SystemPermissionRepository interface {
	HasSuperuserPermission(ctx context.Context, userName string) (bool, error)
}
