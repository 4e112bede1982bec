// Package sessions implements the session lifecycle engine: it owns session
// creation, lookup, revalidation, invalidation and pruning, and is the sole
// owner of the authentication configuration snapshot.
package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	sessionDomain "authgate/internal/domain/session"
	"authgate/internal/infrastructure/auth"
	"authgate/internal/infrastructure/auth/oauth"
	"authgate/internal/infrastructure/config"
	sharedConfig "authgate/internal/shared/config"
	appErrors "authgate/internal/shared/errors"
	"authgate/internal/shared/logger"
)

// Repositories bundles the persistence collaborators. Any of them may be nil
// when the corresponding store is not connected; the engine then runs on its
// local cache alone.
type Repositories struct {
	Records           sessionDomain.RecordRepository
	AccessTokens      sessionDomain.PersonalAccessTokenRepository
	OAuthTokens       sessionDomain.OAuthTokenRepository
	SystemPermissions sessionDomain.SystemPermissionRepository
}

// Capabilities holds the external authentication backends. A nil capability
// marks the backend library as unavailable: an enabled method without its
// capability is force-disabled at configuration time, not at request time.
type Capabilities struct {
	PAM  auth.PAMAuthenticator
	LDAP auth.LDAPConnector
}

// Manager provides the functionality required to handle user authentication
// on the server. Each worker process holds its own Manager; the record store
// is the only state shared between them.
type Manager struct {
	mu               sync.Mutex
	cfg              *sharedConfig.Config
	sessions         []*sessionDomain.Session
	loginsSincePrune int

	configPath    string
	chain         *auth.Chain
	groupResolver *auth.GroupResolver
	repos         Repositories
	logger        logger.Interface
}

// New reads the configuration file and builds the session manager. With
// forceAuth the manager is enabled even if the configuration file disables
// authentication.
func New(configPath string, repos Repositories, caps Capabilities, forceAuth bool, log logger.Interface) (*Manager, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(configPath, cfg, repos, caps, forceAuth, log)
}

// NewWithConfig builds the manager around an already-loaded configuration
// snapshot. Tests use it to avoid touching the filesystem.
func NewWithConfig(configPath string, cfg *sharedConfig.Config, repos Repositories, caps Capabilities, forceAuth bool, log logger.Interface) (*Manager, error) {
	m := &Manager{
		cfg:        cfg,
		configPath: configPath,
		repos:      repos,
		logger:     log.Named("sessions"),
	}

	authCfg := &cfg.Authentication
	if forceAuth {
		log.Debug("authentication was force-enabled")
		authCfg.Enabled = true
	}

	resolver, err := auth.NewGroupResolver(authCfg.RegexGroups)
	if err != nil {
		return nil, appErrors.NewValidationError("invalid regex_groups configuration", err.Error())
	}
	m.groupResolver = resolver

	m.applyMethodAvailability(authCfg, caps, forceAuth)
	m.chain = m.buildChain(authCfg, caps)

	return m, nil
}

// applyMethodAvailability reconciles the enabled flags with the capabilities
// actually wired in, expands OAuth providers, and falls back to disabled
// authentication when no usable method remains.
func (m *Manager) applyMethodAvailability(authCfg *sharedConfig.AuthConfig, caps Capabilities, forceAuth bool) {
	if !authCfg.Enabled {
		return
	}

	foundMethod := authCfg.MethodDictionary.Enabled

	if authCfg.MethodPAM.Enabled {
		if caps.PAM == nil {
			m.logger.Warn("PAM authentication was enabled but prerequisites are not installed, disabling PAM authentication")
			authCfg.MethodPAM.Enabled = false
		} else {
			foundMethod = true
		}
	}

	if authCfg.MethodLDAP.Enabled {
		if caps.LDAP == nil {
			m.logger.Warn("LDAP authentication was enabled but prerequisites are not installed, disabling LDAP authentication")
			authCfg.MethodLDAP.Enabled = false
		} else {
			foundMethod = true
		}
	}

	if authCfg.MethodOAuth.Enabled {
		oauth.ApplyTemplates(&authCfg.MethodOAuth, m.logger)

		anyProvider := false
		for _, provider := range authCfg.MethodOAuth.Providers {
			if provider.Enabled {
				anyProvider = true
				break
			}
		}
		if anyProvider {
			foundMethod = true
		} else {
			m.logger.Warn("OAuth authentication was enabled but no OAuth provider is usable, disabling OAuth authentication")
			authCfg.MethodOAuth.Enabled = false
		}
	}

	if !foundMethod {
		if forceAuth {
			m.logger.Warn("authentication was manually enabled, but no valid backends are configured; only the superuser will be able to log in")
		} else {
			m.logger.Warn("authentication is enabled but no valid backends are configured, falling back to no authentication")
			authCfg.Enabled = false
		}
	}
}

// buildChain assembles the validator chain in its fixed order: personal
// access tokens, dictionary, PAM, LDAP. The session-token lookup runs before
// the chain inside CreateSession.
func (m *Manager) buildChain(authCfg *sharedConfig.AuthConfig, caps Capabilities) *auth.Chain {
	var validators []auth.Validator

	if m.repos.AccessTokens != nil {
		validators = append(validators,
			auth.NewPersonalAccessTokenValidator(m.repos.AccessTokens, m.logger))
	}
	if authCfg.MethodDictionary.Enabled {
		validators = append(validators,
			auth.NewDictionaryValidator(authCfg.MethodDictionary, m.repos.AccessTokens, m.logger))
	}
	if authCfg.MethodPAM.Enabled && caps.PAM != nil {
		validators = append(validators,
			auth.NewPAMValidator(caps.PAM, authCfg.MethodPAM, m.logger))
	}
	if authCfg.MethodLDAP.Enabled && caps.LDAP != nil {
		validators = append(validators,
			auth.NewLDAPValidator(caps.LDAP, authCfg.MethodLDAP, m.repos.Records, m.repos.AccessTokens, m.logger))
	}

	return auth.NewChain(m.logger, validators...)
}

// CreateSession authenticates the credential and returns a session. It
// returns (nil, nil) when authentication is disabled and a typed
// invalid-credentials error when every validator rejected; the caller never
// learns which backend said no.
func (m *Manager) CreateSession(ctx context.Context, credential string) (*sessionDomain.Session, error) {
	authCfg := m.snapshot().Authentication
	if !authCfg.Enabled {
		return nil, nil
	}

	m.countLogin(ctx)

	// A credential of the form user:token may be an existing session;
	// rehydrating it must not mint a new one.
	if sess := m.tryRehydrateCredential(ctx, credential); sess != nil {
		return sess, nil
	}

	validation := m.chain.Validate(ctx, credential)
	if validation == nil {
		return nil, appErrors.NewInvalidCredentialsError()
	}

	groups := auth.Union(validation.Groups, m.groupResolver.Resolve(validation.Username))
	isRoot := validation.Root || m.isRootUser(ctx, validation.Username)

	sess, err := sessionDomain.NewSession(
		validation.Username,
		groups,
		time.Duration(authCfg.SessionLifetime)*time.Second,
		time.Duration(authCfg.RefreshTime)*time.Second,
		isRoot,
	)
	if err != nil {
		return nil, appErrors.NewInternalError("failed to create session", err.Error())
	}

	m.cacheAppend(sess)
	m.persistRecord(ctx, sess)

	return sess, nil
}

// CreateSessionOAuth mints a session for a user authenticated by an enabled
// OAuth provider and records the provider tokens alongside the session
// record.
func (m *Manager) CreateSessionOAuth(
	ctx context.Context,
	provider string,
	username string,
	accessToken string,
	tokenExpiresAt time.Time,
	refreshToken string,
	groups []string,
) (*sessionDomain.Session, error) {
	authCfg := m.snapshot().Authentication
	if !authCfg.MethodOAuth.Enabled {
		return nil, appErrors.NewOAuthError(provider, "oauth authentication is not enabled")
	}

	providerCfg, known := authCfg.MethodOAuth.Providers[provider]
	if !known || !providerCfg.Enabled {
		return nil, appErrors.NewOAuthError(provider, "oauth provider is not enabled")
	}

	sess, err := sessionDomain.NewSession(
		username,
		groups,
		time.Duration(authCfg.SessionLifetime)*time.Second,
		time.Duration(authCfg.RefreshTime)*time.Second,
		m.isRootUser(ctx, username),
	)
	if err != nil {
		return nil, appErrors.NewInternalError("failed to create session", err.Error())
	}

	m.cacheAppend(sess)

	if m.repos.AccessTokens != nil {
		if err := m.repos.AccessTokens.UpdateGroupsByUser(ctx, username, groups); err != nil {
			m.logger.Warn("failed to sync oauth groups to access tokens",
				"user", username, "error", err)
		}
	}

	record := m.persistRecord(ctx, sess)
	if record != nil && m.repos.OAuthTokens != nil {
		err := m.repos.OAuthTokens.Create(ctx, &sessionDomain.OAuthToken{
			AccessToken:   accessToken,
			ExpiresAt:     tokenExpiresAt,
			RefreshToken:  refreshToken,
			AuthSessionID: record.ID,
		})
		if err != nil {
			m.logger.Error("failed to store oauth token", "user", username, "error", err)
		}
	}

	return sess, nil
}

// GetSession retrieves the session for a token: the local cache first, then
// the record store. A token that matches nothing, or only a dead record, is
// invalidated everywhere and yields nil.
func (m *Manager) GetSession(ctx context.Context, token string) (*sessionDomain.Session, error) {
	if !m.IsEnabled() {
		return nil, nil
	}

	now := time.Now()
	if sess := m.cacheFind(token, now); sess != nil {
		if sess.NeedsRevalidation(now) {
			m.revalidate(ctx, sess)
		}
		return sess, nil
	}

	if sess := m.rehydrateToken(ctx, token); sess != nil {
		return sess, nil
	}

	m.Invalidate(ctx, token)
	return nil, nil
}

// Invalidate removes a session from the local cache and best-effort deletes
// its record. The two steps are independent so a persistence failure never
// keeps a dead session in local memory.
func (m *Manager) Invalidate(ctx context.Context, token string) bool {
	removed := m.cacheRemove(token)

	if m.repos.Records != nil {
		if err := m.repos.Records.DeleteByToken(ctx, token); err != nil {
			m.logger.Error("failed to invalidate session record",
				"token", token, "error", err)
			return removed
		}
		return true
	}
	return removed
}

// tryRehydrateCredential treats a user:token credential as a possible
// existing session. Dead records are cleaned up instead of resurrected.
func (m *Manager) tryRehydrateCredential(ctx context.Context, credential string) *sessionDomain.Session {
	if m.repos.Records == nil {
		return nil
	}

	userName, token, ok := auth.SplitCredential(credential)
	if !ok {
		return nil
	}

	record, err := m.repos.Records.GetByUserAndToken(ctx, userName, token)
	if err != nil {
		if !isNotFound(err) {
			m.logger.Error("failed to check session token in the store", "error", err)
		}
		return nil
	}

	sess := m.rehydrateRecord(ctx, record)
	now := time.Now()
	if !sess.IsAlive(now) {
		m.Invalidate(ctx, token)
		return nil
	}

	if sess.NeedsRevalidation(now) {
		m.revalidate(ctx, sess)
	}
	m.cacheAppend(sess)
	return sess
}

// rehydrateToken pulls a record into the local cache if it is still alive.
func (m *Manager) rehydrateToken(ctx context.Context, token string) *sessionDomain.Session {
	if m.repos.Records == nil {
		return nil
	}

	record, err := m.repos.Records.GetByToken(ctx, token)
	if err != nil {
		if !isNotFound(err) {
			m.logger.Error("failed to check session token in the store", "error", err)
		}
		return nil
	}

	sess := m.rehydrateRecord(ctx, record)
	now := time.Now()
	if !sess.IsAlive(now) {
		return nil
	}

	m.cacheAppend(sess)
	if sess.NeedsRevalidation(now) {
		m.revalidate(ctx, sess)
	}
	return sess
}

func (m *Manager) rehydrateRecord(ctx context.Context, record *sessionDomain.Record) *sessionDomain.Session {
	authCfg := m.snapshot().Authentication
	return sessionDomain.Rehydrate(
		record.Token,
		record.UserName,
		record.Groups,
		time.Duration(authCfg.SessionLifetime)*time.Second,
		time.Duration(authCfg.RefreshTime)*time.Second,
		m.isRootUser(ctx, record.UserName),
		record.LastAccess,
	)
}

// revalidate bumps the session's last access and persists it. Persistence
// failures are logged and swallowed: the in-memory session stays usable for
// the remainder of its lifetime.
func (m *Manager) revalidate(ctx context.Context, sess *sessionDomain.Session) {
	now := time.Now()

	m.mu.Lock()
	if !sess.IsAlive(now) || !sess.NeedsRevalidation(now) {
		m.mu.Unlock()
		return
	}
	sess.Touch(now)
	m.mu.Unlock()

	if m.repos.Records == nil {
		return
	}
	if err := m.repos.Records.UpdateLastAccess(ctx, sess.User, sess.Token, now); err != nil {
		m.logger.Warn("could not update usage timestamp of session",
			"token", sess.Token, "error", err)
	}
}

// persistRecord writes the session through to the record store. Failures are
// logged and swallowed; the local session remains authoritative.
func (m *Manager) persistRecord(ctx context.Context, sess *sessionDomain.Session) *sessionDomain.Record {
	if m.repos.Records == nil {
		return nil
	}

	record := &sessionDomain.Record{
		Token:      sess.Token,
		UserName:   sess.User,
		Groups:     sess.Groups,
		LastAccess: sess.LastAccess,
	}
	if err := m.repos.Records.Create(ctx, record); err != nil {
		m.logger.Error("failed to store login record", "user", sess.User, "error", err)
		return nil
	}
	return record
}

// isRootUser reports whether the user matches the configured superuser name
// or holds a stored superuser grant.
func (m *Manager) isRootUser(ctx context.Context, userName string) bool {
	authCfg := m.snapshot().Authentication
	if authCfg.SuperUser != "" && authCfg.SuperUser == userName {
		return true
	}

	if m.repos.SystemPermissions == nil {
		return false
	}
	isRoot, err := m.repos.SystemPermissions.HasSuperuserPermission(ctx, userName)
	if err != nil {
		m.logger.Error("failed to query system permission", "user", userName, "error", err)
		return false
	}
	return isRoot
}

func isNotFound(err error) bool {
	var appErr *appErrors.AppError
	return errors.As(err, &appErr) && appErr.Type == appErrors.ErrorTypeNotFound
}
