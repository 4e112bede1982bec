package sessions

import (
	"runtime"
	"sort"
	"time"

	sharedConfig "authgate/internal/shared/config"
)

// Realm carries the HTTP authentication realm advertised to clients.
type Realm struct {
	Realm string
	Error string
}

// IsEnabled reports whether authentication is required at all.
func (m *Manager) IsEnabled() bool {
	return m.snapshot().Authentication.Enabled
}

func (m *Manager) GetRealm() Realm {
	authCfg := m.snapshot().Authentication
	return Realm{Realm: authCfg.RealmName, Error: authCfg.RealmError}
}

func (m *Manager) FailedAuthMessage() string {
	return m.snapshot().Authentication.FailedAuthMessage
}

func (m *Manager) SuperUser() string {
	return m.snapshot().Authentication.SuperUser
}

// SessionLifetime returns the currently configured session lifetime. Callers
// read it from here instead of a cached session, since a configuration
// reload may rewrite the session fields concurrently.
func (m *Manager) SessionLifetime() time.Duration {
	return time.Duration(m.snapshot().Authentication.SessionLifetime) * time.Second
}

// MaxPersonalAccessTokenExpiration returns the longest expiration, in days,
// a user may request for a personal access token.
func (m *Manager) MaxPersonalAccessTokenExpiration() int {
	return m.snapshot().Authentication.MaxPersAuthTokenExpirationLength
}

func (m *Manager) MaxRunCount() int {
	return m.snapshot().MaxRunCount
}

func (m *Manager) AnalysisStatisticsDir() string {
	return m.snapshot().Store.AnalysisStatisticsDir
}

func (m *Manager) FailureZipSize() int64 {
	return m.snapshot().Store.Limit.FailureZipSize
}

func (m *Manager) CompilationDatabaseSize() int64 {
	return m.snapshot().Store.Limit.CompilationDatabaseSize
}

func (m *Manager) IsKeepaliveEnabled() bool {
	return m.snapshot().Keepalive.Enabled
}

func (m *Manager) KeepaliveIdle() int {
	return m.snapshot().Keepalive.Idle
}

func (m *Manager) KeepaliveInterval() int {
	return m.snapshot().Keepalive.Interval
}

func (m *Manager) KeepaliveMaxProbe() int {
	return m.snapshot().Keepalive.MaxProbe
}

// WorkerProcesses returns the configured worker count, falling back to the
// number of CPUs when the value is absent or invalid.
func (m *Manager) WorkerProcesses() int {
	workers := m.snapshot().WorkerProcesses
	if workers < 0 {
		m.logger.Warn("worker_processes must be a positive number, falling back to CPU count",
			"configured", workers)
	}
	if workers <= 0 {
		return runtime.NumCPU()
	}
	return workers
}

// OAuthProviders lists the names of the enabled OAuth providers, sorted for
// stable output.
func (m *Manager) OAuthProviders() []string {
	providers := m.snapshot().Authentication.MethodOAuth.Providers

	var names []string
	for name, provider := range providers {
		if provider.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// GetOAuthConfig returns the expanded configuration of a provider. The second
// result is false for unknown or disabled providers.
func (m *Manager) GetOAuthConfig(provider string) (*sharedConfig.OAuthProviderConfig, bool) {
	providerCfg, ok := m.snapshot().Authentication.MethodOAuth.Providers[provider]
	if !ok || !providerCfg.Enabled {
		return nil, false
	}
	return providerCfg, true
}

// TurnOffOAuthProvider disables a provider at runtime, typically after its
// endpoints turned out to be unreachable or misconfigured.
func (m *Manager) TurnOffOAuthProvider(provider string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if providerCfg, ok := m.cfg.Authentication.MethodOAuth.Providers[provider]; ok {
		providerCfg.Enabled = false
		m.logger.Warn("oauth provider was turned off", "provider", provider)
	}
}
