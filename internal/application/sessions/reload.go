package sessions

import (
	"reflect"
	"time"

	"authgate/internal/infrastructure/config"
)

// ReloadConfig re-reads the configuration file and applies the runtime
// mutable fields: max_run_count, the store block, session_lifetime,
// refresh_time and logins_until_cleanup. Everything else keeps its value
// from startup. Lifetime changes are applied to live sessions in place, so a
// shortened lifetime can expire already-issued sessions.
func (m *Manager) ReloadConfig() error {
	loaded, err := config.Load(m.configPath)
	if err != nil {
		m.logger.Error("failed to reload configuration file, keeping previous settings",
			"path", m.configPath, "error", err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	updated := *m.cfg

	if updated.MaxRunCount != loaded.MaxRunCount {
		m.logger.Info("updating configuration", "option", "max_run_count",
			"value", loaded.MaxRunCount)
		updated.MaxRunCount = loaded.MaxRunCount
	}

	if !reflect.DeepEqual(updated.Store, loaded.Store) {
		m.logger.Info("updating configuration", "option", "store")
		updated.Store = loaded.Store
	}

	lifetimesChanged := false

	if updated.Authentication.SessionLifetime != loaded.Authentication.SessionLifetime {
		m.logger.Info("updating configuration", "option", "authentication.session_lifetime",
			"value", loaded.Authentication.SessionLifetime)
		updated.Authentication.SessionLifetime = loaded.Authentication.SessionLifetime
		lifetimesChanged = true
	}

	if updated.Authentication.RefreshTime != loaded.Authentication.RefreshTime {
		m.logger.Info("updating configuration", "option", "authentication.refresh_time",
			"value", loaded.Authentication.RefreshTime)
		updated.Authentication.RefreshTime = loaded.Authentication.RefreshTime
		lifetimesChanged = true
	}

	if updated.Authentication.LoginsUntilCleanup != loaded.Authentication.LoginsUntilCleanup {
		m.logger.Info("updating configuration", "option", "authentication.logins_until_cleanup",
			"value", loaded.Authentication.LoginsUntilCleanup)
		updated.Authentication.LoginsUntilCleanup = loaded.Authentication.LoginsUntilCleanup
	}

	m.cfg = &updated

	if lifetimesChanged {
		// Live sessions pick up the new lifetimes immediately. These
		// fields are only read back under m.mu (cacheFind, revalidate,
		// pruneSessions); everything outside the engine goes through
		// the Manager accessors instead.
		lifetime := time.Duration(updated.Authentication.SessionLifetime) * time.Second
		refresh := time.Duration(updated.Authentication.RefreshTime) * time.Second
		for _, sess := range m.sessions {
			sess.SessionLifetime = lifetime
			sess.RefreshTime = refresh
		}
	}

	return nil
}
