package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "server_config.json", `{
	  "max_run_count": 100,
	  "server": {"port": 9001},
	  "authentication": {
	    "enabled": true,
	    "session_lifetime": 600,
	    "method_dictionary": {
	      "enabled": true,
	      "auths": ["colon:hat"],
	      "groups": {"colon": ["dev"]}
	    }
	  }
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.MaxRunCount)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.True(t, cfg.Authentication.Enabled)
	assert.Equal(t, 600, cfg.Authentication.SessionLifetime)
	assert.Equal(t, []string{"colon:hat"}, cfg.Authentication.MethodDictionary.Auths)
	assert.Equal(t, []string{"dev"}, cfg.Authentication.MethodDictionary.Groups["colon"])
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server_config.json", `{"server": {"port": 9001}}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Authentication.Enabled)
	assert.Equal(t, 86400, cfg.Authentication.SessionLifetime)
	assert.Equal(t, 0, cfg.Authentication.RefreshTime)
	assert.Equal(t, 30, cfg.Authentication.LoginsUntilCleanup)
	assert.Equal(t, "authgate", cfg.Authentication.RealmName)
	assert.Equal(t, 365, cfg.Authentication.MaxPersAuthTokenExpirationLength)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadOAuthProviders(t *testing.T) {
	path := writeConfig(t, "server_config.json", `{
	  "authentication": {
	    "enabled": true,
	    "method_oauth": {
	      "enabled": true,
	      "shared_variables": {"host": "https://cc.example.com"},
	      "providers": {
	        "github": {
	          "enabled": true,
	          "client_id": "id",
	          "client_secret": "secret",
	          "template": "github"
	        }
	      }
	    }
	  }
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	oauthCfg := cfg.Authentication.MethodOAuth
	require.True(t, oauthCfg.Enabled)
	assert.Equal(t, "https://cc.example.com", oauthCfg.SharedVariables["host"])
	provider, ok := oauthCfg.Providers["github"]
	require.True(t, ok)
	assert.Equal(t, "github", provider.Template)
}

func TestLoadBrokenFile(t *testing.T) {
	path := writeConfig(t, "server_config.json", `{"max_run_count": `)

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg, "no partial configuration may escape a broken file")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "server_config.yaml", "max_run_count: 42\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.MaxRunCount)
}
