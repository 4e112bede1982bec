package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedConfig "authgate/internal/shared/config"
	"authgate/internal/shared/logger"
)

func githubProvider() *sharedConfig.OAuthProviderConfig {
	return &sharedConfig.OAuthProviderConfig{
		Enabled:      true,
		ClientID:     "real-id",
		ClientSecret: "real-secret",
		Template:     "github",
	}
}

func oauthConfig(providers map[string]*sharedConfig.OAuthProviderConfig) *sharedConfig.OAuthConfig {
	return &sharedConfig.OAuthConfig{
		Enabled:         true,
		SharedVariables: map[string]string{"host": "https://cc.example.com"},
		Providers:       providers,
	}
}

func TestApplyTemplatesExpandsProvider(t *testing.T) {
	cfg := oauthConfig(map[string]*sharedConfig.OAuthProviderConfig{
		"github": githubProvider(),
	})

	ApplyTemplates(cfg, logger.NewLogger())

	provider := cfg.Providers["github"]
	require.True(t, provider.Enabled)
	assert.Equal(t, "https://github.com/login/oauth/authorize", provider.AuthorizationURL)
	assert.Equal(t, "https://cc.example.com/login/OAuthLogin/github", provider.CallbackURL)
	assert.Equal(t, "login", provider.UserInfoMapping["username"])
}

func TestApplyTemplatesProviderOverridesShared(t *testing.T) {
	provider := githubProvider()
	provider.Variables = map[string]string{"host": "https://override.example.com"}
	cfg := oauthConfig(map[string]*sharedConfig.OAuthProviderConfig{
		"github": provider,
	})

	ApplyTemplates(cfg, logger.NewLogger())

	assert.Equal(t, "https://override.example.com/login/OAuthLogin/github",
		cfg.Providers["github"].CallbackURL)
}

func TestApplyTemplatesDisablesPlaceholderCredentials(t *testing.T) {
	provider := githubProvider()
	provider.ClientID = PlaceholderClientID
	cfg := oauthConfig(map[string]*sharedConfig.OAuthProviderConfig{
		"github": provider,
	})

	ApplyTemplates(cfg, logger.NewLogger())

	assert.False(t, cfg.Providers["github"].Enabled,
		"example credentials mean the provider was never configured")
}

func TestApplyTemplatesRefusesDefaultTemplate(t *testing.T) {
	provider := githubProvider()
	provider.Template = ""
	cfg := oauthConfig(map[string]*sharedConfig.OAuthProviderConfig{
		"mine": provider,
	})

	ApplyTemplates(cfg, logger.NewLogger())

	assert.False(t, cfg.Providers["mine"].Enabled)
}

func TestApplyTemplatesUnknownTemplate(t *testing.T) {
	provider := githubProvider()
	provider.Template = "gitea"
	cfg := oauthConfig(map[string]*sharedConfig.OAuthProviderConfig{
		"mine": provider,
	})

	ApplyTemplates(cfg, logger.NewLogger())

	assert.False(t, cfg.Providers["mine"].Enabled)
}

func TestApplyTemplatesMissingVariable(t *testing.T) {
	provider := githubProvider()
	cfg := oauthConfig(map[string]*sharedConfig.OAuthProviderConfig{
		"github": provider,
	})
	// Leave the host variable at its documented example value; it is then
	// withheld from substitution and the callback URL cannot expand.
	cfg.SharedVariables["host"] = HostPlaceholder

	ApplyTemplates(cfg, logger.NewLogger())

	assert.False(t, cfg.Providers["github"].Enabled)
}

func TestApplyTemplatesMicrosoftTenant(t *testing.T) {
	provider := &sharedConfig.OAuthProviderConfig{
		Enabled:      true,
		ClientID:     "real-id",
		ClientSecret: "real-secret",
		Template:     "microsoft",
		Variables:    map[string]string{"tenant": "contoso"},
	}
	cfg := oauthConfig(map[string]*sharedConfig.OAuthProviderConfig{
		"microsoft": provider,
	})

	ApplyTemplates(cfg, logger.NewLogger())

	require.True(t, provider.Enabled)
	assert.Equal(t,
		"https://login.microsoftonline.com/contoso/oauth2/v2.0/authorize",
		provider.AuthorizationURL)
}

func TestApplyTemplatesSkipsDisabledProviders(t *testing.T) {
	provider := githubProvider()
	provider.Enabled = false
	cfg := oauthConfig(map[string]*sharedConfig.OAuthProviderConfig{
		"github": provider,
	})

	ApplyTemplates(cfg, logger.NewLogger())

	assert.Empty(t, provider.AuthorizationURL, "disabled providers are left untouched")
}

func TestCheckCallbackURLFormat(t *testing.T) {
	log := logger.NewLogger()

	assert.True(t, CheckCallbackURLFormat("github",
		"https://cc.example.com/login/OAuthLogin/github", log))
	assert.True(t, CheckCallbackURLFormat("github",
		"http://localhost:8001/login/OAuthLogin/github", log))

	// Wrong path shape.
	assert.False(t, CheckCallbackURLFormat("github",
		"https://cc.example.com/login/github", log))
	// Trailing content after the provider name.
	assert.False(t, CheckCallbackURLFormat("github",
		"https://cc.example.com/login/OAuthLogin/github/extra", log))
	// Different provider in the path.
	assert.False(t, CheckCallbackURLFormat("github",
		"https://cc.example.com/login/OAuthLogin/google", log))
	// Port out of range.
	assert.False(t, CheckCallbackURLFormat("github",
		"https://cc.example.com:7/login/OAuthLogin/github", log))
	// Provider names with '@' could smuggle an authority into the URL.
	assert.False(t, CheckCallbackURLFormat("git@hub",
		"https://cc.example.com/login/OAuthLogin/git@hub", log))
}

func TestExpand(t *testing.T) {
	vars := map[string]string{"host": "https://cc.example.com", "provider": "github"}

	expanded, err := Expand("{host}/login/OAuthLogin/{provider}", vars)
	require.NoError(t, err)
	assert.Equal(t, "https://cc.example.com/login/OAuthLogin/github", expanded)

	expanded, err = Expand("no placeholders", vars)
	require.NoError(t, err)
	assert.Equal(t, "no placeholders", expanded)

	_, err = Expand("{host}/x/{tenant}", vars)
	require.Error(t, err)
	var missing *MissingVariableError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "tenant", missing.Variable)
}

func TestClientConfig(t *testing.T) {
	cfg := oauthConfig(map[string]*sharedConfig.OAuthProviderConfig{
		"github": githubProvider(),
	})
	ApplyTemplates(cfg, logger.NewLogger())

	client := ClientConfig(cfg.Providers["github"])
	assert.Equal(t, "real-id", client.ClientID)
	assert.Equal(t, "https://cc.example.com/login/OAuthLogin/github", client.RedirectURL)
	assert.Equal(t, []string{"openid", "email", "profile"}, client.Scopes)
	assert.Equal(t, "https://github.com/login/oauth/access_token", client.Endpoint.TokenURL)
}

func TestGeneratePKCEParams(t *testing.T) {
	verifier, challenge, err := GeneratePKCEParams()
	require.NoError(t, err)
	assert.NotEmpty(t, verifier)
	assert.NotEmpty(t, challenge)
	assert.NotEqual(t, verifier, challenge)

	verifier2, _, err := GeneratePKCEParams()
	require.NoError(t, err)
	assert.NotEqual(t, verifier, verifier2)
}
