package oauth

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/oauth2"

	sharedConfig "authgate/internal/shared/config"
	"authgate/internal/shared/logger"
)

// ApplyTemplates expands every enabled provider in place: template defaults
// fill unset fields, {variable} references are substituted, and the callback
// URL format is enforced. A provider that fails any step is disabled with a
// warning; the rest of the configuration is unaffected.
func ApplyTemplates(cfg *sharedConfig.OAuthConfig, log logger.Interface) {
	for name, provider := range cfg.Providers {
		if !provider.Enabled {
			continue
		}

		if isUnconfigured(provider) {
			log.Warn("oauth provider credentials left at example values, disabling provider",
				"provider", name)
			provider.Enabled = false
			continue
		}

		templateName := provider.Template
		if templateName == "" {
			templateName = "default"
		}

		template, known := Templates[templateName]
		if !known {
			log.Warn("oauth provider references unknown template, disabling provider",
				"provider", name, "template", templateName)
			provider.Enabled = false
			continue
		}

		if templateName == "default" {
			log.Warn("the default template cannot map user or email fields, disabling provider",
				"provider", name)
			provider.Enabled = false
			continue
		}

		applyDefaults(provider, template)

		// Shared variables lose to the provider's own on conflict.
		vars := make(map[string]string, len(cfg.SharedVariables)+len(provider.Variables)+1)
		for k, val := range cfg.SharedVariables {
			vars[k] = val
		}
		for k, val := range provider.Variables {
			vars[k] = val
		}
		vars["provider"] = name

		if vars["host"] == HostPlaceholder {
			delete(vars, "host")
		}

		if !expandFields(provider, name, vars, log) {
			continue
		}

		if !CheckCallbackURLFormat(name, provider.CallbackURL, log) {
			log.Error("disabling oauth provider due to invalid callback URL format",
				"provider", name, "callback_url", provider.CallbackURL)
			provider.Enabled = false
		}
	}
}

// expandFields substitutes variables into every templated string field.
// Credentials, template selection, the variable table and the user-info
// mapping are exempt. Returns false when the provider got disabled.
func expandFields(provider *sharedConfig.OAuthProviderConfig, name string, vars map[string]string, log logger.Interface) bool {
	fields := []struct {
		field string
		value *string
	}{
		{"authorization_url", &provider.AuthorizationURL},
		{"token_url", &provider.TokenURL},
		{"user_info_url", &provider.UserInfoURL},
		{"scope", &provider.Scope},
		{"callback_url", &provider.CallbackURL},
	}

	for _, f := range fields {
		expanded, err := Expand(*f.value, vars)
		if err != nil {
			var missing *MissingVariableError
			if errors.As(err, &missing) {
				log.Warn("oauth provider field references undefined variable, disabling provider",
					"provider", name, "field", f.field, "variable", missing.Variable)
			} else {
				log.Warn("oauth provider field expansion failed, disabling provider",
					"provider", name, "field", f.field, "error", err)
			}
			provider.Enabled = false
			return false
		}
		*f.value = expanded
	}
	return true
}

func applyDefaults(provider *sharedConfig.OAuthProviderConfig, template Template) {
	if provider.AuthorizationURL == "" {
		provider.AuthorizationURL = template.AuthorizationURL
	}
	if provider.TokenURL == "" {
		provider.TokenURL = template.TokenURL
	}
	if provider.UserInfoURL == "" {
		provider.UserInfoURL = template.UserInfoURL
	}
	if provider.Scope == "" {
		provider.Scope = template.Scope
	}
	if provider.CallbackURL == "" {
		provider.CallbackURL = template.CallbackURL
	}
	if len(provider.UserInfoMapping) == 0 {
		provider.UserInfoMapping = template.UserInfoMapping
	}
}

func isUnconfigured(provider *sharedConfig.OAuthProviderConfig) bool {
	return provider.ClientID == "" || provider.ClientID == PlaceholderClientID ||
		provider.ClientSecret == "" || provider.ClientSecret == PlaceholderClientSecret
}

// CheckCallbackURLFormat enforces
// http(s)://host[:port]/login/OAuthLogin/<provider>. A provider name
// containing '@' would let a crafted name smuggle credentials into the URL
// authority, so it is rejected outright.
func CheckCallbackURLFormat(providerName, callbackURL string, log logger.Interface) bool {
	if strings.Contains(providerName, "@") {
		log.Warn("oauth provider name contains '@', which is not allowed",
			"provider", providerName)
		return false
	}

	pattern := regexp.MustCompile(
		`^http(s)?://[a-zA-Z0-9._\-]+(:[0-9]{2,5})?/login/OAuthLogin/` +
			regexp.QuoteMeta(providerName) + `$`)
	if !pattern.MatchString(callbackURL) {
		log.Warn("callback_url format is invalid, please check the configuration",
			"provider", providerName, "callback_url", callbackURL)
		return false
	}
	return true
}

// ClientConfig builds the oauth2 client configuration for a validated
// provider.
func ClientConfig(provider *sharedConfig.OAuthProviderConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     provider.ClientID,
		ClientSecret: provider.ClientSecret,
		RedirectURL:  provider.CallbackURL,
		Scopes:       strings.Fields(provider.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:  provider.AuthorizationURL,
			TokenURL: provider.TokenURL,
		},
	}
}
