// Package oauth expands templated OAuth provider definitions into runnable
// endpoint sets and validates them before they are exposed.
package oauth

// HostPlaceholder is the documented example value for the shared "host"
// variable. A provider still carrying it has not been configured, so the
// variable is withheld from substitution to make its absence visible.
const HostPlaceholder = "https://<server_host>"

// Documented example credentials. A provider left at these values is treated
// as unconfigured and disabled at first read.
const (
	PlaceholderClientID     = "ExampleClientID"
	PlaceholderClientSecret = "ExampleClientSecret"
)

// Template is a named default field set a provider inherits unless it
// overrides individual fields.
type Template struct {
	AuthorizationURL string
	TokenURL         string
	UserInfoURL      string
	Scope            string
	CallbackURL      string
	UserInfoMapping  map[string]string
}

// Templates holds the built-in provider templates. The "default" template
// exists but is refused during expansion: it cannot map user or email fields
// and is kept only so the refusal can name it.
var Templates = map[string]Template{
	"default": {
		AuthorizationURL: "{host}/oauth/authorize",
		TokenURL:         "{host}/oauth/token",
		UserInfoURL:      "{host}/oauth/userinfo",
		Scope:            "openid email profile",
		CallbackURL:      "{host}/login/OAuthLogin/{provider}",
	},
	"github": {
		AuthorizationURL: "https://github.com/login/oauth/authorize",
		TokenURL:         "https://github.com/login/oauth/access_token",
		UserInfoURL:      "https://api.github.com/user",
		Scope:            "openid email profile",
		CallbackURL:      "{host}/login/OAuthLogin/{provider}",
		UserInfoMapping: map[string]string{
			"username": "login",
			"email":    "email",
			"fullname": "name",
		},
	},
	"google": {
		AuthorizationURL: "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:         "https://oauth2.googleapis.com/token",
		UserInfoURL:      "https://www.googleapis.com/oauth2/v3/userinfo",
		Scope:            "openid email profile",
		CallbackURL:      "{host}/login/OAuthLogin/{provider}",
		UserInfoMapping: map[string]string{
			"username": "email",
			"email":    "email",
			"fullname": "name",
		},
	},
	"microsoft": {
		AuthorizationURL: "https://login.microsoftonline.com/{tenant}/oauth2/v2.0/authorize",
		TokenURL:         "https://login.microsoftonline.com/{tenant}/oauth2/v2.0/token",
		UserInfoURL:      "https://graph.microsoft.com/oidc/userinfo",
		Scope:            "openid email profile",
		CallbackURL:      "{host}/login/OAuthLogin/{provider}",
		UserInfoMapping: map[string]string{
			"username": "email",
			"email":    "email",
			"fullname": "name",
		},
	},
}
