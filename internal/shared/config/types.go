// Package config defines the configuration types shared across the server.
package config

import "fmt"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds the relational store settings. Driver selects between
// "mysql" and "sqlite"; Path is only used by the sqlite driver.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// StoreConfig holds the analysis-result storage settings the server exposes to
// its store endpoints.
type StoreConfig struct {
	AnalysisStatisticsDir string           `mapstructure:"analysis_statistics_dir"`
	Limit                 StoreLimitConfig `mapstructure:"limit"`
}

type StoreLimitConfig struct {
	FailureZipSize          int64 `mapstructure:"failure_zip_size"`
	CompilationDatabaseSize int64 `mapstructure:"compilation_database_size"`
}

// KeepaliveConfig holds TCP keepalive tuning for client connections.
type KeepaliveConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Idle     int  `mapstructure:"idle"`
	Interval int  `mapstructure:"interval"`
	MaxProbe int  `mapstructure:"max_probe"`
}

// AuthConfig is the authentication block of the server configuration. Time
// values are in seconds; a RefreshTime of zero means every access is stale and
// must re-touch the persisted session record.
type AuthConfig struct {
	Enabled                          bool              `mapstructure:"enabled"`
	SessionLifetime                  int               `mapstructure:"session_lifetime"`
	RefreshTime                      int               `mapstructure:"refresh_time"`
	LoginsUntilCleanup               int               `mapstructure:"logins_until_cleanup"`
	SuperUser                        string            `mapstructure:"super_user"`
	RealmName                        string            `mapstructure:"realm_name"`
	RealmError                       string            `mapstructure:"realm_error"`
	FailedAuthMessage                string            `mapstructure:"failed_auth_message"`
	MaxPersAuthTokenExpirationLength int               `mapstructure:"max_pers_auth_token_expiration_length"`
	RegexGroups                      RegexGroupsConfig `mapstructure:"regex_groups"`
	MethodDictionary                 DictionaryConfig  `mapstructure:"method_dictionary"`
	MethodPAM                        PAMConfig         `mapstructure:"method_pam"`
	MethodLDAP                       LDAPConfig        `mapstructure:"method_ldap"`
	MethodOAuth                      OAuthConfig       `mapstructure:"method_oauth"`
}

// RegexGroupsConfig grants group membership purely by username pattern match.
type RegexGroupsConfig struct {
	Enabled bool                `mapstructure:"enabled"`
	Groups  map[string][]string `mapstructure:"groups"`
}

// DictionaryConfig is the static credential table. Each entry in Auths is
// either "username:password" or "username:hash:algorithm[:salt]".
type DictionaryConfig struct {
	Enabled bool                `mapstructure:"enabled"`
	Auths   []string            `mapstructure:"auths"`
	Groups  map[string][]string `mapstructure:"groups"`
}

type PAMConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Users   []string `mapstructure:"users"`
	Groups  []string `mapstructure:"groups"`
}

type LDAPConfig struct {
	Enabled     bool                  `mapstructure:"enabled"`
	Authorities []LDAPAuthorityConfig `mapstructure:"authorities"`
}

// LDAPAuthorityConfig describes one directory authority. The binding library
// consuming it lives behind the auth.LDAPConnector capability.
type LDAPAuthorityConfig struct {
	ConnectionURL  string `mapstructure:"connection_url"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	AccountBase    string `mapstructure:"account_base"`
	AccountScope   string `mapstructure:"account_scope"`
	AccountPattern string `mapstructure:"account_pattern"`
	GroupBase      string `mapstructure:"group_base"`
	GroupScope     string `mapstructure:"group_scope"`
	GroupPattern   string `mapstructure:"group_pattern"`
	GroupNameAttr  string `mapstructure:"group_name_attr"`
}

type OAuthConfig struct {
	Enabled         bool                            `mapstructure:"enabled"`
	SharedVariables map[string]string               `mapstructure:"shared_variables"`
	Providers       map[string]*OAuthProviderConfig `mapstructure:"providers"`
}

// OAuthProviderConfig is one provider entry. The endpoint fields are subject
// to {variable} substitution during template expansion; credentials, template
// selection, the variable table and the user-info mapping are not.
type OAuthProviderConfig struct {
	Enabled          bool              `mapstructure:"enabled"`
	ClientID         string            `mapstructure:"client_id"`
	ClientSecret     string            `mapstructure:"client_secret"`
	Template         string            `mapstructure:"template"`
	AuthorizationURL string            `mapstructure:"authorization_url"`
	TokenURL         string            `mapstructure:"token_url"`
	UserInfoURL      string            `mapstructure:"user_info_url"`
	Scope            string            `mapstructure:"scope"`
	CallbackURL      string            `mapstructure:"callback_url"`
	Variables        map[string]string `mapstructure:"variables"`
	UserInfoMapping  map[string]string `mapstructure:"user_info_mapping"`
}

// Config is the full server configuration document.
type Config struct {
	WorkerProcesses int             `mapstructure:"worker_processes"`
	MaxRunCount     int             `mapstructure:"max_run_count"`
	Server          ServerConfig    `mapstructure:"server"`
	Database        DatabaseConfig  `mapstructure:"database"`
	Logger          LoggerConfig    `mapstructure:"logger"`
	Redis           RedisConfig     `mapstructure:"redis"`
	Store           StoreConfig     `mapstructure:"store"`
	Keepalive       KeepaliveConfig `mapstructure:"keepalive"`
	Authentication  AuthConfig      `mapstructure:"authentication"`
}
