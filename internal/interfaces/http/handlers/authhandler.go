package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"authgate/internal/application/sessions"
	sessionDomain "authgate/internal/domain/session"
	oauthCfg "authgate/internal/infrastructure/auth/oauth"
	"authgate/internal/infrastructure/cache"
	"authgate/internal/interfaces/http/middleware"
	appErrors "authgate/internal/shared/errors"
	"authgate/internal/shared/logger"
	"authgate/internal/shared/utils"
)

var errNoUsernameField = errors.New("user info response carries no username field")

type AuthHandler struct {
	manager    *sessions.Manager
	stateStore *cache.OAuthStateStore
	logger     logger.Interface
}

func NewAuthHandler(manager *sessions.Manager, stateStore *cache.OAuthStateStore, logger logger.Interface) *AuthHandler {
	return &AuthHandler{
		manager:    manager,
		stateStore: stateStore,
		logger:     logger,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SessionResponse struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Groups   []string `json:"groups,omitempty"`
	IsRoot   bool     `json:"is_root"`
}

func sessionResponse(sess *sessionDomain.Session) SessionResponse {
	return SessionResponse{
		Token:    sess.Token,
		Username: sess.User,
		Groups:   sess.Groups,
		IsRoot:   sess.IsRoot(),
	}
}

// Login authenticates a username and password pair and sets the session
// cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "username and password are required")
		return
	}

	sess, err := h.manager.CreateSession(c.Request.Context(), req.Username+":"+req.Password)
	if err != nil {
		if !appErrors.IsAuthError(err) {
			h.logger.Error("login failed", "user", req.Username, "error", err)
			utils.ErrorResponseWithError(c, err)
			return
		}
		if appErrors.ShouldLogAuthError(err) {
			h.logger.Warn("login failed", "user", req.Username, "error", err)
		} else {
			authErr := appErrors.GetAuthError(err)
			h.logger.Debug("login rejected", "user", req.Username,
				"security_event", authErr.SecurityEvent)
		}
		message := h.manager.FailedAuthMessage()
		if message == "" {
			message = "Invalid username or password."
		}
		utils.ErrorResponse(c, http.StatusUnauthorized, message)
		return
	}
	if sess == nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "authentication is disabled on this server")
		return
	}

	h.setSessionCookie(c, sess.Token)
	utils.SuccessResponse(c, http.StatusOK, "login successful", sessionResponse(sess))
}

// Logout invalidates the current session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.TokenFromRequest(c)
	if token == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "no active session")
		return
	}

	h.manager.Invalidate(c.Request.Context(), token)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	utils.SuccessResponse(c, http.StatusOK, "logout successful", nil)
}

// GetCurrentSession returns the authenticated caller's session details.
func (h *AuthHandler) GetCurrentSession(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		utils.SuccessResponse(c, http.StatusOK, "authentication is disabled", nil)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", sessionResponse(sess))
}

type RealmResponse struct {
	Realm       string   `json:"realm"`
	RealmError  string   `json:"realm_error"`
	AuthEnabled bool     `json:"auth_enabled"`
	Providers   []string `json:"oauth_providers,omitempty"`
}

// GetRealm advertises the authentication realm and the available login
// methods. It is the only endpoint reachable without a session.
func (h *AuthHandler) GetRealm(c *gin.Context) {
	realm := h.manager.GetRealm()
	utils.SuccessResponse(c, http.StatusOK, "", RealmResponse{
		Realm:       realm.Realm,
		RealmError:  realm.Error,
		AuthEnabled: h.manager.IsEnabled(),
		Providers:   h.manager.OAuthProviders(),
	})
}

// InitiateOAuth starts the authorization-code flow for a provider and
// redirects the client to the provider's authorization endpoint.
func (h *AuthHandler) InitiateOAuth(c *gin.Context) {
	provider := c.Param("provider")
	providerCfg, ok := h.manager.GetOAuthConfig(provider)
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "unknown oauth provider")
		return
	}

	state, err := sessionDomain.GenerateToken()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to start oauth login")
		return
	}
	verifier, challenge, err := oauthCfg.GeneratePKCEParams()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to start oauth login")
		return
	}

	loginState := &cache.OAuthLoginState{
		State:        state,
		CodeVerifier: verifier,
		Provider:     provider,
	}
	if err := h.stateStore.Store(c.Request.Context(), loginState); err != nil {
		h.logger.Error("failed to store oauth login state", "provider", provider, "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to start oauth login")
		return
	}

	authURL := oauthCfg.ClientConfig(providerCfg).AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"))
	c.Redirect(http.StatusFound, authURL)
}

// OAuthCallback finishes the authorization-code flow: it consumes the login
// state, exchanges the code, resolves the user identity from the provider
// and mints a session.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "missing state or code parameter")
		return
	}

	loginState, err := h.stateStore.Consume(c.Request.Context(), state)
	if err != nil {
		h.logger.Warn("oauth callback with unknown or replayed state", "provider", provider)
		utils.ErrorResponse(c, http.StatusBadRequest, "unknown or expired login attempt")
		return
	}
	if loginState.Provider != provider {
		utils.ErrorResponse(c, http.StatusBadRequest, "login attempt belongs to a different provider")
		return
	}

	providerCfg, ok := h.manager.GetOAuthConfig(provider)
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "unknown oauth provider")
		return
	}

	clientCfg := oauthCfg.ClientConfig(providerCfg)
	token, err := clientCfg.Exchange(c.Request.Context(), code,
		oauth2.SetAuthURLParam("code_verifier", loginState.CodeVerifier))
	if err != nil {
		h.logger.Error("oauth code exchange failed", "provider", provider, "error", err)
		utils.ErrorResponse(c, http.StatusBadGateway, "token exchange with the provider failed")
		return
	}

	username, groups, err := h.fetchUserIdentity(c.Request.Context(), clientCfg, providerCfg.UserInfoURL, providerCfg.UserInfoMapping, token)
	if err != nil {
		h.logger.Error("failed to resolve oauth user identity", "provider", provider, "error", err)
		utils.ErrorResponse(c, http.StatusBadGateway, "could not resolve user identity from the provider")
		return
	}

	sess, err := h.manager.CreateSessionOAuth(c.Request.Context(),
		provider, username, token.AccessToken, token.Expiry, token.RefreshToken, groups)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.setSessionCookie(c, sess.Token)
	utils.SuccessResponse(c, http.StatusOK, "login successful", sessionResponse(sess))
}

// fetchUserIdentity queries the provider's user-info endpoint and maps the
// configured fields onto a username and optional group list.
func (h *AuthHandler) fetchUserIdentity(
	ctx context.Context,
	clientCfg *oauth2.Config,
	userInfoURL string,
	mapping map[string]string,
	token *oauth2.Token,
) (string, []string, error) {
	client := clientCfg.Client(ctx, token)
	resp, err := client.Get(userInfoURL)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", nil, err
	}

	usernameField := mapping["username"]
	if usernameField == "" {
		usernameField = "username"
	}
	username, _ := info[usernameField].(string)
	if username == "" {
		return "", nil, errNoUsernameField
	}

	var groups []string
	if groupsField := mapping["groups"]; groupsField != "" {
		if raw, ok := info[groupsField].([]any); ok {
			for _, g := range raw {
				if name, ok := g.(string); ok {
					groups = append(groups, name)
				}
			}
		}
	}

	return username, groups, nil
}

// setSessionCookie reads the lifetime from the manager rather than the
// session pointer: a configuration reload may rewrite session lifetimes
// concurrently, and only the manager guards those fields with its lock.
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.manager.SessionLifetime() / time.Second)
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", "", false, true)
}
