package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"authgate/internal/application/sessions"
	sessionDomain "authgate/internal/domain/session"
	appErrors "authgate/internal/shared/errors"
	"authgate/internal/shared/logger"
	"authgate/internal/shared/utils"
)

// SessionCookieName carries the session token between requests.
const SessionCookieName = "authgate_session"

const sessionContextKey = "auth_session"

type SessionAuth struct {
	manager *sessions.Manager
	logger  logger.Interface
}

func NewSessionAuth(manager *sessions.Manager, logger logger.Interface) *SessionAuth {
	return &SessionAuth{
		manager: manager,
		logger:  logger,
	}
}

// RequireAuth resolves the session token from the cookie or the
// Authorization header. When authentication is disabled every request passes
// with no session attached.
func (m *SessionAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.manager.IsEnabled() {
			c.Next()
			return
		}

		token := TokenFromRequest(c)
		if token == "" {
			m.challenge(c, appErrors.NewUnauthorizedError("missing session token"))
			return
		}

		sess, err := m.manager.GetSession(c.Request.Context(), token)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}
		if sess == nil {
			m.challenge(c, appErrors.NewSessionExpiredError())
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

func (m *SessionAuth) challenge(c *gin.Context, err error) {
	m.logger.Debug("rejecting unauthenticated request",
		"path", c.Request.URL.Path, "client_ip", c.ClientIP())
	realm := m.manager.GetRealm()
	c.Header("WWW-Authenticate", `Basic realm="`+realm.Realm+`"`)
	utils.ErrorResponseWithError(c, err)
	c.Abort()
}

// TokenFromRequest extracts the session token from the session cookie, with
// a Bearer header fallback.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		return token
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// SessionFromContext returns the session attached by RequireAuth, if any.
func SessionFromContext(c *gin.Context) (*sessionDomain.Session, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	sess, ok := value.(*sessionDomain.Session)
	return sess, ok
}
