package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidCredentialsStayOutOfErrorLog(t *testing.T) {
	err := NewInvalidCredentialsError()

	assert.True(t, IsAuthError(err))
	assert.False(t, ShouldLogAuthError(err))
	assert.True(t, err.SecurityEvent)
	assert.NotContains(t, err.Message, "dictionary")
}

func TestOAuthErrorsAreLogged(t *testing.T) {
	err := NewOAuthError("github", "token exchange failed")

	assert.True(t, ShouldLogAuthError(err))
	assert.False(t, err.SecurityEvent)
}

func TestShouldLogDefaultsToTrueForPlainErrors(t *testing.T) {
	assert.True(t, ShouldLogAuthError(fmt.Errorf("connection refused")))
}

func TestSessionExpiredUnwrapsToAppError(t *testing.T) {
	err := NewSessionExpiredError()

	wrapped := fmt.Errorf("request failed: %w", err)
	appErr := GetAppError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeSessionExpired, appErr.Type)
	assert.Equal(t, 401, appErr.Code)

	require.NotNil(t, GetAuthError(wrapped))
	assert.False(t, ShouldLogAuthError(wrapped))
}
