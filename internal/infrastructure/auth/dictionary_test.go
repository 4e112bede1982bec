package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	sharedConfig "authgate/internal/shared/config"
	"authgate/internal/shared/logger"
)

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestDictionaryPlaintextEntry(t *testing.T) {
	v := NewDictionaryValidator(sharedConfig.DictionaryConfig{
		Enabled: true,
		Auths:   []string{"colon:hat"},
		Groups:  map[string][]string{"colon": {"dev"}},
	}, nil, logger.NewLogger())

	result, err := v.TryAuthenticate(context.Background(), "colon:hat")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "colon", result.Username)
	assert.Equal(t, []string{"dev"}, result.Groups)

	result, err = v.TryAuthenticate(context.Background(), "colon:wrong")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDictionaryHashedEntry(t *testing.T) {
	v := NewDictionaryValidator(sharedConfig.DictionaryConfig{
		Enabled: true,
		Auths: []string{
			"alice:5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8:sha256",
		},
	}, nil, logger.NewLogger())

	result, err := v.TryAuthenticate(context.Background(), "alice:password")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "alice", result.Username)

	result, err = v.TryAuthenticate(context.Background(), "alice:passw0rd")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDictionarySaltedEntry(t *testing.T) {
	entry := "bob:" + sha256Hex("hunter2pepper") + ":sha256:pepper"
	v := NewDictionaryValidator(sharedConfig.DictionaryConfig{
		Enabled: true,
		Auths:   []string{entry},
	}, nil, logger.NewLogger())

	result, err := v.TryAuthenticate(context.Background(), "bob:hunter2")
	require.NoError(t, err)
	require.NotNil(t, result)

	// The salt belongs to the digest input, not the password itself.
	result, err = v.TryAuthenticate(context.Background(), "bob:hunter2pepper")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDictionaryBcryptEntry(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	v := NewDictionaryValidator(sharedConfig.DictionaryConfig{
		Enabled: true,
		Auths:   []string{"carol:" + string(hashed) + ":bcrypt"},
	}, nil, logger.NewLogger())

	result, err := v.TryAuthenticate(context.Background(), "carol:hunter2")
	require.NoError(t, err)
	require.NotNil(t, result)

	result, err = v.TryAuthenticate(context.Background(), "carol:wrong")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDictionaryUnknownAlgorithm(t *testing.T) {
	v := NewDictionaryValidator(sharedConfig.DictionaryConfig{
		Enabled: true,
		Auths:   []string{"dan:" + sha256Hex("pw") + ":whirlpool"},
	}, nil, logger.NewLogger())

	result, err := v.TryAuthenticate(context.Background(), "dan:pw")
	require.NoError(t, err)
	assert.Nil(t, result, "entries naming an unknown algorithm never match")
}

func TestDictionaryUnknownUser(t *testing.T) {
	v := NewDictionaryValidator(sharedConfig.DictionaryConfig{
		Enabled: true,
		Auths:   []string{"colon:hat"},
	}, nil, logger.NewLogger())

	result, err := v.TryAuthenticate(context.Background(), "nobody:hat")
	require.NoError(t, err)
	assert.Nil(t, result)

	// A credential without a colon cannot match anything.
	result, err = v.TryAuthenticate(context.Background(), "colon")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDictionarySecretMayContainColons(t *testing.T) {
	v := NewDictionaryValidator(sharedConfig.DictionaryConfig{
		Enabled: true,
		Auths:   []string{"svc:top:secret"},
	}, nil, logger.NewLogger())

	// "top:secret" does not match: the entry is parsed as a hashed form
	// with hash "top" and algorithm "secret", which is unknown.
	result, err := v.TryAuthenticate(context.Background(), "svc:top")
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = v.TryAuthenticate(context.Background(), "svc:top:secret")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "svc", result.Username)
}
