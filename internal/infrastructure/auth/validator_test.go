package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/internal/domain/session"
	sharedConfig "authgate/internal/shared/config"
	appErrors "authgate/internal/shared/errors"
	"authgate/internal/shared/logger"
)

type stubValidator struct {
	name   string
	result *Validation
	err    error
	calls  int
}

func (s *stubValidator) Name() string { return s.name }

func (s *stubValidator) TryAuthenticate(context.Context, string) (*Validation, error) {
	s.calls++
	return s.result, s.err
}

func TestChainShortCircuitsOnFirstAcceptance(t *testing.T) {
	first := &stubValidator{name: "first", result: &Validation{Username: "alice"}}
	second := &stubValidator{name: "second"}
	chain := NewChain(logger.NewLogger(), first, second)

	result := chain.Validate(context.Background(), "alice:pw")
	require.NotNil(t, result)
	assert.Equal(t, "alice", result.Username)
	assert.Zero(t, second.calls, "later validators never see an accepted credential")
}

func TestChainTreatsErrorsAsRejection(t *testing.T) {
	broken := &stubValidator{name: "broken", err: errors.New("backend unreachable")}
	working := &stubValidator{name: "working", result: &Validation{Username: "alice"}}
	chain := NewChain(logger.NewLogger(), broken, working)

	result := chain.Validate(context.Background(), "alice:pw")
	require.NotNil(t, result, "one broken backend must not take authentication down")
	assert.Equal(t, "alice", result.Username)
}

func TestChainRejectsWhenAllReject(t *testing.T) {
	chain := NewChain(logger.NewLogger(),
		&stubValidator{name: "a"}, &stubValidator{name: "b"})
	assert.Nil(t, chain.Validate(context.Background(), "alice:pw"))
}

func TestSplitCredential(t *testing.T) {
	user, secret, ok := SplitCredential("alice:top:secret")
	require.True(t, ok)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "top:secret", secret)

	_, _, ok = SplitCredential("nocolon")
	assert.False(t, ok)
}

type stubPATRepo struct {
	pat *session.PersonalAccessToken
	err error
}

func (s *stubPATRepo) GetByUserAndToken(context.Context, string, string) (*session.PersonalAccessToken, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pat, nil
}

func (s *stubPATRepo) UpdateGroupsByUser(context.Context, string, []string) error {
	return nil
}

func TestPersonalAccessTokenValidator(t *testing.T) {
	repo := &stubPATRepo{pat: &session.PersonalAccessToken{
		UserName:   "alice",
		Token:      "tok123",
		Groups:     []string{"dev"},
		Expiration: time.Now().Add(time.Hour),
	}}
	v := NewPersonalAccessTokenValidator(repo, logger.NewLogger())

	result, err := v.TryAuthenticate(context.Background(), "alice:tok123")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "alice", result.Username)
	assert.Equal(t, []string{"dev"}, result.Groups)
}

func TestPersonalAccessTokenValidatorExpired(t *testing.T) {
	repo := &stubPATRepo{pat: &session.PersonalAccessToken{
		UserName:   "alice",
		Token:      "tok123",
		Expiration: time.Now().Add(-time.Minute),
	}}
	v := NewPersonalAccessTokenValidator(repo, logger.NewLogger())

	result, err := v.TryAuthenticate(context.Background(), "alice:tok123")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestPersonalAccessTokenValidatorNotFound(t *testing.T) {
	repo := &stubPATRepo{err: appErrors.NewNotFoundError("personal access token not found")}
	v := NewPersonalAccessTokenValidator(repo, logger.NewLogger())

	result, err := v.TryAuthenticate(context.Background(), "alice:tok123")
	assert.NoError(t, err, "a missing token is a rejection, not an infrastructure failure")
	assert.Nil(t, result)
}

func TestPersonalAccessTokenValidatorStoreFailure(t *testing.T) {
	repo := &stubPATRepo{err: errors.New("connection refused")}
	v := NewPersonalAccessTokenValidator(repo, logger.NewLogger())

	result, err := v.TryAuthenticate(context.Background(), "alice:tok123")
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestGroupResolver(t *testing.T) {
	resolver, err := NewGroupResolver(sharedConfig.RegexGroupsConfig{
		Enabled: true,
		Groups: map[string][]string{
			"everyone": {".*"},
			"admins":   {"^admin", "root$"},
			"contrib":  {"@contributors\\."},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"admins", "everyone"}, resolver.Resolve("admin_jane"))
	assert.Equal(t, []string{"admins", "everyone"}, resolver.Resolve("chroot"))
	assert.Equal(t, []string{"contrib", "everyone"}, resolver.Resolve("jane@contributors.example.com"))
	assert.Equal(t, []string{"everyone"}, resolver.Resolve("jane"))
}

func TestGroupResolverDisabled(t *testing.T) {
	resolver, err := NewGroupResolver(sharedConfig.RegexGroupsConfig{
		Groups: map[string][]string{"everyone": {".*"}},
	})
	require.NoError(t, err)
	assert.Nil(t, resolver.Resolve("jane"))
}

func TestGroupResolverInvalidPattern(t *testing.T) {
	_, err := NewGroupResolver(sharedConfig.RegexGroupsConfig{
		Enabled: true,
		Groups:  map[string][]string{"bad": {"("}},
	})
	assert.Error(t, err, "a broken pattern is a configuration error")
}

func TestUnion(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Union([]string{"b", "a"}, []string{"c", "a"}))
	assert.Equal(t, []string{"a", "b"}, Union([]string{"a", "b"}, nil))
	assert.Equal(t, []string{"a", "b"}, Union(nil, []string{"b", "a"}))
}
