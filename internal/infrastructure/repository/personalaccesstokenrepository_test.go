package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/internal/infrastructure/persistence/models"
	appErrors "authgate/internal/shared/errors"
)

func TestPersonalAccessTokenRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPersonalAccessTokenRepository(db)
	ctx := context.Background()

	expiration := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	require.NoError(t, db.Create(&models.PersonalAccessTokenModel{
		UserName:   "alice",
		Token:      "pat-123",
		Groups:     "dev",
		Expiration: expiration,
	}).Error)

	pat, err := repo.GetByUserAndToken(ctx, "alice", "pat-123")
	require.NoError(t, err)
	assert.Equal(t, "alice", pat.UserName)
	assert.Equal(t, []string{"dev"}, pat.Groups)
	assert.WithinDuration(t, expiration, pat.Expiration, time.Second)

	_, err = repo.GetByUserAndToken(ctx, "alice", "wrong")
	require.Error(t, err)
	appErr := appErrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrorTypeNotFound, appErr.Type)
}

func TestPersonalAccessTokenRepositoryUpdateGroups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPersonalAccessTokenRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.PersonalAccessTokenModel{
		UserName:   "alice",
		Token:      "pat-123",
		Groups:     "dev",
		Expiration: time.Now().Add(time.Hour),
	}).Error)

	require.NoError(t, repo.UpdateGroupsByUser(ctx, "alice", []string{"admins", "dev"}))

	pat, err := repo.GetByUserAndToken(ctx, "alice", "pat-123")
	require.NoError(t, err)
	assert.Equal(t, []string{"admins", "dev"}, pat.Groups)

	assert.NoError(t, repo.UpdateGroupsByUser(ctx, "nobody", []string{"x"}),
		"users without tokens are a zero-row no-op")
}

func TestSystemPermissionRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSystemPermissionRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.SystemPermissionModel{
		Name:       "root-alice",
		Permission: SuperuserPermission,
	}).Error)
	require.NoError(t, db.Create(&models.SystemPermissionModel{
		Name:       "viewer-bob",
		Permission: "PRODUCT_VIEW",
	}).Error)

	isRoot, err := repo.HasSuperuserPermission(ctx, "root-alice")
	require.NoError(t, err)
	assert.True(t, isRoot)

	isRoot, err = repo.HasSuperuserPermission(ctx, "viewer-bob")
	require.NoError(t, err)
	assert.False(t, isRoot, "other permissions do not grant root standing")

	isRoot, err = repo.HasSuperuserPermission(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, isRoot)
}
