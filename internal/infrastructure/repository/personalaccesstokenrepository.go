package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"authgate/internal/domain/session"
	"authgate/internal/infrastructure/persistence/mappers"
	"authgate/internal/infrastructure/persistence/models"
	"authgate/internal/shared/errors"
)

type PersonalAccessTokenRepository struct {
	db     *gorm.DB
	mapper mappers.PersonalAccessTokenMapper
}

func NewPersonalAccessTokenRepository(db *gorm.DB) session.PersonalAccessTokenRepository {
	return &PersonalAccessTokenRepository{
		db:     db,
		mapper: mappers.NewPersonalAccessTokenMapper(),
	}
}

func (r *PersonalAccessTokenRepository) GetByUserAndToken(ctx context.Context, userName, token string) (*session.PersonalAccessToken, error) {
	var model models.PersonalAccessTokenModel
	err := r.db.WithContext(ctx).
		Where("user_name = ? AND token = ?", userName, token).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("personal access token not found")
		}
		return nil, fmt.Errorf("failed to get personal access token: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

// UpdateGroupsByUser rewrites the group column of every token the user owns.
// Users without tokens are a zero-row no-op.
func (r *PersonalAccessTokenRepository) UpdateGroupsByUser(ctx context.Context, userName string, groups []string) error {
	err := r.db.WithContext(ctx).Model(&models.PersonalAccessTokenModel{}).
		Where("user_name = ?", userName).
		Update("groups", mappers.JoinGroups(groups)).Error
	if err != nil {
		return fmt.Errorf("failed to update personal access token groups: %w", err)
	}
	return nil
}
