// Package repository provides gorm-backed implementations of the domain
// repository interfaces.
package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"authgate/internal/domain/session"
	"authgate/internal/infrastructure/persistence/mappers"
	"authgate/internal/infrastructure/persistence/models"
	"authgate/internal/shared/errors"
)

type SessionRecordRepository struct {
	db     *gorm.DB
	mapper mappers.SessionRecordMapper
}

func NewSessionRecordRepository(db *gorm.DB) session.RecordRepository {
	return &SessionRecordRepository{
		db:     db,
		mapper: mappers.NewSessionRecordMapper(),
	}
}

func (r *SessionRecordRepository) Create(ctx context.Context, record *session.Record) error {
	model := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create session record: %w", err)
	}
	record.ID = model.ID
	return nil
}

func (r *SessionRecordRepository) GetByToken(ctx context.Context, token string) (*session.Record, error) {
	var model models.SessionRecordModel
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("session record not found")
		}
		return nil, fmt.Errorf("failed to get session record by token: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *SessionRecordRepository) GetByUserAndToken(ctx context.Context, userName, token string) (*session.Record, error) {
	var model models.SessionRecordModel
	err := r.db.WithContext(ctx).
		Where("user_name = ? AND token = ?", userName, token).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("session record not found")
		}
		return nil, fmt.Errorf("failed to get session record: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *SessionRecordRepository) UpdateLastAccess(ctx context.Context, userName, token string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.SessionRecordModel{}).
		Where("user_name = ? AND token = ?", userName, token).
		Update("last_access", at).Error
	if err != nil {
		return fmt.Errorf("failed to update session last access: %w", err)
	}
	return nil
}

func (r *SessionRecordRepository) UpdateGroupsByUser(ctx context.Context, userName string, groups []string) error {
	err := r.db.WithContext(ctx).Model(&models.SessionRecordModel{}).
		Where("user_name = ?", userName).
		Update("groups", mappers.JoinGroups(groups)).Error
	if err != nil {
		return fmt.Errorf("failed to update session groups: %w", err)
	}
	return nil
}

func (r *SessionRecordRepository) DeleteByToken(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.SessionRecordModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}
