package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"authgate/internal/domain/session"
	"authgate/internal/infrastructure/persistence/models"
)

// SuperuserPermission is the stored permission name that grants root standing.
const SuperuserPermission = "SUPERUSER"

type SystemPermissionRepository struct {
	db *gorm.DB
}

func NewSystemPermissionRepository(db *gorm.DB) session.SystemPermissionRepository {
	return &SystemPermissionRepository{db: db}
}

func (r *SystemPermissionRepository) HasSuperuserPermission(ctx context.Context, userName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SystemPermissionModel{}).
		Where("name = ? AND permission = ?", userName, SuperuserPermission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query system permission: %w", err)
	}
	return count > 0, nil
}
