// Package migration lists the persistence models managed by gorm
// auto-migration.
package migration

import (
	"gorm.io/gorm"

	"authgate/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.SessionRecordModel{},
		&models.PersonalAccessTokenModel{},
		&models.OAuthTokenModel{},
		&models.SystemPermissionModel{},
	}
}

// Run applies auto-migration for every registered model.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(AutoMigrateModels()...)
}
