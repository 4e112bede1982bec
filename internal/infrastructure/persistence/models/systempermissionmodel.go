package models

// SystemPermissionModel represents a stored system-wide permission grant.
type SystemPermissionModel struct {
	ID         uint   `gorm:"primarykey"`
	Name       string `gorm:"size:255;index;not null"`
	Permission string `gorm:"size:64;not null"`
}

// TableName specifies the table name for GORM
func (SystemPermissionModel) TableName() string {
	return "system_permissions"
}
