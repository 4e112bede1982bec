package models

import "time"

// SessionRecordModel represents the database persistence model for session
// records. Groups are stored as a ";"-delimited string.
type SessionRecordModel struct {
	ID         uint      `gorm:"primarykey"`
	Token      string    `gorm:"size:64;uniqueIndex;not null"`
	UserName   string    `gorm:"size:255;index;not null"`
	Groups     string    `gorm:"size:1024"`
	LastAccess time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for GORM
func (SessionRecordModel) TableName() string {
	return "auth_sessions"
}
