package models

import "time"

// PersonalAccessTokenModel represents the database persistence model for
// personal access tokens.
type PersonalAccessTokenModel struct {
	ID         uint      `gorm:"primarykey"`
	UserName   string    `gorm:"size:255;index;not null"`
	Token      string    `gorm:"size:64;index;not null"`
	Groups     string    `gorm:"size:1024"`
	Expiration time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (PersonalAccessTokenModel) TableName() string {
	return "personal_access_tokens"
}
