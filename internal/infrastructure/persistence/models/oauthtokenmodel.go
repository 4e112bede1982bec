package models

import "time"

// OAuthTokenModel represents the database persistence model for
// provider-issued OAuth tokens. A row exists only as long as the session
// record it is keyed to.
type OAuthTokenModel struct {
	ID            uint      `gorm:"primarykey"`
	AccessToken   string    `gorm:"size:2048;not null"`
	ExpiresAt     time.Time `gorm:"not null"`
	RefreshToken  string    `gorm:"size:2048"`
	AuthSessionID uint      `gorm:"index;not null"`
}

// TableName specifies the table name for GORM
func (OAuthTokenModel) TableName() string {
	return "oauth_tokens"
}
