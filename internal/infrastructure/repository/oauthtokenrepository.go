package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"authgate/internal/domain/session"
	"authgate/internal/infrastructure/persistence/models"
)

type OAuthTokenRepository struct {
	db *gorm.DB
}

func NewOAuthTokenRepository(db *gorm.DB) session.OAuthTokenRepository {
	return &OAuthTokenRepository{db: db}
}

func (r *OAuthTokenRepository) Create(ctx context.Context, token *session.OAuthToken) error {
	model := &models.OAuthTokenModel{
		AccessToken:   token.AccessToken,
		ExpiresAt:     token.ExpiresAt,
		RefreshToken:  token.RefreshToken,
		AuthSessionID: token.AuthSessionID,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create oauth token: %w", err)
	}
	return nil
}
