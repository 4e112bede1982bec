package auth

import (
	"context"
	"errors"
	"time"

	"authgate/internal/domain/session"
	appErrors "authgate/internal/shared/errors"
	"authgate/internal/shared/logger"
)

// PersonalAccessTokenValidator matches "user:token" credentials against the
// stored personal access tokens. Expired tokens are rejected, not deleted;
// token lifecycle management belongs to the token API.
type PersonalAccessTokenValidator struct {
	repo   session.PersonalAccessTokenRepository
	logger logger.Interface
}

func NewPersonalAccessTokenValidator(repo session.PersonalAccessTokenRepository, log logger.Interface) *PersonalAccessTokenValidator {
	return &PersonalAccessTokenValidator{repo: repo, logger: log}
}

func (v *PersonalAccessTokenValidator) Name() string {
	return "personal_access_token"
}

func (v *PersonalAccessTokenValidator) TryAuthenticate(ctx context.Context, credential string) (*Validation, error) {
	if v.repo == nil {
		return nil, nil
	}

	userName, token, ok := SplitCredential(credential)
	if !ok {
		return nil, nil
	}

	pat, err := v.repo.GetByUserAndToken(ctx, userName, token)
	if err != nil {
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) && appErr.Type == appErrors.ErrorTypeNotFound {
			return nil, nil
		}
		return nil, err
	}

	if pat.Expiration.Before(time.Now()) {
		v.logger.Debug("personal access token expired", "user", userName)
		return nil, nil
	}

	return &Validation{Username: pat.UserName, Groups: pat.Groups}, nil
}
