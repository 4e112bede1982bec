package auth

import (
	"context"

	sharedConfig "authgate/internal/shared/config"
	"authgate/internal/shared/logger"
)

// PAMAuthenticator is the capability boundary to the OS-level PAM stack. The
// concrete binding library lives with the collaborator that constructs the
// server; a nil authenticator marks the method as unavailable.
type PAMAuthenticator interface {
	Authenticate(ctx context.Context, cfg sharedConfig.PAMConfig, username, password string) (bool, error)
}

// PAMValidator delegates credential verification to the PAM capability.
// PAM holds no group membership we can reliably query, so successful
// validations carry an empty group set.
type PAMValidator struct {
	authenticator PAMAuthenticator
	cfg           sharedConfig.PAMConfig
	logger        logger.Interface
}

func NewPAMValidator(authenticator PAMAuthenticator, cfg sharedConfig.PAMConfig, log logger.Interface) *PAMValidator {
	return &PAMValidator{authenticator: authenticator, cfg: cfg, logger: log}
}

func (v *PAMValidator) Name() string {
	return "pam"
}

func (v *PAMValidator) TryAuthenticate(ctx context.Context, credential string) (*Validation, error) {
	username, password, ok := SplitCredential(credential)
	if !ok {
		return nil, nil
	}

	accepted, err := v.authenticator.Authenticate(ctx, v.cfg, username, password)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, nil
	}

	return &Validation{Username: username}, nil
}
