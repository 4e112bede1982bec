// Package auth implements the credential validator chain and the group
// resolution rules of the authentication core.
package auth

import (
	"context"
	"strings"

	"authgate/internal/shared/logger"
)

// Validation is the result of a validator accepting a credential.
type Validation struct {
	Username string
	Groups   []string
	Root     bool
}

// Validator is one credential-checking strategy. A (nil, nil) return means
// the credential was not handled or was rejected; errors are infrastructure
// failures, which the chain logs and treats as a rejection so that one broken
// backend never takes authentication down with it.
type Validator interface {
	Name() string
	TryAuthenticate(ctx context.Context, credential string) (*Validation, error)
}

// Chain walks an ordered validator list and short-circuits on the first
// acceptance.
type Chain struct {
	validators []Validator
	logger     logger.Interface
}

func NewChain(log logger.Interface, validators ...Validator) *Chain {
	return &Chain{validators: validators, logger: log}
}

// Validate runs the credential down the chain. The caller cannot tell which
// validator rejected; a nil result is the only failure signal.
func (c *Chain) Validate(ctx context.Context, credential string) *Validation {
	for _, v := range c.validators {
		result, err := v.TryAuthenticate(ctx, credential)
		if err != nil {
			c.logger.Warn("credential validator failed",
				"validator", v.Name(),
				"error", err)
			continue
		}
		if result != nil {
			c.logger.Debug("credential accepted", "validator", v.Name(), "user", result.Username)
			return result
		}
	}
	return nil
}

// SplitCredential splits an "identity:secret" credential at the first colon,
// leaving further colons inside the secret.
func SplitCredential(credential string) (username, secret string, ok bool) {
	return strings.Cut(credential, ":")
}
