package auth

import (
	"context"

	"authgate/internal/domain/session"
	sharedConfig "authgate/internal/shared/config"
	"authgate/internal/shared/logger"
)

// LDAPConnector is the capability boundary to the directory binding library.
// Each call receives the authority configuration it should bind against; a
// nil connector marks the method as unavailable.
type LDAPConnector interface {
	Authenticate(ctx context.Context, authority sharedConfig.LDAPAuthorityConfig, username, password string) (bool, error)
	UserGroups(ctx context.Context, authority sharedConfig.LDAPAuthorityConfig, username, password string) ([]string, error)
}

// LDAPValidator tries each configured authority in order and accepts on the
// first bind that succeeds. Freshly resolved groups are propagated into both
// the session-record and personal-access-token group columns so later direct
// token use sees current membership.
type LDAPValidator struct {
	connector   LDAPConnector
	authorities []sharedConfig.LDAPAuthorityConfig
	recordRepo  session.RecordRepository
	patRepo     session.PersonalAccessTokenRepository
	logger      logger.Interface
}

func NewLDAPValidator(
	connector LDAPConnector,
	cfg sharedConfig.LDAPConfig,
	recordRepo session.RecordRepository,
	patRepo session.PersonalAccessTokenRepository,
	log logger.Interface,
) *LDAPValidator {
	return &LDAPValidator{
		connector:   connector,
		authorities: cfg.Authorities,
		recordRepo:  recordRepo,
		patRepo:     patRepo,
		logger:      log.With("validator", "ldap"),
	}
}

func (v *LDAPValidator) Name() string {
	return "ldap"
}

func (v *LDAPValidator) TryAuthenticate(ctx context.Context, credential string) (*Validation, error) {
	username, password, ok := SplitCredential(credential)
	if !ok {
		return nil, nil
	}

	for _, authority := range v.authorities {
		accepted, err := v.connector.Authenticate(ctx, authority, username, password)
		if err != nil {
			v.logger.Warn("ldap authority unreachable",
				"connection_url", authority.ConnectionURL, "error", err)
			continue
		}
		if !accepted {
			continue
		}

		groups, err := v.connector.UserGroups(ctx, authority, username, password)
		if err != nil {
			v.logger.Warn("failed to fetch ldap groups",
				"user", username, "error", err)
			groups = nil
		}

		v.propagateGroups(ctx, username, groups)
		return &Validation{Username: username, Groups: groups}, nil
	}

	return nil, nil
}

func (v *LDAPValidator) propagateGroups(ctx context.Context, username string, groups []string) {
	if v.recordRepo != nil {
		if err := v.recordRepo.UpdateGroupsByUser(ctx, username, groups); err != nil {
			v.logger.Warn("failed to sync ldap groups to session records",
				"user", username, "error", err)
		}
	}
	if v.patRepo != nil {
		if err := v.patRepo.UpdateGroupsByUser(ctx, username, groups); err != nil {
			v.logger.Warn("failed to sync ldap groups to access tokens",
				"user", username, "error", err)
		}
	}
}
