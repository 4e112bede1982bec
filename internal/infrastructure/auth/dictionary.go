package auth

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"authgate/internal/domain/session"
	sharedConfig "authgate/internal/shared/config"
	"authgate/internal/shared/logger"
)

// digestConstructors maps the algorithm names allowed in dictionary entries
// to their hash constructors. An entry naming anything else is rejected.
var digestConstructors = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha224": sha256.New224,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// DictionaryValidator checks credentials against the static table configured
// under method_dictionary. Entries are "username:password" (plaintext) or
// "username:hash:algorithm[:salt]" where hash is the hex digest of
// password+salt, or a bcrypt hash when the algorithm is "bcrypt".
type DictionaryValidator struct {
	cfg     sharedConfig.DictionaryConfig
	patRepo session.PersonalAccessTokenRepository
	logger  logger.Interface
}

func NewDictionaryValidator(cfg sharedConfig.DictionaryConfig, patRepo session.PersonalAccessTokenRepository, log logger.Interface) *DictionaryValidator {
	return &DictionaryValidator{cfg: cfg, patRepo: patRepo, logger: log}
}

func (v *DictionaryValidator) Name() string {
	return "dictionary"
}

func (v *DictionaryValidator) TryAuthenticate(ctx context.Context, credential string) (*Validation, error) {
	username, password, ok := SplitCredential(credential)
	if !ok {
		return nil, nil
	}

	entry := ""
	for _, saved := range v.cfg.Auths {
		if name, _, found := strings.Cut(saved, ":"); found && name == username {
			entry = saved
			break
		}
	}
	if entry == "" {
		return nil, nil
	}

	if entry != credential && !v.matchHashedEntry(entry, password) {
		return nil, nil
	}

	groups := v.cfg.Groups[username]

	// Static groups flow into the personal-access-token store so direct
	// token use sees the same membership. Zero-row update when the user
	// holds no token.
	if v.patRepo != nil {
		if err := v.patRepo.UpdateGroupsByUser(ctx, username, groups); err != nil {
			v.logger.Warn("failed to sync dictionary groups to access tokens",
				"user", username, "error", err)
		}
	}

	return &Validation{Username: username, Groups: groups}, nil
}

// matchHashedEntry verifies the password against a
// "username:hash:algorithm[:salt]" entry. Entries without an algorithm
// field, or naming an unknown algorithm, never match.
func (v *DictionaryValidator) matchHashedEntry(entry, password string) bool {
	parts := strings.SplitN(entry, ":", 4)
	if len(parts) < 3 {
		return false
	}
	savedHash, algorithm := parts[1], parts[2]

	salted := password
	if len(parts) == 4 {
		salted += parts[3]
	}

	if algorithm == "bcrypt" {
		return bcrypt.CompareHashAndPassword([]byte(savedHash), []byte(salted)) == nil
	}

	constructor, known := digestConstructors[algorithm]
	if !known {
		return false
	}
	h := constructor()
	h.Write([]byte(salted))
	return savedHash == hex.EncodeToString(h.Sum(nil))
}
