package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keygate/keygate/internal/model"
	"github.com/keygate/keygate/internal/store"
)

// Defaults for issued keys. A token is the prefix followed by 32 lowercase
// hex characters (128 bits of randomness).
const (
	DefaultKeyPrefix    = "kg_"
	DefaultValidityDays = 30

	tokenRandomBytes = 16
)

// Verdict reasons for invalid keys. The HTTP boundary maps these to status
// codes; the service itself never deals in HTTP.
const (
	ReasonKeyNotFound   = "key_not_found"
	ReasonStatusInvalid = "key_status_invalid"
	ReasonKeyExpired    = "key_expired"
)

// IssuedKey is the result of registering a user: the plaintext token and
// when it stops being valid.
type IssuedKey struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// Verdict is the outcome of validating a token. Reason is empty when the
// key is valid; ExpiresAt is zero when no key record was found.
type Verdict struct {
	Valid     bool
	Status    string
	ExpiresAt time.Time
	Message   string
	Reason    string
}

// KeyService issues API keys bound to newly registered users and validates
// presented tokens against the store.
type KeyService struct {
	store    *store.Store
	prefix   string
	validity time.Duration
}

// NewKeyService creates a KeyService. Empty prefix and non-positive validity
// fall back to the defaults.
func NewKeyService(st *store.Store, prefix string, validityDays int) *KeyService {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if validityDays <= 0 {
		validityDays = DefaultValidityDays
	}
	return &KeyService{
		store:    st,
		prefix:   prefix,
		validity: time.Duration(validityDays) * 24 * time.Hour,
	}
}

// Prefix returns the configured token prefix.
func (s *KeyService) Prefix() string {
	return s.prefix
}

// Issue registers a user and creates its API key as one atomic unit. The
// token is drawn from crypto/rand, hex-encoded, and prefixed; expiry is
// start plus the fixed validity window, computed once at issuance.
// Returns ErrValidation for empty fields and store.ErrDuplicate when the
// email is already registered (in which case nothing is persisted).
func (s *KeyService) Issue(ctx context.Context, firstName, lastName, email string) (*IssuedKey, error) {
	if firstName == "" || lastName == "" || email == "" {
		return nil, ErrValidation
	}

	buf := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	token := s.prefix + hex.EncodeToString(buf)

	start := time.Now().UTC()
	key := &model.APIKey{
		Token:     token,
		StartDate: start,
		ExpiresAt: start.Add(s.validity),
		Status:    model.StatusActive,
	}
	user := &model.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	}

	if err := s.store.CreateUserWithKey(ctx, user, key); err != nil {
		return nil, err
	}

	return &IssuedKey{
		Token:     token,
		ExpiresAt: key.ExpiresAt,
		User:      user,
	}, nil
}

// Validate reports whether a presented token is currently valid. This is a
// pure read: an expired-but-still-Active key is reported invalid without
// being written back as Expired. Checks run in a fixed order and the first
// failure wins: unknown token, then non-Active status, then expiry.
func (s *KeyService) Validate(ctx context.Context, token string) (*Verdict, error) {
	key, err := s.store.GetAPIKeyByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &Verdict{
				Valid:   false,
				Reason:  ReasonKeyNotFound,
				Message: "API key not found",
			}, nil
		}
		return nil, err
	}

	if key.Status != model.StatusActive {
		return &Verdict{
			Valid:     false,
			Status:    key.Status,
			ExpiresAt: key.ExpiresAt,
			Reason:    ReasonStatusInvalid,
			Message:   fmt.Sprintf("API key %s. Access denied.", strings.ToLower(key.Status)),
		}, nil
	}

	if time.Now().UTC().After(key.ExpiresAt) {
		return &Verdict{
			Valid:     false,
			Status:    key.Status,
			ExpiresAt: key.ExpiresAt,
			Reason:    ReasonKeyExpired,
			Message:   "API key expired",
		}, nil
	}

	return &Verdict{
		Valid:     true,
		Status:    key.Status,
		ExpiresAt: key.ExpiresAt,
		Message:   "API key valid and active",
	}, nil
}

// ListUsersWithKeys returns every registered user joined to its key, one
// ordered result set per call.
func (s *KeyService) ListUsersWithKeys(ctx context.Context) ([]model.UserWithKey, error) {
	return s.store.ListUsersWithKeys(ctx)
}
