package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const revokedUserKeyPrefix = "revoked_user:"

// KeyValueStore is the subset of cache.Client the token store needs.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// TokenStoreInterface records per-user revocations of outstanding tokens.
type TokenStoreInterface interface {
	RevokeUser(ctx context.Context, userID uint, at time.Time) error
	IsRevoked(ctx context.Context, userID uint, issuedAt time.Time) (bool, error)
}

// TokenStore keeps revocation marks in Redis. A mark lives as long as the longest token it can void.
type TokenStore struct {
	cache KeyValueStore
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache KeyValueStore) *TokenStore {
	return &TokenStore{cache: cache}
}

func revokedUserKey(userID uint) string {
	return fmt.Sprintf("%s%d", revokedUserKeyPrefix, userID)
}

// RevokeUser voids every token of userID issued at or before at, compared in milliseconds.
func (s *TokenStore) RevokeUser(ctx context.Context, userID uint, at time.Time) error {
	payload := []byte(strconv.FormatInt(at.UnixMilli(), 10))
	return s.cache.Set(ctx, revokedUserKey(userID), payload, AccessTokenExpiry)
}

// IsRevoked reports whether a token of userID issued at issuedAt has been revoked.
func (s *TokenStore) IsRevoked(ctx context.Context, userID uint, issuedAt time.Time) (bool, error) {
	data, err := s.cache.Get(ctx, revokedUserKey(userID))
	if err != nil || data == nil {
		return false, nil // Not revoked if error (fail safe)
	}

	revokedAt, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return false, nil
	}
	return issuedAt.UnixMilli() <= revokedAt, nil
}
