package auth

import (
	"context"
	"errors"
	"time"

	"catapi/internal/kv"
)

// ErrRefreshTokenUnknown is returned when a refresh token id has no live
// session record.
var ErrRefreshTokenUnknown = errors.New("refresh token not found")

// TokenStoreInterface keeps refresh-token sessions and revoked access tokens.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (userID string, err error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// keyspace prefixes token ids with the record kind.
type keyspace string

const (
	sessions keyspace = "catapi:session:"
	revoked  keyspace = "catapi:revoked:"
)

func (k keyspace) key(tokenID string) string { return string(k) + tokenID }

// TokenStore is the redis-backed TokenStoreInterface. Sessions hold the
// owning user id as the raw value.
type TokenStore struct {
	kv *kv.Client
}

var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a token store. A nil client stores nothing.
func NewTokenStore(client *kv.Client) *TokenStore {
	return &TokenStore{kv: client}
}

func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return s.kv.Set(ctx, sessions.key(tokenID), []byte(userID), ttl)
}

func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (string, error) {
	userID, err := s.kv.Get(ctx, sessions.key(tokenID))
	if err != nil {
		return "", err
	}
	if len(userID) == 0 {
		return "", ErrRefreshTokenUnknown
	}
	return string(userID), nil
}

func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.kv.Delete(ctx, sessions.key(tokenID))
}

// BlacklistAccessToken revokes an access token for its remaining lifetime.
// Tokens that already expired need no record.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.kv.Set(ctx, revoked.key(tokenID), []byte{1}, ttl)
}

func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	mark, err := s.kv.Get(ctx, revoked.key(tokenID))
	if err != nil {
		return false, err
	}
	return len(mark) > 0, nil
}
