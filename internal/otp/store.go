package otp

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
)

const (
	keyPrefix = "signup:otp:"
	// unverified signups expire after an hour
	ttl = time.Hour
)

// PendingSignup holds a registration that has not been verified yet. It
// lives only in Redis; the user row is created on successful OTP entry.
type PendingSignup struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
	Code         string `json:"code"`
}

// Store keeps pending signups keyed by email with a verification TTL.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// GenerateCode returns a 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Put saves a pending signup, replacing any earlier attempt for the same
// email and restarting the TTL.
func (s *Store) Put(ctx context.Context, pending PendingSignup) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, keyPrefix+pending.Email, payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}
	return nil
}

// Verify checks the code for an email and consumes the pending signup on
// success. An expired or missing entry reads as NotFound.
func (s *Store) Verify(ctx context.Context, email, code string) (*PendingSignup, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFound("no pending signup for this email")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}

	var pending PendingSignup
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, err
	}
	if pending.Code != code {
		return nil, apperr.Validation("incorrect verification code")
	}

	if err := s.rdb.Del(ctx, keyPrefix+email).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}
	return &pending, nil
}
