// Package store keeps short-lived markers such as "this user voted in the
// last 12 hours" or "this user was already told about premium".
package store

import (
	"context"
	"time"
)

type Markers interface {
	// Mark sets key for ttl. It returns false when key was already set,
	// leaving its expiry untouched.
	Mark(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Set sets key for ttl, overwriting it.
	Set(ctx context.Context, key string, ttl time.Duration) error
	Has(ctx context.Context, key string) (bool, error)
	Close() error
}

func VotedKey(userID string) string {
	return "rpl-voted-" + userID
}

func PremiumNoticeKey(userID string) string {
	return "premium-notice-" + userID
}
