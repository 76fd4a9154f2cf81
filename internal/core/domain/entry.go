// Package domain defines the core domain models for keyden.
package domain

import "time"

// NoExpiry marks an entry without an expiration deadline.
const NoExpiry int64 = 0

// Entry is a stored value with an optional absolute expiry instant.
type Entry struct {
	// Value is the opaque payload.
	Value string `json:"value"`

	// ExpiresAt is the expiry deadline (Unix milliseconds), NoExpiry if none.
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// NewEntry creates an entry without expiry.
func NewEntry(value string) Entry {
	return Entry{Value: value}
}

// NewEntryWithTTL creates an entry expiring ttl from now.
// A zero ttl yields an entry that is already expired: it must read as
// absent on the very next get.
func NewEntryWithTTL(value string, ttl time.Duration, now time.Time) Entry {
	return Entry{
		Value:     value,
		ExpiresAt: now.Add(ttl).UnixMilli(),
	}
}

// IsExpired reports whether the entry is logically absent at the given
// instant. The deadline itself counts as expired, so ExpiresAt <= now
// entries are invisible and sweepable.
func (e Entry) IsExpired(now time.Time) bool {
	if e.ExpiresAt == NoExpiry {
		return false
	}
	return now.UnixMilli() >= e.ExpiresAt
}

// TTLRemaining returns the time until expiry, 0 for entries without one
// or already past their deadline.
func (e Entry) TTLRemaining(now time.Time) time.Duration {
	if e.ExpiresAt == NoExpiry {
		return 0
	}
	remaining := time.UnixMilli(e.ExpiresAt).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
