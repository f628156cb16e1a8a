// Package verification implements the one-time token lifecycle shared by email
// confirmation and password reset: PENDING until consumed (token cleared) or
// until its expiry passes. Expired tokens stay stored and keep being rejected.
package verification

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("token invalid or already used")
	ErrTokenExpired = errors.New("token expired")
)

type State string

const (
	StatePending  State = "PENDING"
	StateExpired  State = "EXPIRED"
	StateConsumed State = "CONSUMED"
)

// Ticket is the stored half of a one-time token.
type Ticket struct {
	Token     *string
	ExpiresAt *time.Time
}

func (t Ticket) State(now time.Time) State {
	if t.Token == nil || *t.Token == "" {
		return StateConsumed
	}
	if t.ExpiresAt == nil || !now.Before(*t.ExpiresAt) {
		return StateExpired
	}
	return StatePending
}

// Redeem checks a presented value against the ticket. It does not clear the
// ticket; callers persist the cleared state on success.
func (t Ticket) Redeem(presented string, now time.Time) error {
	switch t.State(now) {
	case StateConsumed:
		return ErrTokenInvalid
	case StateExpired:
		if matches(*t.Token, presented) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !matches(*t.Token, presented) {
		return ErrTokenInvalid
	}
	return nil
}

func matches(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// NewToken returns an opaque link token.
func NewToken() string {
	return uuid.NewString()
}

// NewCode returns a six digit numeric code.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue builds a pending ticket for value expiring after ttl.
func Issue(value string, now time.Time, ttl time.Duration) Ticket {
	exp := now.Add(ttl)
	return Ticket{Token: &value, ExpiresAt: &exp}
}
