package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLen = 6
	// bcrypt only hashes the first 72 bytes and rejects anything longer.
	MaxPasswordBytes = 72
)

var (
	ErrInvalidEmail     = errors.New("invalid email")
	ErrPasswordTooShort = errors.New("password must have at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must have at most 72 bytes")
	ErrNameRequired     = errors.New("name is required")
	ErrTooLong          = errors.New("value too long")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func Email(email string) error {
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func Password(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return nil
}

// MaxLen checks v against a column limit counted in characters. The returned
// error wraps ErrTooLong and names the field.
func MaxLen(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return fmt.Errorf("%s: %w", field, ErrTooLong)
	}
	return nil
}

// FieldOf returns the field name carried by a MaxLen error.
func FieldOf(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ":"); i > 0 {
		return msg[:i]
	}
	return ""
}
