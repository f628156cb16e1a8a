package admin

import (
	"errors"
	"strings"
)

type AccessLevel string

const (
	LevelSuperAdmin AccessLevel = "SUPERADMIN"
	LevelAdmin      AccessLevel = "ADMIN"
	LevelEditor     AccessLevel = "EDITOR"
)

var ErrInvalidAccessLevel = errors.New("invalid access level")

// levelRank orders the access levels; higher means more privileges.
var levelRank = map[AccessLevel]int{
	LevelEditor:     1,
	LevelAdmin:      2,
	LevelSuperAdmin: 3,
}

func (l AccessLevel) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

func ParseAccessLevel(s string) (AccessLevel, error) {
	l := AccessLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", ErrInvalidAccessLevel
	}
	return l, nil
}

// CheckLevel reports whether actual grants at least required. Unknown levels
// are never granted anything.
func CheckLevel(actual, required AccessLevel) bool {
	a, ok := levelRank[actual]
	if !ok {
		return false
	}
	r, ok := levelRank[required]
	if !ok {
		return false
	}
	return a >= r
}
