package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested row does not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint
	// (admin or user email, or a key token collision).
	ErrDuplicate = errors.New("duplicate")
)

// isDuplicateErr reports whether err is a uniqueness violation from any of
// the supported drivers. The drivers expose no common typed error for this,
// so the message text is matched the same way each driver's own tooling does.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"): // sqlite, postgres
		return true
	case strings.Contains(msg, "duplicate entry"): // mysql error 1062
		return true
	case strings.Contains(msg, "duplicate key"): // postgres 23505
		return true
	}
	return false
}
