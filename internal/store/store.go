// Package store holds the storage-facing error taxonomy and paging rules
// shared by every handler.
package store

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a targeted record does not exist
// (or is soft-deleted).
var ErrNotFound = errors.New("not found")

// Translate maps gorm's not-found error onto ErrNotFound and passes
// everything else through unchanged.
func Translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Limits bounds a page size.
type Limits struct {
	Default int
	Min     int
	Max     int
}

// Clamp parses raw and forces it into [Min, Max]. Empty or unparsable
// input yields Default.
func (l Limits) Clamp(raw string) int {
	n, err := strconv.Atoi(raw)
	if raw == "" || err != nil {
		n = l.Default
	}
	if n < l.Min {
		n = l.Min
	}
	if n > l.Max {
		n = l.Max
	}
	return n
}

// Offset parses a non-negative offset; anything else is 0.
func Offset(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
