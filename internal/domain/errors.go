package domain

import "errors"

// Error kinds callers branch on with errors.Is. The cancel path reports a
// meeting owned by someone else as ErrNotFound on purpose, so outsiders
// cannot probe which meeting ids exist.
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrCalendarInsert = errors.New("calendar insert failed")
)
