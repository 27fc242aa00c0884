package storage

import "errors"

// ErrNotFound is returned by every store when a keyed lookup matches nothing.
var ErrNotFound = errors.New("not found")
