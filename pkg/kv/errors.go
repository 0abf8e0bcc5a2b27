package kv

import "errors"

// ErrNotFound is returned when a key has no stored value. An absent
// currentUser entry means "logged out", so callers treat this as a normal
// outcome rather than a fault.
var ErrNotFound = errors.New("kv: key not found")
