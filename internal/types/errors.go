package types

import "errors"

// ErrValidation marks malformed input: empty required text, out-of-range
// numeric parameters, fewer than two memories to consolidate. Never retried
// internally.
var ErrValidation = errors.New("validation failed")

// ErrNotFound marks a character or memory id absent from the store.
var ErrNotFound = errors.New("not found")
