// Package common defines shared constants and sentinel errors used across
// client and server layers of BoardKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrStorage marks a durable-backend failure. Operations that hit it
	// abort as a unit; no partial state is persisted or returned.
	ErrStorage = errors.New("storage unavailable")

	// ErrDecryption marks a wrong room key or a corrupted payload. It is
	// never collapsed into "empty room": treating an unreadable room as
	// empty would let the next save erase other clients' work.
	ErrDecryption = errors.New("decryption failed")

	// ErrInvalidPayload rejects a request whose body or key cannot be
	// accepted (empty ciphertext, bad asset key, oversized id).
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrMalformedElement rejects an element record with no id or a
	// negative version. The whole input set is refused, elements are not
	// silently dropped.
	ErrMalformedElement = errors.New("malformed element")

	// AI proxy errors.
	ErrQuotaExceeded = errors.New("daily quota exceeded")
	ErrProvider      = errors.New("provider request failed")
)
