package shared

import "errors"

// Error kinds. Every domain error wraps exactly one of these so callers and
// the HTTP layer can branch with errors.Is without knowing the concrete error.
var (
	// ErrNotFound indicates an id that does not resolve within the caller's
	// ownership scope. Rows owned by another user surface as this too.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a malformed business request that never
	// reached persistence.
	ErrValidation = errors.New("validation failed")
	// ErrPolicyViolation indicates a well-formed request blocked by a
	// business rule (stock, credit).
	ErrPolicyViolation = errors.New("policy violation")
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict indicates a uniqueness conflict (tax id, product name).
	ErrConflict = errors.New("already exists")
)
