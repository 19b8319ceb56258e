package services

import "errors"

// Error taxonomy surfaced at the store-facade boundary. Handlers map these
// onto HTTP status codes; none of them leave any state mutation behind.
var (
	// ErrValidation covers invalid trade amounts, non-ACTIVE markets,
	// insufficient balance and malformed market drafts.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers operations referencing an unknown market, trade
	// or user id.
	ErrNotFound = errors.New("not found")

	// ErrInvariant marks states the pricing engine is designed never to
	// produce (probabilities out of range or not summing to 1). Treated
	// as fatal.
	ErrInvariant = errors.New("invariant violation")
)
