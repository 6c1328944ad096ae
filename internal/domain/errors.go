package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrInvalidSymbol     = errors.New("invalid_symbol")
	ErrUnknownInstrument = errors.New("unknown_instrument")
	ErrEngineStopped     = errors.New("engine_stopped")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
