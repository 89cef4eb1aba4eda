package domain

import "errors"

var (
	// ErrNotConnected is returned by stores whose connection was never
	// established or has already been released.
	ErrNotConnected = errors.New("store not connected")
	// ErrGenerationExhausted means a unique field could not be given a fresh
	// value within the attempt budget.
	ErrGenerationExhausted = errors.New("generation exhausted")
	// ErrValidation wraps required-field and constraint violations.
	ErrValidation    = errors.New("validation failed")
	ErrUnknownEntity = errors.New("unknown entity")
)
