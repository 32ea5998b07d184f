package vocabulary

import "errors"

// Domain errors for vocabulary operations.
var (
	// ErrUnknownKind indicates a kind outside the closed set of vocabulary kinds.
	ErrUnknownKind = errors.New("unknown vocabulary kind")

	// ErrClosedKind indicates an attempt to replace a compiled-in enumeration.
	ErrClosedKind = errors.New("vocabulary kind is a closed enumeration")

	// ErrSourceUnavailable indicates a vocabulary source could not be loaded.
	ErrSourceUnavailable = errors.New("vocabulary source unavailable")
)
