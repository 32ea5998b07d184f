package tool

import "errors"

// Domain errors for the tool system.
var (
	// ErrEmptyName indicates a tool was created with an empty name.
	ErrEmptyName = errors.New("tool name cannot be empty")

	// ErrInvalidName indicates a tool name outside [a-z0-9_].
	ErrInvalidName = errors.New("tool name must be lowercase snake_case")

	// ErrNoHandler indicates a tool was created without a handler.
	ErrNoHandler = errors.New("tool has no handler")

	// ErrToolNotFound indicates the requested tool was not found.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolExists indicates a tool with the same name already exists.
	ErrToolExists = errors.New("tool already exists")

	// ErrUnknownCategory indicates a category outside the closed set.
	ErrUnknownCategory = errors.New("unknown tool category")

	// ErrDestructiveReadOnly indicates a tool flagged both destructive and read-only.
	ErrDestructiveReadOnly = errors.New("destructive tool cannot be read-only")

	// ErrInvalidInput indicates the input failed decoding or validation.
	ErrInvalidInput = errors.New("invalid tool input")
)
