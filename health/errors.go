package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check did not complete in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under the name.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
