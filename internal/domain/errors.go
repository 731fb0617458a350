package domain

import "errors"

var (
	// ErrDataFetch marks failures of the data collaborator. Callers may retry.
	ErrDataFetch = errors.New("network data fetch failed")
	// ErrInvalidPathRequest marks intro-path requests rejected before search.
	ErrInvalidPathRequest = errors.New("invalid intro path request")
	// ErrPathNotFound is the negative result of a valid intro-path search.
	ErrPathNotFound = errors.New("no introduction path found")
	// ErrInvalidNetwork marks malformed node or edge payloads.
	ErrInvalidNetwork = errors.New("invalid network payload")
)

// IsRetryable reports whether err is worth retrying from the UI.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDataFetch)
}
