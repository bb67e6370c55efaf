package catalog

import "fmt"

// FetchError is returned when a catalog request fails.
type FetchError struct {
	Op      string // Operation that failed, e.g. "search"
	Status  int    // HTTP status, 0 for transport failures
	Message string // Human-readable description
	Err     error  // Underlying transport error, if any
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog %s failed: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("catalog %s failed: %s", e.Op, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
