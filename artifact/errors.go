package artifact

import "fmt"

var (
	// ErrNotFound is returned when an artifact file for the given stage
	// directory does not exist on disk.
	ErrNotFound = fmt.Errorf("artifact not found")
)
