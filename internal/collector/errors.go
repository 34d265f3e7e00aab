package collector

import (
	"errors"
	"fmt"
)

// ErrCollectorReused is returned when Run is called on a collector twice.
var ErrCollectorReused = errors.New("collector already ran; create one collector per run")

// CollectionError wraps the catalog failure that aborted a collection run.
type CollectionError struct {
	Diagram string
	Err     error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("failed to collect entities for diagram %q: %v", e.Diagram, e.Err)
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}
