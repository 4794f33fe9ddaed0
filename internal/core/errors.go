package core

import (
	"errors"
	"fmt"
)

// ErrRuntimeUnreachable is returned when the container listing call fails.
var ErrRuntimeUnreachable = errors.New("container runtime unreachable")

// ErrPassAborted is returned when a pass is cancelled or times out before
// every container was processed. The cache is left untouched.
var ErrPassAborted = errors.New("collection pass aborted")

// ExtractionError represents a failure to build the record for one container
type ExtractionError struct {
	ContainerID string
	Err         error
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting container %s: %v", e.ContainerID, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError
func NewExtractionError(containerID string, err error) *ExtractionError {
	return &ExtractionError{ContainerID: containerID, Err: err}
}
