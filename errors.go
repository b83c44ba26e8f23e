package mandel

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSettings = errors.New("invalid render settings")
	ErrInvalidViewport = errors.New("invalid viewport")
)

// ComputationError reports that evaluating a region failed.
// A single ComputationError fails the whole frame.
type ComputationError struct {
	Region PixelRegion
	Err    error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("compute region %s: %v", e.Region, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
