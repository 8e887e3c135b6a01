package neardup

import (
	"fmt"
)

// ErrInvalidThreshold indicates a duplicate threshold outside [0, 2].
// Cosine distance is bounded by 2, so anything outside that range is a
// configuration mistake rather than a strict filter.
type ErrInvalidThreshold struct {
	Threshold float64
}

func (e *ErrInvalidThreshold) Error() string {
	return fmt.Sprintf("invalid threshold: %g not in [0, 2]", e.Threshold)
}
