package sim

import "errors"

// Sentinel errors for the failure modes the engine can surface. Callers
// discriminate with errors.Is; wrapped messages carry the offending values.
var (
	// ErrInvalidParameter covers configuration rejected before any
	// simulation work begins (dt*gamma outside [0,1], non-positive
	// population counts, k <= 0, and similar).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientEpidemicSize is returned after every retry attempt
	// produced an epidemic smaller than the configured minimum size.
	ErrInsufficientEpidemicSize = errors.New("failed to produce an epidemic of adequate size")

	// ErrSampleSizeExceedsPopulation is returned when a fixed-count
	// downsample asks for more individuals than were ever infected.
	ErrSampleSizeExceedsPopulation = errors.New("sample size exceeds infected population")

	// ErrInconsistentTransmissionData flags cyclic or dangling infector
	// references. It indicates a corrupted registry, not a user error,
	// and is never retried.
	ErrInconsistentTransmissionData = errors.New("inconsistent transmission data")
)
