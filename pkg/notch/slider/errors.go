package slider

import "errors"

var (
	// ErrConfiguration is reported when the attribute bundle or track width can't describe a slider
	ErrConfiguration = errors.New("invalid slider configuration")

	// ErrOutOfBounds is reported when a value lies outside [min, max]
	ErrOutOfBounds = errors.New("value out of bounds")

	// ErrStepAlignment is reported when a value isn't a whole number of steps away from min
	ErrStepAlignment = errors.New("value not aligned to step")
)
