package slider

import (
	"fmt"
	"math"
)

// Quantize resolves a pixel offset on the track into a step-aligned value, together
// with the offset that value renders at. The second result is what makes the handle
// snap from breakpoint to breakpoint instead of following the pointer.
// Offsets outside the track (or NaN) are clamped rather than rejected
func (c Config) Quantize(offset float64) (float64, float64) {
	value := c.breakpointValue(c.breakpointIndex(c.clampOffset(offset)))
	return value, c.OffsetFor(value)
}

// ValueAt resolves a pixel offset on the track into a step-aligned value
func (c Config) ValueAt(offset float64) float64 {
	value, _ := c.Quantize(offset)
	return value
}

// OffsetFor returns the pixel offset (fill width) the given value renders at.
// Positive values on a zero-straddling track are shifted right by one step to
// account for the extra breakpoint ResolveConfig adds there
func (c Config) OffsetFor(value float64) float64 {
	if c.StepWidth <= 0 {
		return 0
	}

	steps := (value - c.Min) / c.Step

	// step-aligned values land exactly on their breakpoint
	if nearest := math.Round(steps); math.Abs(steps-nearest) < alignTolerance {
		steps = nearest
	}

	if c.straddlesZero() && value > 0 {
		steps++
	}

	return c.clampOffset(steps * c.StepWidth)
}

// Nearest returns the reachable step-aligned value closest to the given one
func (c Config) Nearest(value float64) float64 {
	if math.IsNaN(value) {
		return c.Min
	}

	return c.clampValue(round(c.Min+math.Round((value-c.Min)/c.Step)*c.Step, c.Precision))
}

// Aligned reports whether value is a whole number of steps away from Min
func (c Config) Aligned(value float64) bool {
	steps := math.Round((value - c.Min) / c.Step)
	return math.Abs(value-(c.Min+steps*c.Step)) <= c.Step*alignTolerance
}

// Validate checks that value could be held by a slider with this config
func (c Config) Validate(value float64) error {
	if math.IsNaN(value) {
		return fmt.Errorf("%w: value is not a number", ErrOutOfBounds)
	}

	if rounded := round(value, c.Precision); rounded < c.Min || rounded > c.Max {
		return fmt.Errorf("%w: %v is outside [%v, %v]", ErrOutOfBounds, value, c.Min, c.Max)
	}

	if !c.Aligned(value) {
		return fmt.Errorf("%w: %v is not %v + a multiple of %v", ErrStepAlignment, value, c.Min, c.Step)
	}

	return nil
}

func (c Config) clampOffset(offset float64) float64 {
	if math.IsNaN(offset) || offset < 0 {
		return 0
	}

	if offset > c.TrackWidth {
		return c.TrackWidth
	}

	return offset
}

func (c Config) clampValue(value float64) float64 {
	if value < c.Min {
		return c.Min
	}

	if value > c.last {
		return c.last
	}

	return value
}

// breakpointIndex finds the interval an offset falls into. Interval i spans
// (StepWidth*(i-0.5), StepWidth*(i+0.5)], so a tie on a boundary goes to the lower
// breakpoint, and the first interval reaches down to include offset 0
func (c Config) breakpointIndex(offset float64) int {
	if c.StepWidth <= 0 {
		return 0
	}

	index := math.Ceil(offset/c.StepWidth - 0.5 - epsilon)
	if index < 0 {
		return 0
	}

	return int(index)
}

// breakpointValue maps a breakpoint index back into the domain. On a zero-straddling
// track, every index past zero sits one breakpoint further right than its value
func (c Config) breakpointValue(index int) float64 {
	value := round(c.Min+float64(index)*c.Step, c.Precision)

	if c.straddlesZero() && value > 0 {
		value = round(value-c.Step, c.Precision)
	}

	return c.clampValue(value)
}
