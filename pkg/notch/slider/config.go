package slider

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Attributes is the raw attribute bundle a host supplies for a single slider.
// Values may be numbers or numeric strings (e.g. straight out of a config file)
type Attributes map[string]interface{}

// attribute keys understood by ResolveConfig
const (
	AttrMin   = "min"
	AttrMax   = "max"
	AttrStep  = "step"
	AttrValue = "value"
)

const (

	// when no step is given, the domain is split into this many steps
	defaultStepDivisor = 100

	// float64 can't faithfully carry more decimal digits than this
	maxPrecision = 15

	// guards ceil/floor against binary noise such as 1.1/0.1 = 11.000000000000002
	epsilon = 1e-9

	// relative (to step) distance from a breakpoint that still counts as aligned
	alignTolerance = 1e-6

	// anything above this is a misconfigured step, not a slider
	maxBreakpoints = math.MaxInt32
)

// Config holds the derived, immutable parameters of a slider. It's created once from
// the host's attributes and measured track width, and re-created whenever the track is re-measured
type Config struct {
	Min  float64
	Max  float64
	Step float64

	// number of decimal digits needed to represent Step (and Min) exactly
	Precision int

	// number of step-wide intervals the track is partitioned into
	BreakpointCount int

	// pixel width of a single interval
	StepWidth float64

	TrackWidth float64

	// largest step-aligned value not above Max
	last float64
}

// ResolveConfig derives a Config from an attribute bundle and a measured track width.
// Missing or non-numeric min/max, a non-positive step or max <= min are reported as ErrConfiguration
func ResolveConfig(attrs Attributes, trackWidth float64) (Config, error) {
	min, err := attrs.number(AttrMin)
	if err != nil {
		return Config{}, err
	}

	max, err := attrs.number(AttrMax)
	if err != nil {
		return Config{}, err
	}

	step, ok, err := attrs.optionalNumber(AttrStep)
	if err != nil {
		return Config{}, err
	}

	if !ok {
		step = significant((max - min) / defaultStepDivisor)
	}

	return newConfig(min, max, step, trackWidth)
}

func newConfig(min float64, max float64, step float64, trackWidth float64) (Config, error) {
	if max <= min {
		return Config{}, fmt.Errorf("%w: max (%v) must be greater than min (%v)", ErrConfiguration, max, min)
	}

	// written this way to also catch NaN
	if !(step > 0) || math.IsInf(step, 0) {
		return Config{}, fmt.Errorf("%w: step must be a positive number, got %v", ErrConfiguration, step)
	}

	if !(trackWidth >= 0) || math.IsInf(trackWidth, 0) {
		return Config{}, fmt.Errorf("%w: track width must be a non-negative number, got %v", ErrConfiguration, trackWidth)
	}

	steps := math.Ceil((max-min)/step - epsilon)
	if steps < 1 {
		steps = 1
	}

	// one extra breakpoint keeps zero addressable when the domain crosses it
	if straddlesZero(min, max) {
		steps++
	}

	// rounding to fewer digits than the step has would merge neighbouring breakpoints
	if precisionOf(step) > maxPrecision {
		return Config{}, fmt.Errorf("%w: step %v has more than %d decimal digits", ErrConfiguration, step, maxPrecision)
	}

	if steps > maxBreakpoints {
		return Config{}, fmt.Errorf("%w: step %v is too small for range [%v, %v]", ErrConfiguration, step, min, max)
	}

	c := Config{
		Min:             min,
		Max:             max,
		Step:            step,
		Precision:       precisionOf(step),
		BreakpointCount: int(steps),
		TrackWidth:      trackWidth,
	}

	// a fractional min shifts every breakpoint by its digits too
	if minPrecision := precisionOf(min); minPrecision > c.Precision {
		c.Precision = minPrecision
	}

	if c.Precision > maxPrecision {
		c.Precision = maxPrecision
	}

	c.StepWidth = trackWidth / float64(c.BreakpointCount)
	c.last = round(min+math.Floor((max-min)/step+epsilon)*step, c.Precision)

	if c.last > max {
		c.last = max
	}

	return c, nil
}

// LastValue returns the largest reachable value. It equals Max unless (Max - Min) isn't a multiple of Step
func (c Config) LastValue() float64 {
	return c.last
}

func (c Config) straddlesZero() bool {
	return straddlesZero(c.Min, c.Max)
}

func straddlesZero(min float64, max float64) bool {
	return min < 0 && max > 0
}

func (a Attributes) number(key string) (float64, error) {
	value, ok, err := a.optionalNumber(key)
	if err != nil {
		return 0, err
	}

	if !ok {
		return 0, fmt.Errorf("%w: missing %s attribute", ErrConfiguration, key)
	}

	return value, nil
}

func (a Attributes) optionalNumber(key string) (float64, bool, error) {
	raw, ok := a[key]
	if !ok || raw == nil {
		return 0, false, nil
	}

	// an empty attribute is as good as a missing one
	if s, isString := raw.(string); isString {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false, nil
		}

		raw = s
	}

	value, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: non-numeric %s attribute %v", ErrConfiguration, key, raw)
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false, fmt.Errorf("%w: %s attribute must be finite, got %v", ErrConfiguration, key, value)
	}

	return value, true, nil
}

// precisionOf counts the decimal digits in the shortest representation of v (0.25 -> 2, 5 -> 0)
func precisionOf(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)

	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}

	return len(s) - dot - 1
}

// significant drops the binary noise a division leaves behind (0.3/100 -> 0.003)
func significant(v float64) float64 {
	trimmed, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 12, 64), 64)
	if err != nil {
		return v
	}

	return trimmed
}

// round rounds v to the given number of decimal digits
func round(v float64, precision int) float64 {
	pow := math.Pow10(precision)

	rounded := math.Round(v*pow) / pow
	if math.IsInf(rounded, 0) || math.IsNaN(rounded) {
		return v
	}

	// no negative zeroes on display
	if rounded == 0 {
		return 0
	}

	return rounded
}
