package slider

import (
	"fmt"
	"strings"
)

// FillPolicy decides where the fill (and handle) renders while the pointer moves
type FillPolicy int

const (

	// FillSnap renders the fill at the quantized value's breakpoint
	FillSnap FillPolicy = iota

	// FillContinuous renders the fill at the raw (clamped) pointer offset
	FillContinuous
)

const (
	fillPolicySnap       = "snap"
	fillPolicyContinuous = "continuous"
)

func (p FillPolicy) String() string {
	switch p {
	case FillSnap:
		return fillPolicySnap
	case FillContinuous:
		return fillPolicyContinuous
	default:
		return fmt.Sprintf("FillPolicy(%d)", int(p))
	}
}

// ParseFillPolicy reads a fill policy by name. An empty name means FillSnap
func ParseFillPolicy(name string) (FillPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", fillPolicySnap:
		return FillSnap, nil
	case fillPolicyContinuous:
		return FillContinuous, nil
	default:
		return FillSnap, fmt.Errorf("unknown fill policy %q", name)
	}
}

// Option customizes a Slider during New
type Option func(*Slider)

// WithName names the slider. The name shows up in its logger
func WithName(name string) Option {
	return func(s *Slider) {
		if name != "" {
			s.name = name
		}
	}
}

// WithFillPolicy picks between snapping and continuous fill rendering
func WithFillPolicy(policy FillPolicy) Option {
	return func(s *Slider) {
		s.fillPolicy = policy
	}
}

// WithClickCommit makes a value-changing click on the track fire OnValueChange.
// Without it, a click only updates the value and its displays
func WithClickCommit(enabled bool) Option {
	return func(s *Slider) {
		s.clickCommit = enabled
	}
}

// WithDisplay adds sinks that receive the value as text whenever it changes
func WithDisplay(sinks ...DisplaySink) Option {
	return func(s *Slider) {
		s.displays = append(s.displays, sinks...)
	}
}

// WithCapture sets the collaborator that starts and stops delivering
// move/release signals around each drag session
func WithCapture(capture Capture) Option {
	return func(s *Slider) {
		s.capture = capture
	}
}

// WithOnInit registers the callback fired once, at the end of New
func WithOnInit(callback Callback) Option {
	return func(s *Slider) {
		s.callbacks.onInit = callback
	}
}
