// Package slider turns a one-dimensional pointer position into a bounded,
// step-quantized value, and drives press/move/release drag sessions over it.
//
// A Slider is owned by a single goroutine. None of its methods block or lock.
package slider

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

const defaultName = "slider"

// DisplaySink receives the slider's value, formatted to its precision, whenever it changes
type DisplaySink interface {
	UpdateDisplay(value string)
}

// DisplayFunc adapts a plain function into a DisplaySink
type DisplayFunc func(value string)

// UpdateDisplay calls f(value)
func (f DisplayFunc) UpdateDisplay(value string) {
	f(value)
}

// Slider is a single slider instance: its config, its value and its drag session
type Slider struct {
	name   string
	logger *zap.SugaredLogger

	config Config

	current   float64
	committed float64
	fill      float64
	state     DragState

	callbacks   callbackSet
	displays    []DisplaySink
	capture     Capture
	fillPolicy  FillPolicy
	clickCommit bool
}

// New creates a slider from the host's attribute bundle and measured track width.
// The initial value comes from the "value" attribute when it's valid, and from the
// breakpoint nearest the middle of the range otherwise. OnInit (see WithOnInit)
// fires before New returns
func New(logger *zap.SugaredLogger, attrs Attributes, trackWidth float64, opts ...Option) (*Slider, error) {
	s := &Slider{
		name:       defaultName,
		fillPolicy: FillSnap,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = logger.Named(s.name)

	config, err := ResolveConfig(attrs, trackWidth)
	if err != nil {
		s.logger.Warnw("Failed to resolve slider configuration", "attributes", attrs, "error", err)
		return nil, fmt.Errorf("resolve slider config: %w", err)
	}

	s.config = config
	s.current = s.initialValue(attrs)
	s.committed = s.current
	s.fill = config.OffsetFor(s.current)

	s.updateDisplays()

	s.logger.Debugw("Created slider instance",
		"min", config.Min,
		"max", config.Max,
		"step", config.Step,
		"precision", config.Precision,
		"breakpoints", config.BreakpointCount,
		"stepWidth", config.StepWidth,
		"value", s.current)

	s.callbacks.fire(s.callbacks.onInit, s.current)

	return s, nil
}

// Name returns the slider's name
func (s *Slider) Name() string {
	return s.name
}

// Config returns the slider's current configuration
func (s *Slider) Config() Config {
	return s.config
}

// Value returns the slider's current value
func (s *Slider) Value() float64 {
	return s.current
}

// Text returns the slider's current value formatted to its precision
func (s *Slider) Text() string {
	return strconv.FormatFloat(s.current, 'f', s.config.Precision, 64)
}

// Fill returns the pixel offset the fill is currently rendered at
func (s *Slider) Fill() float64 {
	return s.fill
}

// SetValue moves the slider to the given value. Values outside [min, max] or off
// the step grid are rejected with ErrOutOfBounds or ErrStepAlignment, leaving the
// slider untouched. SetValue never fires callbacks
func (s *Slider) SetValue(value float64) error {
	if err := s.config.Validate(value); err != nil {
		s.logger.Warnw("Rejected new slider value", "value", value, "error", err)
		return fmt.Errorf("set slider value: %w", err)
	}

	value = s.config.Nearest(value)
	s.apply(value, s.config.OffsetFor(value))

	return nil
}

// CommitValue behaves like SetValue, and additionally fires OnValueChange if the value changed
func (s *Slider) CommitValue(value float64) error {
	previous := s.current

	if err := s.SetValue(value); err != nil {
		return err
	}

	if s.current != previous {
		s.callbacks.fire(s.callbacks.onValueChange, s.current)
	}

	return nil
}

// Remeasure re-creates the slider's config for a new track width. The value is kept
func (s *Slider) Remeasure(trackWidth float64) error {
	config, err := newConfig(s.config.Min, s.config.Max, s.config.Step, trackWidth)
	if err != nil {
		s.logger.Warnw("Failed to remeasure slider track", "trackWidth", trackWidth, "error", err)
		return fmt.Errorf("remeasure slider track: %w", err)
	}

	s.config = config
	s.fill = config.OffsetFor(s.current)

	s.logger.Debugw("Remeasured slider track",
		"trackWidth", config.TrackWidth,
		"stepWidth", config.StepWidth,
		"fill", s.fill)

	return nil
}

func (s *Slider) initialValue(attrs Attributes) float64 {
	fallback := s.config.Nearest((s.config.Min + s.config.Max) / 2)

	value, ok, err := attrs.optionalNumber(AttrValue)
	if err != nil {
		s.logger.Warnw("Invalid initial value, using default", "error", err, "default", fallback)
		return fallback
	}

	if !ok {
		return fallback
	}

	if err := s.config.Validate(value); err != nil {
		s.logger.Warnw("Invalid initial value, using default", "value", value, "error", err, "default", fallback)
		return fallback
	}

	return s.config.Nearest(value)
}

// apply renders the fill and, if the value differs from the current one, stores it and
// updates the displays. It reports whether the value changed
func (s *Slider) apply(value float64, fill float64) bool {
	s.fill = fill

	if value == s.current {
		return false
	}

	s.current = value
	s.updateDisplays()

	return true
}

func (s *Slider) updateDisplays() {
	if len(s.displays) == 0 {
		return
	}

	text := s.Text()
	for _, sink := range s.displays {
		sink.UpdateDisplay(text)
	}
}
