package notch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/notchctl/notch/pkg/notch/slider"
)

// noCapture marks that no slider currently holds the pointer
const noCapture = -1

// bankSettings is the part of the config the slider bank is built from
type bankSettings struct {
	mapping      *sliderMap
	fillPolicy   slider.FillPolicy
	clickCommits bool
	displays     []string
}

func bankSettingsFromConfig(cc *CanonicalConfig) bankSettings {
	return bankSettings{
		mapping:      cc.SliderMapping,
		fillPolicy:   cc.FillPolicy,
		clickCommits: cc.ClickCommits,
		displays:     cc.Displays,
	}
}

// sinkFactory creates the display sinks for a single named slider
type sinkFactory func(kinds []string, sliderName string) []slider.DisplaySink

// sliderBank owns every slider instance. After start, all access to the sliders
// happens on the bank's own goroutine
type sliderBank struct {
	logger *zap.SugaredLogger
	sinks  sinkFactory

	sliders  map[int]*slider.Slider
	captured int

	stopChannel chan bool
}

// bankCapture tells the bank which slider a drag session belongs to
type bankCapture struct {
	bank *sliderBank
	id   int
}

func (c bankCapture) Acquire() {
	c.bank.captured = c.id
}

func (c bankCapture) Release() {
	if c.bank.captured == c.id {
		c.bank.captured = noCapture
	}
}

func newSliderBank(logger *zap.SugaredLogger, sinks sinkFactory) (*sliderBank, error) {
	logger = logger.Named("sliders")

	b := &sliderBank{
		logger:      logger,
		sinks:       sinks,
		sliders:     make(map[int]*slider.Slider),
		captured:    noCapture,
		stopChannel: make(chan bool),
	}

	logger.Debug("Created slider bank instance")

	return b, nil
}

// load (re)builds every slider from the given settings. Sliders that existed before keep
// their value, as long as it's still valid under their new configuration
func (b *sliderBank) load(settings bankSettings) error {
	if settings.mapping == nil || settings.mapping.Len() == 0 {
		return fmt.Errorf("no sliders to load")
	}

	// a drag can't survive its slider being replaced
	for _, s := range b.sliders {
		s.CancelDrag()
	}

	b.captured = noCapture

	previous := b.sliders
	b.sliders = make(map[int]*slider.Slider)

	var failed []int

	settings.mapping.Iterate(func(id int, definition sliderDefinition) {
		s, err := b.build(id, definition, settings)
		if err != nil {
			b.logger.Warnw("Failed to create slider", "id", id, "name", definition.Name, "error", err)
			failed = append(failed, id)

			return
		}

		if old, ok := previous[id]; ok {
			if err := s.SetValue(old.Value()); err != nil {
				b.logger.Debugw("Previous value no longer valid, keeping initial value",
					"id", id,
					"previous", old.Value(),
					"value", s.Value())
			}
		}

		b.sliders[id] = s
	})

	if len(b.sliders) == 0 {
		return fmt.Errorf("create sliders: all %d failed", len(failed))
	}

	b.logger.Infow("Loaded sliders", "count", len(b.sliders), "failed", failed)

	return nil
}

func (b *sliderBank) build(id int, definition sliderDefinition, settings bankSettings) (*slider.Slider, error) {
	logger := b.logger.With("id", id)

	opts := []slider.Option{
		slider.WithName(definition.Name),
		slider.WithFillPolicy(settings.fillPolicy),
		slider.WithClickCommit(settings.clickCommits),
		slider.WithCapture(bankCapture{bank: b, id: id}),
		slider.WithOnInit(func(value float64) {
			logger.Debugw("Slider initialized", "name", definition.Name, "value", value)
		}),
	}

	if b.sinks != nil {
		opts = append(opts, slider.WithDisplay(b.sinks(settings.displays, definition.Name)...))
	}

	s, err := slider.New(logger, definition.Attributes, definition.TrackWidth, opts...)
	if err != nil {
		return nil, fmt.Errorf("create slider %d: %w", id, err)
	}

	s.OnSlide(func(value float64) {
		logger.Debugw("Slide", "name", definition.Name, "value", value)
	})

	s.OnSlideEnd(func(value float64) {
		logger.Debugw("Slide ended", "name", definition.Name, "value", value)
	})

	s.OnValueChange(func(value float64) {
		logger.Infow("Value changed", "name", definition.Name, "value", s.Text())
	})

	return s, nil
}

// start runs the bank's event loop until stop is called. Pointer events and
// config reloads are handled one at a time, in the order they arrive
func (b *sliderBank) start(events <-chan PointerEvent, reloads <-chan bool, settings func() bankSettings) {
	go func() {
		for {
			select {
			case <-b.stopChannel:
				b.logger.Debug("Stopping slider event loop")
				return

			case event := <-events:
				b.handlePointerEvent(event)

			case <-reloads:
				b.logger.Debug("Detected config reload, rebuilding sliders")

				if err := b.load(settings()); err != nil {
					b.logger.Warnw("Failed to rebuild sliders after config reload", "error", err)
				}
			}
		}
	}()
}

func (b *sliderBank) stop() {
	b.stopChannel <- true
}

func (b *sliderBank) handlePointerEvent(event PointerEvent) {
	s, ok := b.sliders[event.SliderID]
	if !ok {
		b.logger.Debugw("Ignoring pointer event for unknown slider", "event", event)
		return
	}

	// while one slider holds the pointer, nobody else gets it
	if b.captured != noCapture && b.captured != event.SliderID && event.Kind != PointerMeasure {
		b.logger.Debugw("Ignoring pointer event while another slider is dragged",
			"event", event,
			"captured", b.captured)

		return
	}

	switch event.Kind {
	case PointerPress:
		s.Press()
	case PointerMove:
		s.Move(event.Offset)
	case PointerRelease:
		s.Release()
	case PointerClick:
		s.Click(event.Offset)
	case PointerCancel:
		s.CancelDrag()
	case PointerMeasure:
		if err := s.Remeasure(event.Offset); err != nil {
			b.logger.Warnw("Failed to apply track measurement", "event", event, "error", err)
		}
	}
}

// get returns the slider with the given id. Only safe to call from the bank's goroutine or before start
func (b *sliderBank) get(id int) (*slider.Slider, bool) {
	s, ok := b.sliders[id]
	return s, ok
}

func (b *sliderBank) String() string {
	dragging := 0

	for _, s := range b.sliders {
		if s.Dragging() {
			dragging++
		}
	}

	return fmt.Sprintf("<%d sliders, %d dragging>", len(b.sliders), dragging)
}
