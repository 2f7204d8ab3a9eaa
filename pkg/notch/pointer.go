package notch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// PointerSource is anything that can deliver pointer events for notch's sliders
type PointerSource interface {
	Start() error
	Stop()
	SubscribeToPointerEvents() chan PointerEvent
}

// PointerKind is the kind of signal a pointer event carries
type PointerKind int

const (
	PointerPress PointerKind = iota
	PointerMove
	PointerRelease
	PointerClick
	PointerCancel
	PointerMeasure
)

var pointerKindNames = map[string]PointerKind{
	"press":   PointerPress,
	"move":    PointerMove,
	"release": PointerRelease,
	"click":   PointerClick,
	"cancel":  PointerCancel,
	"measure": PointerMeasure,
}

func (k PointerKind) String() string {
	for name, kind := range pointerKindNames {
		if kind == k {
			return name
		}
	}

	return fmt.Sprintf("PointerKind(%d)", int(k))
}

// needsOffset reports whether events of this kind are meaningless without an offset
func (k PointerKind) needsOffset() bool {
	return k == PointerMove || k == PointerClick || k == PointerMeasure
}

// PointerEvent represents a single pointer signal addressed to one slider. Offset is
// the pointer's pixel offset from the start of the track (or the new track width, for measure events)
type PointerEvent struct {
	SliderID int
	Kind     PointerKind
	Offset   float64
}

// lines look like "0:press", "0:move:42.5", "1:measure:240" or "0:release"
var expectedPointerLinePattern = regexp.MustCompile(`^(\d{1,3}):([a-z]+)(?::(-?\d{1,6}(?:\.\d{1,4})?))?\r?\n?$`)

// the buffer absorbs bursts of moves from fast pointers without stalling the reader
const pointerEventBufferSize = 64

// parsePointerLine turns one line of input into a pointer event. It returns false for
// anything that isn't a well-formed pointer line, these are simply dropped
func parsePointerLine(line string) (PointerEvent, bool) {
	match := expectedPointerLinePattern.FindStringSubmatch(line)
	if match == nil {
		return PointerEvent{}, false
	}

	kind, ok := pointerKindNames[match[2]]
	if !ok {
		return PointerEvent{}, false
	}

	if kind.needsOffset() && match[3] == "" {
		return PointerEvent{}, false
	}

	// the pattern already guarantees these parse
	sliderID, _ := strconv.Atoi(match[1])
	offset, _ := strconv.ParseFloat(match[3], 64)

	return PointerEvent{
		SliderID: sliderID,
		Kind:     kind,
		Offset:   offset,
	}, true
}

// pointerEventHub fans parsed pointer events out to subscribers. Both the serial and the
// UDP sources embed one, they only differ in how lines get to it
type pointerEventHub struct {
	pointerConsumers []chan PointerEvent
}

// SubscribeToPointerEvents returns a channel that receives a PointerEvent for every
// well-formed pointer line read from the source
func (h *pointerEventHub) SubscribeToPointerEvents() chan PointerEvent {
	ch := make(chan PointerEvent, pointerEventBufferSize)
	h.pointerConsumers = append(h.pointerConsumers, ch)

	return ch
}

// handleData parses every line in data and delivers the resulting events, in order,
// towards all consumers
func (h *pointerEventHub) handleData(logger *zap.SugaredLogger, data string, verbose bool) {
	for _, line := range strings.SplitAfter(data, "\n") {
		if line == "" {
			continue
		}

		event, ok := parsePointerLine(line)
		if !ok {
			if verbose {
				logger.Debugw("Ignoring malformed pointer line", "line", line)
			}

			continue
		}

		if verbose {
			logger.Debugw("Pointer event", "event", event)
		}

		for _, consumer := range h.pointerConsumers {
			consumer <- event
		}
	}
}

func (e PointerEvent) String() string {
	if e.Kind.needsOffset() {
		return fmt.Sprintf("%d:%s:%g", e.SliderID, e.Kind, e.Offset)
	}

	return fmt.Sprintf("%d:%s", e.SliderID, e.Kind)
}
