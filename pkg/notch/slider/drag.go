package slider

import "fmt"

// DragState is the state of a slider's drag session
type DragState int

const (
	DragStateIdle DragState = iota
	DragStateDragging
)

func (d DragState) String() string {
	switch d {
	case DragStateIdle:
		return "idle"
	case DragStateDragging:
		return "dragging"
	default:
		return fmt.Sprintf("DragState(%d)", int(d))
	}
}

// Capture is the host input layer's side of a drag session: Acquire is called when a
// session starts and move/release signals should flow to the slider, Release when it ends
type Capture interface {
	Acquire()
	Release()
}

// State returns the slider's drag state
func (s *Slider) State() DragState {
	return s.state
}

// Dragging returns true while a drag session is active
func (s *Slider) Dragging() bool {
	return s.state == DragStateDragging
}

// Press starts a drag session, remembering the value it started with.
// Pressing again during a session does nothing
func (s *Slider) Press() {
	if s.state == DragStateDragging {
		s.logger.Debug("Already dragging, ignoring press")
		return
	}

	s.state = DragStateDragging
	s.committed = s.current

	if s.capture != nil {
		s.capture.Acquire()
	}

	s.logger.Debugw("Drag started", "value", s.current)
}

// Move resolves a pointer offset during a drag session. Every move that changes the
// value fires OnSlide. Moves outside a session are ignored
func (s *Slider) Move(offset float64) {
	if s.state != DragStateDragging || !s.measured() {
		return
	}

	if s.resolve(offset) {
		s.callbacks.fire(s.callbacks.onSlide, s.current)
	}
}

// Release ends a drag session. OnSlideEnd always fires, OnValueChange only
// if the session ended on a different value than it started with
func (s *Slider) Release() {
	if s.state != DragStateDragging {
		return
	}

	s.endDrag()

	s.logger.Debugw("Drag ended", "from", s.committed, "to", s.current)

	s.callbacks.fire(s.callbacks.onSlideEnd, s.current)

	if s.current != s.committed {
		s.callbacks.fire(s.callbacks.onValueChange, s.current)
	}
}

// Click resolves a click on the track outside of a drag session. It updates the value
// and displays but fires neither OnSlideEnd nor, unless WithClickCommit was given, OnValueChange
func (s *Slider) Click(offset float64) {
	if s.state == DragStateDragging {
		s.logger.Debug("Ignoring click during drag")
		return
	}

	if !s.measured() {
		return
	}

	if s.resolve(offset) && s.clickCommit {
		s.callbacks.fire(s.callbacks.onValueChange, s.current)
	}
}

// CancelDrag abandons a drag session whose release signal was lost, reverting to the
// value it started with. OnSlide fires if that moves the value; nothing else does
func (s *Slider) CancelDrag() {
	if s.state != DragStateDragging {
		return
	}

	s.endDrag()

	s.logger.Debugw("Drag cancelled", "revertingTo", s.committed)

	if s.apply(s.committed, s.config.OffsetFor(s.committed)) {
		s.callbacks.fire(s.callbacks.onSlide, s.current)
	}
}

func (s *Slider) endDrag() {
	s.state = DragStateIdle

	if s.capture != nil {
		s.capture.Release()
	}
}

// resolve applies the value under a pointer offset and reports whether it changed
func (s *Slider) resolve(offset float64) bool {
	value, fill := s.config.Quantize(offset)

	if s.fillPolicy == FillContinuous {
		fill = s.config.clampOffset(offset)
	}

	return s.apply(value, fill)
}

// without a measured track there is nothing to resolve pointer offsets against
func (s *Slider) measured() bool {
	return s.config.StepWidth > 0
}
