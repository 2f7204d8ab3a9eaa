package slider

// Callback is notified with the slider's value at the time it fires
type Callback func(value float64)

// every hook holds a single callback, registering again replaces it
type callbackSet struct {
	onInit        Callback
	onSlide       Callback
	onSlideEnd    Callback
	onValueChange Callback
}

func (cs *callbackSet) fire(callback Callback, value float64) {
	if callback != nil {
		callback(value)
	}
}

// OnSlide registers the callback fired on every value-changing move of a drag
func (s *Slider) OnSlide(callback Callback) {
	s.callbacks.onSlide = callback
}

// OnSlideEnd registers the callback fired once at the end of every drag session
func (s *Slider) OnSlideEnd(callback Callback) {
	s.callbacks.onSlideEnd = callback
}

// OnValueChange registers the callback fired when a drag session ends with a different
// value than it started with. CommitValue, and clicks with WithClickCommit, fire it too
func (s *Slider) OnValueChange(callback Callback) {
	s.callbacks.onValueChange = callback
}
