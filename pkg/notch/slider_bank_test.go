package notch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notchctl/notch/pkg/notch/slider"
)

// displayRecorder records what every slider displayed, by slider name
type displayRecorder map[string][]string

func (r displayRecorder) factory(kinds []string, sliderName string) []slider.DisplaySink {
	return []slider.DisplaySink{slider.DisplayFunc(func(value string) {
		r[sliderName] = append(r[sliderName], value)
	})}
}

func testBankSettings(t *testing.T, userMapping map[string]interface{}) bankSettings {
	t.Helper()

	mapping, err := sliderMapFromConfig(zap.S(), userMapping)
	require.NoError(t, err)

	return bankSettings{
		mapping:    mapping,
		fillPolicy: slider.FillSnap,
		displays:   []string{displayLog},
	}
}

func twoSliderSettings(t *testing.T) bankSettings {
	return testBankSettings(t, map[string]interface{}{
		"0": map[string]interface{}{"name": "volume", "min": 0, "max": 10, "step": 1, "value": 5, "track_width": 100},
		"1": map[string]interface{}{"name": "balance", "min": -5, "max": 5, "step": 1, "track_width": 110},
	})
}

func newTestBank(t *testing.T, settings bankSettings) (*sliderBank, displayRecorder) {
	t.Helper()

	recorder := displayRecorder{}

	bank, err := newSliderBank(zap.S(), recorder.factory)
	require.NoError(t, err)
	require.NoError(t, bank.load(settings))

	return bank, recorder
}

func mustSlider(t *testing.T, bank *sliderBank, id int) *slider.Slider {
	t.Helper()

	s, ok := bank.get(id)
	require.True(t, ok, "slider %d", id)

	return s
}

func TestSliderBank_load(t *testing.T) {
	bank, recorder := newTestBank(t, twoSliderSettings(t))

	assert.Equal(t, 5.0, mustSlider(t, bank, 0).Value())
	assert.Equal(t, 0.0, mustSlider(t, bank, 1).Value())
	assert.Equal(t, "volume", mustSlider(t, bank, 0).Name())

	// displays learn the initial values
	assert.Equal(t, displayRecorder{"volume": {"5"}, "balance": {"0"}}, recorder)
	assert.Equal(t, "<2 sliders, 0 dragging>", bank.String())
}

func TestSliderBank_loadNothing(t *testing.T) {
	bank, err := newSliderBank(zap.S(), nil)
	require.NoError(t, err)

	assert.Error(t, bank.load(bankSettings{}))
	assert.Error(t, bank.load(bankSettings{mapping: newSliderMap()}))
}

func TestSliderBank_handlePointerEvent(t *testing.T) {
	bank, _ := newTestBank(t, twoSliderSettings(t))
	volume, balance := mustSlider(t, bank, 0), mustSlider(t, bank, 1)

	bank.handlePointerEvent(PointerEvent{SliderID: 0, Kind: PointerPress})
	bank.handlePointerEvent(PointerEvent{SliderID: 0, Kind: PointerMove, Offset: 80})
	assert.Equal(t, 8.0, volume.Value())
	assert.Equal(t, 0, bank.captured)

	// the pointer belongs to volume until it's released
	bank.handlePointerEvent(PointerEvent{SliderID: 1, Kind: PointerPress})
	bank.handlePointerEvent(PointerEvent{SliderID: 1, Kind: PointerClick, Offset: 70})
	assert.False(t, balance.Dragging())
	assert.Equal(t, 0.0, balance.Value())

	bank.handlePointerEvent(PointerEvent{SliderID: 0, Kind: PointerRelease})
	assert.Equal(t, noCapture, bank.captured)
	assert.Equal(t, 8.0, volume.Value())

	bank.handlePointerEvent(PointerEvent{SliderID: 1, Kind: PointerClick, Offset: 70})
	assert.Equal(t, 1.0, balance.Value())

	// unknown sliders are ignored
	bank.handlePointerEvent(PointerEvent{SliderID: 9, Kind: PointerPress})
	assert.Equal(t, noCapture, bank.captured)
}

func TestSliderBank_measureAndCancel(t *testing.T) {
	bank, _ := newTestBank(t, twoSliderSettings(t))
	volume := mustSlider(t, bank, 0)

	bank.handlePointerEvent(PointerEvent{SliderID: 0, Kind: PointerMeasure, Offset: 200})
	assert.Equal(t, 20.0, volume.Config().StepWidth)
	assert.Equal(t, 100.0, volume.Fill())

	// a broken measurement leaves the slider as it was
	bank.handlePointerEvent(PointerEvent{SliderID: 0, Kind: PointerMeasure, Offset: -1})
	assert.Equal(t, 200.0, volume.Config().TrackWidth)

	bank.handlePointerEvent(PointerEvent{SliderID: 0, Kind: PointerPress})
	bank.handlePointerEvent(PointerEvent{SliderID: 0, Kind: PointerMove, Offset: 20})
	assert.Equal(t, 1.0, volume.Value())

	// measuring another slider mid-drag is fine
	bank.handlePointerEvent(PointerEvent{SliderID: 1, Kind: PointerMeasure, Offset: 220})
	assert.Equal(t, 220.0, mustSlider(t, bank, 1).Config().TrackWidth)

	bank.handlePointerEvent(PointerEvent{SliderID: 0, Kind: PointerCancel})
	assert.Equal(t, 5.0, volume.Value())
	assert.Equal(t, noCapture, bank.captured)
}

func TestSliderBank_reloadCarriesValues(t *testing.T) {
	bank, _ := newTestBank(t, testBankSettings(t, map[string]interface{}{
		"0": map[string]interface{}{"min": 0, "max": 10, "step": 1, "value": 5, "track_width": 100},
	}))

	bank.handlePointerEvent(PointerEvent{SliderID: 0, Kind: PointerClick, Offset: 80})
	assert.Equal(t, 8.0, mustSlider(t, bank, 0).Value())

	// still on the grid: carried over
	require.NoError(t, bank.load(testBankSettings(t, map[string]interface{}{
		"0": map[string]interface{}{"min": 0, "max": 20, "step": 2, "track_width": 100},
	})))
	assert.Equal(t, 8.0, mustSlider(t, bank, 0).Value())

	// off the grid: back to the initial value
	require.NoError(t, bank.load(testBankSettings(t, map[string]interface{}{
		"0": map[string]interface{}{"min": 0, "max": 10, "step": 3, "track_width": 100},
	})))
	assert.Equal(t, 6.0, mustSlider(t, bank, 0).Value())
}

func TestSliderBank_reloadDuringDrag(t *testing.T) {
	bank, _ := newTestBank(t, twoSliderSettings(t))

	bank.handlePointerEvent(PointerEvent{SliderID: 0, Kind: PointerPress})
	bank.handlePointerEvent(PointerEvent{SliderID: 0, Kind: PointerMove, Offset: 90})

	require.NoError(t, bank.load(twoSliderSettings(t)))

	// the drag was abandoned, so its value never stuck
	assert.Equal(t, noCapture, bank.captured)
	assert.False(t, mustSlider(t, bank, 0).Dragging())
	assert.Equal(t, 5.0, mustSlider(t, bank, 0).Value())
}

func TestSliderBank_eventLoop(t *testing.T) {
	settings := twoSliderSettings(t)
	bank, _ := newTestBank(t, settings)

	events := make(chan PointerEvent)
	reloads := make(chan bool)

	bank.start(events, reloads, func() bankSettings { return settings })

	events <- PointerEvent{SliderID: 0, Kind: PointerPress}
	events <- PointerEvent{SliderID: 0, Kind: PointerMove, Offset: 30}
	events <- PointerEvent{SliderID: 0, Kind: PointerRelease}
	events <- PointerEvent{SliderID: 1, Kind: PointerClick, Offset: 110}

	reloads <- true

	events <- PointerEvent{SliderID: 0, Kind: PointerClick, Offset: 100}

	bank.stop()

	assert.Equal(t, 10.0, mustSlider(t, bank, 0).Value())
	assert.Equal(t, 5.0, mustSlider(t, bank, 1).Value())
}
