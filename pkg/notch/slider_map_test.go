package notch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notchctl/notch/pkg/notch/slider"
)

func TestSliderMapFromConfig(t *testing.T) {
	type testCase struct {
		userMapping     map[string]interface{}
		expectedIDs     []int
		expectedNames   []string
		expectedSkipped []string
	}

	volume := map[string]interface{}{"name": "volume", "min": 0, "max": 100, "step": 5, "track_width": 200}

	testCases := map[string]testCase{
		"empty-uses-default": {
			userMapping:   map[string]interface{}{},
			expectedIDs:   []int{0},
			expectedNames: []string{defaultSliderName},
		},
		"single": {
			userMapping:   map[string]interface{}{"3": volume},
			expectedIDs:   []int{3},
			expectedNames: []string{"volume"},
		},
		"unnamed": {
			userMapping:   map[string]interface{}{"7": map[string]interface{}{"min": 0, "max": 1}},
			expectedIDs:   []int{7},
			expectedNames: []string{"slider-7"},
		},
		"duplicate-names-renamed": {
			userMapping:   map[string]interface{}{"0": volume, "1": volume},
			expectedIDs:   []int{0, 1},
			expectedNames: []string{"volume", "volume-1"},
		},
		"clashes-resolve-by-numeric-id": {
			userMapping:   map[string]interface{}{"10": volume, "2": volume},
			expectedIDs:   []int{2, 10},
			expectedNames: []string{"volume", "volume-10"},
		},
		"invalid-entries-skipped": {
			userMapping: map[string]interface{}{
				"0":    volume,
				"knob": volume,
				"-1":   volume,
				"2":    "not a map",
				"3":    map[string]interface{}{"min": 5, "max": 5},
				"4":    map[string]interface{}{"min": 0, "max": 10, "track_width": "wide"},
				" 05 ": map[string]interface{}{"name": "padded", "min": "0", "max": "1", "step": "0.1"},
			},
			expectedIDs:     []int{0, 5},
			expectedNames:   []string{"volume", "padded"},
			expectedSkipped: []string{"-1", "2", "3", "4", "knob"},
		},
	}

	for testName, testCase := range testCases {
		t.Run(testName, func(t *testing.T) {
			m, err := sliderMapFromConfig(zap.S(), testCase.userMapping)
			require.NoError(t, err)

			assert.Equal(t, testCase.expectedIDs, m.IDs())

			names := []string{}
			m.Iterate(func(_ int, definition sliderDefinition) {
				names = append(names, definition.Name)
			})

			assert.Equal(t, testCase.expectedNames, names)
			assert.Equal(t, testCase.expectedSkipped, m.Skipped())
		})
	}
}

func TestSliderMapFromConfig_noValidSliders(t *testing.T) {
	_, err := sliderMapFromConfig(zap.S(), map[string]interface{}{
		"0": map[string]interface{}{"min": 1},
	})

	assert.Error(t, err)
}

func TestParseSliderDefinition(t *testing.T) {
	definition, err := parseSliderDefinition("1", map[string]interface{}{
		"name":        " balance ",
		"min":         -5,
		"max":         5,
		"step":        1,
		"value":       "2",
		"track_width": 110,
		"color":       "red",
	})
	require.NoError(t, err)

	assert.Equal(t, sliderDefinition{
		ID:   1,
		Name: "balance",
		Attributes: slider.Attributes{
			slider.AttrMin:   -5,
			slider.AttrMax:   5,
			slider.AttrStep:  1,
			slider.AttrValue: "2",
		},
		TrackWidth: 110,
	}, definition)
}

func TestSliderMap_String(t *testing.T) {
	m, err := sliderMapFromConfig(zap.S(), map[string]interface{}{
		"0": map[string]interface{}{"min": 0, "max": 1, "track_width": 50},
		"1": map[string]interface{}{"min": 0, "max": 1},
	})
	require.NoError(t, err)

	assert.Equal(t, "<2 sliders, 1 with measured tracks>", m.String())
}

func TestSortSliderKeys(t *testing.T) {
	keys := []string{"knob", "10", " 3", "2", "-1", "alpha"}
	sortSliderKeys(keys)

	assert.Equal(t, []string{"-1", "2", " 3", "10", "alpha", "knob"}, keys)
}
