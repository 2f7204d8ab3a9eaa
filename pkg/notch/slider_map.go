package notch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/notchctl/notch/pkg/notch/slider"
)

const (
	sliderKeyName       = "name"
	sliderKeyTrackWidth = "track_width"

	defaultSliderName       = "value"
	defaultSliderTrackWidth = 100
)

// sliderDefinition is a single slider entry from the config file
type sliderDefinition struct {
	ID         int
	Name       string
	Attributes slider.Attributes
	TrackWidth float64
}

type sliderMap struct {
	m    map[int]sliderDefinition
	lock sync.Locker

	// ids of entries that were dropped while parsing
	skipped []string
}

func newSliderMap() *sliderMap {
	return &sliderMap{
		m:    make(map[int]sliderDefinition),
		lock: &sync.Mutex{},
	}
}

// defaultSliderMap is used when the config doesn't define any sliders
func defaultSliderMap() *sliderMap {
	m := newSliderMap()

	m.set(0, sliderDefinition{
		ID:   0,
		Name: defaultSliderName,
		Attributes: slider.Attributes{
			slider.AttrMin: 0,
			slider.AttrMax: 100,
		},
		TrackWidth: defaultSliderTrackWidth,
	})

	return m
}

func sliderMapFromConfig(logger *zap.SugaredLogger, userMapping map[string]interface{}) (*sliderMap, error) {
	if len(userMapping) == 0 {
		logger.Debug("No sliders configured, using default slider")
		return defaultSliderMap(), nil
	}

	resultMap := newSliderMap()

	// go over entries in id order, so that name clashes resolve the same way every time
	keys := funk.Keys(userMapping).([]string)
	sortSliderKeys(keys)

	usedNames := []string{}

	for _, key := range keys {
		definition, err := parseSliderDefinition(key, userMapping[key])
		if err != nil {
			logger.Warnw("Skipping invalid slider entry", "slider", key, "error", err)
			resultMap.skipped = append(resultMap.skipped, key)

			continue
		}

		if _, exists := resultMap.Get(definition.ID); exists {
			logger.Warnw("Skipping duplicate slider id", "slider", key, "id", definition.ID)
			resultMap.skipped = append(resultMap.skipped, key)

			continue
		}

		if funk.ContainsString(usedNames, definition.Name) {
			renamed := fmt.Sprintf("%s-%d", definition.Name, definition.ID)
			logger.Warnw("Slider name already taken, renaming", "name", definition.Name, "renamed", renamed)

			definition.Name = renamed
		}

		usedNames = append(usedNames, definition.Name)
		resultMap.set(definition.ID, definition)
	}

	if resultMap.Len() == 0 {
		return nil, fmt.Errorf("no valid sliders among %d entries", len(keys))
	}

	return resultMap, nil
}

// sortSliderKeys orders numeric keys by their value ("2" before "10"), followed by anything else
func sortSliderKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(strings.TrimSpace(keys[i]))
		b, bErr := strconv.Atoi(strings.TrimSpace(keys[j]))

		switch {
		case aErr == nil && bErr == nil:
			if a != b {
				return a < b
			}

			return keys[i] < keys[j]
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}

func parseSliderDefinition(key string, raw interface{}) (sliderDefinition, error) {
	id, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || id < 0 {
		return sliderDefinition{}, fmt.Errorf("slider id must be a non-negative number, got %q", key)
	}

	fields, err := cast.ToStringMapE(raw)
	if err != nil {
		return sliderDefinition{}, fmt.Errorf("parse slider fields: %w", err)
	}

	definition := sliderDefinition{
		ID:         id,
		Name:       strings.TrimSpace(cast.ToString(fields[sliderKeyName])),
		Attributes: slider.Attributes{},
	}

	if definition.Name == "" {
		definition.Name = fmt.Sprintf("slider-%d", id)
	}

	for _, attr := range []string{slider.AttrMin, slider.AttrMax, slider.AttrStep, slider.AttrValue} {
		if value, ok := fields[attr]; ok {
			definition.Attributes[attr] = value
		}
	}

	if rawWidth, ok := fields[sliderKeyTrackWidth]; ok {
		definition.TrackWidth, err = cast.ToFloat64E(rawWidth)
		if err != nil {
			return sliderDefinition{}, fmt.Errorf("parse track width: %w", err)
		}
	}

	// catch broken ranges now rather than when the bank builds the slider
	if _, err := slider.ResolveConfig(definition.Attributes, definition.TrackWidth); err != nil {
		return sliderDefinition{}, err
	}

	return definition, nil
}

// IDs returns the ids of all defined sliders, in ascending order
func (m *sliderMap) IDs() []int {
	m.lock.Lock()
	defer m.lock.Unlock()

	ids := make([]int, 0, len(m.m))
	for id := range m.m {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids
}

// Iterate goes over every slider definition in id order
func (m *sliderMap) Iterate(f func(int, sliderDefinition)) {
	for _, id := range m.IDs() {
		definition, _ := m.Get(id)
		f(id, definition)
	}
}

func (m *sliderMap) Get(key int) (sliderDefinition, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	value, ok := m.m[key]
	return value, ok
}

func (m *sliderMap) Len() int {
	m.lock.Lock()
	defer m.lock.Unlock()

	return len(m.m)
}

// Skipped returns the config keys of entries that couldn't be used
func (m *sliderMap) Skipped() []string {
	return m.skipped
}

func (m *sliderMap) set(key int, value sliderDefinition) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.m[key] = value
}

func (m *sliderMap) String() string {
	m.lock.Lock()
	defer m.lock.Unlock()

	measured := 0

	for _, value := range m.m {
		if value.TrackWidth > 0 {
			measured++
		}
	}

	return fmt.Sprintf("<%d sliders, %d with measured tracks>", len(m.m), measured)
}
