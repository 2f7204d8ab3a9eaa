package notch

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"github.com/notchctl/notch/pkg/notch/slider"
)

// logDisplay writes every value update to the log
type logDisplay struct {
	logger *zap.SugaredLogger
	name   string
}

func (d *logDisplay) UpdateDisplay(value string) {
	d.logger.Infow("Display", "slider", d.name, "value", value)
}

var (
	colorSliderName  = color.New(color.FgYellow)
	colorSliderValue = color.New(color.FgGreen, color.Bold)
)

// terminalDisplay prints a colored "name > value" line for every value update
type terminalDisplay struct {
	out  io.Writer
	name string
}

func (d *terminalDisplay) UpdateDisplay(value string) {
	fmt.Fprintf(d.out, "%s > %s\n", colorSliderName.Sprint(d.name), colorSliderValue.Sprint(value))
}

// trayDisplay keeps the latest value of every slider and shows them all in the tray tooltip
type trayDisplay struct {
	values map[string]string
	lock   sync.Locker

	// the tooltip can only be set once the tray is up
	ready bool

	// swapped out in tests, systray needs a running tray
	setTooltip func(string)
}

func newTrayDisplay() *trayDisplay {
	return &trayDisplay{
		values:     make(map[string]string),
		lock:       &sync.Mutex{},
		setTooltip: systray.SetTooltip,
	}
}

func (d *trayDisplay) sink(name string) slider.DisplaySink {
	return slider.DisplayFunc(func(value string) {
		d.lock.Lock()
		defer d.lock.Unlock()

		d.values[name] = value

		if d.ready {
			d.setTooltip(d.tooltip())
		}
	})
}

// markReady shows whatever values arrived before the tray was up
func (d *trayDisplay) markReady() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.ready = true
	d.setTooltip(d.tooltip())
}

func (d *trayDisplay) tooltip() string {
	names := make([]string, 0, len(d.values))
	for name := range d.values {
		names = append(names, name)
	}

	sort.Strings(names)

	lines := []string{"notch"}
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, d.values[name]))
	}

	return strings.Join(lines, "\n")
}

// displays hands out display sinks by kind name
type displays struct {
	logger   *zap.SugaredLogger
	terminal io.Writer

	// nil when running without a tray
	tray *trayDisplay
}

func newDisplays(logger *zap.SugaredLogger, terminal io.Writer, tray *trayDisplay) *displays {
	logger = logger.Named("display")

	logger.Debugw("Created displays instance", "tray", tray != nil)

	return &displays{
		logger:   logger,
		terminal: terminal,
		tray:     tray,
	}
}

// sinksFor creates one sink of each given kind for the named slider
func (d *displays) sinksFor(kinds []string, sliderName string) []slider.DisplaySink {
	sinks := []slider.DisplaySink{}

	for _, kind := range kinds {
		switch kind {
		case displayLog:
			sinks = append(sinks, &logDisplay{logger: d.logger, name: sliderName})
		case displayTerminal:
			sinks = append(sinks, &terminalDisplay{out: d.terminal, name: sliderName})
		case displayTray:
			if d.tray == nil {
				d.logger.Debugw("Tray display requested but not running with a tray, skipping", "slider", sliderName)
				continue
			}

			sinks = append(sinks, d.tray.sink(sliderName))
		default:
			d.logger.Warnw("Unknown display kind", "kind", kind)
		}
	}

	return sinks
}
