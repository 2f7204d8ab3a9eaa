package notch

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notchctl/notch/pkg/notch/slider"
)

type recordingNotifier struct {
	titles []string
}

func (n *recordingNotifier) Notify(title string, message string) {
	n.titles = append(n.titles, title)
}

func newTestConfig(t *testing.T, contents string) (*CanonicalConfig, *recordingNotifier) {
	t.Helper()

	dir := t.TempDir()
	if contents != "" {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), os.ModePerm))
	}

	notifier := &recordingNotifier{}

	cc, err := NewConfig(zap.S(), notifier, dir)
	require.NoError(t, err)

	return cc, notifier
}

func TestCanonicalConfig_Load(t *testing.T) {
	cc, notifier := newTestConfig(t, `
sliders:
  0:
    name: volume
    min: 0
    max: 100
    step: 5
    value: 50
    track_width: 200
  1:
    name: Balance
    min: -5
    max: 5
    step: 1
    track_width: 110
  2:
    name: broken
    min: 10
    max: 1
fill_policy: continuous
click_commits: true
displays: [Terminal, log, log, bogus, ""]
input: UDP
com_port: /dev/ttyUSB0
baud_rate: -3
udp_port: 17000
`)

	require.NoError(t, cc.Load())

	assert.Equal(t, []int{0, 1}, cc.SliderMapping.IDs())

	volume, ok := cc.SliderMapping.Get(0)
	require.True(t, ok)
	assert.Equal(t, "volume", volume.Name)
	assert.Equal(t, 200.0, volume.TrackWidth)

	balance, ok := cc.SliderMapping.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Balance", balance.Name)

	assert.Equal(t, inputUdp, cc.Input)
	assert.Equal(t, "/dev/ttyUSB0", cc.ConnectionInfo.COMPort)
	assert.Equal(t, defaultBaudRate, cc.ConnectionInfo.BaudRate)
	assert.Equal(t, 17000, cc.UdpConnectionInfo.UdpPort)
	assert.Equal(t, slider.FillContinuous, cc.FillPolicy)
	assert.True(t, cc.ClickCommits)
	assert.Equal(t, []string{displayTerminal, displayLog}, cc.Displays)

	assert.Equal(t, []string{"Some sliders were skipped!"}, notifier.titles)
}

func TestCanonicalConfig_LoadDefaults(t *testing.T) {
	cc, notifier := newTestConfig(t, "input: serial\n")

	require.NoError(t, cc.Load())

	require.Equal(t, 1, cc.SliderMapping.Len())

	definition, ok := cc.SliderMapping.Get(0)
	require.True(t, ok)
	assert.Equal(t, defaultSliderName, definition.Name)
	assert.Equal(t, float64(defaultSliderTrackWidth), definition.TrackWidth)

	assert.Equal(t, inputSerial, cc.Input)
	assert.Equal(t, defaultCOMPort, cc.ConnectionInfo.COMPort)
	assert.Equal(t, defaultBaudRate, cc.ConnectionInfo.BaudRate)
	assert.Equal(t, defaultUdpPort, cc.UdpConnectionInfo.UdpPort)
	assert.Equal(t, slider.FillSnap, cc.FillPolicy)
	assert.False(t, cc.ClickCommits)
	assert.Equal(t, defaultDisplays, cc.Displays)

	assert.Empty(t, notifier.titles)
}

func TestCanonicalConfig_LoadInvalidValues(t *testing.T) {
	cc, _ := newTestConfig(t, "input: carrier-pigeon\nfill_policy: wobbly\nudp_port: 70000\n")

	require.NoError(t, cc.Load())

	assert.Equal(t, inputSerial, cc.Input)
	assert.Equal(t, slider.FillSnap, cc.FillPolicy)
	assert.Equal(t, defaultUdpPort, cc.UdpConnectionInfo.UdpPort)
}

func TestCanonicalConfig_LoadFailures(t *testing.T) {
	type testCase struct {
		contents      string
		expectedTitle string
	}

	testCases := map[string]testCase{
		"missing-file": {
			contents:      "",
			expectedTitle: "Can't find configuration!",
		},
		"invalid-yaml": {
			contents:      "sliders: [\n",
			expectedTitle: "Invalid configuration!",
		},
	}

	for testName, testCase := range testCases {
		t.Run(testName, func(t *testing.T) {
			cc, notifier := newTestConfig(t, testCase.contents)

			assert.Error(t, cc.Load())
			assert.Equal(t, []string{testCase.expectedTitle}, notifier.titles)
		})
	}
}

func TestCanonicalConfig_LoadNoValidSliders(t *testing.T) {
	cc, _ := newTestConfig(t, "sliders:\n  0:\n    min: 3\n")

	assert.Error(t, cc.Load())
}

func TestCanonicalConfig_SubscribeToChanges(t *testing.T) {
	cc, _ := newTestConfig(t, "input: serial\n")

	changes := cc.SubscribeToChanges()

	go cc.onConfigReloaded()

	assert.True(t, <-changes)
}
