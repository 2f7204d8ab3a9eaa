// Package notch provides a daemon that turns pointer input from a serial
// device or the network into step-quantized slider values
package notch

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/notchctl/notch/pkg/notch/util"
)

const (

	// when this is set to anything, notch won't use a tray icon
	envNoTray = "NOTCH_NO_TRAY_ICON"
)

// Notch is the main entity managing access to all sub-components
type Notch struct {
	logger   *zap.SugaredLogger
	notifier Notifier
	config   *CanonicalConfig
	pointers PointerSource
	bank     *sliderBank
	tray     *trayDisplay

	stopChannel chan bool
	version     string
	verbose     bool
}

// NewNotch creates a Notch instance that reads its configuration from configDir
func NewNotch(logger *zap.SugaredLogger, configDir string, verbose bool) (*Notch, error) {
	logger = logger.Named("notch")

	notifier, err := NewToastNotifier(logger)
	if err != nil {
		logger.Errorw("Failed to create ToastNotifier", "error", err)
		return nil, fmt.Errorf("create new ToastNotifier: %w", err)
	}

	config, err := NewConfig(logger, notifier, configDir)
	if err != nil {
		logger.Errorw("Failed to create Config", "error", err)
		return nil, fmt.Errorf("create new Config: %w", err)
	}

	n := &Notch{
		logger:      logger,
		notifier:    notifier,
		config:      config,
		stopChannel: make(chan bool),
		verbose:     verbose,
	}

	logger.Debug("Created notch instance")

	return n, nil
}

// Initialize sets up components and starts to run in the background
func (n *Notch) Initialize() error {
	n.logger.Debug("Initializing")

	// load the config for the first time
	if err := n.config.Load(); err != nil {
		n.logger.Errorw("Failed to load config during initialization", "error", err)
		return fmt.Errorf("load config during init: %w", err)
	}

	_, noTraySet := os.LookupEnv(envNoTray)
	if !noTraySet {
		n.tray = newTrayDisplay()
	}

	pointers, err := n.newPointerSource()
	if err != nil {
		n.logger.Errorw("Failed to create pointer source", "input", n.config.Input, "error", err)
		return fmt.Errorf("create pointer source: %w", err)
	}

	n.pointers = pointers

	displays := newDisplays(n.logger, color.Output, n.tray)

	bank, err := newSliderBank(n.logger, displays.sinksFor)
	if err != nil {
		n.logger.Errorw("Failed to create slider bank", "error", err)
		return fmt.Errorf("create new slider bank: %w", err)
	}

	if err := bank.load(bankSettingsFromConfig(n.config)); err != nil {
		n.logger.Errorw("Failed to load sliders", "error", err)
		return fmt.Errorf("load sliders during init: %w", err)
	}

	n.bank = bank

	// decide whether to run with/without tray
	if noTraySet {

		n.logger.Debugw("Running without tray icon", "reason", "envvar set")

		// run in main thread while waiting on ctrl+C
		n.setupInterruptHandler()
		n.run()

	} else {
		n.setupInterruptHandler()
		n.initializeTray(n.run)
	}

	return nil
}

// SetVersion causes notch to add a version string to its tray menu if called before Initialize
func (n *Notch) SetVersion(version string) {
	n.version = version
}

// Verbose returns a boolean indicating whether notch is running in verbose mode
func (n *Notch) Verbose() bool {
	return n.verbose
}

func (n *Notch) newPointerSource() (PointerSource, error) {
	if n.config.Input == inputUdp {
		return NewUdpIO(n, n.logger)
	}

	return NewSerialIO(n, n.logger)
}

func (n *Notch) setupInterruptHandler() {
	interruptChannel := util.SetupCloseHandler()

	go func() {
		signal := <-interruptChannel
		n.logger.Debugw("Interrupted", "signal", signal)
		n.signalStop()
	}()
}

func (n *Notch) run() {
	defer n.recoverFromPanic()

	n.logger.Info("Run loop starting")

	// watch the config file for changes
	go n.config.WatchConfigFileChanges()

	// every slider mutation happens on the bank's goroutine from here on
	n.bank.start(n.pointers.SubscribeToPointerEvents(), n.config.SubscribeToChanges(), func() bankSettings {
		return bankSettingsFromConfig(n.config)
	})

	// start listening for pointer input for the first time
	go func() {
		if err := n.pointers.Start(); err != nil {
			n.logger.Warnw("Failed to start first-time pointer input", "input", n.config.Input, "error", err)
			n.handleStartError(err)
		}
	}()

	// wait until stopped (gracefully)
	<-n.stopChannel
	n.logger.Debug("Stop channel signaled, terminating")

	n.stop()

	// exit with 0
	os.Exit(0)
}

func (n *Notch) handleStartError(err error) {
	if n.config.Input == inputUdp {
		n.notifier.Notify(fmt.Sprintf("Can't listen on UDP port %d!", n.config.UdpConnectionInfo.UdpPort),
			"Make sure no other program (or notch instance) is using this port.")

		n.signalStop()
		return
	}

	comPort := n.config.ConnectionInfo.COMPort

	// If the port is busy, that's because something else is connected - notify and quit
	if errors.Is(err, os.ErrPermission) {
		n.logger.Warnw("Serial port seems busy, notifying user and closing", "comPort", comPort)

		n.notifier.Notify(fmt.Sprintf("Can't connect to %s!", comPort),
			"This serial port is busy, make sure to close any serial monitor or other notch instance.")

		n.signalStop()

		// also notify if the COM port they gave isn't found, maybe their config is wrong
	} else if errors.Is(err, os.ErrNotExist) {
		n.logger.Warnw("Provided COM port seems wrong, notifying user and closing", "comPort", comPort)

		n.notifier.Notify(fmt.Sprintf("Can't connect to %s!", comPort),
			"This serial port doesn't exist, check your configuration and make sure it's set correctly.")

		n.signalStop()
	}
}

func (n *Notch) signalStop() {
	n.logger.Debug("Signalling stop channel")
	n.stopChannel <- true
}

func (n *Notch) stop() {
	n.logger.Info("Stopping")

	n.config.StopWatchingConfigFile()
	n.pointers.Stop()
	n.bank.stop()

	if n.tray != nil {
		n.stopTray()
	}

	// attempt to sync on exit - this won't necessarily work but can't harm
	n.logger.Sync()
}
