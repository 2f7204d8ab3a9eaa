package notch

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/notchctl/notch/pkg/notch/slider"
	"github.com/notchctl/notch/pkg/notch/util"
)

// CanonicalConfig provides application-wide access to configuration fields,
// as well as loading/file watching logic for notch's configuration file
type CanonicalConfig struct {
	SliderMapping *sliderMap

	Input string

	ConnectionInfo struct {
		COMPort  string
		BaudRate int
	}

	UdpConnectionInfo struct {
		UdpPort int
	}

	FillPolicy   slider.FillPolicy
	ClickCommits bool
	Displays     []string

	logger             *zap.SugaredLogger
	notifier           Notifier
	stopWatcherChannel chan bool

	reloadConsumers []chan bool

	configDir  string
	userConfig *viper.Viper
}

const (
	userConfigName = "config"
	configType     = "yaml"

	configKeySliders      = "sliders"
	configKeyInput        = "input"
	configKeyCOMPort      = "com_port"
	configKeyBaudRate     = "baud_rate"
	configKeyUdpPort      = "udp_port"
	configKeyFillPolicy   = "fill_policy"
	configKeyClickCommits = "click_commits"
	configKeyDisplays     = "displays"

	inputSerial = "serial"
	inputUdp    = "udp"

	displayLog      = "log"
	displayTerminal = "terminal"
	displayTray     = "tray"

	defaultCOMPort  = "COM4"
	defaultBaudRate = 9600
	defaultUdpPort  = 16990
)

var defaultDisplays = []string{displayLog}

var knownDisplays = []string{displayLog, displayTerminal, displayTray}

// NewConfig creates a config instance for the notch object and sets up a viper instance
// for the config file found in configDir
func NewConfig(logger *zap.SugaredLogger, notifier Notifier, configDir string) (*CanonicalConfig, error) {
	logger = logger.Named("config")

	cc := &CanonicalConfig{
		logger:             logger,
		notifier:           notifier,
		reloadConsumers:    []chan bool{},
		stopWatcherChannel: make(chan bool),
		configDir:          configDir,
	}

	userConfig := viper.New()
	userConfig.SetConfigName(userConfigName)
	userConfig.SetConfigType(configType)
	userConfig.AddConfigPath(configDir)

	userConfig.SetDefault(configKeySliders, map[string]interface{}{})
	userConfig.SetDefault(configKeyInput, inputSerial)
	userConfig.SetDefault(configKeyCOMPort, defaultCOMPort)
	userConfig.SetDefault(configKeyBaudRate, defaultBaudRate)
	userConfig.SetDefault(configKeyUdpPort, defaultUdpPort)
	userConfig.SetDefault(configKeyFillPolicy, slider.FillSnap.String())
	userConfig.SetDefault(configKeyClickCommits, false)
	userConfig.SetDefault(configKeyDisplays, defaultDisplays)

	cc.userConfig = userConfig

	logger.Debugw("Created config instance", "configDir", configDir)

	return cc, nil
}

// Path returns the path of the user config file
func (cc *CanonicalConfig) Path() string {
	return filepath.Join(cc.configDir, userConfigName+"."+configType)
}

// Load reads notch's config file from disk and tries to parse it
func (cc *CanonicalConfig) Load() error {
	configPath := cc.Path()
	cc.logger.Debugw("Loading config", "path", configPath)

	// make sure it exists
	if !util.FileExists(configPath) {
		cc.logger.Warnw("Config file not found", "path", configPath)
		cc.notifier.Notify("Can't find configuration!",
			fmt.Sprintf("%s must be in %s. Please re-launch", filepath.Base(configPath), cc.configDir))

		return fmt.Errorf("config file doesn't exist: %s", configPath)
	}

	if err := cc.userConfig.ReadInConfig(); err != nil {
		cc.logger.Warnw("Viper failed to read user config", "error", err)

		// if the error is yaml-format-related, show a sensible error. otherwise, show 'em to the logs
		if strings.Contains(err.Error(), "yaml:") {
			cc.notifier.Notify("Invalid configuration!",
				fmt.Sprintf("Please make sure %s is in a valid YAML format.", filepath.Base(configPath)))
		} else {
			cc.notifier.Notify("Error loading configuration!", "Please check notch's logs for more details.")
		}

		return fmt.Errorf("read user config: %w", err)
	}

	// canonize the configuration with viper's helpers
	if err := cc.populateFromVipers(); err != nil {
		cc.logger.Warnw("Failed to populate config fields", "error", err)
		return fmt.Errorf("populate config fields: %w", err)
	}

	cc.logger.Info("Loaded config successfully")
	cc.logger.Infow("Config values",
		"sliderMapping", cc.SliderMapping,
		"input", cc.Input,
		"connectionInfo", cc.ConnectionInfo,
		"udpConnectionInfo", cc.UdpConnectionInfo,
		"fillPolicy", cc.FillPolicy,
		"clickCommits", cc.ClickCommits,
		"displays", cc.Displays)

	return nil
}

// SubscribeToChanges allows external components to receive updates when the config is reloaded
func (cc *CanonicalConfig) SubscribeToChanges() chan bool {
	c := make(chan bool)
	cc.reloadConsumers = append(cc.reloadConsumers, c)

	return c
}

// WatchConfigFileChanges starts watching for configuration file changes
// and attempts reloading the config when they happen
func (cc *CanonicalConfig) WatchConfigFileChanges() {
	cc.logger.Debugw("Starting to watch user config file for changes", "path", cc.Path())

	const (
		minTimeBetweenReloadAttempts = time.Millisecond * 500
		delayBetweenEventAndReload   = time.Millisecond * 50
	)

	lastAttemptedReload := time.Now()

	// establish watch using viper as opposed to doing it ourselves, though our internal cooldown is still required
	cc.userConfig.WatchConfig()
	cc.userConfig.OnConfigChange(func(event fsnotify.Event) {

		// when we get a write event...
		if event.Op&fsnotify.Write == fsnotify.Write {

			now := time.Now()

			// ... check if it's not a duplicate (many editors will write to a file twice)
			if lastAttemptedReload.Add(minTimeBetweenReloadAttempts).Before(now) {

				// and attempt reload if appropriate
				cc.logger.Debugw("Config file modified, attempting reload", "event", event)

				// wait a bit to let the editor actually flush the new file contents to disk
				<-time.After(delayBetweenEventAndReload)

				if err := cc.Load(); err != nil {
					cc.logger.Warnw("Failed to reload config file", "error", err)
				} else {
					cc.logger.Info("Reloaded config successfully")
					cc.notifier.Notify("Configuration reloaded!", "Your changes have been applied.")

					cc.onConfigReloaded()
				}

				// don't forget to update the time
				lastAttemptedReload = now
			}
		}
	})

	// wait till they stop us
	<-cc.stopWatcherChannel
	cc.logger.Debug("Stopping user config file watcher")
	cc.userConfig.OnConfigChange(nil)
}

// StopWatchingConfigFile signals our filesystem watcher to stop
func (cc *CanonicalConfig) StopWatchingConfigFile() {
	cc.stopWatcherChannel <- true
}

func (cc *CanonicalConfig) populateFromVipers() error {
	sliderMapping, err := sliderMapFromConfig(cc.logger, cc.userConfig.GetStringMap(configKeySliders))
	if err != nil {
		return fmt.Errorf("parse slider mapping: %w", err)
	}

	cc.SliderMapping = sliderMapping

	if skipped := sliderMapping.Skipped(); len(skipped) > 0 {
		cc.notifier.Notify("Some sliders were skipped!",
			fmt.Sprintf("Check the entries for sliders %s in %s.", strings.Join(skipped, ", "), filepath.Base(cc.Path())))
	}

	// get the rest of the config fields - viper saves us a lot of effort here
	cc.Input = strings.ToLower(cc.userConfig.GetString(configKeyInput))
	if cc.Input != inputSerial && cc.Input != inputUdp {
		cc.logger.Warnw("Invalid input specified, using default value",
			"key", configKeyInput,
			"invalidValue", cc.Input,
			"defaultValue", inputSerial)

		cc.Input = inputSerial
	}

	cc.ConnectionInfo.COMPort = cc.userConfig.GetString(configKeyCOMPort)

	cc.ConnectionInfo.BaudRate = cc.userConfig.GetInt(configKeyBaudRate)
	if cc.ConnectionInfo.BaudRate <= 0 {
		cc.logger.Warnw("Invalid baud rate specified, using default value",
			"key", configKeyBaudRate,
			"invalidValue", cc.ConnectionInfo.BaudRate,
			"defaultValue", defaultBaudRate)

		cc.ConnectionInfo.BaudRate = defaultBaudRate
	}

	cc.UdpConnectionInfo.UdpPort = cc.userConfig.GetInt(configKeyUdpPort)
	if cc.UdpConnectionInfo.UdpPort <= 0 || cc.UdpConnectionInfo.UdpPort > 65535 {
		cc.logger.Warnw("Invalid UDP port specified, using default value",
			"key", configKeyUdpPort,
			"invalidValue", cc.UdpConnectionInfo.UdpPort,
			"defaultValue", defaultUdpPort)

		cc.UdpConnectionInfo.UdpPort = defaultUdpPort
	}

	fillPolicy, err := slider.ParseFillPolicy(cc.userConfig.GetString(configKeyFillPolicy))
	if err != nil {
		cc.logger.Warnw("Invalid fill policy specified, using default value",
			"key", configKeyFillPolicy,
			"error", err,
			"defaultValue", slider.FillSnap)
	}

	cc.FillPolicy = fillPolicy
	cc.ClickCommits = cc.userConfig.GetBool(configKeyClickCommits)
	cc.Displays = cc.displaysFromConfig(cc.userConfig.GetStringSlice(configKeyDisplays))

	cc.logger.Debug("Populated config fields from vipers")

	return nil
}

// displaysFromConfig normalizes the configured display names, dropping empty, unknown and duplicate ones
func (cc *CanonicalConfig) displaysFromConfig(configured []string) []string {
	names := funk.Map(configured, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	}).([]string)

	names = funk.UniqString(funk.FilterString(names, func(s string) bool {
		if s == "" {
			return false
		}

		if !funk.ContainsString(knownDisplays, s) {
			cc.logger.Warnw("Ignoring unknown display", "key", configKeyDisplays, "display", s)
			return false
		}

		return true
	}))

	return names
}

func (cc *CanonicalConfig) onConfigReloaded() {
	cc.logger.Debug("Notifying consumers about configuration reload")

	for _, consumer := range cc.reloadConsumers {
		consumer <- true
	}
}
