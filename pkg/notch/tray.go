package notch

import (
	"github.com/getlantern/systray"

	"github.com/notchctl/notch/pkg/notch/util"
)

func (n *Notch) initializeTray(onDone func()) {
	logger := n.logger.Named("tray")

	onReady := func() {
		logger.Debug("Tray instance ready")

		systray.SetTitle("notch")
		n.tray.markReady()

		editConfig := systray.AddMenuItem("Edit configuration", "Open config file with notepad")

		if n.version != "" {
			systray.AddSeparator()
			versionInfo := systray.AddMenuItem(n.version, "")
			versionInfo.Disable()
		}

		systray.AddSeparator()
		quit := systray.AddMenuItem("Quit", "Stop notch and quit")

		// wait on things to happen
		go func() {
			for {
				select {

				// quit
				case <-quit.ClickedCh:
					logger.Info("Quit menu item clicked, stopping")

					n.signalStop()

				// edit config
				case <-editConfig.ClickedCh:
					logger.Info("Edit config menu item clicked, opening config for editing")

					editor := "notepad.exe"
					if util.Linux() {
						editor = "gedit"
					}

					if err := util.OpenExternal(logger, editor, n.config.Path()); err != nil {
						logger.Warnw("Failed to open config file for editing", "error", err)
					}
				}
			}
		}()

		// actually start the main runtime
		onDone()
	}

	onExit := func() {
		logger.Debug("Tray exited")
	}

	// start the tray icon
	logger.Debug("Running in tray")
	systray.Run(onReady, onExit)
}

func (n *Notch) stopTray() {
	n.logger.Debug("Quitting tray")
	systray.Quit()
}
