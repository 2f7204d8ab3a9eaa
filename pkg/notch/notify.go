package notch

import (
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// Notifier provides generic notification sending
type Notifier interface {
	Notify(title string, message string)
}

// ToastNotifier provides desktop notifications through the platform's notification service
type ToastNotifier struct {
	logger *zap.SugaredLogger

	// swapped out in tests
	send func(title string, message string, appIcon string) error
}

// NewToastNotifier creates a new ToastNotifier
func NewToastNotifier(logger *zap.SugaredLogger) (*ToastNotifier, error) {
	logger = logger.Named("notifier")
	tn := &ToastNotifier{
		logger: logger,
		send:   beeep.Notify,
	}

	logger.Debug("Created toast notifier instance")

	return tn, nil
}

// Notify sends a desktop notification. Failures are only logged
func (tn *ToastNotifier) Notify(title string, message string) {
	tn.logger.Infow("Sending toast notification", "title", title, "message", message)

	// notch ships without an icon, the platform default is used
	if err := tn.send(title, message, ""); err != nil {
		tn.logger.Errorw("Failed to send toast notification", "error", err)
	}
}
