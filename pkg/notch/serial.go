package notch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"go.uber.org/zap"

	"github.com/notchctl/notch/pkg/notch/util"
)

// SerialIO provides a notch-aware abstraction layer to reading pointer events off a serial device
type SerialIO struct {
	pointerEventHub

	notch  *Notch
	logger *zap.SugaredLogger

	stopChannel chan bool
	connected   bool
	connOptions serial.OpenOptions
	conn        io.ReadWriteCloser
}

// NewSerialIO creates a SerialIO instance that uses the provided notch
// instance's connection info to establish communications with the pointer device
func NewSerialIO(notch *Notch, logger *zap.SugaredLogger) (*SerialIO, error) {
	logger = logger.Named("serial")

	sio := &SerialIO{
		notch:       notch,
		logger:      logger,
		stopChannel: make(chan bool),
		connected:   false,
		conn:        nil,
	}

	logger.Debug("Created serial i/o instance")

	// respond to config changes
	sio.setupOnConfigReload()

	return sio, nil
}

// Start attempts to connect to the pointer device
func (sio *SerialIO) Start() error {

	// don't allow multiple concurrent connections
	if sio.connected {
		sio.logger.Warn("Already connected, can't start another without closing first")
		return errors.New("serial: connection already active")
	}

	// set minimum read size according to platform (0 for windows, 1 for linux)
	// this prevents a rare bug on windows where serial reads get congested,
	// resulting in significant lag
	minimumReadSize := 0
	if util.Linux() {
		minimumReadSize = 1
	}

	sio.connOptions = serial.OpenOptions{
		PortName:        sio.notch.config.ConnectionInfo.COMPort,
		BaudRate:        uint(sio.notch.config.ConnectionInfo.BaudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: uint(minimumReadSize),
	}

	sio.logger.Debugw("Attempting serial connection",
		"comPort", sio.connOptions.PortName,
		"baudRate", sio.connOptions.BaudRate,
		"minReadSize", minimumReadSize)

	var err error
	sio.conn, err = serial.Open(sio.connOptions)
	if err != nil {
		sio.logger.Warnw("Failed to open serial connection", "error", err)
		return fmt.Errorf("open serial connection: %w", err)
	}

	namedLogger := sio.logger.Named(strings.ToLower(sio.connOptions.PortName))

	namedLogger.Infow("Connected", "conn", sio.conn)
	sio.connected = true

	// read lines or await a stop
	go func() {
		done := make(chan struct{})
		defer close(done)

		lineChannel := sio.readLine(namedLogger, sio.conn, done)

		for {
			select {
			case <-sio.stopChannel:
				sio.close(namedLogger)
				return
			case line, ok := <-lineChannel:
				if !ok {
					namedLogger.Warn("Serial connection lost")
					sio.close(namedLogger)
					return
				}

				sio.handleData(namedLogger, line, sio.notch.Verbose())
			}
		}
	}()

	return nil
}

// Stop signals us to shut down our serial connection, if one is active
func (sio *SerialIO) Stop() {
	if sio.connected {
		sio.logger.Debug("Shutting down serial connection")
		sio.stopChannel <- true
	} else {
		sio.logger.Debug("Not currently connected, nothing to stop")
	}
}

func (sio *SerialIO) setupOnConfigReload() {
	configReloadedChannel := sio.notch.config.SubscribeToChanges()

	const stopDelay = 50 * time.Millisecond

	go func() {
		for range configReloadedChannel {

			// if connection params have changed, attempt to stop and start the connection
			if sio.notch.config.ConnectionInfo.COMPort != sio.connOptions.PortName ||
				uint(sio.notch.config.ConnectionInfo.BaudRate) != sio.connOptions.BaudRate {

				sio.logger.Info("Detected change in connection parameters, attempting to renew connection")
				sio.Stop()

				// let the connection close
				<-time.After(stopDelay)

				if err := sio.Start(); err != nil {
					sio.logger.Warnw("Failed to renew connection after parameter change", "error", err)
				} else {
					sio.logger.Debug("Renewed connection successfully")
				}
			}
		}
	}()
}

func (sio *SerialIO) close(logger *zap.SugaredLogger) {
	if err := sio.conn.Close(); err != nil {
		logger.Warnw("Failed to close serial connection", "error", err)
	} else {
		logger.Debug("Serial connection closed")
	}

	sio.conn = nil
	sio.connected = false
}

func (sio *SerialIO) readLine(logger *zap.SugaredLogger, reader io.Reader, done <-chan struct{}) chan string {
	ch := make(chan string)

	go func() {
		defer close(ch)

		bufferedReader := bufio.NewReader(reader)

		for {
			line, err := bufferedReader.ReadString('\n')
			if err != nil {
				if sio.notch.Verbose() {
					logger.Warnw("Failed to read line from serial", "error", err, "line", line)
				}

				return
			}

			// the read loop may be gone already
			select {
			case ch <- line:
			case <-done:
				return
			}
		}
	}()

	return ch
}
