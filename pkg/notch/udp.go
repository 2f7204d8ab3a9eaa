package notch

import (
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// UdpIO provides a notch-aware abstraction layer to receiving pointer events over UDP
type UdpIO struct {
	pointerEventHub

	notch  *Notch
	logger *zap.SugaredLogger

	stopChannel chan bool
	port        int

	// guards connection and done, the read loop clears them when it exits
	lock       sync.Locker
	connection *net.UDPConn
	done       chan struct{}
}

const udpPacketSize = 4096

// NewUdpIO creates a UdpIO instance that uses the provided notch
// instance's connection info to listen for pointer events
func NewUdpIO(notch *Notch, logger *zap.SugaredLogger) (*UdpIO, error) {
	logger = logger.Named("udp")

	udpio := &UdpIO{
		notch:       notch,
		logger:      logger,
		stopChannel: make(chan bool),
		lock:        &sync.Mutex{},
	}

	logger.Debug("Created UDP i/o instance")

	// respond to config changes
	udpio.setupOnConfigReload()

	return udpio, nil
}

// Start creates a UDP listener server
func (udpio *UdpIO) Start() error {
	udpio.lock.Lock()
	defer udpio.lock.Unlock()

	if udpio.connection != nil {
		udpio.logger.Warn("Already listening, can't start another without closing first")
		return fmt.Errorf("udp: listener already active on port %d", udpio.port)
	}

	udpio.port = udpio.notch.config.UdpConnectionInfo.UdpPort

	s, err := net.ResolveUDPAddr("udp4", fmt.Sprintf(":%d", udpio.port))
	if err != nil {
		udpio.logger.Warnw("Failed to resolve UDP address", "error", err)
		return fmt.Errorf("resolve udp address: %w", err)
	}

	connection, err := net.ListenUDP("udp4", s)
	if err != nil {
		udpio.logger.Warnw("Failed to start UDP listener", "error", err)
		return fmt.Errorf("start udp listener: %w", err)
	}

	done := make(chan struct{})

	udpio.connection = connection
	udpio.done = done

	namedLogger := udpio.logger.Named(fmt.Sprintf(":%d", udpio.port))
	namedLogger.Infow("Listening", "addr", connection.LocalAddr())

	// read packets or await a stop
	go func() {
		defer close(done)

		packetChannel := udpio.readPacket(namedLogger, connection, done)

		for {
			select {
			case <-udpio.stopChannel:
				udpio.close(namedLogger)
				return
			case packet, ok := <-packetChannel:
				if !ok {
					namedLogger.Warn("UDP listener lost")
					udpio.close(namedLogger)
					return
				}

				udpio.handleData(namedLogger, packet, udpio.notch.Verbose())
			}
		}
	}()

	return nil
}

// Stop signals us to shut down our UDP listener, if one is active
func (udpio *UdpIO) Stop() {
	udpio.lock.Lock()
	done := udpio.done
	udpio.lock.Unlock()

	if done == nil {
		udpio.logger.Debug("Not currently listening, nothing to stop")
		return
	}

	udpio.logger.Debug("Shutting down UDP listener")

	// the read loop may have exited on its own in the meantime
	select {
	case udpio.stopChannel <- true:
	case <-done:
	}
}

// listening reports whether a listener is currently open
func (udpio *UdpIO) listening() bool {
	udpio.lock.Lock()
	defer udpio.lock.Unlock()

	return udpio.connection != nil
}

func (udpio *UdpIO) readPacket(logger *zap.SugaredLogger, connection *net.UDPConn, done <-chan struct{}) chan string {
	packetChannel := make(chan string)

	go func() {
		defer close(packetChannel)

		for {
			packet := make([]byte, udpPacketSize)

			bytesRead, _, err := connection.ReadFromUDP(packet)
			if err != nil {
				if udpio.notch.Verbose() {
					logger.Warnw("Failed to read UDP packet", "error", err)
				}

				return
			}

			// the read loop may be gone already
			select {
			case packetChannel <- string(packet[:bytesRead]):
			case <-done:
				return
			}
		}
	}()

	return packetChannel
}

func (udpio *UdpIO) close(logger *zap.SugaredLogger) {
	udpio.lock.Lock()
	defer udpio.lock.Unlock()

	if err := udpio.connection.Close(); err != nil {
		logger.Debugw("UDP listener already closed", "error", err)
	} else {
		logger.Debug("UDP listener closed")
	}

	udpio.connection = nil
	udpio.done = nil
}

func (udpio *UdpIO) setupOnConfigReload() {
	configReloadedChannel := udpio.notch.config.SubscribeToChanges()

	const stopDelay = 50 * time.Millisecond

	go func() {
		for range configReloadedChannel {
			if !udpio.listening() || udpio.notch.config.UdpConnectionInfo.UdpPort == udpio.port {
				continue
			}

			udpio.logger.Info("Detected change in UDP port, attempting to renew listener")
			udpio.Stop()

			// let the listener close
			<-time.After(stopDelay)

			if err := udpio.Start(); err != nil {
				udpio.logger.Warnw("Failed to renew listener after port change", "error", err)
			} else {
				udpio.logger.Debug("Renewed listener successfully")
			}
		}
	}()
}
