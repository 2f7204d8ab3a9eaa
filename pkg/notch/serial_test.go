package notch

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// endlessLines never runs out of pointer lines, like a device that keeps streaming
type endlessLines struct{}

func (endlessLines) Read(p []byte) (int, error) {
	return copy(p, "0:move:1\n"), nil
}

func TestSerialIO_readLine(t *testing.T) {
	sio := &SerialIO{notch: &Notch{}, logger: zap.S()}

	lines := sio.readLine(zap.S(), strings.NewReader("0:press\r\n0:move:30\n"), make(chan struct{}))

	received := []string{}
	for line := range lines {
		received = append(received, line)
	}

	assert.Equal(t, []string{"0:press\r\n", "0:move:30\n"}, received)
}

func TestSerialIO_readLineStopsWhenDone(t *testing.T) {
	sio := &SerialIO{notch: &Notch{}, logger: zap.S()}
	done := make(chan struct{})

	lines := sio.readLine(zap.S(), endlessLines{}, done)
	require.Equal(t, "0:move:1\n", <-lines)

	close(done)

	// the reader must wind down instead of blocking on a send nobody receives
	closed := make(chan struct{})
	go func() {
		for range lines {
		}

		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("line reader kept running after done was closed")
	}
}
