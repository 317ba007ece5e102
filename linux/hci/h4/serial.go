package h4

import (
	"io"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"github.com/rigado/wiimote"
)

// flushDelay is how long a freshly opened port is drained of stale bytes.
const flushDelay = 250 * time.Millisecond

// DefaultSerialOptions returns the settings of a typical H4 UART controller.
func DefaultSerialOptions() serial.OpenOptions {
	return serial.OpenOptions{
		PortName:              "/dev/ttyACM0",
		BaudRate:              1000000,
		DataBits:              8,
		StopBits:              1,
		RTSCTSFlowControl:     true,
		InterCharacterTimeout: 100,
		MinimumReadSize:       0,
	}
}

// NewSerial opens an H4 transport on a serial port.
func NewSerial(opts serial.OpenOptions) (io.ReadWriteCloser, error) {
	// reads must time out so Close can stop the rx loop
	opts.MinimumReadSize = 0
	if opts.InterCharacterTimeout == 0 {
		opts.InterCharacterTimeout = 100
	}

	logger := wiimote.GetLogger().ChildLogger(map[string]interface{}{"mod": "h4", "port": opts.PortName})
	logger.Infof("opening %s at %d baud", opts.PortName, opts.BaudRate)

	sp, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", opts.PortName)
	}

	if err := flush(sp); err != nil {
		sp.Close()
		return nil, err
	}

	return newH4(sp, true, logger), nil
}

// flush discards whatever the controller sent before we attached.
func flush(sp io.Reader) error {
	b := make([]byte, 2048)
	deadline := time.Now().Add(flushDelay)
	for time.Now().Before(deadline) {
		n, err := sp.Read(b)
		if err != nil && !isIdle(err) {
			return errors.Wrap(err, "can't flush serial port")
		}
		if n == 0 {
			return nil
		}
	}
	return nil
}
