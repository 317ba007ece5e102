// Package h4 carries H4 framed HCI packets over a byte stream: a UART attached
// controller or a TCP bridge to one.
package h4

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/wiimote"
)

// H4 packet indicators.
const (
	commandPacket = 0x01
	aclPacket     = 0x02
	eventPacket   = 0x04
)

const (
	rxQueueSize = 64
	readTimeout = time.Second
	rxChunkSize = 512
)

// h4 reassembles packets from a stream. Each Read returns one whole packet.
type h4 struct {
	rwc io.ReadWriteCloser
	wmu sync.Mutex

	// eofIsIdle treats io.EOF from rwc as an empty read, as a serial port with
	// an inter-character timeout reports it.
	eofIsIdle bool

	frame   *frame
	rxQueue chan []byte

	done chan struct{}
	cmu  sync.Mutex

	logger wiimote.Logger
}

func newH4(rwc io.ReadWriteCloser, eofIsIdle bool, logger wiimote.Logger) *h4 {
	h := &h4{
		rwc:       rwc,
		eofIsIdle: eofIsIdle,
		rxQueue:   make(chan []byte, rxQueueSize),
		done:      make(chan struct{}),
		logger:    logger,
	}
	h.frame = newFrame(h.rxQueue)

	go h.rxLoop()

	return h
}

// Read returns the next packet. It returns 0, nil if none arrived within a
// second.
func (h *h4) Read(p []byte) (int, error) {
	select {
	case <-h.done:
		return 0, io.EOF

	case t, ok := <-h.rxQueue:
		if !ok {
			return 0, io.EOF
		}
		if len(p) < len(t) {
			return 0, errors.Errorf("buffer too small: %d < %d", len(p), len(t))
		}
		return copy(p, t), nil

	case <-time.After(readTimeout):
		return 0, nil
	}
}

func (h *h4) Write(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.wmu.Lock()
	defer h.wmu.Unlock()
	n, err := h.rwc.Write(p)
	return n, errors.Wrap(err, "can't write h4")
}

func (h *h4) Close() error {
	h.cmu.Lock()
	defer h.cmu.Unlock()

	select {
	case <-h.done:
		return nil

	default:
		close(h.done)
		h.logger.Info("closing h4")
		return errors.Wrap(h.rwc.Close(), "can't close h4")
	}
}

func (h *h4) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *h4) rxLoop() {
	defer close(h.rxQueue)

	tmp := make([]byte, rxChunkSize)
	for h.isOpen() {
		n, err := h.rwc.Read(tmp)
		switch {
		case err == io.EOF && !h.eofIsIdle:
			h.logger.Warn("h4 stream closed")
			return

		case err != nil && !isIdle(err):
			if !h.isOpen() {
				return
			}
			h.logger.Debugf("h4 read: %v", err)
		}

		if n > 0 {
			h.frame.Assemble(tmp[:n])
		}
	}
}

// isIdle reports read errors that only mean nothing arrived in time.
func isIdle(err error) bool {
	if err == io.EOF {
		return true
	}
	t, ok := err.(interface{ Timeout() bool })
	return ok && t.Timeout()
}
