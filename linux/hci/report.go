package hci

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rigado/wiimote"
	"github.com/rigado/wiimote/balance"
	"github.com/rigado/wiimote/linux/hci/cmd"
)

// HID transaction headers.
const (
	hidInput  = 0xA1
	hidOutput = 0xA2
)

// Report IDs.
const (
	reportRumble      = 0x10
	reportLEDs        = 0x11
	reportMode        = 0x12
	reportWriteMemory = 0x16
	reportReadMemory  = 0x17
	reportStatus      = 0x20
	reportReadData    = 0x21
	reportAck         = 0x22
)

// Data reporting modes.
const (
	modeCoreButtons  = 0x30
	modeButtonsExt8  = 0x32
	modeButtonsExt19 = 0x34
)

const (
	rumbleBit            = 0x01
	continuousReporting  = 0x04
	addressSpaceRegister = 0x04
	writeMemoryMax       = 16
)

// link is the per-connection state above L2CAP.
type link struct {
	handle uint16
	addr   wiimote.Addr
	rumble bool

	// configured is set once both hid channels are configured.
	configured bool

	query       queryState
	extension   []byte
	pendingCal  *balance.Calibration
	calibration *balance.Calibration

	logger wiimote.Logger
}

func newLink(handle uint16, addr wiimote.Addr, parent wiimote.Logger) *link {
	return &link{
		handle: handle,
		addr:   addr,
		logger: parent.ChildLogger(map[string]interface{}{"handle": fmt.Sprintf("%04X", handle)}),
	}
}

// link returns the state of a handle, creating it for links whose connection
// complete event was not seen.
func (h *HCI) link(handle uint16) *link {
	l, ok := h.links[handle]
	if !ok {
		l = newLink(handle, wiimote.Addr{}, h.logger)
		h.links[handle] = l
	}
	return l
}

func (h *HCI) linkByAddr(a wiimote.Addr) *link {
	for _, l := range h.links {
		if l.addr == a {
			return l
		}
	}
	return nil
}

// handleChannelData forwards an input report on the interrupt channel to the
// host. Once the link is configured the extension query observes it too.
func (h *HCI) handleChannelData(c *channel, b []byte) error {
	if c.psm != psmHIDInterrupt || len(b) == 0 || b[0] != hidInput {
		h.logger.Debugf("%04X: cid %04X data [% X]", c.handle, c.localCID, b)
		return nil
	}

	l := h.link(c.handle)
	var err error
	if l.configured {
		err = l.observeExtension(b, h)
	}

	r := make([]byte, len(b))
	copy(r, b)
	h.emit(wiimote.Event{Type: wiimote.EventReport, Handle: c.handle, Addr: l.addr, Data: r})

	return errors.Wrapf(err, "%04X", c.handle)
}

// output sends an output report on the link's interrupt channel. Except for
// the rumble report itself, the first data byte carries the rumble bit.
func (h *HCI) output(handle uint16, id uint8, data ...byte) error {
	c := h.channels.byPSM(handle, psmHIDInterrupt)
	if c == nil || !c.bound() {
		return errors.Wrapf(ErrNotConnected, "handle %04X", handle)
	}

	b := make([]byte, 2, 2+len(data))
	b[0] = hidOutput
	b[1] = id
	b = append(b, data...)
	if id != reportRumble && len(data) > 0 && h.link(handle).rumble {
		b[2] |= rumbleBit
	}

	h.sendACL(handle, c.remoteCID, b)
	return nil
}

func (h *HCI) writeMemory(handle uint16, addr uint32, data []byte) error {
	if len(data) == 0 || len(data) > writeMemoryMax {
		return fmt.Errorf("write of %d bytes, want 1..%d", len(data), writeMemoryMax)
	}
	p := make([]byte, 5+writeMemoryMax)
	p[0] = addressSpaceRegister
	p[1] = byte(addr >> 16)
	p[2] = byte(addr >> 8)
	p[3] = byte(addr)
	p[4] = byte(len(data))
	copy(p[5:], data)
	return h.output(handle, reportWriteMemory, p...)
}

func (h *HCI) readMemory(handle uint16, addr uint32, size uint16) error {
	return h.output(handle, reportReadMemory,
		addressSpaceRegister,
		byte(addr>>16), byte(addr>>8), byte(addr),
		byte(size>>8), byte(size))
}

func (h *HCI) setReportingMode(handle uint16, mode uint8, continuous bool) error {
	var tt byte
	if continuous {
		tt = continuousReporting
	}
	return h.output(handle, reportMode, tt, mode)
}

// hostCommand runs f with the session locked, then flushes what it queued.
func (h *HCI) hostCommand(f func() error) error {
	if !h.isOpen() {
		return ErrClosed
	}

	h.mu.Lock()
	err := f()
	h.mu.Unlock()

	h.SendAvailable()
	h.flushEvents()
	return err
}

// SetLED lights the player LEDs of a link; bit 0 of mask is LED 1.
func (h *HCI) SetLED(handle uint16, mask uint8) error {
	return h.hostCommand(func() error {
		return h.output(handle, reportLEDs, mask<<4)
	})
}

// SetRumble switches the rumble motor of a link.
func (h *HCI) SetRumble(handle uint16, on bool) error {
	return h.hostCommand(func() error {
		var v byte
		if on {
			v = rumbleBit
		}
		if err := h.output(handle, reportRumble, v); err != nil {
			return err
		}
		h.link(handle).rumble = on
		return nil
	})
}

// SetReportingMode selects the input report format of a link.
func (h *HCI) SetReportingMode(handle uint16, mode uint8, continuous bool) error {
	return h.hostCommand(func() error {
		return h.setReportingMode(handle, mode, continuous)
	})
}

// Disconnect terminates a link. The link is released when the controller
// reports the disconnection.
func (h *HCI) Disconnect(handle uint16) error {
	return h.hostCommand(func() error {
		if _, ok := h.links[handle]; !ok {
			return errors.Wrapf(ErrNotConnected, "handle %04X", handle)
		}
		h.sendCommand(&cmd.Disconnect{ConnectionHandle: handle, Reason: disconnectReason})
		return nil
	})
}

// Calibration returns the balance board calibration read from a link.
func (h *HCI) Calibration(handle uint16) (balance.Calibration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.links[handle]
	if !ok || l.calibration == nil {
		return balance.Calibration{}, errors.Wrapf(ErrNoCalibration, "handle %04X", handle)
	}
	return *l.calibration, nil
}

// BalanceWeight converts a balance board input report of a link into kg per
// sensor, ordered TopRight, BottomRight, TopLeft, BottomLeft.
func (h *HCI) BalanceWeight(handle uint16, report []byte) ([balance.NumPositions]float32, error) {
	cal, err := h.Calibration(handle)
	if err != nil {
		return [balance.NumPositions]float32{}, err
	}
	return cal.Weights(report)
}
