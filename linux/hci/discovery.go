package hci

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rigado/wiimote"
	"github.com/rigado/wiimote/linux/hci/cmd"
	"github.com/rigado/wiimote/linux/hci/evt"
)

type scannedDevice struct {
	addr   wiimote.Addr
	psrm   uint8
	clkofs uint16
}

// deviceList holds the peripherals seen during one scan cycle.
type deviceList struct {
	devices []scannedDevice
}

func (l *deviceList) clear() {
	l.devices = l.devices[:0]
}

func (l *deviceList) find(a wiimote.Addr) (scannedDevice, bool) {
	for _, d := range l.devices {
		if d.addr == a {
			return d, true
		}
	}
	return scannedDevice{}, false
}

func (l *deviceList) add(d scannedDevice) error {
	if len(l.devices) >= scannedDeviceLimit {
		return fmt.Errorf("scanned device list full (%d), dropping %s", scannedDeviceLimit, d.addr)
	}
	l.devices = append(l.devices, d)
	return nil
}

func (l *deviceList) len() int {
	return len(l.devices)
}

func isPeripheralName(name string) bool {
	for _, n := range peripheralNames {
		if n == name {
			return true
		}
	}
	return false
}

// Available resets session state and starts controller bring-up. The transport
// calls it once it is ready to carry packets.
func (h *HCI) Available() error {
	if !h.isOpen() {
		return ErrClosed
	}

	h.mu.Lock()
	h.scanned.clear()
	h.channels.clear()
	h.links = make(map[uint16]*link)
	h.connecting = make(map[wiimote.Addr]bool)
	h.creating = nil
	h.stopScan = false
	h.scanning = false

	h.logger.Info("hci reset")
	h.sendCommand(&cmd.Reset{})
	h.mu.Unlock()

	h.SendAvailable()
	h.flushEvents()
	return nil
}

// BeginScan starts an inquiry cycle. Cycles repeat until EndScan.
func (h *HCI) BeginScan() error {
	if !h.isOpen() {
		return ErrClosed
	}

	h.mu.Lock()
	h.beginScan()
	h.mu.Unlock()

	h.SendAvailable()
	h.flushEvents()
	return nil
}

// EndScan cancels the running inquiry.
func (h *HCI) EndScan() error {
	if !h.isOpen() {
		return ErrClosed
	}

	h.mu.Lock()
	h.stopScan = true
	h.sendCommand(&cmd.InquiryCancel{})
	h.mu.Unlock()

	h.SendAvailable()
	h.flushEvents()
	return nil
}

func (h *HCI) beginScan() {
	h.scanned.clear()
	h.stopScan = false
	h.scanning = true
	h.sendCommand(cmd.NewInquiry(cmd.GIAC, h.inquiryLength, 0))
}

func (h *HCI) scanStopped() {
	if !h.scanning {
		return
	}
	h.scanning = false
	h.stopScan = false
	h.emit(wiimote.Event{Type: wiimote.EventScanStopped})
}

func (h *HCI) handleCommandComplete(b []byte) error {
	e := evt.CommandComplete(b)
	op, err := e.CommandOpcodeWErr()
	if err != nil {
		return errors.Wrap(err, "command complete")
	}

	// NOP command, used for flow control purpose [Vol 2, Part E, 4.4]
	if op == 0x0000 {
		return nil
	}

	status, err := e.StatusWErr()
	if err != nil {
		return errors.Wrapf(err, "command complete %04X", op)
	}
	if status != 0x00 {
		return errors.Wrapf(ErrCommand(status), "cmd %04X failed", op)
	}

	switch int(op) {
	case cmd.ResetOpCode:
		h.sendCommand(&cmd.ReadBDADDR{})

	case cmd.ReadBDADDROpCode:
		rp := cmd.ReadBDADDRRP{}
		if err := rp.Unmarshal(e.ReturnParameters()); err != nil {
			return errors.Wrap(err, "can't read bdaddr")
		}
		a, err := wiimote.AddrFromWire(rp.BDADDR[:])
		if err != nil {
			return err
		}
		h.addr = a
		h.logger.Infof("controller address %s", a)
		h.sendCommand(cmd.NewWriteLocalName(h.localName))

	case cmd.WriteLocalNameOpCode:
		h.sendCommand(&cmd.WriteClassOfDevice{ClassOfDevice: h.classOfDevice})

	case cmd.WriteClassOfDeviceOpCode:
		h.sendCommand(&cmd.WriteScanEnable{ScanEnable: cmd.InquiryAndPageScans})

	case cmd.WriteScanEnableOpCode:
		h.logger.Info("controller initialized")
		h.emit(wiimote.Event{Type: wiimote.EventInitialized})
		if h.autoScan {
			h.beginScan()
		}

	case cmd.InquiryCancelOpCode:
		if h.stopScan {
			h.scanStopped()
		}

	default:
		h.logger.Debugf("command complete %04X: [% X]", op, b)
	}
	return nil
}

func (h *HCI) handleCommandStatus(b []byte) error {
	e := evt.CommandStatus(b)
	if !e.Valid() {
		return fmt.Errorf("invalid command status: [% X]", b)
	}

	op := int(e.CommandOpcode())
	status := e.Status()

	var creating wiimote.Addr
	if op == cmd.CreateConnectionOpCode && len(h.creating) > 0 {
		creating = h.creating[0]
		h.creating = h.creating[1:]
	}

	if status != 0x00 {
		switch op {
		case cmd.InquiryOpCode:
			h.scanning = false
		case cmd.CreateConnectionOpCode:
			// no connection complete follows a rejected create connection
			delete(h.connecting, creating)
			return errors.Wrapf(ErrCommand(status), "connection to %s rejected", creating)
		}
		return errors.Wrapf(ErrCommand(status), "cmd %04X rejected", op)
	}

	switch op {
	case cmd.InquiryOpCode:
		h.logger.Debug("inquiry pending")
		h.emit(wiimote.Event{Type: wiimote.EventScanStarted})
	case cmd.RemoteNameRequestOpCode:
		h.logger.Debug("remote name request pending")
	case cmd.CreateConnectionOpCode:
		h.logger.Debug("create connection pending")
	default:
		h.logger.Debugf("command status %04X: [% X]", op, b)
	}
	return nil
}

func (h *HCI) handleInquiryResult(b []byte) error {
	e := evt.InquiryResult(b)
	nr, err := e.NumResponsesWErr()
	if err != nil {
		return errors.Wrap(err, "inquiry result")
	}

	for i := 0; i < int(nr); i++ {
		wa, err := e.BDADDRWErr(i)
		if err != nil {
			return errors.Wrapf(err, "inquiry result %d", i)
		}
		psrm, err := e.PageScanRepetitionModeWErr(i)
		if err != nil {
			return errors.Wrapf(err, "inquiry result %d", i)
		}
		cod, err := e.ClassOfDeviceWErr(i)
		if err != nil {
			return errors.Wrapf(err, "inquiry result %d", i)
		}
		clkofs, err := e.ClockOffsetWErr(i)
		if err != nil {
			return errors.Wrapf(err, "inquiry result %d", i)
		}

		a, _ := wiimote.AddrFromWire(wa[:])
		if _, ok := h.scanned.find(a); ok {
			continue
		}

		d := scannedDevice{addr: a, psrm: psrm, clkofs: clkofs | clockOffsetValid}
		if err := h.scanned.add(d); err != nil {
			h.fail(err)
			continue
		}

		if cod != peripheralClass {
			h.logger.Debugf("skip %s, class % X", a, cod)
			continue
		}

		h.logger.Debugf("found %s, requesting name", a)
		h.sendCommand(&cmd.RemoteNameRequest{
			BDADDR:                 wa,
			PageScanRepetitionMode: d.psrm,
			ClockOffset:            d.clkofs,
		})
	}
	return nil
}

func (h *HCI) handleInquiryComplete(b []byte) error {
	status, err := evt.InquiryComplete(b).StatusWErr()
	if err != nil {
		return errors.Wrap(err, "inquiry complete")
	}
	h.logger.Debugf("inquiry complete, status %02X", status)

	if h.stopScan || !h.scanning {
		h.scanStopped()
		return nil
	}
	h.beginScan()
	return nil
}

func (h *HCI) handleRemoteNameRequestComplete(b []byte) error {
	e := evt.RemoteNameRequestComplete(b)
	status, err := e.StatusWErr()
	if err != nil {
		return errors.Wrap(err, "remote name")
	}
	wa, err := e.BDADDRWErr()
	if err != nil {
		return errors.Wrap(err, "remote name")
	}
	a, _ := wiimote.AddrFromWire(wa[:])

	if status != 0x00 {
		h.logger.Debugf("remote name for %s failed: %v", a, ErrCommand(status))
		return nil
	}

	name, err := e.RemoteNameWErr()
	if err != nil {
		return errors.Wrap(err, "remote name")
	}
	if !isPeripheralName(name) {
		h.logger.Debugf("ignoring %s %q", a, name)
		return nil
	}

	d, ok := h.scanned.find(a)
	if !ok {
		h.logger.Debugf("name for %s outside current scan cycle", a)
		return nil
	}
	if h.connecting[a] || h.linkByAddr(a) != nil {
		return nil
	}
	h.connecting[a] = true
	h.creating = append(h.creating, a)

	h.logger.Infof("connecting to %s %q", a, name)
	h.emit(wiimote.Event{Type: wiimote.EventNew, Addr: a, Data: []byte(name)})
	h.sendCommand(&cmd.CreateConnection{
		BDADDR:                 wa,
		PacketType:             createConnPacketType,
		PageScanRepetitionMode: d.psrm,
		ClockOffset:            d.clkofs,
		AllowRoleSwitch:        0x00,
	})
	return nil
}

func (h *HCI) handleConnectionComplete(b []byte) error {
	e := evt.ConnectionComplete(b)
	status, err := e.StatusWErr()
	if err != nil {
		return errors.Wrap(err, "connection complete")
	}
	wa, err := e.BDADDRWErr()
	if err != nil {
		return errors.Wrap(err, "connection complete")
	}
	a, _ := wiimote.AddrFromWire(wa[:])
	delete(h.connecting, a)

	if status != 0x00 {
		return errors.Wrapf(ErrCommand(status), "connection to %s failed", a)
	}

	handle, err := e.ConnectionHandleWErr()
	if err != nil {
		return errors.Wrap(err, "connection complete")
	}

	h.logger.Infof("connected %s, handle %04X", a, handle)
	h.links[handle] = newLink(handle, a, h.logger)
	h.connect(handle, psmHIDControl)
	return nil
}

func (h *HCI) handleDisconnectionComplete(b []byte) error {
	e := evt.DisconnectionComplete(b)
	status, err := e.StatusWErr()
	if err != nil {
		return errors.Wrap(err, "disconnection complete")
	}
	handle, err := e.ConnectionHandleWErr()
	if err != nil {
		return errors.Wrap(err, "disconnection complete")
	}
	if status != 0x00 {
		return errors.Wrapf(ErrCommand(status), "disconnect of %04X failed", handle)
	}
	reason, err := e.ReasonWErr()
	if err != nil {
		return errors.Wrap(err, "disconnection complete")
	}

	var a wiimote.Addr
	if l, ok := h.links[handle]; ok {
		a = l.addr
	}
	h.logger.Infof("disconnected handle %04X, reason %v", handle, ErrCommand(reason))

	h.channels.removeLink(handle)
	delete(h.links, handle)
	h.emit(wiimote.Event{Type: wiimote.EventDisconnected, Handle: handle, Addr: a})

	if h.restartScan {
		h.beginScan()
	}
	return nil
}
