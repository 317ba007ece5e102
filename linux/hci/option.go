package hci

import (
	"fmt"
	"time"

	"github.com/rigado/wiimote"
)

// SetTransport uses a caller supplied transport. The caller delivers inbound
// packets through OnReceive and signals send capacity through SendAvailable.
func (h *HCI) SetTransport(t wiimote.Transport) error {
	if t == nil {
		return fmt.Errorf("nil transport")
	}
	h.transport = t
	return nil
}

// SetTransportHCISocket sets HCI device for hci socket
func (h *HCI) SetTransportHCISocket(id int) error {
	h.src = transport{
		hci: &transportHci{id},
	}
	return nil
}

// SetTransportH4Socket sets h4 socket server
func (h *HCI) SetTransportH4Socket(addr string, timeout time.Duration) error {
	h.src = transport{
		h4socket: &transportH4Socket{addr, timeout},
	}
	return nil
}

// SetTransportH4Uart sets h4 uart path
func (h *HCI) SetTransportH4Uart(path string, baud uint) error {
	h.src = transport{
		h4uart: &transportH4Uart{path, baud},
	}
	return nil
}

// SetEventHandler ...
func (h *HCI) SetEventHandler(eh wiimote.EventHandler) error {
	h.eventHandler = eh
	return nil
}

// SetErrorHandler ...
func (h *HCI) SetErrorHandler(handler func(error)) error {
	h.errorHandler = handler
	return nil
}

// SetLocalName overrides the friendly name written during bring-up.
func (h *HCI) SetLocalName(name string) error {
	if len(name) >= 248 {
		return fmt.Errorf("local name too long: %d", len(name))
	}
	h.localName = name
	return nil
}

// SetClassOfDevice overrides the class of device written during bring-up.
func (h *HCI) SetClassOfDevice(cod [3]byte) error {
	h.classOfDevice = cod
	return nil
}

// SetInquiryLength sets the inquiry window, 1..0x30 units of 1.28s.
func (h *HCI) SetInquiryLength(n uint8) error {
	if n < 0x01 || n > 0x30 {
		return fmt.Errorf("inquiry length %d out of range", n)
	}
	h.inquiryLength = n
	return nil
}

// SetMTU sets the MTU proposed for HID channels.
func (h *HCI) SetMTU(mtu uint16) error {
	if mtu < 48 {
		return fmt.Errorf("mtu %d below l2cap minimum", mtu)
	}
	h.mtu = mtu
	return nil
}

// SetAutoScan ...
func (h *HCI) SetAutoScan(enable bool) error {
	h.autoScan = enable
	return nil
}

// SetRestartScanOnDisconnect ...
func (h *HCI) SetRestartScanOnDisconnect(enable bool) error {
	h.restartScan = enable
	return nil
}
