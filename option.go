package wiimote

import (
	"time"
)

// DeviceOption is an interface which the device should implement to allow using configuration options
type DeviceOption interface {
	SetTransport(Transport) error
	SetTransportHCISocket(id int) error
	SetTransportH4Socket(addr string, timeout time.Duration) error
	SetTransportH4Uart(path string, baud uint) error

	SetEventHandler(EventHandler) error
	SetErrorHandler(handler func(error)) error

	SetLocalName(string) error
	SetClassOfDevice([3]byte) error
	SetInquiryLength(uint8) error
	SetMTU(uint16) error
	SetAutoScan(bool) error
	SetRestartScanOnDisconnect(bool) error
}

// An Option is a configuration function, which configures the device.
type Option func(DeviceOption) error

// OptTransport uses a caller supplied transport.
func OptTransport(t Transport) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransport(t)
	}
}

// OptTransportHCISocket set hci socket transport
func OptTransportHCISocket(id int) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransportHCISocket(id)
	}
}

// OptTransportH4Socket set h4 socket transport
func OptTransportH4Socket(addr string, timeout time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransportH4Socket(addr, timeout)
	}
}

// OptTransportH4Uart set h4 uart transport
func OptTransportH4Uart(path string, baud uint) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransportH4Uart(path, baud)
	}
}

// OptEventHandler sets the host notification handler.
func OptEventHandler(h EventHandler) Option {
	return func(opt DeviceOption) error {
		return opt.SetEventHandler(h)
	}
}

// OptErrorHandler sets error handler
func OptErrorHandler(handler func(error)) Option {
	return func(opt DeviceOption) error {
		return opt.SetErrorHandler(handler)
	}
}

// OptLocalName sets the friendly name written during bring-up.
func OptLocalName(name string) Option {
	return func(opt DeviceOption) error {
		return opt.SetLocalName(name)
	}
}

// OptClassOfDevice sets the local class of device written during bring-up.
func OptClassOfDevice(cod [3]byte) Option {
	return func(opt DeviceOption) error {
		return opt.SetClassOfDevice(cod)
	}
}

// OptInquiryLength sets the inquiry window in units of 1.28s.
func OptInquiryLength(n uint8) Option {
	return func(opt DeviceOption) error {
		return opt.SetInquiryLength(n)
	}
}

// OptMTU sets the MTU proposed in L2CAP configuration requests.
func OptMTU(mtu uint16) Option {
	return func(opt DeviceOption) error {
		return opt.SetMTU(mtu)
	}
}

// OptAutoScan starts inquiry as soon as bring-up completes.
func OptAutoScan(enable bool) Option {
	return func(opt DeviceOption) error {
		return opt.SetAutoScan(enable)
	}
}

// OptRestartScanOnDisconnect restarts inquiry after a link drops.
func OptRestartScanOnDisconnect(enable bool) Option {
	return func(opt DeviceOption) error {
		return opt.SetRestartScanOnDisconnect(enable)
	}
}
