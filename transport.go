package wiimote

// Transport is the raw controller packet transport.
//
// Inbound packets are pushed by the transport into the device's OnReceive hook;
// the transport signals new send capacity through SendAvailable.
type Transport interface {
	// CanSend reports whether the controller can accept a packet now.
	CanSend() bool
	// Send delivers one complete H4 packet (type byte included).
	Send(b []byte) error
}
