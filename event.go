package wiimote

import "fmt"

// EventType enumerates the notifications delivered to the host.
type EventType int

const (
	// EventInitialized: controller bring-up finished.
	EventInitialized EventType = iota
	EventScanStarted
	EventScanStopped
	// EventNew: a peripheral resolved to a known product name and is being connected.
	EventNew
	// EventConnected: both HID channels of a link are configured.
	EventConnected
	EventDisconnected
	// EventReport carries a raw HID input report (0xA1 header included).
	EventReport
)

func (t EventType) String() string {
	switch t {
	case EventInitialized:
		return "initialized"
	case EventScanStarted:
		return "scan-started"
	case EventScanStopped:
		return "scan-stopped"
	case EventNew:
		return "new"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventReport:
		return "report"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Event is a host notification. Handle is zero for controller-wide events.
type Event struct {
	Type   EventType
	Handle uint16
	Addr   Addr
	Data   []byte
}

// EventHandler receives host notifications.
type EventHandler func(Event)
