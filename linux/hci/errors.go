package hci

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrCommand is an HCI status code returned by the controller [Vol 2, Part D].
type ErrCommand byte

const (
	ErrUnknownCommand        ErrCommand = 0x01
	ErrConnID                ErrCommand = 0x02
	ErrHardware              ErrCommand = 0x03
	ErrPageTimeout           ErrCommand = 0x04
	ErrAuth                  ErrCommand = 0x05
	ErrPINMissing            ErrCommand = 0x06
	ErrMemoryCapacity        ErrCommand = 0x07
	ErrConnTimeout           ErrCommand = 0x08
	ErrConnLimit             ErrCommand = 0x09
	ErrACLConnExists         ErrCommand = 0x0B
	ErrDisallowed            ErrCommand = 0x0C
	ErrInvalidParameters     ErrCommand = 0x12
	ErrRemoteUser            ErrCommand = 0x13
	ErrLocalHost             ErrCommand = 0x16
	ErrUnspecified           ErrCommand = 0x1F
	ErrConnFailedToEstablish ErrCommand = 0x3E
)

var errCommandText = map[ErrCommand]string{
	ErrUnknownCommand:        "unknown HCI command",
	ErrConnID:                "unknown connection identifier",
	ErrHardware:              "hardware failure",
	ErrPageTimeout:           "page timeout",
	ErrAuth:                  "authentication failure",
	ErrPINMissing:            "PIN or key missing",
	ErrMemoryCapacity:        "memory capacity exceeded",
	ErrConnTimeout:           "connection timeout",
	ErrConnLimit:             "connection limit exceeded",
	ErrACLConnExists:         "ACL connection already exists",
	ErrDisallowed:            "command disallowed",
	ErrInvalidParameters:     "invalid HCI command parameters",
	ErrRemoteUser:            "remote user terminated connection",
	ErrLocalHost:             "connection terminated by local host",
	ErrUnspecified:           "unspecified error",
	ErrConnFailedToEstablish: "connection failed to be established",
}

func (e ErrCommand) Error() string {
	if s, ok := errCommandText[e]; ok {
		return s
	}
	return fmt.Sprintf("hci error 0x%02X", byte(e))
}

var (
	// ErrClosed is returned once the HCI has been closed.
	ErrClosed = errors.New("hci closed")
	// ErrNotConnected is returned by host commands for links without a bound interrupt channel.
	ErrNotConnected = errors.New("link not connected")
	// ErrNoCalibration is returned when a link has no balance board calibration.
	ErrNoCalibration = errors.New("no calibration for link")
)
