package wiimote

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rigado/wiimote/sliceops"
)

// AddrLen is the length of a BD_ADDR.
const AddrLen = 6

// Addr is a BR/EDR device address, most significant byte first.
// On the wire the order is reversed; see AddrFromWire and Wire.
type Addr [AddrLen]byte

// AddrFromWire converts a transmitted (least significant byte first) address.
func AddrFromWire(b []byte) (Addr, error) {
	var a Addr
	if len(b) < AddrLen {
		return a, errors.Errorf("short address: %d bytes", len(b))
	}
	copy(a[:], sliceops.Reversed(b[:AddrLen]))
	return a, nil
}

// ParseAddr parses "AA:BB:CC:DD:EE:FF" (colons optional).
func ParseAddr(s string) (Addr, error) {
	var a Addr
	b, err := hex.DecodeString(strings.Replace(s, ":", "", -1))
	if err != nil {
		return a, errors.Wrap(err, "can't parse address")
	}
	if len(b) != AddrLen {
		return a, fmt.Errorf("invalid address length %d", len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Wire returns the address in transmitted order.
func (a Addr) Wire() []byte {
	return sliceops.Reversed(a[:])
}

func (a Addr) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}
