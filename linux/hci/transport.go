package hci

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/wiimote/linux/hci/h4"
	"github.com/rigado/wiimote/linux/hci/socket"
)

type transportHci struct {
	id int
}

type transportH4Socket struct {
	addr    string
	timeout time.Duration
}

type transportH4Uart struct {
	path string
	baud uint
}

type transport struct {
	hci      *transportHci
	h4uart   *transportH4Uart
	h4socket *transportH4Socket
}

func getTransport(t transport) (io.ReadWriteCloser, error) {
	switch {
	case t.hci != nil:
		return socket.NewSocket(t.hci.id)

	case t.h4socket != nil:
		return h4.NewSocket(t.h4socket.addr, t.h4socket.timeout)

	case t.h4uart != nil:
		so := h4.DefaultSerialOptions()
		so.PortName = t.h4uart.path
		if t.h4uart.baud != 0 {
			so.BaudRate = t.h4uart.baud
		}
		return h4.NewSerial(so)

	default:
		return nil, fmt.Errorf("no valid transport found")
	}
}

// rwcTransport adapts a packet oriented io.ReadWriteCloser. Writes block, so
// it can always accept a packet.
type rwcTransport struct {
	rwc io.ReadWriteCloser
}

func (t *rwcTransport) CanSend() bool { return true }

func (t *rwcTransport) Send(b []byte) error {
	n, err := t.rwc.Write(b)
	if err != nil {
		return errors.Wrap(err, "can't write packet")
	}
	if n != len(b) {
		return fmt.Errorf("short write: %d of %d", n, len(b))
	}
	return nil
}
