package h4

import (
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/wiimote"
)

// connWithTimeout bounds every read and write on a stream connection.
type connWithTimeout struct {
	c       net.Conn
	timeout time.Duration
}

func (cwt *connWithTimeout) Read(b []byte) (int, error) {
	cwt.c.SetReadDeadline(time.Now().Add(cwt.timeout))
	return cwt.c.Read(b)
}

func (cwt *connWithTimeout) Write(b []byte) (int, error) {
	cwt.c.SetWriteDeadline(time.Now().Add(cwt.timeout))
	return cwt.c.Write(b)
}

func (cwt *connWithTimeout) Close() error {
	return cwt.c.Close()
}

// NewSocket connects to an H4 bridge listening on a TCP address.
func NewSocket(addr string, timeout time.Duration) (io.ReadWriteCloser, error) {
	if timeout <= 0 {
		timeout = readTimeout
	}
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "can't dial %s", addr)
	}

	logger := wiimote.GetLogger().ChildLogger(map[string]interface{}{"mod": "h4", "addr": addr})
	logger.Info("connected")

	return newH4(&connWithTimeout{c: c, timeout: timeout}, false, logger), nil
}
