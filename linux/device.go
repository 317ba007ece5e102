package linux

import (
	"github.com/pkg/errors"
	"github.com/rigado/wiimote"
	"github.com/rigado/wiimote/linux/hci"
)

// NewDevice returns an HCI session with bring-up already started. The caller
// drives it with Run or Process.
func NewDevice(opts ...wiimote.Option) (*hci.HCI, error) {
	dev, err := hci.NewHCI(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "can't create hci")
	}
	if err := dev.Init(); err != nil {
		dev.Close()
		return nil, errors.Wrap(err, "can't init hci")
	}
	return dev, nil
}
