package hci

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rigado/wiimote"
)

// channel is one L2CAP channel of a link. remoteCID is zero until the peer
// accepts the connection request.
type channel struct {
	handle    uint16
	psm       uint16
	localCID  uint16
	remoteCID uint16
}

func (c *channel) bound() bool { return c.remoteCID != 0 }

// channelTable holds the open L2CAP channels of all links.
type channelTable struct {
	chans []*channel
}

func (t *channelTable) clear() {
	t.chans = nil
}

func (t *channelTable) add(c *channel) error {
	if len(t.chans) >= channelLimit {
		return fmt.Errorf("channel table full (%d), dropping psm %04X on %04X", channelLimit, c.psm, c.handle)
	}
	t.chans = append(t.chans, c)
	return nil
}

func (t *channelTable) byLocal(handle, cid uint16) *channel {
	for _, c := range t.chans {
		if c.handle == handle && c.localCID == cid {
			return c
		}
	}
	return nil
}

func (t *channelTable) byPSM(handle, psm uint16) *channel {
	for _, c := range t.chans {
		if c.handle == handle && c.psm == psm {
			return c
		}
	}
	return nil
}

// remove deletes the channel matching all three identifiers.
func (t *channelTable) remove(handle, local, remote uint16) bool {
	for i, c := range t.chans {
		if c.handle == handle && c.localCID == local && c.remoteCID == remote {
			t.chans = append(t.chans[:i], t.chans[i+1:]...)
			return true
		}
	}
	return false
}

func (t *channelTable) removeLink(handle uint16) {
	kept := t.chans[:0]
	for _, c := range t.chans {
		if c.handle != handle {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(t.chans); i++ {
		t.chans[i] = nil
	}
	t.chans = kept
}

func (t *channelTable) len() int {
	return len(t.chans)
}

func (h *HCI) allocCID() uint16 {
	cid := h.nextCID
	if h.nextCID == maxDynamicCID {
		h.nextCID = minDynamicCID
	} else {
		h.nextCID++
	}
	return cid
}

// connect opens an L2CAP channel to psm on the link.
func (h *HCI) connect(handle, psm uint16) {
	c := &channel{handle: handle, psm: psm, localCID: h.allocCID()}
	if err := h.channels.add(c); err != nil {
		h.fail(err)
		return
	}

	h.logger.Debugf("%04X: connect psm %04X, cid %04X", handle, psm, c.localCID)
	h.sendSignal(handle, &ConnectionRequest{PSM: psm, SourceCID: c.localCID})
}

func (h *HCI) handleACL(b []byte) error {
	a := aclPacket(b)
	if !a.valid() {
		return fmt.Errorf("invalid acl packet: [% X]", b)
	}
	if a.pbf() != pbfFirstFlushable {
		return fmt.Errorf("unsupported packet boundary flag %02b on %04X", a.pbf(), a.handle())
	}
	if a.bcf() != bcfPointToPoint {
		return fmt.Errorf("unsupported broadcast flag %02b on %04X", a.bcf(), a.handle())
	}

	p := pdu(a.data())
	if !p.valid() {
		return fmt.Errorf("invalid l2cap pdu on %04X: [% X]", a.handle(), a.data())
	}

	if p.cid() == cidSignaling {
		return h.handleSignal(a.handle(), p.payload())
	}

	c := h.channels.byLocal(a.handle(), p.cid())
	if c == nil {
		return fmt.Errorf("data for unknown channel %04X on %04X", p.cid(), a.handle())
	}
	return h.handleChannelData(c, p.payload())
}

func (h *HCI) handleSignal(handle uint16, b []byte) error {
	for len(b) > 0 {
		s := sigCmd(b)
		if !s.valid() {
			return fmt.Errorf("invalid signaling command on %04X: [% X]", handle, b)
		}

		var err error
		switch s.code() {
		case SignalConnectionResponse:
			err = h.handleConnectionResponse(handle, s)
		case SignalConfigurationRequest:
			err = h.handleConfigurationRequest(handle, s)
		case SignalConfigurationResponse:
			err = h.handleConfigurationResponse(handle, s)
		case SignalDisconnectRequest:
			err = h.handleDisconnectRequest(handle, s)
		case SignalDisconnectResponse:
			h.logger.Debugf("%04X: disconnect response [% X]", handle, s.data())
		case SignalCommandReject:
			h.logger.Warnf("%04X: command rejected [% X]", handle, s.data())
		default:
			h.logger.Debugf("%04X: unhandled signal 0x%02X [% X]", handle, s.code(), s.data())
		}
		if err != nil {
			return err
		}

		b = b[sigHeaderLen+s.dlen():]
	}
	return nil
}

func (h *HCI) handleConnectionResponse(handle uint16, s sigCmd) error {
	rsp := ConnectionResponse{}
	if err := rsp.Unmarshal(s.data()); err != nil {
		return errors.Wrapf(err, "%04X: bad connection response", handle)
	}

	c := h.channels.byLocal(handle, rsp.SourceCID)
	if c == nil {
		return fmt.Errorf("%04X: connection response for unknown cid %04X", handle, rsp.SourceCID)
	}

	switch rsp.Result {
	case connResultSuccess:
	case connResultPending:
		h.logger.Debugf("%04X: connection pending, cid %04X status %04X", handle, c.localCID, rsp.Status)
		return nil
	default:
		return fmt.Errorf("%04X: connection to psm %04X refused, result %04X", handle, c.psm, rsp.Result)
	}

	if c.bound() {
		return fmt.Errorf("%04X: cid %04X already bound to %04X", handle, c.localCID, c.remoteCID)
	}
	c.remoteCID = rsp.DestinationCID

	h.logger.Debugf("%04X: cid %04X bound to %04X, configuring", handle, c.localCID, c.remoteCID)
	h.sendSignal(handle, &ConfigurationRequest{
		DestinationCID: c.remoteCID,
		Options:        mtuOption(h.mtu),
	})
	return nil
}

func (h *HCI) handleConfigurationResponse(handle uint16, s sigCmd) error {
	rsp := ConfigurationResponse{}
	if err := rsp.Unmarshal(s.data()); err != nil {
		return errors.Wrapf(err, "%04X: bad configuration response", handle)
	}
	if rsp.Result != confResultOK {
		return fmt.Errorf("%04X: configuration of cid %04X failed, result %04X", handle, rsp.SourceCID, rsp.Result)
	}
	h.logger.Debugf("%04X: configured cid %04X [% X]", handle, rsp.SourceCID, rsp.Options)
	return nil
}

func (h *HCI) handleConfigurationRequest(handle uint16, s sigCmd) error {
	req := ConfigurationRequest{}
	if err := req.Unmarshal(s.data()); err != nil {
		return errors.Wrapf(err, "%04X: bad configuration request", handle)
	}
	if req.Flags != 0 {
		return fmt.Errorf("%04X: configuration request flags %04X", handle, req.Flags)
	}
	if s.dlen() != 8 {
		return fmt.Errorf("%04X: configuration request length %d", handle, s.dlen())
	}
	mtu, err := req.MTU()
	if err != nil {
		return errors.Wrapf(err, "%04X: configuration request", handle)
	}

	c := h.channels.byLocal(handle, req.DestinationCID)
	if c == nil {
		return fmt.Errorf("%04X: configuration request for unknown cid %04X", handle, req.DestinationCID)
	}

	h.logger.Debugf("%04X: peer mtu %d on cid %04X", handle, mtu, c.localCID)
	h.replySignal(handle, s.id(), &ConfigurationResponse{
		SourceCID: c.remoteCID,
		Result:    confResultOK,
		Options:   mtuOption(mtu),
	})

	switch c.psm {
	case psmHIDControl:
		h.connect(handle, psmHIDInterrupt)
	case psmHIDInterrupt:
		l := h.link(handle)
		l.configured = true
		h.logger.Infof("%04X: hid channels open", handle)
		h.emit(wiimote.Event{Type: wiimote.EventConnected, Handle: handle, Addr: l.addr})
	}
	return nil
}

func (h *HCI) handleDisconnectRequest(handle uint16, s sigCmd) error {
	req := DisconnectRequest{}
	if err := req.Unmarshal(s.data()); err != nil {
		return errors.Wrapf(err, "%04X: bad disconnect request", handle)
	}

	// DestinationCID names our endpoint, SourceCID the peer's.
	if !h.channels.remove(handle, req.DestinationCID, req.SourceCID) {
		return fmt.Errorf("%04X: close for unknown channel %04X/%04X", handle, req.DestinationCID, req.SourceCID)
	}

	h.logger.Debugf("%04X: channel %04X/%04X closed, %d open", handle, req.DestinationCID, req.SourceCID, h.channels.len())
	h.replySignal(handle, s.id(), &DisconnectResponse{
		DestinationCID: req.DestinationCID,
		SourceCID:      req.SourceCID,
	})
	return nil
}
