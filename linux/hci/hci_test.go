package hci

import (
	"bytes"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/rigado/wiimote"
	"github.com/rigado/wiimote/linux/hci/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu   sync.Mutex
	sent [][]byte
	busy bool
}

func (f *fakeTransport) CanSend() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.busy
}

func (f *fakeTransport) Send(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, append([]byte(nil), b...))
	return nil
}

func (f *fakeTransport) setBusy(busy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = busy
}

func (f *fakeTransport) take() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sent
	f.sent = nil
	return s
}

type harness struct {
	t      *testing.T
	h      *HCI
	tr     *fakeTransport
	events []wiimote.Event
	errs   []error
}

func newHarness(t *testing.T, opts ...wiimote.Option) *harness {
	hn := &harness{t: t, tr: &fakeTransport{}}
	base := []wiimote.Option{
		wiimote.OptTransport(hn.tr),
		wiimote.OptEventHandler(func(e wiimote.Event) { hn.events = append(hn.events, e) }),
		wiimote.OptErrorHandler(func(err error) { hn.errs = append(hn.errs, err) }),
	}
	h, err := NewHCI(append(base, opts...)...)
	require.NoError(t, err)
	hn.h = h
	return hn
}

// feed delivers one inbound packet and processes until idle.
func (hn *harness) feed(b []byte) {
	hn.t.Helper()
	require.NoError(hn.t, hn.h.OnReceive(b))
	for hn.h.Process() {
	}
}

func (hn *harness) sent() [][]byte {
	return hn.tr.take()
}

func (hn *harness) takeEvents() []wiimote.Event {
	e := hn.events
	hn.events = nil
	return e
}

func (hn *harness) takeErrs() []error {
	e := hn.errs
	hn.errs = nil
	return e
}

func (hn *harness) eventTypes() []wiimote.EventType {
	var tt []wiimote.EventType
	for _, e := range hn.takeEvents() {
		tt = append(tt, e.Type)
	}
	return tt
}

// expectCommands asserts the opcodes of the packets sent since the last call.
func (hn *harness) expectCommands(ops ...int) [][]byte {
	hn.t.Helper()
	sent := hn.sent()
	require.Len(hn.t, sent, len(ops), "sent % X", sent)
	for i, p := range sent {
		c := cmdPacket(p)
		require.Equal(hn.t, pktTypeCommand, c.pktType(), "packet %d [% X]", i, p)
		require.Equal(hn.t, uint16(ops[i]), c.opcode(), "packet %d [% X]", i, p)
		require.Equal(hn.t, c.plen(), len(c.params()))
	}
	return sent
}

var hostAddr = wiimote.Addr{0x00, 0x1A, 0x7D, 0xDA, 0x71, 0x13}

// bringUp runs the controller bring-up sequence to the point of inquiry.
func (hn *harness) bringUp() {
	hn.t.Helper()
	require.NoError(hn.t, hn.h.Init())
	hn.expectCommands(cmd.ResetOpCode)

	hn.feed(cmdComplete(cmd.ResetOpCode))
	hn.expectCommands(cmd.ReadBDADDROpCode)

	hn.feed(cmdComplete(cmd.ReadBDADDROpCode, hostAddr.Wire()...))
	hn.expectCommands(cmd.WriteLocalNameOpCode)

	hn.feed(cmdComplete(cmd.WriteLocalNameOpCode))
	hn.expectCommands(cmd.WriteClassOfDeviceOpCode)

	hn.feed(cmdComplete(cmd.WriteClassOfDeviceOpCode))
	hn.expectCommands(cmd.WriteScanEnableOpCode)
}

func cmdComplete(op int, params ...byte) []byte {
	b := []byte{pktTypeEvent, 0x0E, byte(4 + len(params)), 0x01, byte(op), byte(op >> 8), 0x00}
	return append(b, params...)
}

func cmdCompleteStatus(op int, status byte) []byte {
	return []byte{pktTypeEvent, 0x0E, 0x04, 0x01, byte(op), byte(op >> 8), status}
}

func cmdStatus(op int, status byte) []byte {
	return []byte{pktTypeEvent, 0x0F, 0x04, status, 0x01, byte(op), byte(op >> 8)}
}

type inquiryRecord struct {
	addr   wiimote.Addr
	psrm   byte
	cod    [3]byte
	clkofs uint16
}

func inquiryResult(rr ...inquiryRecord) []byte {
	p := []byte{byte(len(rr))}
	for _, r := range rr {
		p = append(p, r.addr.Wire()...)
		p = append(p, r.psrm, 0x00, 0x00)
		p = append(p, r.cod[:]...)
		p = append(p, byte(r.clkofs), byte(r.clkofs>>8))
	}
	return append([]byte{pktTypeEvent, 0x02, byte(len(p))}, p...)
}

func inquiryComplete() []byte {
	return []byte{pktTypeEvent, 0x01, 0x01, 0x00}
}

func remoteNameComplete(status byte, a wiimote.Addr, name string) []byte {
	p := make([]byte, 1+6+cmd.LocalNameLength)
	p[0] = status
	copy(p[1:], a.Wire())
	copy(p[7:], name)
	return append([]byte{pktTypeEvent, 0x07, byte(len(p))}, p...)
}

func connComplete(status byte, handle uint16, a wiimote.Addr) []byte {
	p := []byte{status, byte(handle), byte(handle >> 8)}
	p = append(p, a.Wire()...)
	p = append(p, 0x01, 0x00)
	return append([]byte{pktTypeEvent, 0x03, byte(len(p))}, p...)
}

func disconnComplete(handle uint16, reason byte) []byte {
	return disconnCompleteStatus(0x00, handle, reason)
}

func disconnCompleteStatus(status byte, handle uint16, reason byte) []byte {
	return []byte{pktTypeEvent, 0x05, 0x04, status, byte(handle), byte(handle >> 8), reason}
}

// aclIn builds an inbound ACL packet with explicit flags.
func aclInFlags(handle uint16, pb, bc byte, cid uint16, payload []byte) []byte {
	b := []byte{pktTypeACLData, byte(handle), byte(handle>>8)&0x0f | pb<<4 | bc<<6}
	b = append(b, 0, 0, 0, 0, 0, 0)
	binary.LittleEndian.PutUint16(b[3:], uint16(4+len(payload)))
	binary.LittleEndian.PutUint16(b[5:], uint16(len(payload)))
	binary.LittleEndian.PutUint16(b[7:], cid)
	return append(b, payload...)
}

func aclIn(handle, cid uint16, payload ...byte) []byte {
	return aclInFlags(handle, pbfFirstFlushable, bcfPointToPoint, cid, payload)
}

func sig(code, id byte, data ...byte) []byte {
	b := []byte{code, id, byte(len(data)), byte(len(data) >> 8)}
	return append(b, data...)
}

// l2capOut splits an outbound ACL packet into its handle, cid and payload.
func l2capOut(t *testing.T, b []byte) (uint16, uint16, []byte) {
	t.Helper()
	require.True(t, len(b) > 1 && b[0] == pktTypeACLData, "not acl [% X]", b)
	a := aclPacket(b[1:])
	require.True(t, a.valid(), "invalid acl [% X]", b)
	require.Equal(t, pbfFirstFlushable, a.pbf())
	require.Equal(t, bcfPointToPoint, a.bcf())
	p := pdu(a.data())
	require.True(t, p.valid(), "invalid pdu [% X]", b)
	require.Equal(t, a.dlen(), pduHeaderLen+p.dlen())
	return a.handle(), p.cid(), p.payload()
}

func TestEncodeCommandRoundTrip(t *testing.T) {
	cc := []Command{
		&cmd.Reset{},
		&cmd.WriteScanEnable{ScanEnable: cmd.InquiryAndPageScans},
		cmd.NewInquiry(cmd.GIAC, 10, 0),
		&cmd.CreateConnection{PacketType: createConnPacketType, ClockOffset: 0x9234},
	}
	for _, c := range cc {
		b, err := encodeCommand(c)
		require.NoError(t, err)

		p := cmdPacket(b)
		assert.Equal(t, pktTypeCommand, p.pktType())
		assert.Equal(t, uint16(c.OpCode()), p.opcode())
		assert.Equal(t, c.Len(), p.plen())
		assert.Len(t, p.params(), c.Len())
	}

	b, _ := encodeCommand(cmd.NewInquiry(cmd.GIAC, 10, 0))
	assert.Equal(t, []byte{0x01, 0x01, 0x04, 0x05, 0x33, 0x8B, 0x9E, 0x0A, 0x00}, b)
}

func TestEncodeACLRoundTrip(t *testing.T) {
	payload := []byte{0xA2, 0x11, 0x10}
	b := encodeACL(0x0abc, 0x0051, payload)

	assert.Equal(t, []byte{0x02, 0xbc, 0x2a, 0x07, 0x00, 0x03, 0x00, 0x51, 0x00, 0xA2, 0x11, 0x10}, b)

	handle, cid, got := l2capOut(t, b)
	assert.Equal(t, uint16(0x0abc), handle)
	assert.Equal(t, uint16(0x0051), cid)
	assert.Equal(t, payload, got)
}

func TestEncodeSignal(t *testing.T) {
	b := encodeSignal(0x01, &ConnectionRequest{PSM: psmHIDControl, SourceCID: 0x0040})
	assert.Equal(t, []byte{0x02, 0x01, 0x04, 0x00, 0x11, 0x00, 0x40, 0x00}, b)

	s := sigCmd(b)
	require.True(t, s.valid())
	assert.Equal(t, uint8(SignalConnectionRequest), s.code())
	assert.Equal(t, 4, s.dlen())
}

func TestProcessWaitsForSendCapacity(t *testing.T) {
	hn := newHarness(t)
	hn.tr.setBusy(true)

	require.NoError(t, hn.h.Init())
	assert.Empty(t, hn.sent())
	assert.False(t, hn.h.Process())
	assert.Empty(t, hn.sent())

	hn.tr.setBusy(false)
	hn.h.SendAvailable()
	hn.expectCommands(cmd.ResetOpCode)
}

func TestUnsupportedPacketTypes(t *testing.T) {
	hn := newHarness(t)

	hn.feed([]byte{pktTypeSCOData, 0x01, 0x00, 0x00})
	hn.feed([]byte{0x09, 0x00})
	hn.feed([]byte{pktTypeEvent, 0x0E, 0x09, 0x01})

	assert.Len(t, hn.takeErrs(), 3)
	assert.Empty(t, hn.sent())
	assert.Empty(t, hn.takeEvents())
}

func TestClose(t *testing.T) {
	hn := newHarness(t)
	require.NoError(t, hn.h.Close())
	require.NoError(t, hn.h.Close())

	assert.Error(t, hn.h.OnReceive([]byte{pktTypeEvent, 0x01, 0x01, 0x00}))
	assert.Equal(t, ErrClosed, hn.h.BeginScan())
	assert.Equal(t, ErrClosed, errors.Cause(hn.h.SetLED(0x10, 0x01)))
	assert.False(t, hn.h.Process())
}

func TestEventHandlerMayCallBack(t *testing.T) {
	var h *HCI
	tr := &fakeTransport{}
	done := false
	h, err := NewHCI(
		wiimote.OptTransport(tr),
		wiimote.OptAutoScan(false),
		wiimote.OptEventHandler(func(e wiimote.Event) {
			if e.Type == wiimote.EventInitialized {
				// runs outside the session lock
				require.NoError(t, h.BeginScan())
				done = true
			}
		}),
	)
	require.NoError(t, err)

	require.NoError(t, h.OnReceive(cmdComplete(cmd.WriteScanEnableOpCode)))
	for h.Process() {
	}

	assert.True(t, done)
	sent := tr.take()
	require.Len(t, sent, 1)
	assert.True(t, bytes.Equal(sent[0][:3], []byte{0x01, 0x01, 0x04}))
}
