package hci

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/wiimote"
	"github.com/rigado/wiimote/linux/hci/evt"
)

type handlerFn func(b []byte) error

// NewHCI returns a hci device.
func NewHCI(opts ...wiimote.Option) (*HCI, error) {
	h := &HCI{
		evth:  map[int]handlerFn{},
		links: make(map[uint16]*link),

		localName:     defaultLocalName,
		classOfDevice: defaultClassOfDevice,
		inquiryLength: defaultInquiryLength,
		mtu:           defaultMTU,
		autoScan:      true,

		connecting: make(map[wiimote.Addr]bool),
		nextCID:    minDynamicCID,
		sigID:      1,

		done:   make(chan struct{}),
		logger: wiimote.GetLogger().ChildLogger(map[string]interface{}{"mod": "hci"}),
	}
	h.rx = newPacketQueue("rx", queueSize, h.done)
	h.tx = newPacketQueue("tx", queueSize, h.done)

	h.evth[evt.CommandCompleteCode] = h.handleCommandComplete
	h.evth[evt.CommandStatusCode] = h.handleCommandStatus
	h.evth[evt.InquiryResultCode] = h.handleInquiryResult
	h.evth[evt.InquiryCompleteCode] = h.handleInquiryComplete
	h.evth[evt.RemoteNameRequestCompleteCode] = h.handleRemoteNameRequestComplete
	h.evth[evt.ConnectionCompleteCode] = h.handleConnectionComplete
	h.evth[evt.DisconnectionCompleteCode] = h.handleDisconnectionComplete
	h.evth[evt.NumberOfCompletedPacketsCode] = h.handleInformational
	h.evth[evt.QoSSetupCompleteCode] = h.handleInformational

	if err := h.Option(opts...); err != nil {
		return nil, errors.Wrap(err, "can't set options")
	}

	return h, nil
}

// HCI is a BR/EDR host session bound to one controller.
type HCI struct {
	// mu guards all protocol state below.
	mu sync.Mutex
	// muTx serializes draining the tx queue into the transport.
	muTx sync.Mutex

	logger wiimote.Logger

	transport wiimote.Transport
	src       transport
	skt       io.ReadWriteCloser

	rx *packetQueue
	tx *packetQueue

	evth map[int]handlerFn

	eventHandler wiimote.EventHandler
	errorHandler func(error)
	pending      []wiimote.Event
	failures     []error

	// bring-up configuration
	localName     string
	classOfDevice [3]byte
	inquiryLength uint8
	mtu           uint16
	autoScan      bool
	restartScan   bool

	// discovery
	addr       wiimote.Addr
	scanned    deviceList
	connecting map[wiimote.Addr]bool
	creating   []wiimote.Addr // create connection commands awaiting status
	scanning   bool
	stopScan   bool

	// L2CAP
	channels channelTable
	nextCID  uint16
	sigID    uint8

	links map[uint16]*link

	muClose sync.Mutex
	done    chan struct{}
}

// Init opens the configured transport, if the caller did not supply one, and
// starts controller bring-up.
func (h *HCI) Init() error {
	if h.transport == nil {
		skt, err := getTransport(h.src)
		if err != nil {
			return errors.Wrap(err, "can't open transport")
		}
		h.skt = skt
		h.transport = &rwcTransport{rwc: skt}
		go h.sktReadLoop()
	}

	return h.Available()
}

// Option sets the options specified.
func (h *HCI) Option(opts ...wiimote.Option) error {
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return err
		}
	}
	return nil
}

// Addr returns the controller address read during bring-up.
func (h *HCI) Addr() wiimote.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.addr
}

// Close stops the session. Blocked enqueues fail and the opened transport, if
// any, is closed.
func (h *HCI) Close() error {
	h.muClose.Lock()
	defer h.muClose.Unlock()

	select {
	case <-h.done:
		//already closed, nothing to do
		return nil
	default:
		close(h.done)
	}

	if h.skt != nil {
		return errors.Wrap(h.skt.Close(), "can't close transport")
	}
	return nil
}

func (h *HCI) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// OnReceive queues one complete inbound H4 packet. It is called from the
// transport's delivery context and blocks while the rx queue is full.
func (h *HCI) OnReceive(b []byte) error {
	return h.rx.Enqueue(b)
}

// SendAvailable drains queued outbound packets while the transport has capacity.
func (h *HCI) SendAvailable() {
	h.muTx.Lock()
	defer h.muTx.Unlock()

	if h.transport == nil {
		return
	}

	for h.transport.CanSend() {
		p, ok := h.tx.TryDequeue()
		if !ok {
			return
		}
		if err := h.transport.Send(p); err != nil {
			h.dispatchError(errors.Wrapf(err, "can't send [% X]", p))
		}
	}
}

// Process flushes outbound packets and handles at most one inbound packet.
// It returns true if a packet was handled.
func (h *HCI) Process() bool {
	h.SendAvailable()

	p, ok := h.rx.TryDequeue()
	if !ok {
		return false
	}

	h.mu.Lock()
	if err := h.handlePkt(p); err != nil {
		h.fail(err)
	}
	h.mu.Unlock()

	h.SendAvailable()
	h.flushEvents()
	return true
}

// Run calls Process until ctx is done or the HCI is closed, pausing for
// interval whenever there is nothing to handle.
func (h *HCI) Run(ctx context.Context, interval time.Duration) error {
	for {
		if h.Process() {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.done:
			return ErrClosed
		case <-time.After(interval):
		}
	}
}

func (h *HCI) sktReadLoop() {
	b := make([]byte, 4096)

	for {
		n, err := h.skt.Read(b)

		switch {
		case !h.isOpen():
			return

		case n == 0 && err == nil:
			// read timeout
			continue

		//callers depend on detecting io.EOF, don't wrap it.
		case err == io.EOF:
			h.dispatchError(err)
			return

		case err != nil:
			h.logger.Debugf("skt read: %v", err)
			continue

		default:
			if err := h.OnReceive(b[:n]); err != nil {
				h.logger.Warnf("rx dropped: %v", err)
				return
			}
			h.SendAvailable()
		}
	}
}

func (h *HCI) handlePkt(b []byte) error {
	// Strip the 1-byte HCI header and pass down the rest of the packet.
	t, b := b[0], b[1:]
	switch t {
	case pktTypeACLData:
		return h.handleACL(b)
	case pktTypeEvent:
		return h.handleEvt(b)

		//unhandled stuff
	case pktTypeCommand:
		return fmt.Errorf("unmanaged cmd: % X", b)
	case pktTypeSCOData:
		return fmt.Errorf("unsupported sco packet: % X", b)
	case pktTypeVendor:
		return fmt.Errorf("unsupported vendor packet: % X", b)
	default:
		return fmt.Errorf("invalid packet: 0x%02X % X", t, b)
	}
}

func (h *HCI) handleEvt(b []byte) error {
	if len(b) < 2 {
		return fmt.Errorf("short event packet: % X", b)
	}
	code, plen := int(b[0]), int(b[1])
	if plen != len(b[2:]) {
		return fmt.Errorf("invalid event packet: % X", b)
	}

	if f := h.evth[code]; f != nil {
		return f(b[2:])
	}
	if code == 0xff { // Ignore vendor events
		return nil
	}
	h.logger.Debugf("unhandled event 0x%02X: [% X]", code, b[2:])
	return nil
}

func (h *HCI) handleInformational(b []byte) error {
	h.logger.Debugf("info event: [% X]", b)
	return nil
}

// sendCommand queues an HCI command. Called with h.mu held.
func (h *HCI) sendCommand(c Command) {
	b, err := encodeCommand(c)
	if err != nil {
		h.fail(err)
		return
	}
	h.logger.Debugf("cmd %04X: [% X]", c.OpCode(), b)
	if err := h.tx.Enqueue(b); err != nil {
		h.fail(errors.Wrapf(err, "cmd %04X lost", c.OpCode()))
	}
}

// sendACL queues one L2CAP frame for a link. Called with h.mu held.
func (h *HCI) sendACL(handle, cid uint16, payload []byte) {
	b := encodeACL(handle, cid, payload)
	if err := h.tx.Enqueue(b); err != nil {
		h.fail(errors.Wrapf(err, "acl %04X lost", handle))
	}
}

func (h *HCI) sendSignal(handle uint16, s signal) uint8 {
	id := h.nextSigID()
	h.sendACL(handle, cidSignaling, encodeSignal(id, s))
	return id
}

func (h *HCI) replySignal(handle uint16, id uint8, s signal) {
	h.sendACL(handle, cidSignaling, encodeSignal(id, s))
}

func (h *HCI) nextSigID() uint8 {
	id := h.sigID
	h.sigID++
	if h.sigID == 0 {
		// 0x00 is an invalid identifier
		h.sigID = 1
	}
	return id
}

// emit buffers an event for delivery once h.mu is released.
func (h *HCI) emit(e wiimote.Event) {
	h.pending = append(h.pending, e)
}

// fail buffers a non-fatal error for delivery once h.mu is released.
func (h *HCI) fail(err error) {
	h.failures = append(h.failures, err)
}

// flushEvents hands buffered errors and events to the host handlers. It must
// be called without h.mu held so handlers may call back into the HCI.
func (h *HCI) flushEvents() {
	h.mu.Lock()
	ee, ff := h.pending, h.failures
	h.pending, h.failures = nil, nil
	eh := h.eventHandler
	h.mu.Unlock()

	for _, err := range ff {
		h.dispatchError(err)
	}
	if eh == nil {
		return
	}
	for _, e := range ee {
		eh(e)
	}
}

func (h *HCI) dispatchError(e error) {
	switch {
	case e == nil:
		return
	case h.errorHandler == nil:
		h.logger.Error(e)
	case !h.isOpen():
		//don't dispatch
		h.logger.Debugf("hci closing: %v", e)
	default:
		h.errorHandler(e)
	}
}
