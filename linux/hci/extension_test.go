package hci

import (
	"fmt"
	"testing"

	"github.com/rigado/wiimote"
	"github.com/rigado/wiimote/balance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures the output reports requested by the extension query.
type recorder struct {
	calls []string
}

func (r *recorder) writeMemory(handle uint16, addr uint32, data []byte) error {
	r.calls = append(r.calls, fmt.Sprintf("write %06X [% X]", addr, data))
	return nil
}

func (r *recorder) readMemory(handle uint16, addr uint32, size uint16) error {
	r.calls = append(r.calls, fmt.Sprintf("read %06X %d", addr, size))
	return nil
}

func (r *recorder) setReportingMode(handle uint16, mode uint8, continuous bool) error {
	r.calls = append(r.calls, fmt.Sprintf("mode %02X %v", mode, continuous))
	return nil
}

func (r *recorder) take() []string {
	c := r.calls
	r.calls = nil
	return c
}

func statusReport(flags byte) []byte {
	return []byte{hidInput, reportStatus, 0x00, 0x00, flags, 0x00, 0x00, 0x80}
}

func ackReport(report, code byte) []byte {
	return []byte{hidInput, reportAck, 0x00, 0x00, report, code}
}

func readReport(addr uint16, errCode byte, data ...byte) []byte {
	se := byte(len(data)-1)<<4 | errCode
	if len(data) == 0 {
		se = errCode
	}
	b := []byte{hidInput, reportReadData, 0x00, 0x00, se, byte(addr >> 8), byte(addr)}
	return append(b, data...)
}

// be16 lays out counts as big-endian words.
func be16(vv ...uint16) []byte {
	var b []byte
	for _, v := range vv {
		b = append(b, byte(v>>8), byte(v))
	}
	return b
}

var (
	calLow  = be16(100, 100, 100, 100, 200, 200, 200, 200)
	calHigh = be16(300, 300, 300, 300)
)

func testLink() *link {
	return newLink(testHandle, remoteA, wiimote.GetLogger())
}

func TestExtensionQueryBalanceBoard(t *testing.T) {
	l := testLink()
	w := &recorder{}

	require.NoError(t, l.observeExtension(statusReport(statusExtensionConnected), w))
	assert.Equal(t, []string{"write A400F0 [55]"}, w.take())
	assert.Equal(t, queryUnlock, l.query)

	require.NoError(t, l.observeExtension(ackReport(reportWriteMemory, 0x00), w))
	assert.Equal(t, []string{"write A400FB [00]"}, w.take())
	assert.Equal(t, queryInit, l.query)

	require.NoError(t, l.observeExtension(ackReport(reportWriteMemory, 0x00), w))
	assert.Equal(t, []string{"read A400FA 6"}, w.take())
	assert.Equal(t, queryIdentify, l.query)

	require.NoError(t, l.observeExtension(readReport(0x00FA, 0, idBalanceBoard...), w))
	assert.Equal(t, []string{"read A40024 16"}, w.take())
	assert.Equal(t, queryCalibration, l.query)
	assert.Equal(t, idBalanceBoard, l.extension)

	require.NoError(t, l.observeExtension(readReport(0x0024, 0, calLow...), w))
	assert.Equal(t, []string{"read A40034 8"}, w.take())
	assert.Equal(t, queryCalibrationHigh, l.query)
	assert.Nil(t, l.calibration)

	require.NoError(t, l.observeExtension(readReport(0x0034, 0, calHigh...), w))
	assert.Equal(t, []string{"mode 34 true"}, w.take())
	assert.Equal(t, queryIdle, l.query)

	require.NotNil(t, l.calibration)
	want := balance.Calibration{100, 100, 100, 100, 200, 200, 200, 200, 300, 300, 300, 300}
	assert.Equal(t, want, *l.calibration)
}

func TestExtensionQueryNunchuk(t *testing.T) {
	l := testLink()
	w := &recorder{}

	l.observeExtension(statusReport(statusExtensionConnected), w)
	l.observeExtension(ackReport(reportWriteMemory, 0x00), w)
	l.observeExtension(ackReport(reportWriteMemory, 0x00), w)
	w.take()

	require.NoError(t, l.observeExtension(readReport(0x00FA, 0, idNunchuk...), w))
	assert.Equal(t, []string{"mode 32 true"}, w.take())
	assert.Equal(t, queryIdle, l.query)
	assert.Nil(t, l.calibration)
}

func TestExtensionQueryUnknownIdentity(t *testing.T) {
	l := testLink()
	w := &recorder{}

	l.observeExtension(statusReport(statusExtensionConnected), w)
	l.observeExtension(ackReport(reportWriteMemory, 0x00), w)
	l.observeExtension(ackReport(reportWriteMemory, 0x00), w)
	w.take()

	require.NoError(t, l.observeExtension(readReport(0x00FA, 0, 0x00, 0x00, 0xA4, 0x20, 0x01, 0x01), w))
	assert.Empty(t, w.take())
	assert.Equal(t, queryIdle, l.query)
}

func TestExtensionQueryNoExtension(t *testing.T) {
	l := testLink()
	w := &recorder{}

	require.NoError(t, l.observeExtension(statusReport(0x00), w))
	assert.Equal(t, []string{"mode 30 false"}, w.take())
	assert.Equal(t, queryIdle, l.query)
}

func TestExtensionQueryFailures(t *testing.T) {
	tests := []struct {
		name   string
		steps  int
		report []byte
	}{
		{"unlock nack", 1, ackReport(reportWriteMemory, 0x03)},
		{"init nack", 2, ackReport(reportWriteMemory, 0x04)},
		{"identify error", 3, readReport(0x00FA, 0x08)},
		{"identify short", 3, readReport(0x00FA, 0, 0x00, 0x00, 0xA4)},
		{"calibration error", 4, readReport(0x0024, 0x07)},
		{"calibration high error", 5, readReport(0x0034, 0x08)},
	}

	setup := [][]byte{
		statusReport(statusExtensionConnected),
		ackReport(reportWriteMemory, 0x00),
		ackReport(reportWriteMemory, 0x00),
		readReport(0x00FA, 0, idBalanceBoard...),
		readReport(0x0024, 0, calLow...),
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := testLink()
			w := &recorder{}
			for _, r := range setup[:tc.steps] {
				require.NoError(t, l.observeExtension(r, w))
			}
			w.take()

			assert.Error(t, l.observeExtension(tc.report, w))
			assert.Empty(t, w.take())
			assert.Equal(t, queryIdle, l.query)
			assert.Nil(t, l.calibration)
		})
	}
}

func TestExtensionQueryIgnoresUnrelatedReports(t *testing.T) {
	l := testLink()
	w := &recorder{}

	// button reports while idle
	require.NoError(t, l.observeExtension([]byte{hidInput, modeCoreButtons, 0x00, 0x08}, w))
	require.NoError(t, l.observeExtension(ackReport(reportWriteMemory, 0x00), w))
	assert.Empty(t, w.take())

	l.observeExtension(statusReport(statusExtensionConnected), w)
	w.take()

	// an ack for another report does not advance the unlock
	require.NoError(t, l.observeExtension(ackReport(reportLEDs, 0x00), w))
	require.NoError(t, l.observeExtension(statusReport(statusExtensionConnected), w))
	assert.Empty(t, w.take())
	assert.Equal(t, queryUnlock, l.query)

	l.observeExtension(ackReport(reportWriteMemory, 0x00), w)
	l.observeExtension(ackReport(reportWriteMemory, 0x00), w)
	w.take()

	// a read of another address is not the identity
	require.NoError(t, l.observeExtension(readReport(0x0020, 0, 0x01, 0x02), w))
	assert.Empty(t, w.take())
	assert.Equal(t, queryIdentify, l.query)

	// nor is a failed read of another address
	require.NoError(t, l.observeExtension(readReport(0x0024, 0x08), w))
	assert.Empty(t, w.take())
	assert.Equal(t, queryIdentify, l.query)

	require.NoError(t, l.observeExtension([]byte{0xA3, reportReadData}, w))
	assert.Equal(t, queryIdentify, l.query)
}

func TestExtensionQueryPerLink(t *testing.T) {
	a, b := testLink(), newLink(0x0011, remoteB, wiimote.GetLogger())
	w := &recorder{}

	a.observeExtension(statusReport(statusExtensionConnected), w)
	b.observeExtension(statusReport(0x00), w)

	assert.Equal(t, queryUnlock, a.query)
	assert.Equal(t, queryIdle, b.query)
}

// Drives the query over the wire and checks the output reports.
func TestExtensionQueryOutputReports(t *testing.T) {
	hn := newHarness(t)
	hn.connectLink(testHandle, remoteA)

	in := func(r []byte) []byte {
		t.Helper()
		hn.feed(aclIn(testHandle, 0x0041, r...))
		require.Empty(t, hn.takeErrs())
		sent := hn.sent()
		if len(sent) == 0 {
			return nil
		}
		require.Len(t, sent, 1)
		handle, cid, p := l2capOut(t, sent[0])
		assert.Equal(t, testHandle, handle)
		assert.Equal(t, remoteInterrupt, cid)
		return p
	}

	unlock := append([]byte{0xA2, 0x16, 0x04, 0xA4, 0x00, 0xF0, 0x01, 0x55}, make([]byte, 15)...)
	assert.Equal(t, unlock, in(statusReport(statusExtensionConnected)))

	initExt := append([]byte{0xA2, 0x16, 0x04, 0xA4, 0x00, 0xFB, 0x01, 0x00}, make([]byte, 15)...)
	assert.Equal(t, initExt, in(ackReport(reportWriteMemory, 0x00)))

	assert.Equal(t, []byte{0xA2, 0x17, 0x04, 0xA4, 0x00, 0xFA, 0x00, 0x06}, in(ackReport(reportWriteMemory, 0x00)))
	assert.Equal(t, []byte{0xA2, 0x17, 0x04, 0xA4, 0x00, 0x24, 0x00, 0x10}, in(readReport(0x00FA, 0, idBalanceBoard...)))
	assert.Equal(t, []byte{0xA2, 0x17, 0x04, 0xA4, 0x00, 0x34, 0x00, 0x08}, in(readReport(0x0024, 0, calLow...)))
	assert.Equal(t, []byte{0xA2, 0x12, 0x04, 0x34}, in(readReport(0x0034, 0, calHigh...)))

	cal, err := hn.h.Calibration(testHandle)
	require.NoError(t, err)
	assert.Equal(t, uint16(300), cal.At(balance.LoadHigh, balance.BottomLeft))

	// every input report reached the host
	ee := hn.takeEvents()
	require.Len(t, ee, 6)
	for _, e := range ee {
		assert.Equal(t, wiimote.EventReport, e.Type)
		assert.Equal(t, remoteA, e.Addr)
	}
}

func TestExtensionQueryNoExtensionOutputReport(t *testing.T) {
	hn := newHarness(t)
	hn.connectLink(testHandle, remoteA)

	hn.feed(aclIn(testHandle, 0x0041, statusReport(0x00)...))
	sent := hn.sent()
	require.Len(t, sent, 1)
	_, _, p := l2capOut(t, sent[0])
	assert.Equal(t, []byte{0xA2, 0x12, 0x00, 0x30}, p)
}
