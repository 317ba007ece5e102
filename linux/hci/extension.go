package hci

import (
	"bytes"
	"fmt"

	"github.com/rigado/wiimote/balance"
)

// queryState is the extension query cursor of one link.
type queryState int

const (
	queryIdle queryState = iota
	queryUnlock
	queryInit
	queryIdentify
	queryCalibration
	queryCalibrationHigh
)

func (s queryState) String() string {
	switch s {
	case queryIdle:
		return "idle"
	case queryUnlock:
		return "unlock"
	case queryInit:
		return "init"
	case queryIdentify:
		return "identify"
	case queryCalibration:
		return "calibration"
	case queryCalibrationHigh:
		return "calibration-high"
	default:
		return fmt.Sprintf("queryState(%d)", int(s))
	}
}

// Extension registers, in the control register address space.
const (
	regExtensionUnlock        = 0xA400F0
	regExtensionInit          = 0xA400FB
	regExtensionID            = 0xA400FA
	regBalanceCalibration     = 0xA40024
	regBalanceCalibrationHigh = 0xA40034

	extensionIDLen            = 6
	balanceCalibrationLen     = 16
	balanceCalibrationHighLen = 8

	extensionUnlockValue = 0x55
	extensionInitValue   = 0x00

	statusExtensionConnected = 0x02
)

var (
	idNunchuk      = []byte{0x00, 0x00, 0xA4, 0x20, 0x00, 0x00}
	idBalanceBoard = []byte{0x00, 0x00, 0xA4, 0x20, 0x04, 0x02}
)

// reportWriter issues the output reports the extension query needs.
type reportWriter interface {
	writeMemory(handle uint16, addr uint32, data []byte) error
	readMemory(handle uint16, addr uint32, size uint16) error
	setReportingMode(handle uint16, mode uint8, continuous bool) error
}

// readData is a Read Memory Data report: A1 21 BB BB SE AH AL DD...
type readData []byte

func (r readData) valid() bool    { return len(r) >= 7 && r[0] == hidInput && r[1] == reportReadData }
func (r readData) size() int      { return int(r[4]>>4) + 1 }
func (r readData) errCode() uint8 { return r[4] & 0x0f }
func (r readData) addr() uint16   { return uint16(r[5])<<8 | uint16(r[6]) }
func (r readData) data() []byte   { return r[7:] }

// ack is an Acknowledge Output Report: A1 22 BB BB RR EE
type ack []byte

func (a ack) valid() bool    { return len(a) >= 6 && a[0] == hidInput && a[1] == reportAck }
func (a ack) report() uint8  { return a[4] }
func (a ack) errCode() uint8 { return a[5] }
func (a ack) isWrite() bool  { return a.report() == reportWriteMemory }

// observeExtension advances the link's extension query with one input report.
// Reports that do not match the current step are ignored.
func (l *link) observeExtension(r []byte, w reportWriter) error {
	if len(r) < 2 || r[0] != hidInput {
		return nil
	}

	switch l.query {
	case queryIdle:
		if r[1] != reportStatus || len(r) < 5 {
			return nil
		}
		if r[4]&statusExtensionConnected == 0 {
			l.logger.Debug("no extension")
			return w.setReportingMode(l.handle, modeCoreButtons, false)
		}
		l.logger.Debug("extension connected, unlocking")
		l.setQuery(queryUnlock)
		return w.writeMemory(l.handle, regExtensionUnlock, []byte{extensionUnlockValue})

	case queryUnlock, queryInit:
		a := ack(r)
		if !a.valid() || !a.isWrite() {
			return nil
		}
		if a.errCode() != 0 {
			state := l.query
			l.setQuery(queryIdle)
			return fmt.Errorf("extension %v write failed: %02X", state, a.errCode())
		}
		if l.query == queryUnlock {
			l.setQuery(queryInit)
			return w.writeMemory(l.handle, regExtensionInit, []byte{extensionInitValue})
		}
		l.setQuery(queryIdentify)
		return w.readMemory(l.handle, regExtensionID, extensionIDLen)

	case queryIdentify:
		d, err := l.readResponse(r, regExtensionID, extensionIDLen)
		if d == nil || err != nil {
			return err
		}
		l.extension = append(l.extension[:0], d...)

		switch {
		case bytes.Equal(d, idNunchuk):
			l.logger.Info("nunchuk connected")
			l.setQuery(queryIdle)
			return w.setReportingMode(l.handle, modeButtonsExt8, true)

		case bytes.Equal(d, idBalanceBoard):
			l.logger.Info("balance board, reading calibration")
			l.setQuery(queryCalibration)
			return w.readMemory(l.handle, regBalanceCalibration, balanceCalibrationLen)

		default:
			l.logger.Infof("unknown extension [% X]", d)
			l.setQuery(queryIdle)
			return nil
		}

	case queryCalibration:
		d, err := l.readResponse(r, regBalanceCalibration, balanceCalibrationLen)
		if d == nil || err != nil {
			return err
		}
		cal := &balance.Calibration{}
		if err := cal.SetLow(d); err != nil {
			l.setQuery(queryIdle)
			return err
		}
		l.pendingCal = cal
		l.setQuery(queryCalibrationHigh)
		return w.readMemory(l.handle, regBalanceCalibrationHigh, balanceCalibrationHighLen)

	case queryCalibrationHigh:
		d, err := l.readResponse(r, regBalanceCalibrationHigh, balanceCalibrationHighLen)
		if d == nil || err != nil {
			return err
		}
		cal := l.pendingCal
		l.pendingCal = nil
		if cal == nil {
			l.setQuery(queryIdle)
			return fmt.Errorf("high calibration without low block")
		}
		if err := cal.SetHigh(d); err != nil {
			l.setQuery(queryIdle)
			return err
		}
		l.calibration = cal
		l.logger.Debugf("calibration %v", *cal)
		l.setQuery(queryIdle)
		return w.setReportingMode(l.handle, modeButtonsExt19, true)
	}
	return nil
}

// readResponse returns the data of a read response for addr, or nil if r is
// not one. A response for addr carrying an error code resets the query;
// responses for other addresses are ignored.
func (l *link) readResponse(r []byte, addr uint32, size int) ([]byte, error) {
	rd := readData(r)
	if !rd.valid() {
		return nil, nil
	}
	if rd.addr() != uint16(addr) {
		return nil, nil
	}
	if rd.errCode() != 0 {
		state := l.query
		l.setQuery(queryIdle)
		return nil, fmt.Errorf("extension %v read failed: %X", state, rd.errCode())
	}
	if rd.size() < size || len(rd.data()) < size {
		state := l.query
		l.setQuery(queryIdle)
		return nil, fmt.Errorf("extension %v read short: %d of %d", state, len(rd.data()), size)
	}
	return rd.data()[:size], nil
}

func (l *link) setQuery(s queryState) {
	if l.query != s {
		l.logger.Debugf("query %v -> %v", l.query, s)
	}
	l.query = s
}
