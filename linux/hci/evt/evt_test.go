package evt

import (
	"testing"
)

func TestInquiryResult(t *testing.T) {
	e := InquiryResult{
		2,
		0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x01, 0x00, 0x00, 0x04, 0x25, 0x00, 0x34, 0x12,
		0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x02, 0x00, 0x00, 0x0C, 0x02, 0x5A, 0x00, 0x00,
	}

	if e.NumResponses() != 2 {
		t.Fatalf("num responses %d", e.NumResponses())
	}
	if e.BDADDR(0) != [6]byte{0x06, 0x05, 0x04, 0x03, 0x02, 0x01} {
		t.Fatalf("addr 0 [% X]", e.BDADDR(0))
	}
	if e.PageScanRepetitionMode(1) != 0x02 {
		t.Fatalf("psrm 1 %02X", e.PageScanRepetitionMode(1))
	}
	if e.ClassOfDevice(0) != [3]byte{0x04, 0x25, 0x00} {
		t.Fatalf("cod 0 [% X]", e.ClassOfDevice(0))
	}
	if e.ClockOffset(0) != 0x1234 {
		t.Fatalf("clock offset 0 %04X", e.ClockOffset(0))
	}

	if _, err := e.BDADDRWErr(2); err == nil {
		t.Fatal("no error on out of range response")
	}

	short := InquiryResult{2, 0x06, 0x05, 0x04}
	if _, err := short.ClassOfDeviceWErr(0); err == nil {
		t.Fatal("no error on truncated response")
	}
}

func TestRemoteNameRequestComplete(t *testing.T) {
	b := []byte{0x00, 6, 5, 4, 3, 2, 1}
	b = append(b, []byte("Nintendo RVL-CNT-01")...)
	b = append(b, make([]byte, 248-len("Nintendo RVL-CNT-01"))...)
	e := RemoteNameRequestComplete(b)

	if e.Status() != 0 {
		t.Fatalf("status %02X", e.Status())
	}
	if e.BDADDR() != [6]byte{6, 5, 4, 3, 2, 1} {
		t.Fatalf("addr [% X]", e.BDADDR())
	}
	if e.RemoteName() != "Nintendo RVL-CNT-01" {
		t.Fatalf("name %q", e.RemoteName())
	}

	if _, err := RemoteNameRequestComplete(b[:7]).RemoteNameWErr(); err == nil {
		t.Fatal("no error on missing name")
	}
}

func TestCommandEvents(t *testing.T) {
	cc := CommandComplete{0x01, 0x03, 0x0C, 0x00}
	if cc.CommandOpcode() != 0x0C03 || cc.Status() != 0 {
		t.Fatalf("command complete %04X %02X", cc.CommandOpcode(), cc.Status())
	}

	nop := CommandComplete{0x01, 0x00, 0x00}
	if _, err := nop.StatusWErr(); err == nil {
		t.Fatal("no error on missing status")
	}

	cs := CommandStatus{0x00, 0x01, 0x01, 0x04}
	if !cs.Valid() || cs.CommandOpcode() != 0x0401 || cs.Status() != 0 {
		t.Fatalf("command status %v %04X %02X", cs.Valid(), cs.CommandOpcode(), cs.Status())
	}
}

func TestConnectionComplete(t *testing.T) {
	e := ConnectionComplete{0x00, 0x10, 0x20, 6, 5, 4, 3, 2, 1, 0x01, 0x00}
	if e.Status() != 0 || e.ConnectionHandle() != 0x0010 || e.LinkType() != 1 {
		t.Fatalf("got status %02X handle %04X link %02X", e.Status(), e.ConnectionHandle(), e.LinkType())
	}

	d := DisconnectionComplete{0x00, 0x10, 0x00, 0x13}
	if d.ConnectionHandle() != 0x0010 || d.Reason() != 0x13 {
		t.Fatalf("got handle %04X reason %02X", d.ConnectionHandle(), d.Reason())
	}
}
