// Package cmd implements the HCI commands used by the BR/EDR host.
package cmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Opcode group fields [Vol 2, Part E, 7].
const (
	ogfLinkControl  = 0x01 << 10
	ogfHostControl  = 0x03 << 10
	ogfInfoParams   = 0x04 << 10
	LocalNameLength = 248
)

// Opcodes (OGF | OCF).
const (
	InquiryOpCode            = ogfLinkControl | 0x0001
	InquiryCancelOpCode      = ogfLinkControl | 0x0002
	CreateConnectionOpCode   = ogfLinkControl | 0x0005
	DisconnectOpCode         = ogfLinkControl | 0x0006
	RemoteNameRequestOpCode  = ogfLinkControl | 0x0019
	ResetOpCode              = ogfHostControl | 0x0003
	WriteLocalNameOpCode     = ogfHostControl | 0x0013
	WriteScanEnableOpCode    = ogfHostControl | 0x001A
	WriteClassOfDeviceOpCode = ogfHostControl | 0x0024
	ReadBDADDROpCode         = ogfInfoParams | 0x0009
)

// Scan enable modes for WriteScanEnable.
const (
	ScanDisabled        = 0x00
	InquiryScan         = 0x01
	PageScan            = 0x02
	InquiryAndPageScans = 0x03
)

// GIAC is the General/Unlimited Inquiry Access Code.
const GIAC = 0x9E8B33

func marshal(c interface{}, n int, b []byte) error {
	if len(b) < n {
		return fmt.Errorf("buffer too small: %d < %d", len(b), n)
	}
	buf := bytes.NewBuffer(b[:0])
	return binary.Write(buf, binary.LittleEndian, c)
}

// Reset implements Reset (0x03|0x0003) [Vol 2, Part E, 7.3.2].
type Reset struct{}

func (c *Reset) OpCode() int            { return ResetOpCode }
func (c *Reset) Len() int               { return 0 }
func (c *Reset) Marshal(b []byte) error { return nil }

// ReadBDADDR implements Read BD_ADDR (0x04|0x0009) [Vol 2, Part E, 7.4.6].
type ReadBDADDR struct{}

func (c *ReadBDADDR) OpCode() int            { return ReadBDADDROpCode }
func (c *ReadBDADDR) Len() int               { return 0 }
func (c *ReadBDADDR) Marshal(b []byte) error { return nil }

// ReadBDADDRRP returns the return parameter of Read BD_ADDR. BDADDR is in wire order.
type ReadBDADDRRP struct {
	Status uint8
	BDADDR [6]byte
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadBDADDRRP) Unmarshal(b []byte) error {
	return binary.Read(bytes.NewBuffer(b), binary.LittleEndian, c)
}

// WriteLocalName implements Write Local Name (0x03|0x0013) [Vol 2, Part E, 7.3.11].
type WriteLocalName struct {
	LocalName [LocalNameLength]byte
}

// NewWriteLocalName NUL pads name; longer names are truncated.
func NewWriteLocalName(name string) *WriteLocalName {
	c := &WriteLocalName{}
	copy(c.LocalName[:LocalNameLength-1], name)
	return c
}

func (c *WriteLocalName) OpCode() int            { return WriteLocalNameOpCode }
func (c *WriteLocalName) Len() int               { return LocalNameLength }
func (c *WriteLocalName) Marshal(b []byte) error { return marshal(c, c.Len(), b) }

// WriteClassOfDevice implements Write Class of Device (0x03|0x0024) [Vol 2, Part E, 7.3.26].
type WriteClassOfDevice struct {
	ClassOfDevice [3]byte
}

func (c *WriteClassOfDevice) OpCode() int            { return WriteClassOfDeviceOpCode }
func (c *WriteClassOfDevice) Len() int               { return 3 }
func (c *WriteClassOfDevice) Marshal(b []byte) error { return marshal(c, c.Len(), b) }

// WriteScanEnable implements Write Scan Enable (0x03|0x001A) [Vol 2, Part E, 7.3.18].
type WriteScanEnable struct {
	ScanEnable uint8
}

func (c *WriteScanEnable) OpCode() int            { return WriteScanEnableOpCode }
func (c *WriteScanEnable) Len() int               { return 1 }
func (c *WriteScanEnable) Marshal(b []byte) error { return marshal(c, c.Len(), b) }

// Inquiry implements Inquiry (0x01|0x0001) [Vol 2, Part E, 7.1.1].
type Inquiry struct {
	LAP           [3]byte
	InquiryLength uint8
	NumResponses  uint8
}

// NewInquiry builds an inquiry for a 24-bit LAP. NumResponses 0 is unlimited.
func NewInquiry(lap uint32, length, num uint8) *Inquiry {
	return &Inquiry{
		LAP:           [3]byte{byte(lap), byte(lap >> 8), byte(lap >> 16)},
		InquiryLength: length,
		NumResponses:  num,
	}
}

func (c *Inquiry) OpCode() int            { return InquiryOpCode }
func (c *Inquiry) Len() int               { return 5 }
func (c *Inquiry) Marshal(b []byte) error { return marshal(c, c.Len(), b) }

// InquiryCancel implements Inquiry Cancel (0x01|0x0002) [Vol 2, Part E, 7.1.2].
type InquiryCancel struct{}

func (c *InquiryCancel) OpCode() int            { return InquiryCancelOpCode }
func (c *InquiryCancel) Len() int               { return 0 }
func (c *InquiryCancel) Marshal(b []byte) error { return nil }

// RemoteNameRequest implements Remote Name Request (0x01|0x0019) [Vol 2, Part E, 7.1.19].
type RemoteNameRequest struct {
	BDADDR                 [6]byte
	PageScanRepetitionMode uint8
	Reserved               uint8
	ClockOffset            uint16
}

func (c *RemoteNameRequest) OpCode() int            { return RemoteNameRequestOpCode }
func (c *RemoteNameRequest) Len() int               { return 10 }
func (c *RemoteNameRequest) Marshal(b []byte) error { return marshal(c, c.Len(), b) }

// CreateConnection implements Create Connection (0x01|0x0005) [Vol 2, Part E, 7.1.5].
type CreateConnection struct {
	BDADDR                 [6]byte
	PacketType             uint16
	PageScanRepetitionMode uint8
	Reserved               uint8
	ClockOffset            uint16
	AllowRoleSwitch        uint8
}

func (c *CreateConnection) OpCode() int            { return CreateConnectionOpCode }
func (c *CreateConnection) Len() int               { return 13 }
func (c *CreateConnection) Marshal(b []byte) error { return marshal(c, c.Len(), b) }

// Disconnect implements Disconnect (0x01|0x0006) [Vol 2, Part E, 7.1.6].
type Disconnect struct {
	ConnectionHandle uint16
	Reason           uint8
}

func (c *Disconnect) OpCode() int            { return DisconnectOpCode }
func (c *Disconnect) Len() int               { return 3 }
func (c *Disconnect) Marshal(b []byte) error { return marshal(c, c.Len(), b) }
