package hci

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Signaling command codes [Vol 3, Part A, 4].
const (
	SignalCommandReject         = 0x01
	SignalConnectionRequest     = 0x02
	SignalConnectionResponse    = 0x03
	SignalConfigurationRequest  = 0x04
	SignalConfigurationResponse = 0x05
	SignalDisconnectRequest     = 0x06
	SignalDisconnectResponse    = 0x07
)

// Connection response results.
const (
	connResultSuccess = 0x0000
	connResultPending = 0x0001
)

// Configuration option types [Vol 3, Part A, 5].
const (
	confOptionMTU    = 0x01
	confOptionMTULen = 2
	confResultOK     = 0x0000
)

type signal interface {
	Code() int
	Marshal() []byte
}

// ConnectionRequest implements Connection Request (0x02) [Vol 3, Part A, 4.2].
type ConnectionRequest struct {
	PSM       uint16
	SourceCID uint16
}

// Code returns the event code of the command.
func (s ConnectionRequest) Code() int { return SignalConnectionRequest }

// Marshal serializes the command parameters into binary form.
func (s *ConnectionRequest) Marshal() []byte {
	buf := bytes.NewBuffer(make([]byte, 0))
	binary.Write(buf, binary.LittleEndian, s)
	return buf.Bytes()
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (s *ConnectionRequest) Unmarshal(b []byte) error {
	return binary.Read(bytes.NewBuffer(b), binary.LittleEndian, s)
}

// ConnectionResponse implements Connection Response (0x03) [Vol 3, Part A, 4.3].
type ConnectionResponse struct {
	DestinationCID uint16
	SourceCID      uint16
	Result         uint16
	Status         uint16
}

// Code returns the event code of the command.
func (s ConnectionResponse) Code() int { return SignalConnectionResponse }

// Marshal serializes the command parameters into binary form.
func (s *ConnectionResponse) Marshal() []byte {
	buf := bytes.NewBuffer(make([]byte, 0))
	binary.Write(buf, binary.LittleEndian, s)
	return buf.Bytes()
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (s *ConnectionResponse) Unmarshal(b []byte) error {
	return binary.Read(bytes.NewBuffer(b), binary.LittleEndian, s)
}

// ConfigurationRequest implements Configuration Request (0x04) [Vol 3, Part A, 4.4].
type ConfigurationRequest struct {
	DestinationCID uint16
	Flags          uint16
	Options        []byte
}

// Code returns the event code of the command.
func (s ConfigurationRequest) Code() int { return SignalConfigurationRequest }

// Marshal serializes the command parameters into binary form.
func (s *ConfigurationRequest) Marshal() []byte {
	b := make([]byte, 4, 4+len(s.Options))
	binary.LittleEndian.PutUint16(b[0:], s.DestinationCID)
	binary.LittleEndian.PutUint16(b[2:], s.Flags)
	return append(b, s.Options...)
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (s *ConfigurationRequest) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("configuration request too short: %d", len(b))
	}
	s.DestinationCID = binary.LittleEndian.Uint16(b[0:])
	s.Flags = binary.LittleEndian.Uint16(b[2:])
	s.Options = append([]byte(nil), b[4:]...)
	return nil
}

// MTU returns the value of a request carrying exactly one MTU option.
func (s *ConfigurationRequest) MTU() (uint16, error) {
	o := s.Options
	if len(o) != 2+confOptionMTULen {
		return 0, fmt.Errorf("expected a single MTU option, got [% X]", o)
	}
	if o[0] != confOptionMTU || o[1] != confOptionMTULen {
		return 0, fmt.Errorf("unsupported option type 0x%02X len %d", o[0], o[1])
	}
	return binary.LittleEndian.Uint16(o[2:]), nil
}

// ConfigurationResponse implements Configuration Response (0x05) [Vol 3, Part A, 4.5].
type ConfigurationResponse struct {
	SourceCID uint16
	Flags     uint16
	Result    uint16
	Options   []byte
}

// Code returns the event code of the command.
func (s ConfigurationResponse) Code() int { return SignalConfigurationResponse }

// Marshal serializes the command parameters into binary form.
func (s *ConfigurationResponse) Marshal() []byte {
	b := make([]byte, 6, 6+len(s.Options))
	binary.LittleEndian.PutUint16(b[0:], s.SourceCID)
	binary.LittleEndian.PutUint16(b[2:], s.Flags)
	binary.LittleEndian.PutUint16(b[4:], s.Result)
	return append(b, s.Options...)
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (s *ConfigurationResponse) Unmarshal(b []byte) error {
	if len(b) < 6 {
		return fmt.Errorf("configuration response too short: %d", len(b))
	}
	s.SourceCID = binary.LittleEndian.Uint16(b[0:])
	s.Flags = binary.LittleEndian.Uint16(b[2:])
	s.Result = binary.LittleEndian.Uint16(b[4:])
	s.Options = append([]byte(nil), b[6:]...)
	return nil
}

// DisconnectRequest implements Disconnect Request (0x06) [Vol 3, Part A, 4.6].
type DisconnectRequest struct {
	DestinationCID uint16
	SourceCID      uint16
}

// Code returns the event code of the command.
func (s DisconnectRequest) Code() int { return SignalDisconnectRequest }

// Marshal serializes the command parameters into binary form.
func (s *DisconnectRequest) Marshal() []byte {
	buf := bytes.NewBuffer(make([]byte, 0))
	binary.Write(buf, binary.LittleEndian, s)
	return buf.Bytes()
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (s *DisconnectRequest) Unmarshal(b []byte) error {
	return binary.Read(bytes.NewBuffer(b), binary.LittleEndian, s)
}

// DisconnectResponse implements Disconnect Response (0x07) [Vol 3, Part A, 4.7].
type DisconnectResponse struct {
	DestinationCID uint16
	SourceCID      uint16
}

// Code returns the event code of the command.
func (s DisconnectResponse) Code() int { return SignalDisconnectResponse }

// Marshal serializes the command parameters into binary form.
func (s *DisconnectResponse) Marshal() []byte {
	buf := bytes.NewBuffer(make([]byte, 0))
	binary.Write(buf, binary.LittleEndian, s)
	return buf.Bytes()
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (s *DisconnectResponse) Unmarshal(b []byte) error {
	return binary.Read(bytes.NewBuffer(b), binary.LittleEndian, s)
}

func mtuOption(mtu uint16) []byte {
	return []byte{confOptionMTU, confOptionMTULen, byte(mtu), byte(mtu >> 8)}
}
