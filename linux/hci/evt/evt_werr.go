package evt

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	inquiryRecordLen = 6 + 1 + 2 + 3 + 2
	remoteNameLen    = 248
)

func (e CommandComplete) NumHCICommandPacketsWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e CommandComplete) CommandOpcodeWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e CommandComplete) ReturnParametersWErr() ([]byte, error) {
	return getBytes(e, 3, -1)
}

func (e CommandComplete) StatusWErr() (uint8, error) {
	return getByte(e, 3, 0xff)
}

func (e CommandStatus) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e CommandStatus) NumHCICommandPacketsWErr() (uint8, error) {
	return getByte(e, 1, 0)
}

func (e CommandStatus) CommandOpcodeWErr() (uint16, error) {
	return getUint16LE(e, 2, 0xffff)
}

// Valid checks the fixed length of a command status event.
func (e CommandStatus) Valid() bool {
	return len(e) == 4
}

func (e InquiryComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e InquiryResult) NumResponsesWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e InquiryResult) record(i int) ([]byte, error) {
	nr, err := e.NumResponsesWErr()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= int(nr) {
		return nil, fmt.Errorf("response %d out of range (%d)", i, nr)
	}
	return getBytes(e, 1+inquiryRecordLen*i, inquiryRecordLen)
}

func (e InquiryResult) BDADDRWErr(i int) ([6]byte, error) {
	r, err := e.record(i)
	if err != nil {
		return [6]byte{}, err
	}
	out := [6]byte{}
	copy(out[:], r[0:6])
	return out, nil
}

func (e InquiryResult) PageScanRepetitionModeWErr(i int) (uint8, error) {
	r, err := e.record(i)
	if err != nil {
		return 0, err
	}
	return r[6], nil
}

func (e InquiryResult) ClassOfDeviceWErr(i int) ([3]byte, error) {
	r, err := e.record(i)
	if err != nil {
		return [3]byte{}, err
	}
	out := [3]byte{}
	copy(out[:], r[9:12])
	return out, nil
}

func (e InquiryResult) ClockOffsetWErr(i int) (uint16, error) {
	r, err := e.record(i)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r[12:14]), nil
}

func (e RemoteNameRequestComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e RemoteNameRequestComplete) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 1)
}

// RemoteNameWErr returns the name up to the first NUL. Controllers may send
// fewer than 248 bytes; whatever is present is used.
func (e RemoteNameRequestComplete) RemoteNameWErr() (string, error) {
	b, err := getBytes(e, 7, -1)
	if err != nil {
		return "", err
	}
	if len(b) > remoteNameLen {
		b = b[:remoteNameLen]
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

func (e ConnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e ConnectionComplete) ConnectionHandleWErr() (uint16, error) {
	h, err := getUint16LE(e, 1, 0xffff)
	return h & 0x0fff, err
}

func (e ConnectionComplete) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 3)
}

func (e ConnectionComplete) LinkTypeWErr() (uint8, error) {
	return getByte(e, 9, 0xff)
}

func (e ConnectionComplete) EncryptionEnabledWErr() (uint8, error) {
	return getByte(e, 10, 0)
}

func (e DisconnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e DisconnectionComplete) ConnectionHandleWErr() (uint16, error) {
	h, err := getUint16LE(e, 1, 0xffff)
	return h & 0x0fff, err
}

func (e DisconnectionComplete) ReasonWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

func getAddr(b []byte, i int) ([6]byte, error) {
	bb, err := getBytes(b, i, 6)
	if err != nil {
		return [6]byte{}, err
	}
	out := [6]byte{}
	copy(out[:], bb)
	return out, nil
}

// get or default
func getByte(b []byte, i int, def byte) (byte, error) {
	bb, err := getBytes(b, i, 1)
	if err != nil {
		return def, err
	}
	return bb[0], nil
}

// get or default
func getUint16LE(b []byte, i int, def uint16) (uint16, error) {
	bb, err := getBytes(b, i, 2)
	if err != nil {
		return def, err
	}
	return binary.LittleEndian.Uint16(bb), nil
}

func getBytes(bytes []byte, start int, count int) ([]byte, error) {
	if bytes == nil || start >= len(bytes) {
		return nil, fmt.Errorf("index error")
	}

	if count < 0 {
		return bytes[start:], nil
	}

	end := start + count
	//end is non-inclusive
	if end > len(bytes) {
		return nil, fmt.Errorf("index error")
	}

	return bytes[start:end], nil
}
