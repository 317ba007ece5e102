package hci

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Command ...
type Command interface {
	OpCode() int
	Len() int
	Marshal([]byte) error
}

// encodeCommand builds an H4 command packet: [0x01][op lo][op hi][plen][params].
func encodeCommand(c Command) ([]byte, error) {
	b := make([]byte, cmdHeaderLen+c.Len())
	b[0] = pktTypeCommand
	b[1] = byte(c.OpCode())
	b[2] = byte(c.OpCode() >> 8)
	b[3] = byte(c.Len())
	if err := c.Marshal(b[cmdHeaderLen:]); err != nil {
		return nil, errors.Wrapf(err, "can't marshal cmd %04X", c.OpCode())
	}
	return b, nil
}

// encodeACL wraps payload in a single L2CAP basic frame inside one ACL packet.
// Frames are always complete and point-to-point; payloads must fit one packet.
func encodeACL(handle, cid uint16, payload []byte) []byte {
	l2len := pduHeaderLen + len(payload)
	b := make([]byte, aclHeaderLen+l2len)
	b[0] = pktTypeACLData
	b[1] = byte(handle)
	b[2] = byte(handle>>8)&0x0f | pbfFirstFlushable<<4 | bcfPointToPoint<<6
	binary.LittleEndian.PutUint16(b[3:], uint16(l2len))
	binary.LittleEndian.PutUint16(b[5:], uint16(len(payload)))
	binary.LittleEndian.PutUint16(b[7:], cid)
	copy(b[aclHeaderLen+pduHeaderLen:], payload)
	return b
}

// encodeSignal builds a signaling command: [code][id][len lo][len hi][data].
func encodeSignal(id uint8, s signal) []byte {
	d := s.Marshal()
	b := make([]byte, sigHeaderLen, sigHeaderLen+len(d))
	b[0] = byte(s.Code())
	b[1] = id
	binary.LittleEndian.PutUint16(b[2:], uint16(len(d)))
	return append(b, d...)
}
