package hci

import "encoding/binary"

// aclPacket implements HCI ACL Data Packet [Vol 2, Part E, 5.4.2], without the H4 type byte.
// Packet boundary flags , bit[4:5] of handle field's MSB
// Broadcast flags. bit[6:7] of handle field's MSB
type aclPacket []byte

func (a aclPacket) valid() bool    { return len(a) >= 4 && len(a[4:]) >= a.dlen() }
func (a aclPacket) handle() uint16 { return uint16(a[0]) | (uint16(a[1]&0x0f) << 8) }
func (a aclPacket) pbf() int       { return (int(a[1]) >> 4) & 0x3 }
func (a aclPacket) bcf() int       { return (int(a[1]) >> 6) & 0x3 }
func (a aclPacket) dlen() int      { return int(a[2]) | (int(a[3]) << 8) }
func (a aclPacket) data() []byte   { return a[4 : 4+a.dlen()] }

// pdu is a basic L2CAP frame [Vol 3, Part A, 3.1].
type pdu []byte

func (p pdu) valid() bool     { return len(p) >= pduHeaderLen && len(p[pduHeaderLen:]) >= p.dlen() }
func (p pdu) dlen() int       { return int(binary.LittleEndian.Uint16(p[0:2])) }
func (p pdu) cid() uint16     { return binary.LittleEndian.Uint16(p[2:4]) }
func (p pdu) payload() []byte { return p[pduHeaderLen : pduHeaderLen+p.dlen()] }

// sigCmd is one signaling command on the signaling channel [Vol 3, Part A, 4].
type sigCmd []byte

func (s sigCmd) valid() bool  { return len(s) >= sigHeaderLen && len(s[sigHeaderLen:]) >= s.dlen() }
func (s sigCmd) code() uint8  { return s[0] }
func (s sigCmd) id() uint8    { return s[1] }
func (s sigCmd) dlen() int    { return int(binary.LittleEndian.Uint16(s[2:4])) }
func (s sigCmd) data() []byte { return s[sigHeaderLen : sigHeaderLen+s.dlen()] }

// cmdPacket is an H4 command packet, type byte included.
type cmdPacket []byte

func (c cmdPacket) pktType() uint8 { return c[0] }
func (c cmdPacket) opcode() uint16 { return binary.LittleEndian.Uint16(c[1:3]) }
func (c cmdPacket) plen() int      { return int(c[3]) }
func (c cmdPacket) params() []byte { return c[cmdHeaderLen : cmdHeaderLen+c.plen()] }
