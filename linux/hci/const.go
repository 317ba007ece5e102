package hci

// HCI Packet types
const (
	pktTypeCommand uint8 = 0x01
	pktTypeACLData uint8 = 0x02
	pktTypeSCOData uint8 = 0x03
	pktTypeEvent   uint8 = 0x04
	pktTypeVendor  uint8 = 0xFF
)

// Packet boundary flags of HCI ACL Data Packet [Vol 2, Part E, 5.4.2].
const (
	pbfFirstNonFlushable = 0x00 // Start of a non-automatically-flushable PDU from host.
	pbfContinuing        = 0x01 // Continuing fragment.
	pbfFirstFlushable    = 0x02 // Start of an automatically-flushable PDU (complete, single packet here).
)

// Broadcast flags of HCI ACL Data Packet.
const (
	bcfPointToPoint = 0x00
)

// L2CAP fixed channel and PSMs [Vol 3, Part A, 2.1; HID profile].
const (
	cidSignaling    uint16 = 0x0001
	minDynamicCID   uint16 = 0x0040
	maxDynamicCID   uint16 = 0xffff
	psmHIDControl   uint16 = 0x0011
	psmHIDInterrupt uint16 = 0x0013
)

const (
	cmdHeaderLen = 4 // type, opcode(2), plen
	aclHeaderLen = 5 // type, handle+flags(2), len(2)
	pduHeaderLen = 4 // len(2), cid(2)
	sigHeaderLen = 4 // code, id, len(2)

	queueSize          = 32
	scannedDeviceLimit = 16
	channelLimit       = 8
)

// Bring-up and discovery defaults.
const (
	defaultLocalName     = "wiimote-host"
	defaultInquiryLength = 10 // x 1.28s
	defaultMTU           = 0x0040

	createConnPacketType = 0x0008 // DM1
	clockOffsetValid     = 0x8000
	disconnectReason     = 0x13 // remote user terminated connection
)

var (
	defaultClassOfDevice = [3]byte{0x04, 0x05, 0x00}
	// peripheralClass is the class of device advertised by Wii Remotes and Balance Boards.
	peripheralClass = [3]byte{0x04, 0x25, 0x00}
	peripheralNames = []string{
		"Nintendo RVL-CNT-01",
		"Nintendo RVL-WBC-01",
	}
)
