package evt

// Event codes [Vol 2, Part E, 7.7].
const (
	InquiryCompleteCode           = 0x01
	InquiryResultCode             = 0x02
	ConnectionCompleteCode        = 0x03
	DisconnectionCompleteCode     = 0x05
	RemoteNameRequestCompleteCode = 0x07
	QoSSetupCompleteCode          = 0x0D
	CommandCompleteCode           = 0x0E
	CommandStatusCode             = 0x0F
	NumberOfCompletedPacketsCode  = 0x13
)

// CommandComplete implements Command Complete (0x0E) [Vol 2, Part E, 7.7.14].
type CommandComplete []byte

func (e CommandComplete) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandComplete) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

func (e CommandComplete) ReturnParameters() []byte {
	v, _ := e.ReturnParametersWErr()
	return v
}

// Status is the first return parameter; 0xFF when absent.
func (e CommandComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

// CommandStatus implements Command Status (0x0F) [Vol 2, Part E, 7.7.15].
type CommandStatus []byte

func (e CommandStatus) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e CommandStatus) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandStatus) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

// InquiryComplete implements Inquiry Complete (0x01) [Vol 2, Part E, 7.7.1].
type InquiryComplete []byte

func (e InquiryComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

// InquiryResult implements Inquiry Result (0x02) [Vol 2, Part E, 7.7.2].
//
// Responses are laid out one record after another:
//
//	BD_ADDR(6) PSRM(1) Reserved(2) ClassOfDevice(3) ClockOffset(2)
type InquiryResult []byte

func (e InquiryResult) NumResponses() uint8 {
	v, _ := e.NumResponsesWErr()
	return v
}

func (e InquiryResult) BDADDR(i int) [6]byte {
	v, _ := e.BDADDRWErr(i)
	return v
}

func (e InquiryResult) PageScanRepetitionMode(i int) uint8 {
	v, _ := e.PageScanRepetitionModeWErr(i)
	return v
}

func (e InquiryResult) ClassOfDevice(i int) [3]byte {
	v, _ := e.ClassOfDeviceWErr(i)
	return v
}

func (e InquiryResult) ClockOffset(i int) uint16 {
	v, _ := e.ClockOffsetWErr(i)
	return v
}

// RemoteNameRequestComplete implements Remote Name Request Complete (0x07) [Vol 2, Part E, 7.7.4].
type RemoteNameRequestComplete []byte

func (e RemoteNameRequestComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e RemoteNameRequestComplete) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e RemoteNameRequestComplete) RemoteName() string {
	v, _ := e.RemoteNameWErr()
	return v
}

// ConnectionComplete implements Connection Complete (0x03) [Vol 2, Part E, 7.7.3].
type ConnectionComplete []byte

func (e ConnectionComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e ConnectionComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e ConnectionComplete) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e ConnectionComplete) LinkType() uint8 {
	v, _ := e.LinkTypeWErr()
	return v
}

func (e ConnectionComplete) EncryptionEnabled() uint8 {
	v, _ := e.EncryptionEnabledWErr()
	return v
}

// DisconnectionComplete implements Disconnection Complete (0x05) [Vol 2, Part E, 7.7.5].
type DisconnectionComplete []byte

func (e DisconnectionComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e DisconnectionComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e DisconnectionComplete) Reason() uint8 {
	v, _ := e.ReasonWErr()
	return v
}
