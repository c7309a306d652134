// Package twelite encodes and decodes the ASCII-hex UART frames spoken by
// TWELITE radio modules.
package twelite

import "strings"

const (
	StartMarker = ":"
	EndMarker   = "\r\n"

	// ProtocolVersion is the only frame format version understood here.
	ProtocolVersion byte = 0x01
)

// Logical device ids.
const (
	AddressMaster    byte = 0x00
	AddressSlaveMin  byte = 0x01
	AddressSlaveMax  byte = 0x64
	AddressBroadcast byte = 0x78
)

// Opcodes.
const (
	OpChangeOutput byte = 0x80
	OpStatusNotify byte = 0x81
)

// Header is the envelope shared by every frame.
type Header struct {
	AddressID byte
}

// DefaultHeader addresses all slave units.
func DefaultHeader() Header {
	return Header{AddressID: AddressBroadcast}
}

// ProtocolVersion always reports the fixed format version.
func (Header) ProtocolVersion() byte {
	return ProtocolVersion
}

// Command is a frame that can be rendered for the wire.
type Command interface {
	Opcode() byte
	// Bytes returns the payload including the trailing checksum.
	Bytes() []byte
	// Frame renders Bytes as ":<HEX>\r\n".
	Frame() string
}

// render appends the checksum to payload and wraps it in the frame markers.
func render(payload []byte) string {
	var sb strings.Builder
	sb.Grow(len(StartMarker) + 2*(len(payload)+1) + len(EndMarker))

	sb.WriteString(StartMarker)
	for _, b := range payload {
		sb.WriteString(HexByte(int(b)))
	}
	sb.WriteString(HexByte(int(Checksum(payload))))
	sb.WriteString(EndMarker)

	return sb.String()
}

// withChecksum returns a copy of payload with its checksum appended.
func withChecksum(payload []byte) []byte {
	out := make([]byte, len(payload), len(payload)+1)
	copy(out, payload)
	return append(out, Checksum(payload))
}
