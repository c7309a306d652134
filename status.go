package twelite

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// StatusSize is the byte count of a status notify frame, checksum included.
const StatusSize = 24

// TicksPerSecond is the resolution of the status timestamp.
const TicksPerSecond = 64

// analogUnused is reported for inputs tied to the supply rail.
const analogUnused = 0xFF

// analogMax is the highest reading in millivolts a status frame carries.
const analogMax = ((analogUnused-1)*4 + 3) * 4

// ReceivedStatus is the decoded content of a status notify (0x81) frame.
// AddressID in the embedded Header is the receiver of the notification.
type ReceivedStatus struct {
	Header

	SenderAddressID byte
	PacketID        byte
	RelayCount      byte

	// LQIRaw is the radio strength byte, 0x00 weakest and 0xFF strongest.
	LQIRaw byte
	// LinkQualityIndicator is LQIRaw converted to an approximate dBm value,
	// NaN when LQIRaw is zero.
	LinkQualityIndicator float64

	SenderSerialNumber uint32
	TimestampSeconds   float64
	// PowerSupplyVoltage in millivolts.
	PowerSupplyVoltage uint16

	// Digital holds 1 (on, Lo level), 0 or Unset for each input not
	// reported in this frame.
	Digital [Channels]int
	// Analog holds millivolts or Unset for inputs tied to the supply.
	Analog [Channels]int

	unused byte
}

// LinkQuality converts a raw LQI byte to dBm using the module's empirical
// calibration.
func LinkQuality(raw byte) (float64, error) {
	if raw == 0 {
		return math.NaN(), ErrUndefinedLQI
	}

	r := float64(raw)
	return r / ((7*r - 1970) / 20), nil
}

// LQI returns the link quality in dBm and whether it is defined.
func (s ReceivedStatus) LQI() (float64, bool) {
	if s.LQIRaw == 0 {
		return 0, false
	}
	return s.LinkQualityIndicator, true
}

// Decoder converts status frame lines into ReceivedStatus values.
type Decoder struct {
	// SkipChecksum accepts frames whose checksum byte does not match.
	SkipChecksum bool
	// CheckOpcode rejects frames that are not status notifications.
	CheckOpcode bool
}

// Decode parses a status frame with checksum verification.
func Decode(line string) (ReceivedStatus, error) {
	return Decoder{}.Decode(line)
}

// Decode parses a single ":...\r\n" status frame. The terminator is optional.
func (d Decoder) Decode(line string) (ReceivedStatus, error) {
	bs, err := frameBytes(line)
	if err != nil {
		return ReceivedStatus{}, err
	}

	if len(bs) != StatusSize {
		return ReceivedStatus{}, fmt.Errorf("%w: %d bytes, want %d", ErrMalformedFrame, len(bs), StatusSize)
	}

	if d.CheckOpcode && bs[1] != OpStatusNotify {
		return ReceivedStatus{}, fmt.Errorf("%w: %02X", ErrUnexpectedOpcode, bs[1])
	}

	if !d.SkipChecksum {
		if want := Checksum(bs[:StatusSize-1]); want != bs[StatusSize-1] {
			return ReceivedStatus{}, fmt.Errorf("%w: got %02X, want %02X", ErrChecksumMismatch, bs[StatusSize-1], want)
		}
	}

	return unpackStatus(bs), nil
}

// frameBytes strips the markers and decodes the hex digits between them.
func frameBytes(line string) ([]byte, error) {
	body := strings.TrimSuffix(line, EndMarker)
	body = strings.TrimPrefix(body, StartMarker)

	bs, err := hex.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	return bs, nil
}

func unpackStatus(bs []byte) ReceivedStatus {
	s := ReceivedStatus{
		Header:             Header{AddressID: bs[9]},
		SenderAddressID:    bs[0],
		PacketID:           bs[2],
		LQIRaw:             bs[4],
		SenderSerialNumber: binary.BigEndian.Uint32(bs[5:9]),
		TimestampSeconds:   float64(binary.BigEndian.Uint16(bs[10:12])) / TicksPerSecond,
		RelayCount:         bs[12],
		PowerSupplyVoltage: binary.BigEndian.Uint16(bs[13:15]),
		unused:             bs[15],
	}

	s.LinkQualityIndicator, _ = LinkQuality(s.LQIRaw)
	s.Digital = unpackDigital(bs[16], bs[17])
	s.Analog = unpackAnalog([Channels]byte(bs[18:22]), bs[22])

	return s
}

func unpackDigital(levels, changed byte) [Channels]int {
	var out [Channels]int
	for i := range out {
		switch {
		case changed>>i&1 == 0:
			out[i] = Unset
		case levels>>i&1 == 1:
			out[i] = 1
		default:
			out[i] = 0
		}
	}
	return out
}

// unpackAnalog rebuilds each 10-bit reading from its high byte and the two
// correction bits packed into corr, channel 0 in the low-order pair.
func unpackAnalog(in [Channels]byte, corr byte) [Channels]int {
	var out [Channels]int
	for i, a := range in {
		if a == analogUnused {
			out[i] = Unset
			continue
		}
		er := int(corr>>(2*i)) & 0x3
		out[i] = (int(a)*4 + er) * 4
	}
	return out
}

func packDigitalInputs(vals [Channels]int) (levels, changed byte) {
	for i, v := range vals {
		if v < 0 {
			continue
		}
		changed |= 1 << i
		if v == 1 {
			levels |= 1 << i
		}
	}
	return levels, changed
}

func packAnalogInputs(vals [Channels]int) (in [Channels]byte, corr byte) {
	for i, mv := range vals {
		if mv < 0 {
			in[i] = analogUnused
			corr |= 0x3 << (2 * i)
			continue
		}
		v := min(mv, analogMax) / 4
		in[i] = byte(v >> 2)
		corr |= byte(v&0x3) << (2 * i)
	}
	return in, corr
}

func (ReceivedStatus) Opcode() byte { return OpStatusNotify }

func (s ReceivedStatus) payload() []byte {
	b := make([]byte, StatusSize-1)
	b[0] = s.SenderAddressID
	b[1] = OpStatusNotify
	b[2] = s.PacketID
	b[3] = s.ProtocolVersion()
	b[4] = s.LQIRaw
	binary.BigEndian.PutUint32(b[5:9], s.SenderSerialNumber)
	b[9] = s.AddressID
	binary.BigEndian.PutUint16(b[10:12], timestampTicks(s.TimestampSeconds))
	b[12] = s.RelayCount
	binary.BigEndian.PutUint16(b[13:15], s.PowerSupplyVoltage)
	b[15] = s.unused
	b[16], b[17] = packDigitalInputs(s.Digital)

	in, corr := packAnalogInputs(s.Analog)
	copy(b[18:22], in[:])
	b[22] = corr

	return b
}

func (s ReceivedStatus) Bytes() []byte {
	return withChecksum(s.payload())
}

// Frame renders the status as the module would have sent it. Analog
// readings above 4076 mV and timestamps outside 0 to 1023.984375 s are
// clamped to the nearest value the frame can carry.
func (s ReceivedStatus) Frame() string {
	return render(s.payload())
}

func timestampTicks(seconds float64) uint16 {
	ticks := math.Round(seconds * TicksPerSecond)
	switch {
	case !(ticks >= 0):
		return 0
	case ticks > math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(ticks)
}
