package twelite

import (
	"fmt"
	"math"
)

// Channels is the number of digital and analog channels on a module.
const Channels = 4

// Unset marks a channel as not controlled.
const Unset = -1

// pwmUnset is the wire value for an analog channel that is not controlled.
const pwmUnset = 0xFFFF

// ChangeOutput sets the digital and PWM outputs of a remote module.
//
// Digital intents below zero leave the channel alone. Any other value is
// truncated and its parity selects the level: even drives the output Hi,
// odd drives it Lo. Analog intents are duty cycles in percent; values
// outside 0..100 leave the channel alone.
type ChangeOutput struct {
	Header

	digital [Channels]float64
	analog  [Channels]float64
}

// OutputOption configures NewChangeOutput.
type OutputOption func(*ChangeOutput) error

// Address sets the destination device id.
func Address(id byte) OutputOption {
	return func(c *ChangeOutput) error {
		c.AddressID = id
		return nil
	}
}

// Digital sets the four digital intents.
func Digital(vals ...float64) OutputOption {
	return func(c *ChangeOutput) error {
		return setChannels(&c.digital, vals)
	}
}

// Analog sets the four PWM intents.
func Analog(vals ...float64) OutputOption {
	return func(c *ChangeOutput) error {
		return setChannels(&c.analog, vals)
	}
}

// NewChangeOutput returns a broadcast command with every channel unset,
// modified by opts.
func NewChangeOutput(opts ...OutputOption) (ChangeOutput, error) {
	c := ChangeOutput{
		Header:  DefaultHeader(),
		digital: [Channels]float64{Unset, Unset, Unset, Unset},
		analog:  [Channels]float64{Unset, Unset, Unset, Unset},
	}

	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return ChangeOutput{}, err
		}
	}

	return c, nil
}

func setChannels(dst *[Channels]float64, vals []float64) error {
	if len(vals) != Channels {
		return fmt.Errorf("%w: got %d values, want %d", ErrInvalidChannelCount, len(vals), Channels)
	}

	copy(dst[:], vals)
	return nil
}

// WithDigital returns a copy of c with new digital intents. On error c is
// returned unchanged.
func (c ChangeOutput) WithDigital(vals []float64) (ChangeOutput, error) {
	next := c
	if err := setChannels(&next.digital, vals); err != nil {
		return c, err
	}
	return next, nil
}

// WithAnalog returns a copy of c with new analog intents. On error c is
// returned unchanged.
func (c ChangeOutput) WithAnalog(vals []float64) (ChangeOutput, error) {
	next := c
	if err := setChannels(&next.analog, vals); err != nil {
		return c, err
	}
	return next, nil
}

// WithAddress returns a copy of c sent to id.
func (c ChangeOutput) WithAddress(id byte) ChangeOutput {
	c.AddressID = id
	return c
}

func (c ChangeOutput) DigitalIntents() [Channels]float64 { return c.digital }
func (c ChangeOutput) AnalogIntents() [Channels]float64  { return c.analog }

func (ChangeOutput) Opcode() byte { return OpChangeOutput }

func (c ChangeOutput) payload() []byte {
	levels, mask := packDigital(c.digital)

	b := make([]byte, 0, 13)
	b = append(b, c.AddressID, OpChangeOutput, c.ProtocolVersion(), levels, mask)
	for _, a := range c.analog {
		pwm := scalePWM(a)
		b = append(b, byte(pwm>>8), byte(pwm))
	}

	return b
}

func (c ChangeOutput) Bytes() []byte {
	return withChecksum(c.payload())
}

func (c ChangeOutput) Frame() string {
	return render(c.payload())
}

// EncodeChangeOutput renders a change-output frame for addr.
func EncodeChangeOutput(digital, analog [Channels]float64, addr byte) string {
	return ChangeOutput{Header: Header{AddressID: addr}, digital: digital, analog: analog}.Frame()
}

// packDigital returns the level byte and the mask byte for the intents.
func packDigital(intents [Channels]float64) (levels, mask byte) {
	for i, d := range intents {
		// NaN fails this comparison too.
		if !(d >= 0) {
			continue
		}

		mask |= 1 << i
		if math.Mod(math.Trunc(d), 2) == 1 {
			levels |= 1 << i
		}
	}

	return levels, mask
}

// scalePWM maps a 0..100 percentage to 0..1024, or pwmUnset.
func scalePWM(pct float64) uint16 {
	if !(pct >= 0 && pct <= 100) {
		return pwmUnset
	}
	return uint16(math.Floor(1024 * pct / 100))
}
