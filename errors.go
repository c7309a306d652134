package twelite

import "errors"

var (
	// ErrInvalidChannelCount indicates a digital or analog intent list
	// without exactly four elements.
	ErrInvalidChannelCount = errors.New("invalid channel count")
	// ErrMalformedFrame indicates a frame that is not 24 hex-encoded bytes.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrChecksumMismatch indicates the trailing checksum byte disagrees
	// with the payload.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrUndefinedLQI is returned for a raw LQI of zero.
	ErrUndefinedLQI = errors.New("undefined link quality")
	// ErrUnexpectedOpcode indicates a frame that is not a status notify.
	ErrUnexpectedOpcode = errors.New("unexpected opcode")
)
