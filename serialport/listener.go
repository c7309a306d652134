package serialport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.tigermatt.uk/twelite"
)

// MaxLineLen bounds the bytes buffered while waiting for a terminator.
const MaxLineLen = 512

// ErrLineTooLong is reported when no terminator arrives within MaxLineLen
// bytes. The buffered bytes are discarded.
var ErrLineTooLong = errors.New("line too long")

// Listener splits the byte stream from Port into lines and decodes every
// status notification it sees.
type Listener struct {
	Port    io.Reader
	Decoder twelite.Decoder

	// OnLine, if set, receives every non-empty line before decoding.
	OnLine   func(line string)
	OnStatus func(twelite.ReceivedStatus)
	OnError  func(line string, err error)
}

// Consume reads until ctx is done or Port reports EOF.
func (l *Listener) Consume(ctx context.Context) error {
	bs := make([]byte, 64)
	var pending []byte

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := l.Port.Read(bs)
		if n > 0 {
			pending = l.drain(append(pending, bs[:n]...))
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading from serial port: %w", err)
		}
	}
}

// drain handles every complete line in buf and returns the remainder.
func (l *Listener) drain(buf []byte) []byte {
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}

		l.handle(strings.TrimSpace(string(buf[:i])))
		buf = buf[i+1:]
	}

	if len(buf) > MaxLineLen {
		l.report(string(buf), ErrLineTooLong)
		return nil
	}

	return buf
}

func (l *Listener) handle(line string) {
	if line == "" {
		return
	}

	if l.OnLine != nil {
		l.OnLine(line)
	}

	// The module echoes banners and prompts that are not frames.
	if !strings.HasPrefix(line, twelite.StartMarker) {
		return
	}

	dec := l.Decoder
	dec.CheckOpcode = true

	s, err := dec.Decode(line)
	if err != nil {
		l.report(line, err)
		return
	}

	if l.OnStatus != nil {
		l.OnStatus(s)
	}
}

func (l *Listener) report(line string, err error) {
	if l.OnError != nil {
		l.OnError(line, err)
	}
}
