// Package serialport connects to a TWELITE module (MONOSTICK or a DIP on a
// USB UART) and exchanges frame lines with it.
package serialport

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
	"golang.org/x/time/rate"

	"go.tigermatt.uk/twelite"
)

const (
	DefaultBaudRate      = 115200
	DefaultReadTimeout   = 100 * time.Millisecond
	DefaultWriteInterval = 50 * time.Millisecond
)

// Config describes how to open a port.
type Config struct {
	Name        string
	BaudRate    int
	ReadTimeout time.Duration
	// WriteInterval is the minimum gap between two frames sent to the
	// module. Zero disables pacing.
	WriteInterval time.Duration
}

// Port is an open connection to a module.
type Port struct {
	rw      io.ReadWriteCloser
	limiter *rate.Limiter

	mu sync.Mutex
}

// Open opens cfg.Name as 8N1 at cfg.BaudRate.
func Open(cfg Config) (*Port, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	p, err := serial.Open(cfg.Name, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("while opening serial port %s: %w", cfg.Name, err)
	}

	if cfg.ReadTimeout > 0 {
		if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
			p.Close()
			return nil, fmt.Errorf("setting read timeout: %w", err)
		}
	}

	return New(p, cfg.WriteInterval), nil
}

// New wraps an already open connection.
func New(rw io.ReadWriteCloser, writeInterval time.Duration) *Port {
	limit := rate.Inf
	if writeInterval > 0 {
		limit = rate.Every(writeInterval)
	}

	return &Port{
		rw:      rw,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Read implements io.Reader.
func (p *Port) Read(bs []byte) (int, error) {
	return p.rw.Read(bs)
}

// Send writes the frame of cmd verbatim.
func (p *Port) Send(ctx context.Context, cmd twelite.Command) error {
	return p.WriteLine(ctx, cmd.Frame())
}

// WriteLine writes an already rendered frame.
func (p *Port) WriteLine(ctx context.Context, line string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := io.WriteString(p.rw, line); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}

	return nil
}

func (p *Port) Close() error {
	return p.rw.Close()
}
