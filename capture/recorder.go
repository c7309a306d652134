// Package capture records raw frame lines with their arrival time so a
// session can be replayed and decoded later.
package capture

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// Message is one line received from the radio.
type Message struct {
	Line      string
	Timestamp time.Time
}

// Recorder appends messages to Dest. It is safe for concurrent use.
type Recorder struct {
	Dest io.Writer

	mu   sync.Mutex
	enc  *gob.Encoder
	once sync.Once
}

// Record stores line stamped with the current time.
func (r *Recorder) Record(line string) error {
	return r.Receive(Message{Line: line, Timestamp: time.Now()})
}

func (r *Recorder) Receive(msg Message) error {
	r.init()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(msg)
}

func (r *Recorder) init() {
	r.once.Do(func() {
		r.enc = gob.NewEncoder(r.Dest)
	})
}

// ReadIn replays a recording into out and closes it when r is exhausted.
func ReadIn(out chan<- Message, r io.Reader) error {
	defer close(out)

	dec := gob.NewDecoder(r)

	for {
		var msg Message
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("while decoding: %w", err)
		}

		out <- msg
	}
}
