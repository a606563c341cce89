// Package utils holds small helpers shared by the parcel binary.
package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter buffers writes until Flush. It holds log output while a
// full screen program owns the terminal.
type DeferredWriter struct {
	mu     sync.Mutex
	writes [][]byte
}

// Write stores a copy of p.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writes = append(d.writes, bytes.Clone(p))
	return len(p), nil
}

// Flush replays every buffered write to w in order and empties the
// buffer. Each write is replayed separately so line based writers such
// as zerolog.ConsoleWriter see one event per call.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	writes := d.writes
	d.writes = nil
	d.mu.Unlock()

	for _, p := range writes {
		if _, err := w.Write(p); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of buffered writes.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.writes)
}
