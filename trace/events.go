package trace

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"

	"github.com/oomph-ac/ofly/detection"
	"github.com/oomph-ac/ofly/internal"
	"github.com/tidwall/sjson"
)

// EventWriter implements detection.Listener and writes every event as a JSON line of the form
// {"id":...,"event":{...}}.
type EventWriter struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewEventWriter returns an EventWriter writing to w.
func NewEventWriter(w io.Writer) *EventWriter {
	return &EventWriter{w: w}
}

// HandleEvent ...
func (ew *EventWriter) HandleEvent(e detection.Event) {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		internal.BufferPool.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(e); err != nil {
		ew.setErr(err)
		return
	}
	line, err := sjson.SetBytes([]byte("{}"), "id", e.ID())
	if err == nil {
		line, err = sjson.SetRawBytes(line, "event", bytes.TrimSpace(buf.Bytes()))
	}
	if err != nil {
		ew.setErr(err)
		return
	}

	ew.mu.Lock()
	defer ew.mu.Unlock()
	if _, err := ew.w.Write(append(line, '\n')); err != nil && ew.err == nil {
		ew.err = err
	}
}

func (ew *EventWriter) setErr(err error) {
	ew.mu.Lock()
	if ew.err == nil {
		ew.err = err
	}
	ew.mu.Unlock()
}

// Err returns the first error encountered while writing events.
func (ew *EventWriter) Err() error {
	ew.mu.Lock()
	defer ew.mu.Unlock()
	return ew.err
}
