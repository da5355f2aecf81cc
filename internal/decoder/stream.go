package decoder

import (
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// Stream splits packets of concatenated MIDI bytes into single messages and
// hands each one to a handler. Running status is expanded and carried across
// packets, realtime bytes are delivered as one-byte messages and system
// exclusive data is discarded.
type Stream struct {
	mu     sync.Mutex
	reader *drivers.Reader
}

// NewStream creates a Stream. onErr may be nil.
func NewStream(handler func(raw []byte), onErr func(error)) *Stream {
	return &Stream{
		reader: drivers.NewReader(drivers.ListenConfig{OnErr: onErr}, func(raw []byte, _ int32) {
			handler(raw)
		}),
	}
}

// Write feeds one packet. Handlers run on the calling goroutine before Write returns.
func (s *Stream) Write(packet []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reader.EachMessage(packet, 0)
}
