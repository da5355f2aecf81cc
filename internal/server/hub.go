package server

import (
	"sync"

	"github.com/leandrodaf/homados/sdk/contracts"
)

// hub fans the engine's single event channel out to every stream client.
type hub struct {
	logger  contracts.Logger
	mu      sync.Mutex
	clients map[chan contracts.NoteEvent]struct{}
	buffer  int
}

func newHub(buffer int, logger contracts.Logger) *hub {
	return &hub{
		logger:  logger,
		clients: make(map[chan contracts.NoteEvent]struct{}),
		buffer:  buffer,
	}
}

// run forwards events until source is closed, then closes every client.
func (h *hub) run(source <-chan contracts.NoteEvent) {
	for event := range source {
		h.mu.Lock()
		for client := range h.clients {
			select {
			case client <- event:
			default:
				h.logger.Warn("Stream client too slow; dropping MIDI event",
					h.logger.Field().String("trackId", event.TrackID))
			}
		}
		h.mu.Unlock()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client)
		delete(h.clients, client)
	}
	h.clients = nil
}

// subscribe registers a client. ok is false once the source has been closed.
func (h *hub) subscribe() (ch chan contracts.NoteEvent, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients == nil {
		return nil, false
	}
	ch = make(chan contracts.NoteEvent, h.buffer)
	h.clients[ch] = struct{}{}
	return ch, true
}

func (h *hub) unsubscribe(ch chan contracts.NoteEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}
