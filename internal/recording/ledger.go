// Package recording keeps the per-track state of a recording session.
package recording

import (
	"sort"
	"sync"
	"time"

	"github.com/leandrodaf/homados/internal/decoder"
	"github.com/leandrodaf/homados/sdk/contracts"
)

type pendingNote struct {
	velocity uint8
	start    float64
}

// Ledger tracks pending and finalized notes for one track.
// All offsets are seconds since the instant Start was last called.
type Ledger struct {
	mu        sync.Mutex
	now       func() time.Time
	recording bool
	origin    time.Time // Zero until the first Start.
	pending   map[uint8]pendingNote
	recorded  []contracts.Note
}

// NewLedger creates an idle ledger. A nil clock defaults to time.Now.
func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		now:     now,
		pending: make(map[uint8]pendingNote),
	}
}

// Start clears previous results and begins a session at the current instant.
func (l *Ledger) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.recording = true
	l.origin = l.now()
	l.pending = make(map[uint8]pendingNote)
	l.recorded = nil
}

// Stop ends the session. Notes still held down are closed at the stop
// instant, in ascending pitch order. The whole recorded sequence is returned
// and kept until the next Start.
func (l *Ledger) Stop() []contracts.Note {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.recording = false
	end := l.elapsed()

	held := make([]uint8, 0, len(l.pending))
	for note := range l.pending {
		held = append(held, note)
	}
	sort.Slice(held, func(i, j int) bool { return held[i] < held[j] })

	for _, note := range held {
		p := l.pending[note]
		delete(l.pending, note)
		l.recorded = append(l.recorded, finalize(note, p, end))
	}

	out := make([]contracts.Note, len(l.recorded))
	copy(out, l.recorded)
	return out
}

// Recording reports whether a session is in progress.
func (l *Ledger) Recording() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recording
}

// Observe stamps msg with the time elapsed since the session origin and, while
// recording, applies it to the pending and recorded notes. The returned event
// is what gets published for the track.
func (l *Ledger) Observe(trackID string, msg decoder.Message) contracts.NoteEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	event := contracts.NoteEvent{
		TrackID:  trackID,
		Note:     msg.Note,
		Velocity: msg.Velocity,
		IsNoteOn: msg.IsNoteOn,
		Time:     l.elapsed(),
	}
	if !l.recording {
		return event
	}

	if msg.IsNoteOn {
		// last note-on wins
		l.pending[msg.Note] = pendingNote{velocity: msg.Velocity, start: event.Time}
		return event
	}
	if p, ok := l.pending[msg.Note]; ok {
		delete(l.pending, msg.Note)
		l.recorded = append(l.recorded, finalize(msg.Note, p, event.Time))
	}
	return event
}

// elapsed must be called with mu held.
func (l *Ledger) elapsed() float64 {
	if l.origin.IsZero() {
		return 0
	}
	return l.now().Sub(l.origin).Seconds()
}

func finalize(note uint8, p pendingNote, end float64) contracts.Note {
	duration := end - p.start
	if duration < 0 {
		duration = 0
	}
	return contracts.Note{
		Note:      note,
		Velocity:  p.velocity,
		StartTime: p.start,
		Duration:  duration,
	}
}
