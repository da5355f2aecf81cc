package recording_test

import (
	"testing"
	"time"

	"github.com/leandrodaf/homados/internal/decoder"
	"github.com/leandrodaf/homados/internal/recording"
	"github.com/leandrodaf/homados/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(seconds float64) {
	c.t = c.t.Add(time.Duration(seconds * float64(time.Second)))
}

func newLedger() (*recording.Ledger, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return recording.NewLedger(clock.now), clock
}

func on(note, vel uint8) decoder.Message  { return decoder.Message{Note: note, Velocity: vel, IsNoteOn: true} }
func off(note, vel uint8) decoder.Message { return decoder.Message{Note: note, Velocity: vel} }

func TestLedgerNoteOnOff(t *testing.T) {
	ledger, clock := newLedger()
	ledger.Start()

	clock.advance(0.5)
	ledger.Observe("t1", on(60, 100))
	clock.advance(1.25)
	ledger.Observe("t1", off(60, 0))
	clock.advance(2)

	notes := ledger.Stop()
	require.Len(t, notes, 1)
	assert.Equal(t, uint8(60), notes[0].Note)
	assert.Equal(t, uint8(100), notes[0].Velocity)
	assert.InDelta(t, 0.5, notes[0].StartTime, 1e-9)
	assert.InDelta(t, 1.25, notes[0].Duration, 1e-9)
}

func TestLedgerFinalizesHeldNotesOnStop(t *testing.T) {
	ledger, clock := newLedger()
	ledger.Start()

	clock.advance(1)
	ledger.Observe("t1", on(64, 90))
	ledger.Observe("t1", on(62, 80))
	clock.advance(0.5)
	ledger.Observe("t1", on(67, 70))
	clock.advance(1.5)

	notes := ledger.Stop()
	require.Len(t, notes, 3)
	assert.Equal(t, []uint8{62, 64, 67}, []uint8{notes[0].Note, notes[1].Note, notes[2].Note})
	assert.InDelta(t, 1.0, notes[0].StartTime, 1e-9)
	assert.InDelta(t, 2.0, notes[0].Duration, 1e-9)
	assert.InDelta(t, 1.5, notes[2].StartTime, 1e-9)
	assert.InDelta(t, 1.5, notes[2].Duration, 1e-9)
	assert.Equal(t, uint8(70), notes[2].Velocity)
}

func TestLedgerLastNoteOnWins(t *testing.T) {
	ledger, clock := newLedger()
	ledger.Start()

	clock.advance(0.1)
	ledger.Observe("t1", on(60, 50))
	clock.advance(0.2)
	ledger.Observe("t1", on(60, 110))
	clock.advance(0.3)
	ledger.Observe("t1", off(60, 0))

	notes := ledger.Stop()
	require.Len(t, notes, 1)
	assert.InDelta(t, 0.3, notes[0].StartTime, 1e-9)
	assert.InDelta(t, 0.3, notes[0].Duration, 1e-9)
	assert.Equal(t, uint8(110), notes[0].Velocity)
}

func TestLedgerIgnoresSpuriousNoteOff(t *testing.T) {
	ledger, clock := newLedger()
	ledger.Start()

	clock.advance(0.1)
	ledger.Observe("t1", off(61, 0))
	ledger.Observe("t1", on(60, 100))
	clock.advance(0.1)
	ledger.Observe("t1", off(60, 0))
	ledger.Observe("t1", off(60, 0))

	assert.Len(t, ledger.Stop(), 1)
}

func TestLedgerNotRecordingOnlyStamps(t *testing.T) {
	ledger, clock := newLedger()

	event := ledger.Observe("t1", on(60, 100))
	assert.Equal(t, contracts.NoteEvent{TrackID: "t1", Note: 60, Velocity: 100, IsNoteOn: true}, event)
	assert.False(t, ledger.Recording())

	ledger.Start()
	clock.advance(1)
	ledger.Stop()

	clock.advance(2)
	event = ledger.Observe("t1", on(62, 100))
	assert.InDelta(t, 3.0, event.Time, 1e-9)
	clock.advance(1)
	ledger.Observe("t1", off(62, 0))

	assert.Empty(t, ledger.Stop())
}

func TestLedgerStartResets(t *testing.T) {
	ledger, clock := newLedger()
	ledger.Start()
	ledger.Observe("t1", on(60, 100))
	clock.advance(1)
	ledger.Observe("t1", off(60, 0))
	ledger.Observe("t1", on(61, 100))
	assert.True(t, ledger.Recording())

	clock.advance(5)
	ledger.Start()
	clock.advance(0.25)
	event := ledger.Observe("t1", off(61, 0))
	assert.InDelta(t, 0.25, event.Time, 1e-9)

	assert.Empty(t, ledger.Stop())
}

func TestLedgerStopKeepsResults(t *testing.T) {
	ledger, clock := newLedger()
	ledger.Start()
	ledger.Observe("t1", on(60, 100))
	clock.advance(1)

	first := ledger.Stop()
	second := ledger.Stop()
	require.Len(t, first, 1)
	assert.Equal(t, first, second)

	first[0].Note = 0
	assert.Equal(t, uint8(60), ledger.Stop()[0].Note)
}
