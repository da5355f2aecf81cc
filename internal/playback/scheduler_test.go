package playback_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/leandrodaf/homados/internal/logger"
	"github.com/leandrodaf/homados/internal/playback"
	"github.com/leandrodaf/homados/internal/synth"
	"github.com/leandrodaf/homados/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appended struct {
	at   time.Time
	tone *synth.Tone
}

type fakeSink struct {
	output  *fakeOutput
	mu      sync.Mutex
	tones   []appended
	drained bool
	closed  bool
}

func (s *fakeSink) Append(streamer beep.Streamer) {
	a := appended{at: time.Now(), tone: streamer.(*synth.Tone)}
	s.mu.Lock()
	s.tones = append(s.tones, a)
	s.mu.Unlock()
	s.output.appends <- a
}

func (s *fakeSink) Drain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drained = true
}

func (s *fakeSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSink) snapshot() []appended {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appended(nil), s.tones...)
}

type fakeOutput struct {
	mu      sync.Mutex
	err     error
	sinks   []*fakeSink
	rates   []beep.SampleRate
	appends chan appended
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{appends: make(chan appended, 64)}
}

func (o *fakeOutput) Open(sampleRate beep.SampleRate) (contracts.AudioSink, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rates = append(o.rates, sampleRate)
	if o.err != nil {
		return nil, o.err
	}
	sink := &fakeSink{output: o}
	o.sinks = append(o.sinks, sink)
	return sink, nil
}

func (o *fakeOutput) allSinks() []*fakeSink {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*fakeSink(nil), o.sinks...)
}

func newScheduler(out *fakeOutput) *playback.Scheduler {
	return playback.NewScheduler(out, playback.Config{SampleRate: 8000, PollInterval: 5 * time.Millisecond}, logger.NewNopLogger())
}

func waitAppend(t *testing.T, out *fakeOutput) appended {
	t.Helper()
	select {
	case a := <-out.appends:
		return a
	case <-time.After(2 * time.Second):
		t.Fatal("no tone appended")
		return appended{}
	}
}

func TestPlaySortsByStartTime(t *testing.T) {
	out := newFakeOutput()
	s := newScheduler(out)

	begin := time.Now()
	s.Play([]contracts.Note{
		{Note: 62, Velocity: 100, StartTime: 0.05, Duration: 0.1},
		{Note: 60, Velocity: 100, StartTime: 0, Duration: 0.1},
	}, 1)
	s.Wait()

	sinks := out.allSinks()
	require.Len(t, sinks, 1)
	tones := sinks[0].snapshot()
	require.Len(t, tones, 2)

	assert.Equal(t, synth.MidiToFreq(60), tones[0].tone.Frequency())
	assert.Equal(t, synth.MidiToFreq(62), tones[1].tone.Frequency())
	assert.Less(t, tones[0].at.Sub(begin), 40*time.Millisecond)
	assert.GreaterOrEqual(t, tones[1].at.Sub(begin), 45*time.Millisecond)
	assert.Equal(t, 800, tones[0].tone.Len())
	assert.True(t, sinks[0].drained)
	assert.True(t, sinks[0].closed)
}

func TestPlayAmplitudeFollowsVolume(t *testing.T) {
	out := newFakeOutput()
	s := newScheduler(out)

	s.Play([]contracts.Note{{Note: 69, Velocity: 127, StartTime: 0, Duration: 1}}, 0.5)
	s.Wait()

	tone := out.allSinks()[0].snapshot()[0].tone
	maxAbs := 0.0
	for {
		v, ok := tone.Next()
		if !ok {
			break
		}
		if v > maxAbs {
			maxAbs = v
		} else if -v > maxAbs {
			maxAbs = -v
		}
	}
	assert.InDelta(t, 0.5, maxAbs, 1e-3)
}

func TestStopPreventsPendingNotes(t *testing.T) {
	out := newFakeOutput()
	s := newScheduler(out)

	s.Play([]contracts.Note{
		{Note: 60, Velocity: 100, StartTime: 0, Duration: 0.1},
		{Note: 62, Velocity: 100, StartTime: 0.3, Duration: 0.1},
		{Note: 64, Velocity: 100, StartTime: 0.6, Duration: 0.1},
	}, 1)

	waitAppend(t, out)
	stoppedAt := time.Now()
	s.Stop()
	s.Wait()

	assert.Less(t, time.Since(stoppedAt), 200*time.Millisecond)
	sink := out.allSinks()[0]
	assert.Len(t, sink.snapshot(), 1)
	assert.True(t, sink.drained, "already queued tones finish")
}

func TestStopAffectsEveryPlayback(t *testing.T) {
	out := newFakeOutput()
	s := newScheduler(out)
	notes := []contracts.Note{
		{Note: 60, Velocity: 100, StartTime: 0, Duration: 0.1},
		{Note: 62, Velocity: 100, StartTime: 0.5, Duration: 0.1},
	}

	s.Play(notes, 1)
	s.Play(notes, 1)
	waitAppend(t, out)
	waitAppend(t, out)
	s.Stop()
	s.Wait()

	sinks := out.allSinks()
	require.Len(t, sinks, 2)
	for _, sink := range sinks {
		assert.Len(t, sink.snapshot(), 1)
	}
}

func TestPlayClearsPreviousStop(t *testing.T) {
	out := newFakeOutput()
	s := newScheduler(out)

	s.Stop()
	s.Play([]contracts.Note{{Note: 60, Velocity: 100, StartTime: 0.01, Duration: 0.05}}, 1)
	s.Wait()

	assert.Len(t, out.allSinks()[0].snapshot(), 1)
}

func TestPlayWithoutOutputAbortsSilently(t *testing.T) {
	out := newFakeOutput()
	out.err = errors.New("no device")
	s := newScheduler(out)

	s.Play([]contracts.Note{{Note: 60, Velocity: 100, Duration: 0.1}}, 1)
	s.Preview(60, 100, 1)
	s.Wait()

	assert.Empty(t, out.allSinks())
	assert.Len(t, out.rates, 2)
}

func TestPreview(t *testing.T) {
	out := newFakeOutput()
	s := playback.NewScheduler(out, playback.Config{SampleRate: 10000}, logger.NewNopLogger())

	s.Stop()
	s.Preview(69, 127, 1)
	s.Wait()

	sinks := out.allSinks()
	require.Len(t, sinks, 1)
	tones := sinks[0].snapshot()
	require.Len(t, tones, 1)
	assert.Equal(t, 2000, tones[0].tone.Len())
	assert.Equal(t, []beep.SampleRate{10000}, out.rates)

	maxAbs := 0.0
	for {
		v, ok := tones[0].tone.Next()
		if !ok {
			break
		}
		if v > maxAbs {
			maxAbs = v
		}
	}
	assert.LessOrEqual(t, maxAbs, playback.DefaultPreviewDamping+1e-9)
	assert.Greater(t, maxAbs, 0.25)
}

func TestSortByStartIsStable(t *testing.T) {
	notes := []contracts.Note{
		{Note: 3, StartTime: 1},
		{Note: 1, StartTime: 0},
		{Note: 4, StartTime: 1},
		{Note: 2, StartTime: 0},
	}
	sorted := playback.SortByStart(notes)

	got := make([]uint8, len(sorted))
	for i, n := range sorted {
		got[i] = n.Note
	}
	assert.Equal(t, []uint8{1, 2, 3, 4}, got)
	assert.Equal(t, uint8(3), notes[0].Note, "input is not modified")
}
