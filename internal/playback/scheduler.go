// Package playback schedules timed notes onto an audio output.
package playback

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/leandrodaf/homados/internal/synth"
	"github.com/leandrodaf/homados/sdk/contracts"
)

// Defaults applied to zero Config fields.
const (
	DefaultPollInterval    = 10 * time.Millisecond
	DefaultPreviewDuration = 200 * time.Millisecond
	DefaultPreviewDamping  = 0.3
)

// Config tunes synthesis and scheduling.
type Config struct {
	SampleRate      beep.SampleRate // Rate of generated tones.
	PollInterval    time.Duration   // Longest sleep between two checks of the stop flag.
	PreviewDuration time.Duration   // Length of preview tones.
	PreviewDamping  float64         // Extra gain applied to preview tones.
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = synth.DefaultSampleRate
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PreviewDuration <= 0 {
		c.PreviewDuration = DefaultPreviewDuration
	}
	if c.PreviewDamping <= 0 {
		c.PreviewDamping = DefaultPreviewDamping
	}
	return c
}

// Scheduler plays note sequences and previews, each on its own goroutine with
// its own sink. A single stop flag is shared by every running playback, so
// Stop halts all of them.
type Scheduler struct {
	output contracts.AudioOutput
	logger contracts.Logger
	config Config
	stop   atomic.Bool
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler writing to output.
func NewScheduler(output contracts.AudioOutput, config Config, logger contracts.Logger) *Scheduler {
	return &Scheduler{
		output: output,
		logger: logger,
		config: config.withDefaults(),
	}
}

// Play clears any pending stop request and starts playing notes in start time
// order. It returns immediately.
func (s *Scheduler) Play(notes []contracts.Note, volume float64) {
	s.stop.Store(false)
	sorted := SortByStart(notes)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(sorted, volume)
	}()
}

// Stop asks every running playback to stop before its next note. Tones already
// handed to a sink play to the end. Stop does not wait.
func (s *Scheduler) Stop() {
	s.stop.Store(true)
}

// Preview plays a single short, damped tone. It returns immediately and is not
// affected by Stop.
func (s *Scheduler) Preview(note, velocity uint8, volume float64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		sink, err := s.output.Open(s.config.SampleRate)
		if err != nil {
			s.logger.Warn("Preview aborted: audio output unavailable", s.logger.Field().Error("error", err))
			return
		}
		defer sink.Close()

		sink.Append(synth.NewDampedTone(note, velocity, volume, s.config.PreviewDamping,
			s.config.PreviewDuration.Seconds(), s.config.SampleRate))
		sink.Drain()
	}()
}

// Wait blocks until every playback and preview started so far has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(notes []contracts.Note, volume float64) {
	sink, err := s.output.Open(s.config.SampleRate)
	if err != nil {
		s.logger.Warn("Playback aborted: audio output unavailable", s.logger.Field().Error("error", err))
		return
	}
	defer sink.Close()

	start := time.Now()
	played := 0
	for _, note := range notes {
		if !s.waitUntil(start.Add(seconds(note.StartTime))) {
			s.logger.Debug("Playback stopped",
				s.logger.Field().Int("played", played),
				s.logger.Field().Int("skipped", len(notes)-played))
			break
		}
		sink.Append(synth.NewTone(note.Note, note.Velocity, volume, note.Duration, s.config.SampleRate))
		played++
	}

	sink.Drain()
	s.logger.Debug("Playback finished", s.logger.Field().Int("notes", played))
}

// waitUntil sleeps until deadline in slices of at most PollInterval and
// reports false as soon as a stop is requested.
func (s *Scheduler) waitUntil(deadline time.Time) bool {
	for {
		if s.stop.Load() {
			return false
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}
		if remaining > s.config.PollInterval {
			remaining = s.config.PollInterval
		}
		time.Sleep(remaining)
	}
}

// SortByStart returns a copy of notes stably sorted by start time.
func SortByStart(notes []contracts.Note) []contracts.Note {
	sorted := make([]contracts.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})
	return sorted
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
