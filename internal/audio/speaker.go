package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/leandrodaf/homados/sdk/contracts"
)

// ErrOutputUnavailable is returned when the audio device cannot be initialized.
var ErrOutputUnavailable = errors.New("audio output unavailable")

// DefaultBufferSize is the speaker buffer length used when none is configured.
const DefaultBufferSize = 100 * time.Millisecond

// resampleQuality is the interpolation quality passed to beep.Resample.
const resampleQuality = 4

// SpeakerOutput opens sinks on the default audio device through beep's speaker.
// The device is initialized once, at the sample rate of the first Open. Every
// sink is an independent Queue added to the speaker mixer.
type SpeakerOutput struct {
	logger     contracts.Logger
	bufferSize time.Duration

	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
}

// NewSpeakerOutput creates an output that initializes the device lazily.
func NewSpeakerOutput(bufferSize time.Duration, logger contracts.Logger) *SpeakerOutput {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &SpeakerOutput{logger: logger, bufferSize: bufferSize}
}

// Open returns a new sink. Initialization failures are retried on the next Open.
func (o *SpeakerOutput) Open(sampleRate beep.SampleRate) (contracts.AudioSink, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.initialized {
		if err := speaker.Init(sampleRate, sampleRate.N(o.bufferSize)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutputUnavailable, err)
		}
		o.initialized = true
		o.sampleRate = sampleRate
		o.logger.Info("Audio output initialized",
			o.logger.Field().Int("sampleRate", int(sampleRate)),
			o.logger.Field().Duration("buffer", o.bufferSize))
	}

	queue := NewQueue()
	speaker.Play(queue)
	return &speakerSink{queue: queue, from: sampleRate, to: o.sampleRate}, nil
}

// Close releases the audio device.
func (o *SpeakerOutput) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.initialized {
		speaker.Close()
		o.initialized = false
	}
}

type speakerSink struct {
	queue *Queue
	from  beep.SampleRate
	to    beep.SampleRate
}

func (s *speakerSink) Append(streamer beep.Streamer) {
	if s.from != s.to {
		streamer = beep.Resample(resampleQuality, s.from, s.to, streamer)
	}
	s.queue.Append(streamer)
}

func (s *speakerSink) Drain() {
	s.queue.Seal()
	<-s.queue.Done()
}

func (s *speakerSink) Close() {
	s.queue.Clear()
}
