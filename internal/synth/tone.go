// Package synth generates enveloped sine tones for MIDI notes.
package synth

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

const (
	// DefaultSampleRate is used when a zero sample rate is requested.
	DefaultSampleRate beep.SampleRate = 44100
	// RampSamples is the length of the fade-in and fade-out.
	RampSamples = 100
)

// MidiToFreq returns the equal-tempered frequency of a MIDI note, A4 (69) = 440 Hz.
func MidiToFreq(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

// Amplitude maps a velocity to a linear gain, scaled by volume and damping.
func Amplitude(velocity uint8, volume, damping float64) float64 {
	return float64(velocity) / 127 * volume * damping
}

// Tone is a finite mono sine wave. It is consumed once: after the last sample
// it stays exhausted. Tone implements beep.Streamer, copying each sample to
// both channels.
type Tone struct {
	freq       float64
	amplitude  float64
	sampleRate beep.SampleRate
	length     int
	pos        int
}

// NewTone builds the tone for a note. A negative duration yields an empty tone.
func NewTone(note, velocity uint8, volume, seconds float64, sampleRate beep.SampleRate) *Tone {
	return NewDampedTone(note, velocity, volume, 1, seconds, sampleRate)
}

// NewDampedTone is NewTone with an extra amplitude factor, used for previews.
func NewDampedTone(note, velocity uint8, volume, damping, seconds float64, sampleRate beep.SampleRate) *Tone {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	length := 0
	if seconds > 0 {
		length = int(seconds * float64(sampleRate))
	}
	return &Tone{
		freq:       MidiToFreq(note),
		amplitude:  Amplitude(velocity, volume, damping),
		sampleRate: sampleRate,
		length:     length,
	}
}

// Next returns the next sample, or false once the tone is exhausted.
func (t *Tone) Next() (float64, bool) {
	if t.pos >= t.length {
		return 0, false
	}
	n := t.pos
	t.pos++

	value := math.Sin(2 * math.Pi * t.freq * float64(n) / float64(t.sampleRate))
	return value * t.amplitude * t.envelope(n), true
}

func (t *Tone) envelope(n int) float64 {
	switch {
	case n < RampSamples:
		return float64(n) / RampSamples
	case n > t.length-RampSamples:
		return float64(t.length-n) / RampSamples
	default:
		return 1
	}
}

// Stream fills samples and reports false once nothing was left to stream.
func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		v, more := t.Next()
		if !more {
			break
		}
		samples[n][0] = v
		samples[n][1] = v
		n++
	}
	return n, n > 0
}

// Err always returns nil.
func (t *Tone) Err() error {
	return nil
}

// Len returns the total number of samples.
func (t *Tone) Len() int {
	return t.length
}

// Position returns the number of samples already produced.
func (t *Tone) Position() int {
	return t.pos
}

// SampleRate returns the rate the samples were generated for.
func (t *Tone) SampleRate() beep.SampleRate {
	return t.sampleRate
}

// Duration returns the total playing time.
func (t *Tone) Duration() time.Duration {
	return t.sampleRate.D(t.length)
}

// Frequency returns the tone frequency in Hz.
func (t *Tone) Frequency() float64 {
	return t.freq
}
