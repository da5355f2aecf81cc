package contracts

import "github.com/gopxl/beep"

// AudioSink queues streamers and plays them back to back, in append order.
type AudioSink interface {
	Append(s beep.Streamer) // Queues s after everything appended before it.
	Drain()                 // Blocks until every queued streamer has finished playing.
	Close()                 // Discards anything still queued and releases the sink.
}

// AudioOutput opens independent sinks on an audio device.
type AudioOutput interface {
	Open(sampleRate beep.SampleRate) (AudioSink, error)
}
