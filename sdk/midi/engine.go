package midi

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/leandrodaf/homados/internal/audio"
	"github.com/leandrodaf/homados/internal/connection"
	"github.com/leandrodaf/homados/internal/devices"
	"github.com/leandrodaf/homados/internal/playback"
	"github.com/leandrodaf/homados/sdk/contracts"
)

var _ contracts.Engine = (*Engine)(nil)

// Engine wires the device registry, the track connections and the playback
// scheduler behind the contracts.Engine boundary.
type Engine struct {
	logger      contracts.Logger
	backend     contracts.Backend
	registry    *devices.Registry
	connections *connection.Manager
	player      *playback.Scheduler
	speaker     *audio.SpeakerOutput // Nil when the output was supplied by the caller.

	mu     sync.RWMutex // Guards events and new playbacks against Close.
	events chan contracts.NoteEvent
	closed bool
}

func newEngine(options contracts.ClientOptions) *Engine {
	e := &Engine{
		logger:  options.Logger,
		backend: options.Backend,
		events:  make(chan contracts.NoteEvent, options.EventBuffer),
	}

	output := options.AudioOutput
	if output == nil {
		e.speaker = audio.NewSpeakerOutput(options.AudioConfig.BufferSize, options.Logger)
		output = e.speaker
	}

	e.registry = devices.NewRegistry(options.Backend, options.Logger)
	e.connections = connection.NewManager(options.Backend, e.publish, options.Logger)
	e.player = playback.NewScheduler(output, playback.Config{
		SampleRate:      beep.SampleRate(options.AudioConfig.SampleRate),
		PollInterval:    options.AudioConfig.PollInterval,
		PreviewDuration: options.AudioConfig.PreviewDuration,
		PreviewDamping:  options.AudioConfig.PreviewDamping,
	}, options.Logger)

	return e
}

// ListDevices lists MIDI inputs and outputs; enumeration failures yield empty lists.
func (e *Engine) ListDevices() contracts.DeviceList {
	return e.registry.List()
}

// Connect binds deviceID ("input-<n>") to trackID.
func (e *Engine) Connect(trackID, deviceID string) error {
	return e.connections.Connect(trackID, deviceID)
}

// Disconnect releases the track's input, if any.
func (e *Engine) Disconnect(trackID string) {
	e.connections.Disconnect(trackID)
}

// Tracks lists connected track ids.
func (e *Engine) Tracks() []string {
	return e.connections.Tracks()
}

// StartRecording starts a new session on a connected track.
func (e *Engine) StartRecording(trackID string) error {
	return e.connections.StartRecording(trackID)
}

// StopRecording ends the session and returns the recorded notes.
func (e *Engine) StopRecording(trackID string) ([]contracts.Note, error) {
	return e.connections.StopRecording(trackID)
}

// Play schedules notes on a new playback. It does nothing once the engine is closed.
func (e *Engine) Play(notes []contracts.Note, volume float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		e.logger.Warn("Playback ignored: engine closed")
		return
	}

	e.logger.Info("Playback requested",
		e.logger.Field().Int("notes", len(notes)),
		e.logger.Field().Float64("volume", volume))
	e.player.Play(notes, volume)
}

// StopPlayback stops every running playback.
func (e *Engine) StopPlayback() {
	e.player.Stop()
}

// PreviewNote plays a short damped tone. It does nothing once the engine is closed.
func (e *Engine) PreviewNote(note, velocity uint8, volume float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}
	e.player.Preview(note, velocity, volume)
}

// Events returns the channel of live note events. It is closed by Close.
func (e *Engine) Events() <-chan contracts.NoteEvent {
	return e.events
}

// publish delivers an event without blocking the backend thread.
func (e *Engine) publish(event contracts.NoteEvent) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}

	select {
	case e.events <- event:
	default:
		e.logger.Warn("Event buffer full; dropping MIDI event",
			e.logger.Field().String("trackId", event.TrackID),
			e.logger.Field().Uint8("note", event.Note))
	}
}

// Close stops playback, disconnects every track and releases the backend and
// the audio device. Calling Close more than once is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.events)
	e.mu.Unlock()

	e.player.Stop()
	e.connections.Close()
	e.player.Wait()
	if e.speaker != nil {
		e.speaker.Close()
	}

	e.logger.Info("Engine closed")
	return e.backend.Close()
}
