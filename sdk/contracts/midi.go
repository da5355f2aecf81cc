package contracts

// Note is a finalized, timed note segment. Times are in seconds relative to
// the start of the recording session (or of the playback request).
type Note struct {
	Note      uint8   `json:"note" binding:"max=127"`     // MIDI note number (0-127).
	Velocity  uint8   `json:"velocity" binding:"max=127"` // Note-on velocity (0-127).
	StartTime float64 `json:"startTime"`                  // Offset of the note-on, in seconds.
	Duration  float64 `json:"duration"`                   // Time between note-on and note-off, in seconds.
}

// NoteEvent is the outward notification emitted for every accepted note-on or
// note-off received on a connected track.
type NoteEvent struct {
	TrackID  string  `json:"trackId"`
	Note     uint8   `json:"note"`
	Velocity uint8   `json:"velocity"`
	IsNoteOn bool    `json:"isNoteOn"`
	Time     float64 `json:"time"` // Seconds since the recording origin, 0 if no session was started.
}

// Engine is the boundary consumed by the surrounding application.
type Engine interface {
	// ListDevices lists the current MIDI input and output ports.
	ListDevices() DeviceList
	// Connect binds an input port to a track, replacing any previous binding.
	Connect(trackID, deviceID string) error
	// Disconnect drops the track's binding; it is a no-op when absent.
	Disconnect(trackID string)
	// Tracks lists the connected track ids.
	Tracks() []string
	// StartRecording starts a fresh recording session on the track.
	StartRecording(trackID string) error
	// StopRecording ends the session and returns every recorded note.
	StopRecording(trackID string) ([]Note, error)
	// Play plays notes asynchronously.
	Play(notes []Note, volume float64)
	// StopPlayback requests every running playback to stop.
	StopPlayback()
	// PreviewNote plays a short tone asynchronously.
	PreviewNote(note, velocity uint8, volume float64)
	// Events delivers live note notifications for every connected track.
	Events() <-chan NoteEvent
	// Close stops playback and releases every connection.
	Close() error
}
