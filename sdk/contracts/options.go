package contracts

import "time"

// BackendConfig holds configuration shared by the platform MIDI backends.
type BackendConfig struct {
	ClientName string // Name under which the client registers with the MIDI system.
}

// AudioConfig holds configuration for tone synthesis and audio output.
type AudioConfig struct {
	SampleRate      int           // Samples per second of generated tones and of the output device.
	BufferSize      time.Duration // Output buffer length; bigger is safer, smaller is snappier.
	PreviewDuration time.Duration // Length of a preview tone.
	PreviewDamping  float64       // Extra amplitude factor applied to preview tones.
	PollInterval    time.Duration // Longest uninterrupted sleep while waiting for a note deadline.
}

// ClientOptions defines the configuration options for the engine.
type ClientOptions struct {
	Logger        Logger         // Logger for logging events and errors.
	LogLevel      LogLevel       // Level of logging to use.
	LogFilePath   string         // File path for logging if file logging is enabled.
	BackendConfig *BackendConfig // Configuration for the platform MIDI backend.
	AudioConfig   *AudioConfig   // Configuration for synthesis and output.
	EventBuffer   int            // Capacity of the note event channel.
	Backend       Backend        // Overrides the platform MIDI backend.
	AudioOutput   AudioOutput    // Overrides the default audio output.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the engine.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the engine.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile directs log output to the given file.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithBackendConfig sets the MIDI backend configuration.
func WithBackendConfig(config BackendConfig) Option {
	return func(opts *ClientOptions) {
		opts.BackendConfig = &config
	}
}

// WithAudioConfig sets the audio configuration. Zero fields keep their defaults.
func WithAudioConfig(config AudioConfig) Option {
	return func(opts *ClientOptions) {
		opts.AudioConfig = &config
	}
}

// WithEventBuffer sets the capacity of the note event channel.
func WithEventBuffer(size int) Option {
	return func(opts *ClientOptions) {
		opts.EventBuffer = size
	}
}

// WithBackend replaces the platform MIDI backend, e.g. with a virtual one.
func WithBackend(backend Backend) Option {
	return func(opts *ClientOptions) {
		opts.Backend = backend
	}
}

// WithAudioOutput replaces the default speaker output.
func WithAudioOutput(output AudioOutput) Option {
	return func(opts *ClientOptions) {
		opts.AudioOutput = output
	}
}
