package midi

import (
	"runtime"

	"github.com/leandrodaf/homados/internal/midi/mididarwin"
	"github.com/leandrodaf/homados/internal/midi/midirtmidi"
	"github.com/leandrodaf/homados/internal/midi/midiwindows"
	"github.com/leandrodaf/homados/sdk/contracts"
)

// backendInitializers maps OS names to their native MIDI backend.
var backendInitializers = map[string]func(*contracts.ClientOptions) (contracts.Backend, error){
	"darwin":  mididarwin.NewBackend,  // macOS (CoreMIDI).
	"windows": midiwindows.NewBackend, // Windows (winmm).
}

// NewBackend initializes the MIDI backend for the current operating system.
// Systems without a native backend use rtmidi (ALSA on Linux).
//
// opts *contracts.ClientOptions: Configuration options for the backend.
//
// Returns:
//   - contracts.Backend: The platform backend.
//   - error: An error if initialization fails.
func NewBackend(opts *contracts.ClientOptions) (contracts.Backend, error) {
	if initializer, exists := backendInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	return midirtmidi.NewBackend(opts)
}
