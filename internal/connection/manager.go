// Package connection binds MIDI input ports to tracks.
package connection

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/leandrodaf/homados/internal/decoder"
	"github.com/leandrodaf/homados/internal/devices"
	"github.com/leandrodaf/homados/internal/recording"
	"github.com/leandrodaf/homados/sdk/contracts"
)

// Notifier receives every accepted note event, on the backend's thread.
type Notifier func(contracts.NoteEvent)

type track struct {
	subscription contracts.Subscription
	ledger       *recording.Ledger
}

// Manager owns at most one input subscription and one recording ledger per
// track id.
type Manager struct {
	backend contracts.Backend
	notify  Notifier
	logger  contracts.Logger
	now     func() time.Time

	mu     sync.Mutex
	tracks map[string]*track
}

// NewManager creates an empty manager. notify may be nil.
func NewManager(backend contracts.Backend, notify Notifier, logger contracts.Logger) *Manager {
	if notify == nil {
		notify = func(contracts.NoteEvent) {}
	}
	return &Manager{
		backend: backend,
		notify:  notify,
		logger:  logger,
		now:     time.Now,
		tracks:  make(map[string]*track),
	}
}

// Connect subscribes the track to the input identified by deviceID. A previous
// connection of the track is closed and its recording discarded.
func (m *Manager) Connect(trackID, deviceID string) error {
	index, err := devices.ParseInputID(deviceID)
	if err != nil {
		return err
	}

	inputs, err := m.backend.Inputs()
	if err != nil {
		return fmt.Errorf("%w: listing inputs: %v", contracts.ErrConnection, err)
	}
	if index >= len(inputs) {
		return fmt.Errorf("%w: %s (%d inputs available)", contracts.ErrPortUnavailable, deviceID, len(inputs))
	}

	ledger := recording.NewLedger(m.now)
	subscription, err := m.backend.Listen(index, m.receiver(trackID, ledger))
	if err != nil {
		m.logger.Error("Failed to connect MIDI input",
			m.logger.Field().String("trackId", trackID),
			m.logger.Field().String("deviceId", deviceID),
			m.logger.Field().Error("error", err))
		if errors.Is(err, contracts.ErrPortUnavailable) || errors.Is(err, contracts.ErrConnection) {
			return err
		}
		return fmt.Errorf("%w: %v", contracts.ErrConnection, err)
	}

	m.mu.Lock()
	previous := m.tracks[trackID]
	m.tracks[trackID] = &track{subscription: subscription, ledger: ledger}
	m.mu.Unlock()

	if previous != nil {
		m.closeTrack(trackID, previous)
	}

	m.logger.Info("MIDI input connected",
		m.logger.Field().String("trackId", trackID),
		m.logger.Field().String("deviceId", deviceID),
		m.logger.Field().String("deviceName", inputs[index].Name))
	return nil
}

// receiver builds the backend callback for one track: decode, stamp and apply
// on the ledger, then publish.
func (m *Manager) receiver(trackID string, ledger *recording.Ledger) contracts.MessageHandler {
	return func(raw []byte) {
		msg, ok := decoder.Decode(raw)
		if !ok {
			return
		}
		m.notify(ledger.Observe(trackID, msg))
	}
}

// Disconnect closes the track's subscription. Unknown tracks are ignored.
func (m *Manager) Disconnect(trackID string) {
	m.mu.Lock()
	t, ok := m.tracks[trackID]
	delete(m.tracks, trackID)
	m.mu.Unlock()

	if ok {
		m.closeTrack(trackID, t)
		m.logger.Info("MIDI input disconnected", m.logger.Field().String("trackId", trackID))
	}
}

// Tracks returns the connected track ids, sorted.
func (m *Manager) Tracks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.tracks))
	for id := range m.tracks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StartRecording begins a new session on the track.
func (m *Manager) StartRecording(trackID string) error {
	ledger, err := m.ledger(trackID)
	if err != nil {
		return err
	}
	ledger.Start()
	m.logger.Info("Recording started", m.logger.Field().String("trackId", trackID))
	return nil
}

// StopRecording ends the session on the track and returns its notes.
func (m *Manager) StopRecording(trackID string) ([]contracts.Note, error) {
	ledger, err := m.ledger(trackID)
	if err != nil {
		return nil, err
	}
	notes := ledger.Stop()
	m.logger.Info("Recording stopped",
		m.logger.Field().String("trackId", trackID),
		m.logger.Field().Int("notes", len(notes)))
	return notes, nil
}

// Close disconnects every track.
func (m *Manager) Close() {
	m.mu.Lock()
	tracks := m.tracks
	m.tracks = make(map[string]*track)
	m.mu.Unlock()

	for id, t := range tracks {
		m.closeTrack(id, t)
	}
}

func (m *Manager) ledger(trackID string) (*recording.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tracks[trackID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", contracts.ErrNotConnected, trackID)
	}
	return t.ledger, nil
}

func (m *Manager) closeTrack(trackID string, t *track) {
	if err := t.subscription.Close(); err != nil {
		m.logger.Warn("Failed to close MIDI input",
			m.logger.Field().String("trackId", trackID),
			m.logger.Field().Error("error", err))
	}
}
