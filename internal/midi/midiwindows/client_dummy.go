//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/homados/sdk/contracts"
)

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewBackend initializes a dummy MIDI backend for non-Windows systems.
func NewBackend(options *contracts.ClientOptions) (contracts.Backend, error) {
	options.Logger.Info("Using dummy MIDI client for non-Windows system")
	return &dummyMIDIClient{
		logger: options.Logger,
	}, nil
}

// Inputs reports that MIDI functionality is unavailable on this platform.
func (m *dummyMIDIClient) Inputs() ([]contracts.PortInfo, error) {
	m.logger.Warn("Inputs called on dummy MIDI client")
	return nil, fmt.Errorf("MIDI functionality is not available on this platform")
}

// Outputs reports that MIDI functionality is unavailable on this platform.
func (m *dummyMIDIClient) Outputs() ([]contracts.PortInfo, error) {
	m.logger.Warn("Outputs called on dummy MIDI client")
	return nil, fmt.Errorf("MIDI functionality is not available on this platform")
}

// Listen reports that MIDI functionality is unavailable on this platform.
func (m *dummyMIDIClient) Listen(int, contracts.MessageHandler) (contracts.Subscription, error) {
	m.logger.Warn("Listen called on dummy MIDI client")
	return nil, fmt.Errorf("%w: MIDI functionality is not available on this platform", contracts.ErrConnection)
}

// Close does nothing.
func (m *dummyMIDIClient) Close() error {
	return nil
}
