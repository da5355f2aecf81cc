//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"

	"github.com/leandrodaf/homados/sdk/contracts"
)

type DummyMIDIClient struct {
	logger contracts.Logger
}

func NewBackend(options *contracts.ClientOptions) (contracts.Backend, error) {
	options.Logger.Info("Using dummy MIDI client for non-macOS system")
	return &DummyMIDIClient{
		logger: options.Logger,
	}, nil
}

func (m *DummyMIDIClient) Inputs() ([]contracts.PortInfo, error) {
	m.logger.Warn("Inputs called on dummy MIDI client")
	return nil, fmt.Errorf("MIDI functionality is not available on this platform")
}

func (m *DummyMIDIClient) Outputs() ([]contracts.PortInfo, error) {
	m.logger.Warn("Outputs called on dummy MIDI client")
	return nil, fmt.Errorf("MIDI functionality is not available on this platform")
}

func (m *DummyMIDIClient) Listen(int, contracts.MessageHandler) (contracts.Subscription, error) {
	m.logger.Warn("Listen called on dummy MIDI client")
	return nil, fmt.Errorf("%w: MIDI functionality is not available on this platform", contracts.ErrConnection)
}

func (m *DummyMIDIClient) Close() error {
	return nil
}
