//go:build !cgo
// +build !cgo

package midirtmidi

import (
	"fmt"

	"github.com/leandrodaf/homados/sdk/contracts"
)

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewBackend returns a backend without ports for builds without cgo.
func NewBackend(options *contracts.ClientOptions) (contracts.Backend, error) {
	options.Logger.Info("Using dummy MIDI backend: rtmidi requires cgo")
	return &dummyMIDIClient{logger: options.Logger}, nil
}

func (m *dummyMIDIClient) Inputs() ([]contracts.PortInfo, error) {
	return nil, fmt.Errorf("MIDI functionality is not available without cgo")
}

func (m *dummyMIDIClient) Outputs() ([]contracts.PortInfo, error) {
	return nil, fmt.Errorf("MIDI functionality is not available without cgo")
}

func (m *dummyMIDIClient) Listen(int, contracts.MessageHandler) (contracts.Subscription, error) {
	m.logger.Warn("Listen called on dummy MIDI backend")
	return nil, fmt.Errorf("%w: MIDI functionality is not available without cgo", contracts.ErrConnection)
}

func (m *dummyMIDIClient) Close() error {
	return nil
}
