// Package devices enumerates MIDI ports and resolves their ids.
package devices

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leandrodaf/homados/sdk/contracts"
)

const (
	inputPrefix  = "input-"
	outputPrefix = "output-"
)

// Registry lists the ports of a backend under positional ids.
type Registry struct {
	backend contracts.Backend
	logger  contracts.Logger
}

// NewRegistry creates a registry over backend.
func NewRegistry(backend contracts.Backend, logger contracts.Logger) *Registry {
	return &Registry{backend: backend, logger: logger}
}

// List enumerates inputs and outputs. A side that cannot be queried is
// reported as empty.
func (r *Registry) List() contracts.DeviceList {
	list := contracts.DeviceList{
		Inputs:  []contracts.Device{},
		Outputs: []contracts.Device{},
	}

	inputs, err := r.backend.Inputs()
	if err != nil {
		r.logger.Warn("Failed to list MIDI inputs", r.logger.Field().Error("error", err))
	}
	for i, port := range inputs {
		list.Inputs = append(list.Inputs, contracts.Device{ID: InputID(i), Name: port.Name, Kind: contracts.InputPort})
	}

	outputs, err := r.backend.Outputs()
	if err != nil {
		r.logger.Warn("Failed to list MIDI outputs", r.logger.Field().Error("error", err))
	}
	for i, port := range outputs {
		list.Outputs = append(list.Outputs, contracts.Device{ID: OutputID(i), Name: port.Name, Kind: contracts.OutputPort})
	}

	return list
}

// InputID formats the id of the input at index.
func InputID(index int) string {
	return inputPrefix + strconv.Itoa(index)
}

// OutputID formats the id of the output at index.
func OutputID(index int) string {
	return outputPrefix + strconv.Itoa(index)
}

// ParseInputID extracts the enumeration index from an "input-<n>" id.
func ParseInputID(id string) (int, error) {
	digits, found := strings.CutPrefix(id, inputPrefix)
	if !found {
		return 0, fmt.Errorf("%w: %q", contracts.ErrInvalidDeviceID, id)
	}
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 || strings.HasPrefix(digits, "+") {
		return 0, fmt.Errorf("%w: %q", contracts.ErrInvalidDeviceID, id)
	}
	return index, nil
}
