package midi

import (
	"github.com/leandrodaf/homados/sdk/contracts"
)

// NewEngine creates a capture and playback engine with the specified options.
// It applies default options and initializes the platform backend unless one
// was provided with contracts.WithBackend.
//
// opts ...contracts.Option: A variadic list of option functions to customize the engine configuration.
//
// Returns:
//   - *Engine: The engine, ready to list devices and connect tracks.
//   - error: An error, if any occurred during the creation of the engine.
func NewEngine(opts ...contracts.Option) (*Engine, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	if options.Backend == nil {
		options.Backend, err = NewBackend(&options)
		if err != nil {
			return nil, err
		}
	}

	return newEngine(options), nil
}
