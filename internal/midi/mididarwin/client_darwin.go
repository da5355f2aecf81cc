//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/homados/internal/decoder"
	"github.com/leandrodaf/homados/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// ErrCreateInputPort is returned when CoreMIDI refuses a new input port.
var ErrCreateInputPort = errors.New("error creating input port")

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// ClientMid manages CoreMIDI sources and destinations on macOS.
type ClientMid struct {
	logger contracts.Logger
	client coremidi.Client // CoreMIDI client instance shared by every input port.
	mu     sync.Mutex      // Serializes port creation and guards idle.
	idle   []*inputPort    // Ports no subscription is attached to.
}

// NewBackend creates the CoreMIDI client under the configured name.
func NewBackend(options *contracts.ClientOptions) (contracts.Backend, error) {
	client, err := coremidi.NewClient(options.BackendConfig.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Info("MIDI backend created", options.Logger.Field().String("backend", "coremidi"))

	return &ClientMid{
		logger: options.Logger,
		client: client,
	}, nil
}

// Inputs lists CoreMIDI sources.
func (m *ClientMid) Inputs() ([]contracts.PortInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}

	ports := make([]contracts.PortInfo, len(sources))
	for i, source := range sources {
		entity := source.Entity()
		ports[i] = contracts.PortInfo{
			Name:         source.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return ports, nil
}

// Outputs lists CoreMIDI destinations.
func (m *ClientMid) Outputs() ([]contracts.PortInfo, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
	}

	ports := make([]contracts.PortInfo, len(destinations))
	for i, destination := range destinations {
		ports[i] = contracts.PortInfo{Name: destination.Name()}
	}
	return ports, nil
}

// Listen connects an input port to source index. Ports are reused once their
// subscription is closed or their connection attempt failed.
func (m *ClientMid) Listen(index int, handler contracts.MessageHandler) (contracts.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("%w: retrieving MIDI sources: %v", contracts.ErrConnection, err)
	}
	if index < 0 || index >= len(sources) {
		return nil, fmt.Errorf("%w: source %d", contracts.ErrPortUnavailable, index)
	}
	source := sources[index]

	port, err := m.acquirePort()
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", contracts.ErrConnection, ErrCreateInputPort, err)
	}

	sub := newSubscription(m.logger, handler)
	port.attach(sub)

	sub.portConn, err = port.port.Connect(source)
	if err != nil {
		port.attach(nil)
		m.idle = append(m.idle, port)
		return nil, fmt.Errorf("%w: %v", contracts.ErrConnection, err)
	}
	sub.release = func() { m.releasePort(port) }

	m.logger.Info("MIDI source connected", m.logger.Field().String("deviceName", source.Name()))
	return sub, nil
}

// Close is a no-op: CoreMIDI releases the client with the process.
func (m *ClientMid) Close() error {
	return nil
}

// acquirePort pops an idle port or creates a new one. Callers hold m.mu.
func (m *ClientMid) acquirePort() (*inputPort, error) {
	if n := len(m.idle); n > 0 {
		port := m.idle[n-1]
		m.idle = m.idle[:n-1]
		return port, nil
	}

	port := &inputPort{}
	var err error
	port.port, err = coremidi.NewInputPort(m.client, "homados input", port.receive)
	if err != nil {
		return nil, err
	}
	return port, nil
}

func (m *ClientMid) releasePort(port *inputPort) {
	port.attach(nil)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.idle = append(m.idle, port)
}

// inputPort routes packets to the subscription currently attached to it.
type inputPort struct {
	port   coremidi.InputPort
	target atomic.Pointer[subscription]
}

func (p *inputPort) attach(sub *subscription) {
	p.target.Store(sub)
}

func (p *inputPort) receive(_ coremidi.Source, packet coremidi.Packet) {
	if sub := p.target.Load(); sub != nil {
		sub.handleMIDIMessage(packet)
	}
}

// subscription forwards the messages of one source until closed.
type subscription struct {
	logger   contracts.Logger
	stream   *decoder.Stream // A CoreMIDI packet may hold several messages.
	portConn internalPortConnection
	release  func()
	closed   atomic.Bool
	wg       sync.WaitGroup // In-flight callbacks.
	stopOnce sync.Once
}

func newSubscription(logger contracts.Logger, handler contracts.MessageHandler) *subscription {
	return &subscription{
		logger: logger,
		stream: decoder.NewStream(handler, func(err error) {
			logger.Debug("Malformed MIDI packet", logger.Field().Error("error", err))
		}),
	}
}

func (s *subscription) handleMIDIMessage(packet coremidi.Packet) {
	if s.closed.Load() {
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()

	s.stream.Write(packet.Data)
}

// Close disconnects the source, waits for ongoing callbacks to return and
// hands the port back for reuse.
func (s *subscription) Close() error {
	s.stopOnce.Do(func() {
		s.closed.Store(true)
		s.portConn.Disconnect()
		s.wg.Wait()
		if s.release != nil {
			s.release()
		}
	})
	return nil
}
