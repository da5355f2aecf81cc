package contracts

// MessageHandler receives the raw bytes of one MIDI message. It is invoked on a
// thread owned by the backend and must not block.
type MessageHandler func(raw []byte)

// Subscription is a live input port connection.
type Subscription interface {
	Close() error // Disconnects the port; the handler is not invoked after Close returns.
}

// Backend abstracts the platform MIDI API.
type Backend interface {
	Inputs() ([]PortInfo, error)                                    // Enumerates input ports.
	Outputs() ([]PortInfo, error)                                   // Enumerates output ports.
	Listen(index int, handler MessageHandler) (Subscription, error) // Opens input port index and forwards its messages.
	Close() error                                                   // Releases the backend.
}
