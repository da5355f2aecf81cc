package contracts

// PortKind tells whether a device is a MIDI input or output.
type PortKind string

const (
	// InputPort marks a port that produces MIDI messages.
	InputPort PortKind = "input"
	// OutputPort marks a port that consumes MIDI messages.
	OutputPort PortKind = "output"
)

// PortInfo describes a port as reported by a backend, in enumeration order.
type PortInfo struct {
	Name         string // Port name.
	Manufacturer string // Device manufacturer, if the backend knows it.
	EntityName   string // Name of the entity to which the port belongs.
}

// Device is a port addressed by its enumeration position ("input-0", "output-2").
// Ids are only valid until the device list changes.
type Device struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Kind PortKind `json:"kind"`
}

// DeviceList groups the enumerated inputs and outputs.
type DeviceList struct {
	Inputs  []Device `json:"inputs"`
	Outputs []Device `json:"outputs"`
}
