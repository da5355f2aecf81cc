package midiwindows

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // MIDI data received while the application lags behind
)

// shortMessage unpacks the status and data bytes winmm packs into dwParam1.
// MIM_MOREDATA carries a regular message and is treated like MIM_DATA.
func shortMessage(wMsg uint32, param uintptr) ([]byte, bool) {
	switch wMsg {
	case MIM_DATA, MIM_MOREDATA:
		return []byte{byte(param), byte(param >> 8), byte(param >> 16)}, true
	}
	return nil, false
}
