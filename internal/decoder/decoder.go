// Package decoder turns raw MIDI bytes into note-on/note-off messages.
package decoder

import "gitlab.com/gomidi/midi/v2"

// Message is a decoded note-on or note-off.
type Message struct {
	Note     uint8
	Velocity uint8
	IsNoteOn bool
}

// Decode classifies a raw MIDI message on any channel. Only the first three
// bytes are read. A note-on with zero velocity is a note-off. Anything else,
// including messages shorter than three bytes, yields ok=false.
func Decode(raw []byte) (Message, bool) {
	if len(raw) < 3 {
		return Message{}, false
	}

	var key, velocity uint8
	msg := midi.Message(raw[:3])

	switch {
	case msg.GetNoteStart(nil, &key, &velocity):
		return Message{Note: key, Velocity: velocity, IsNoteOn: true}, true
	case msg.GetNoteOff(nil, &key, &velocity):
		return Message{Note: key, Velocity: velocity}, true
	case msg.GetNoteEnd(nil, &key):
		return Message{Note: key}, true
	}
	return Message{}, false
}
