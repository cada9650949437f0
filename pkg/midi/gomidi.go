package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// FromBytes decodes a raw channel message. System and incomplete messages
// report false.
func FromBytes(b []byte, offset int32) (Message, bool) {
	if len(b) < 2 || b[0] < StatusNoteOff || b[0] >= 0xF0 {
		return Message{}, false
	}
	m := Message{Status: b[0], Data1: b[1] & 0x7F, SampleOffset: offset}
	if len(b) >= 3 {
		m.Data2 = b[2] & 0x7F
	}
	return m, true
}

// FromGoMIDI converts a message from a gomidi driver or SMF reader
func FromGoMIDI(msg gomidi.Message, offset int32) (Message, bool) {
	return FromBytes([]byte(msg), offset)
}

// ToGoMIDI converts m for sending through a gomidi driver. Unknown kinds
// are passed through byte for byte.
func ToGoMIDI(m Message) gomidi.Message {
	switch m.Kind() {
	case KindNoteOn:
		return gomidi.NoteOn(m.Channel(), m.Note(), m.Velocity())
	case KindNoteOff:
		return gomidi.NoteOff(m.Channel(), m.Note())
	case KindControlChange:
		return gomidi.ControlChange(m.Channel(), m.Controller(), m.Value())
	case KindPitchBend:
		v := int(m.Data2&0x7F)<<7 | int(m.Data1&0x7F)
		return gomidi.Pitchbend(m.Channel(), int16(v-PitchBendCenter))
	case KindProgramChange, KindChannelPressure:
		return gomidi.Message{m.Status, m.Data1}
	default:
		return gomidi.Message{m.Status, m.Data1, m.Data2}
	}
}
