// Package midi decodes the three-byte channel messages the engine reacts to
// and hands them between goroutines without locks.
package midi

import "fmt"

// Status bytes (channel in the low nibble)
const (
	StatusNoteOff         uint8 = 0x80
	StatusNoteOn          uint8 = 0x90
	StatusPolyPressure    uint8 = 0xA0
	StatusControlChange   uint8 = 0xB0
	StatusProgramChange   uint8 = 0xC0
	StatusChannelPressure uint8 = 0xD0
	StatusPitchBend       uint8 = 0xE0
)

// Controller numbers the engine understands
const (
	CCModWheel    uint8 = 1
	CCSustain     uint8 = 64
	CCAllSoundOff uint8 = 120
	CCAllNotesOff uint8 = 123
)

// PitchBendCenter is the 14-bit value of an untouched wheel
const PitchBendCenter = 8192

type Kind uint8

const (
	KindUnknown Kind = iota
	KindNoteOn
	KindNoteOff
	KindControlChange
	KindPitchBend
	KindProgramChange
	KindPolyPressure
	KindChannelPressure
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "NoteOn"
	case KindNoteOff:
		return "NoteOff"
	case KindControlChange:
		return "ControlChange"
	case KindPitchBend:
		return "PitchBend"
	case KindProgramChange:
		return "ProgramChange"
	case KindPolyPressure:
		return "PolyPressure"
	case KindChannelPressure:
		return "ChannelPressure"
	default:
		return "Unknown"
	}
}

// Message is one channel message plus the frame within the current buffer
// it belongs to.
type Message struct {
	Status       uint8
	Data1        uint8
	Data2        uint8
	SampleOffset int32
}

// Kind classifies the message. A note-on with velocity zero is a note-off.
func (m Message) Kind() Kind {
	switch m.Status & 0xF0 {
	case StatusNoteOn:
		if m.Data2 == 0 {
			return KindNoteOff
		}
		return KindNoteOn
	case StatusNoteOff:
		return KindNoteOff
	case StatusControlChange:
		return KindControlChange
	case StatusPitchBend:
		return KindPitchBend
	case StatusProgramChange:
		return KindProgramChange
	case StatusPolyPressure:
		return KindPolyPressure
	case StatusChannelPressure:
		return KindChannelPressure
	default:
		return KindUnknown
	}
}

func (m Message) Channel() uint8 {
	return m.Status & 0x0F
}

func (m Message) Note() uint8 {
	return m.Data1 & 0x7F
}

func (m Message) Velocity() uint8 {
	return m.Data2 & 0x7F
}

func (m Message) Controller() uint8 {
	return m.Data1 & 0x7F
}

func (m Message) Value() uint8 {
	return m.Data2 & 0x7F
}

// PitchBend returns the 14-bit wheel position mapped to [-1, 1], with
// 8192 as the centre.
func (m Message) PitchBend() float64 {
	v := int(m.Data2&0x7F)<<7 | int(m.Data1&0x7F)
	if v >= PitchBendCenter {
		return float64(v-PitchBendCenter) / float64(0x3FFF-PitchBendCenter)
	}
	return float64(v-PitchBendCenter) / PitchBendCenter
}

// At returns a copy of the message moved to another frame offset
func (m Message) At(offset int32) Message {
	m.SampleOffset = offset
	return m
}

func (m Message) String() string {
	switch m.Kind() {
	case KindNoteOn, KindNoteOff:
		return fmt.Sprintf("%s{ch:%d, note:%d, vel:%d, offset:%d}",
			m.Kind(), m.Channel(), m.Note(), m.Velocity(), m.SampleOffset)
	case KindControlChange:
		return fmt.Sprintf("ControlChange{ch:%d, cc:%d, value:%d, offset:%d}",
			m.Channel(), m.Controller(), m.Value(), m.SampleOffset)
	case KindPitchBend:
		return fmt.Sprintf("PitchBend{ch:%d, value:%.3f, offset:%d}",
			m.Channel(), m.PitchBend(), m.SampleOffset)
	default:
		return fmt.Sprintf("%s{status:0x%02X, data:%d,%d, offset:%d}",
			m.Kind(), m.Status, m.Data1, m.Data2, m.SampleOffset)
	}
}

// NoteOn builds a note-on message
func NoteOn(channel, note, velocity uint8) Message {
	return Message{Status: StatusNoteOn | channel&0x0F, Data1: note & 0x7F, Data2: velocity & 0x7F}
}

// NoteOff builds a note-off message
func NoteOff(channel, note uint8) Message {
	return Message{Status: StatusNoteOff | channel&0x0F, Data1: note & 0x7F}
}

// ControlChange builds a controller message
func ControlChange(channel, controller, value uint8) Message {
	return Message{Status: StatusControlChange | channel&0x0F, Data1: controller & 0x7F, Data2: value & 0x7F}
}

// PitchBend builds a pitch-bend message from a position in [-1, 1]
func PitchBend(channel uint8, amount float64) Message {
	amount = max(-1, min(1, amount))
	var v int
	if amount >= 0 {
		v = PitchBendCenter + int(amount*float64(0x3FFF-PitchBendCenter)+0.5)
	} else {
		v = PitchBendCenter + int(amount*PitchBendCenter-0.5)
	}
	return Message{
		Status: StatusPitchBend | channel&0x0F,
		Data1:  uint8(v & 0x7F),
		Data2:  uint8(v >> 7 & 0x7F),
	}
}

// AllNotesOff builds the panic controller message
func AllNotesOff(channel uint8) Message {
	return ControlChange(channel, CCAllNotesOff, 0)
}
