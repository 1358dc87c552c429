package engine

// Kind is the type of a musical event.
type Kind uint8

// Event kinds.
const (
	NoteOn Kind = iota + 1
	NoteOff
	ControlChange
	ProgramChange
	PitchBend
)

// Controller numbers used by the channels.
const (
	ControllerDataEntryMSB uint8 = 6
	ControllerPan          uint8 = 10
	ControllerExpression   uint8 = 11
	ControllerDataEntryLSB uint8 = 38
	ControllerRPNLSB       uint8 = 100
	ControllerRPNMSB       uint8 = 101
)

const (
	// NoteVelocity is the velocity of every note on, loudness is carried by the expression controller.
	NoteVelocity = 127
	// BendCenter is the pitch bend value without any deviation.
	BendCenter = 8192
	// BendMax is the highest 14 bit pitch bend value.
	BendMax = 16383
	// BendRangeSemitones is the pitch bend range announced through the RPN.
	BendRangeSemitones = 2
)

// Event is a musical event of one channel. Delta is the number of ticks
// since the previous event of the same channel.
type Event struct {
	Delta      uint32
	Kind       Kind
	Note       uint8
	Velocity   uint8
	Controller uint8
	Value      uint8
	Program    uint8
	Bend       uint16
}

// Sink receives the events of all channels in emission order.
type Sink interface {
	Emit(channel int, ev Event)
}

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note on"
	case NoteOff:
		return "note off"
	case ControlChange:
		return "control change"
	case ProgramChange:
		return "program change"
	case PitchBend:
		return "pitch bend"
	default:
		return "unknown"
	}
}
