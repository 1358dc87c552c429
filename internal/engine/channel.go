package engine

import "math"

// Source is the sound source that drives a channel.
type Source uint8

// Channel sources.
const (
	SourceNone Source = iota
	SourceWave
	SourcePCM
	SourceNoise
)

const unset = -1

// Observation is the view of one channel on the chip state at the time of an evaluation.
type Observation struct {
	Source     Source
	Program    uint8 // valid if Source is set and the channel is eligible or sounding
	Label      string
	Eligible   bool    // the channel should produce a note
	Note       uint8   // note to start when the channel becomes sounding
	Frequency  float64 // current tone frequency, 0 if undefined
	Expression uint8
	Pan        uint8
	TrackPitch bool // pitch changes are followed with bends and retriggers
}

// ChannelState is the note state of a channel. Controller values that were
// never sent are -1.
type ChannelState struct {
	Sounding      bool
	RangeSent     bool // pitch bend range was announced
	LastNote      uint8
	Expression    int
	Pan           int
	Program       int
	PitchBend     int
	BaseFrequency float64 // frequency of the sounding note
	LastEventTick uint32
}

// NewChannelState returns the state of a silent channel that has not sent any event.
func NewChannelState() ChannelState {
	return ChannelState{
		Expression: unset,
		Pan:        unset,
		Program:    unset,
		PitchBend:  unset,
	}
}

// Step evaluates the channel at the given tick and returns the next state
// together with the events to emit, in order. Program changes are sent
// only for channels that sound or start sounding.
func (s ChannelState) Step(obs Observation, tick uint32) (ChannelState, []Event) {
	t := transition{state: s, tick: tick}

	if obs.Source != SourceNone && (obs.Eligible || t.state.Sounding) && int(obs.Program) != t.state.Program {
		t.emit(Event{Kind: ProgramChange, Program: obs.Program})
		t.state.Program = int(obs.Program)
	}

	switch {
	case t.state.Sounding && !obs.Eligible:
		t.noteOff()
	case !t.state.Sounding && obs.Eligible:
		t.noteStart(obs)
	case t.state.Sounding && obs.Eligible:
		t.sustain(obs)
	}
	return t.state, t.events
}

// Close ends a sounding note at the given tick.
func (s ChannelState) Close(tick uint32) (ChannelState, []Event) {
	t := transition{state: s, tick: tick}
	if t.state.Sounding {
		t.noteOff()
	}
	return t.state, t.events
}

// transition collects the events of one evaluation. Only the first event
// carries the time since the last event of the channel.
type transition struct {
	state  ChannelState
	tick   uint32
	events []Event
}

func (t *transition) emit(ev Event) {
	ev.Delta = t.tick - t.state.LastEventTick
	t.state.LastEventTick = t.tick
	t.events = append(t.events, ev)
}

func (t *transition) controller(controller, value uint8) {
	t.emit(Event{Kind: ControlChange, Controller: controller, Value: value})
}

func (t *transition) noteOff() {
	t.emit(Event{Kind: NoteOff, Note: t.state.LastNote})
	t.state.Sounding = false
	t.state.BaseFrequency = 0
}

func (t *transition) noteStart(obs Observation) {
	if !t.state.RangeSent {
		t.controller(ControllerRPNMSB, 0)
		t.controller(ControllerRPNLSB, 0)
		t.controller(ControllerDataEntryMSB, BendRangeSemitones)
		t.controller(ControllerDataEntryLSB, 0)
		t.state.RangeSent = true
	}

	if int(obs.Pan) != t.state.Pan {
		t.controller(ControllerPan, obs.Pan)
		t.state.Pan = int(obs.Pan)
	}
	if int(obs.Expression) != t.state.Expression {
		t.controller(ControllerExpression, obs.Expression)
		t.state.Expression = int(obs.Expression)
	}
	if t.state.PitchBend != BendCenter {
		t.emit(Event{Kind: PitchBend, Bend: BendCenter})
		t.state.PitchBend = BendCenter
	}

	t.emit(Event{Kind: NoteOn, Note: obs.Note, Velocity: NoteVelocity})
	t.state.Sounding = true
	t.state.LastNote = obs.Note
	t.state.BaseFrequency = obs.Frequency
}

func (t *transition) sustain(obs Observation) {
	if int(obs.Expression) != t.state.Expression {
		t.controller(ControllerExpression, obs.Expression)
		t.state.Expression = int(obs.Expression)
	}
	if int(obs.Pan) != t.state.Pan {
		t.controller(ControllerPan, obs.Pan)
		t.state.Pan = int(obs.Pan)
	}

	base := t.state.BaseFrequency
	if !obs.TrackPitch || base <= 0 || obs.Frequency <= 0 {
		return
	}

	deviation := cents(obs.Frequency, base)
	if math.Abs(deviation) > BendRangeSemitones*100 {
		t.noteOff()
		t.noteStart(obs)
		return
	}

	bend := bendValue(deviation)
	if int(bend) != t.state.PitchBend {
		t.emit(Event{Kind: PitchBend, Bend: bend})
		t.state.PitchBend = int(bend)
	}
}
