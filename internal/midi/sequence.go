// Package midi collects engine events per channel and writes them as a
// standard MIDI file.
package midi

import (
	"fmt"
	"io"

	"github.com/retroenv/vgm2midi/internal/engine"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Timing of the written file. The engine time base of 960 ticks per second
// matches 480 ticks per quarter note at 120 BPM.
const (
	TicksPerQuarter = 480
	Tempo           = 120.0
)

// Sequence implements engine.Sink and stores the events of all channels.
type Sequence struct {
	title    string
	channels [][]engine.Event
}

// NewSequence returns an empty sequence with the given number of channels.
// The title is written as track name of the tempo track if it is set.
func NewSequence(channels int, title string) *Sequence {
	return &Sequence{
		title:    title,
		channels: make([][]engine.Event, channels),
	}
}

// Emit appends an event to the track of the channel.
func (s *Sequence) Emit(channel int, ev engine.Event) {
	s.channels[channel] = append(s.channels[channel], ev)
}

// Events returns the events of a channel.
func (s *Sequence) Events(channel int) []engine.Event {
	return s.channels[channel]
}

// Notes returns the number of note-on events per channel.
func (s *Sequence) Notes() []int {
	counts := make([]int, len(s.channels))
	for i, events := range s.channels {
		for _, ev := range events {
			if ev.Kind == engine.NoteOn {
				counts[i]++
			}
		}
	}
	return counts
}

// WriteTo writes the sequence as format 1 file with a tempo track followed
// by one track per channel.
func (s *Sequence) WriteTo(w io.Writer) (int64, error) {
	file := smf.New()
	file.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var tempo smf.Track
	if s.title != "" {
		tempo.Add(0, smf.MetaTrackSequenceName(s.title))
	}
	tempo.Add(0, smf.MetaTempo(Tempo))
	tempo.Close(0)
	if err := file.Add(tempo); err != nil {
		return 0, fmt.Errorf("adding tempo track: %w", err)
	}

	for i, events := range s.channels {
		track, err := channelTrack(uint8(i), events)
		if err != nil {
			return 0, fmt.Errorf("building track of channel %d: %w", i, err)
		}
		if err := file.Add(track); err != nil {
			return 0, fmt.Errorf("adding track of channel %d: %w", i, err)
		}
	}

	n, err := file.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("writing midi file: %w", err)
	}
	return n, nil
}

func channelTrack(channel uint8, events []engine.Event) (smf.Track, error) {
	var track smf.Track
	for _, ev := range events {
		msg, err := message(channel, ev)
		if err != nil {
			return nil, err
		}
		track.Add(ev.Delta, msg)
	}
	track.Close(0)
	return track, nil
}

func message(channel uint8, ev engine.Event) (gomidi.Message, error) {
	switch ev.Kind {
	case engine.NoteOn:
		return gomidi.NoteOn(channel, ev.Note, ev.Velocity), nil
	case engine.NoteOff:
		return gomidi.NoteOff(channel, ev.Note), nil
	case engine.ControlChange:
		return gomidi.ControlChange(channel, ev.Controller, ev.Value), nil
	case engine.ProgramChange:
		return gomidi.ProgramChange(channel, ev.Program), nil
	case engine.PitchBend:
		return gomidi.Pitchbend(channel, int16(ev.Bend)-engine.BendCenter), nil
	default:
		return nil, fmt.Errorf("unsupported event kind %d", ev.Kind)
	}
}
