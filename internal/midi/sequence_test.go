package midi

import (
	"bytes"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2midi/internal/engine"
	"github.com/retroenv/vgm2midi/internal/verification"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestSequenceWriteTo(t *testing.T) {
	seq := NewSequence(2, "Stage 1")
	seq.Emit(0, engine.Event{Kind: engine.ProgramChange, Program: 80})
	seq.Emit(0, engine.Event{Kind: engine.ControlChange, Controller: engine.ControllerPan, Value: 64})
	seq.Emit(0, engine.Event{Kind: engine.PitchBend, Bend: engine.BendCenter + 100})
	seq.Emit(0, engine.Event{Kind: engine.NoteOn, Note: 60, Velocity: engine.NoteVelocity})
	seq.Emit(0, engine.Event{Kind: engine.NoteOff, Note: 60, Delta: 480})
	assert.Equal(t, []int{1, 0}, seq.Notes())

	var buf bytes.Buffer
	n, err := seq.WriteTo(&buf)
	assert.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	file, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)
	assert.Len(t, file.Tracks, 3)

	ticks, ok := file.TimeFormat.(smf.MetricTicks)
	assert.True(t, ok)
	assert.Equal(t, uint16(TicksPerQuarter), uint16(ticks))

	var (
		name string
		bpm  float64
	)
	for _, ev := range file.Tracks[0] {
		ev.Message.GetMetaTrackName(&name)
		ev.Message.GetMetaTempo(&bpm)
	}
	assert.Equal(t, "Stage 1", name)
	assert.Equal(t, Tempo, bpm)

	var (
		channel, program uint8
		relative         int16
		absolute         uint16
	)
	track := file.Tracks[1]
	assert.True(t, gomidi.Message(track[0].Message).GetProgramChange(&channel, &program))
	assert.Equal(t, uint8(80), program)
	assert.True(t, gomidi.Message(track[2].Message).GetPitchBend(&channel, &relative, &absolute))
	assert.Equal(t, int16(100), relative)
	assert.Equal(t, uint16(engine.BendCenter+100), absolute)
	assert.Equal(t, uint32(480), track[4].Delta)

	summary, err := verification.Verify(log.NewTestLogger(t), bytes.NewReader(buf.Bytes()), 2)
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 0}, summary.Notes)
	assert.Equal(t, uint32(480), summary.Ticks)
	assert.NoError(t, verification.CompareNotes(summary, seq.Notes()))
}

func TestSequenceWithoutTitle(t *testing.T) {
	seq := NewSequence(4, "")

	var buf bytes.Buffer
	_, err := seq.WriteTo(&buf)
	assert.NoError(t, err)

	file, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)
	assert.Len(t, file.Tracks, 5)

	var name string
	for _, ev := range file.Tracks[0] {
		assert.False(t, ev.Message.GetMetaTrackName(&name))
	}
}
