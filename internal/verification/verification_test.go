package verification

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func buildFile(t *testing.T, tracks ...smf.Track) []byte {
	t.Helper()
	file := smf.New()
	file.TimeFormat = smf.MetricTicks(480)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTempo(120))
	tempo.Close(0)
	assert.NoError(t, file.Add(tempo))

	for _, track := range tracks {
		track.Close(0)
		assert.NoError(t, file.Add(track))
	}

	var buf bytes.Buffer
	_, err := file.WriteTo(&buf)
	assert.NoError(t, err)
	return buf.Bytes()
}

func TestVerify(t *testing.T) {
	var balanced smf.Track
	balanced.Add(0, gomidi.NoteOn(0, 60, 127))
	balanced.Add(100, gomidi.NoteOff(0, 60))
	balanced.Add(0, gomidi.NoteOn(0, 62, 127))
	balanced.Add(50, gomidi.NoteOff(0, 62))

	var open smf.Track
	open.Add(10, gomidi.NoteOn(1, 64, 127))

	tests := []struct {
		name     string
		tracks   []smf.Track
		channels int
		notes    []int
		err      string
	}{
		{name: "balanced", tracks: []smf.Track{balanced, {}}, channels: 2, notes: []int{2, 0}},
		{name: "open note", tracks: []smf.Track{balanced, open}, channels: 2, err: "1 unbalanced notes"},
		{name: "track count", tracks: []smf.Track{balanced}, channels: 4, err: "mismatched track count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildFile(t, tt.tracks...)
			summary, err := Verify(log.NewTestLogger(t), bytes.NewReader(data), tt.channels)
			if tt.err != "" {
				assert.ErrorContains(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.notes, summary.Notes)
			assert.Equal(t, uint32(150), summary.Ticks)
		})
	}
}

func TestVerifyInvalidData(t *testing.T) {
	_, err := Verify(log.NewTestLogger(t), bytes.NewReader([]byte("not a midi file")), 4)
	assert.ErrorContains(t, err, "reading midi file")
}

func TestCompareNotes(t *testing.T) {
	summary := Summary{Notes: []int{3, 0, 1, 0}}
	assert.NoError(t, CompareNotes(summary, []int{3, 0, 1, 0}))

	err := CompareNotes(summary, []int{3, 1, 1, 0})
	assert.True(t, errors.Is(err, ErrNoteCountMismatch))
	assert.ErrorContains(t, err, "channel 1")

	err = CompareNotes(summary, []int{3})
	assert.True(t, errors.Is(err, ErrNoteCountMismatch))
}
