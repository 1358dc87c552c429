// Package verification verifies that a written MIDI file can be read back
// and contains a consistent note stream.
package verification

import (
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/retrogolib/log"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const maxReportedMismatches = 10

// Summary describes a verified file.
type Summary struct {
	Tracks int
	Notes  []int  // note-on count per channel track
	Ticks  uint32 // length of the longest track
}

// Verify reads a MIDI file and checks that it has a tempo track followed by
// one track per channel and that every started note is ended on its track.
func Verify(logger *log.Logger, r io.Reader, channels int) (Summary, error) {
	file, err := smf.ReadFrom(r)
	if err != nil {
		return Summary{}, fmt.Errorf("reading midi file: %w", err)
	}

	summary := Summary{
		Tracks: len(file.Tracks),
	}
	if summary.Tracks != channels+1 {
		return summary, fmt.Errorf("mismatched track count, %d != %d", summary.Tracks, channels+1)
	}

	var mismatches int
	for i, track := range file.Tracks[1:] {
		notes, length, open := checkTrack(track)
		summary.Notes = append(summary.Notes, notes)
		summary.Ticks = max(summary.Ticks, length)

		for key, count := range open {
			if count == 0 {
				continue
			}
			mismatches++
			if mismatches <= maxReportedMismatches {
				logger.Error("Note not ended",
					log.Int("channel", i),
					log.Uint8("note", key),
					log.Int("count", count))
			}
		}
	}

	if mismatches > 0 {
		return summary, fmt.Errorf("%d unbalanced notes", mismatches)
	}
	return summary, nil
}

// checkTrack returns the number of started notes, the track length in ticks
// and the number of notes per key that are still open at the end.
func checkTrack(track smf.Track) (int, uint32, map[uint8]int) {
	var (
		notes  int
		length uint32
	)
	open := make(map[uint8]int)

	for _, ev := range track {
		length += ev.Delta

		var channel, key, velocity uint8
		msg := gomidi.Message(ev.Message)
		switch {
		case msg.GetNoteStart(&channel, &key, &velocity):
			notes++
			open[key]++
		case msg.GetNoteEnd(&channel, &key):
			if open[key] > 0 {
				open[key]--
			}
		}
	}
	return notes, length, open
}

// ErrNoteCountMismatch is returned by CompareNotes if the file does not
// contain the expected number of notes.
var ErrNoteCountMismatch = errors.New("note count mismatch")

// CompareNotes checks the note counts of a summary against the expected counts per channel.
func CompareNotes(summary Summary, expected []int) error {
	if len(summary.Notes) != len(expected) {
		return fmt.Errorf("%w: %d channels != %d", ErrNoteCountMismatch, len(summary.Notes), len(expected))
	}
	for i, n := range expected {
		if summary.Notes[i] != n {
			return fmt.Errorf("%w: channel %d has %d notes, expected %d", ErrNoteCountMismatch, i, summary.Notes[i], n)
		}
	}
	return nil
}
