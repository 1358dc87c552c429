// Package usage tracks which sounds were played on which channel.
package usage

import (
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/vgm2midi/internal/instrument"
)

// Tracker counts the started notes per channel and sound label. Wave table
// sounds are labeled with their waveform fingerprint.
type Tracker struct {
	counts         map[int]map[string]int
	played         set.Set[string]
	newInstruments []instrument.Entry
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{
		counts: make(map[int]map[string]int),
		played: set.New[string](),
	}
}

// Record counts one started note.
func (t *Tracker) Record(channel int, label string) {
	labels, ok := t.counts[channel]
	if !ok {
		labels = make(map[string]int)
		t.counts[channel] = labels
	}
	labels[label]++
	t.played.Add(label)
}

// Count returns how often a sound was started on a channel.
func (t *Tracker) Count(channel int, label string) int {
	return t.counts[channel][label]
}

// Counts returns a copy of all counts by channel and label.
func (t *Tracker) Counts() map[int]map[string]int {
	result := make(map[int]map[string]int, len(t.counts))
	for channel, labels := range t.counts {
		copied := make(map[string]int, len(labels))
		for label, count := range labels {
			copied[label] = count
		}
		result[channel] = copied
	}
	return result
}

// Notes returns the total number of started notes.
func (t *Tracker) Notes() int {
	total := 0
	for _, labels := range t.counts {
		for _, count := range labels {
			total += count
		}
	}
	return total
}

// Played returns whether a sound was started on any channel.
func (t *Tracker) Played(label string) bool {
	return t.played.Contains(label)
}

// ReportNewInstrument collects an instrument that was registered during the conversion.
func (t *Tracker) ReportNewInstrument(entry instrument.Entry) {
	t.newInstruments = append(t.newInstruments, entry)
}

// NewInstruments returns the instruments registered during the conversion.
func (t *Tracker) NewInstruments() []instrument.Entry {
	return append([]instrument.Entry(nil), t.newInstruments...)
}
