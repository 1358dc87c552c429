package usage

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/retroenv/vgm2midi/internal/instrument"
)

// NameFunc returns the display name of a sound label, or false if it is unknown.
type NameFunc func(label string) (string, bool)

// WriteReport writes the conversion report of one capture.
func (t *Tracker) WriteReport(w io.Writer, source string, now time.Time, nameOf NameFunc) error {
	buf := bufio.NewWriter(w)

	fmt.Fprintln(buf, "--- Conversion Log ---")
	fmt.Fprintf(buf, "Timestamp: %s\n", now.Format(instrument.TimestampLayout))
	fmt.Fprintf(buf, "Source File: %s\n", source)
	fmt.Fprintln(buf)

	if len(t.newInstruments) > 0 {
		fmt.Fprintln(buf, "New Waveforms Registered:")
		for _, entry := range t.newInstruments {
			fmt.Fprintf(buf, "  - %s (Program: %d, Fingerprint: %s)\n", entry.Name, entry.Program, entry.Fingerprint)
		}
		fmt.Fprintln(buf)
	}

	if len(t.counts) == 0 {
		fmt.Fprintln(buf, "Waveform Usage: None")
	} else {
		fmt.Fprintln(buf, "Waveform Usage by Channel:")
		t.writeUsage(buf, nameOf)
	}
	fmt.Fprintln(buf)

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing usage report: %w", err)
	}
	return nil
}

func (t *Tracker) writeUsage(w io.Writer, nameOf NameFunc) {
	channels := make([]int, 0, len(t.counts))
	for channel := range t.counts {
		channels = append(channels, channel)
	}
	sort.Ints(channels)

	for _, channel := range channels {
		labels := t.counts[channel]
		sorted := make([]string, 0, len(labels))
		for label := range labels {
			sorted = append(sorted, label)
		}
		sort.Strings(sorted)

		fmt.Fprintf(w, "  Channel %d:\n", channel+1)
		for _, label := range sorted {
			name := label
			if nameOf != nil {
				if display, ok := nameOf(label); ok {
					name = fmt.Sprintf("%s [%s]", display, label)
				}
			}
			fmt.Fprintf(w, "    - %s (%d times)\n", name, labels[label])
		}
	}
}
