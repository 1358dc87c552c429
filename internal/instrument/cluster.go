package instrument

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2midi/internal/waveform"
)

// DefaultClusterThreshold is the number of differing samples up to which two
// waveforms are grouped together.
const DefaultClusterThreshold = 6

// Cluster groups similar waveforms and returns all entries in group order.
// The first entry by name that is not yet grouped starts a new group and
// pulls in every later entry that differs in at most threshold samples.
// Lookups are not affected, resolving stays an exact fingerprint match.
func (r *Registry) Cluster(threshold int) []Entry {
	entries := r.Entries()
	waves := make([]waveform.Waveform, len(entries))
	for i, entry := range entries {
		// fingerprints in the map are always valid, they are either parsed
		// by the store or generated from a waveform
		waves[i], _ = waveform.ParseFingerprint(entry.Fingerprint)
	}

	grouped := make([]bool, len(entries))
	result := make([]Entry, 0, len(entries))

	for i := range entries {
		if grouped[i] {
			continue
		}
		grouped[i] = true
		group := []Entry{entries[i]}

		for j := i + 1; j < len(entries); j++ {
			if grouped[j] || !waves[i].Similar(waves[j], threshold) {
				continue
			}
			grouped[j] = true
			group = append(group, entries[j])
		}
		result = append(result, group...)
	}
	return result
}

// SortAndSave rewrites the instrument table with similar waveforms next to each other.
func (r *Registry) SortAndSave(threshold int) error {
	entries := r.Cluster(threshold)
	if err := r.store.Save(entries); err != nil {
		return fmt.Errorf("saving sorted instrument table: %w", err)
	}
	r.logger.Info("Instrument table sorted by similarity",
		log.Int("entries", len(entries)),
		log.Int("threshold", threshold))
	return nil
}
