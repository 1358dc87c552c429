// Package instrument maps waveform fingerprints to MIDI programs and keeps
// the mapping in a persistent instrument table.
package instrument

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2midi/internal/waveform"
)

const customNamePrefix = "CustomWave_"

// TimestampLayout is the layout of the registration timestamp in the instrument table.
const TimestampLayout = "2006-01-02 15:04:05"

// Entry is a single instrument of the table.
type Entry struct {
	Name         string
	Fingerprint  string
	Program      uint8
	Graph        string
	Source       string
	RegisteredAt time.Time
}

// Store persists the instrument table.
type Store interface {
	// Load returns all stored entries. A missing table returns no entries and no error.
	Load() ([]Entry, error)
	// Save replaces the stored table with the given entries, keeping their order.
	Save(entries []Entry) error
}

// Reporter gets notified about every instrument that was discovered during a run.
type Reporter interface {
	ReportNewInstrument(entry Entry)
}

// Registry resolves waveforms to MIDI programs.
type Registry struct {
	logger   *log.Logger
	store    Store
	defaults []Default
	reporter Reporter
	now      func() time.Time

	entries      map[string]Entry
	discovered   []Entry
	nextCustomID int
}

// New creates a registry and loads the instrument table from the store.
// An unusable or empty table is replaced by the defaults. The reporter is optional.
func New(logger *log.Logger, store Store, defaults []Default, reporter Reporter) (*Registry, error) {
	r := &Registry{
		logger:       logger,
		store:        store,
		defaults:     defaults,
		reporter:     reporter,
		now:          time.Now,
		entries:      make(map[string]Entry),
		nextCustomID: 1,
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetReporter sets the reporter that gets notified about new instruments.
func (r *Registry) SetReporter(reporter Reporter) {
	r.reporter = reporter
}

func (r *Registry) load() error {
	entries, err := r.store.Load()
	if err != nil {
		r.logger.Warn("Instrument table is unusable, regenerating defaults", log.Err(err))
		entries = nil
	}

	for _, entry := range entries {
		r.entries[entry.Fingerprint] = entry
	}

	if len(r.entries) == 0 {
		r.populateDefaults()
		if err := r.save(); err != nil {
			return fmt.Errorf("saving default instrument table: %w", err)
		}
	}

	for _, entry := range r.entries {
		id, ok := customID(entry.Name)
		if ok && id >= r.nextCustomID {
			r.nextCustomID = id + 1
		}
	}
	return nil
}

func (r *Registry) populateDefaults() {
	registered := r.now()
	for _, def := range r.defaults {
		fp := def.Waveform.Fingerprint()
		if _, ok := r.entries[fp]; ok {
			continue
		}
		r.entries[fp] = Entry{
			Name:         def.Name,
			Fingerprint:  fp,
			Program:      def.Program,
			Graph:        def.Waveform.Graph(),
			Source:       BuiltinSource,
			RegisteredAt: registered,
		}
	}
}

// Resolve returns the MIDI program for the waveform. Unknown waveforms are
// classified, registered under a new name and persisted.
func (r *Registry) Resolve(w waveform.Waveform, source string) uint8 {
	fp := w.Fingerprint()
	if entry, ok := r.entries[fp]; ok {
		return entry.Program
	}

	entry := Entry{
		Name:         customNamePrefix + strconv.Itoa(r.nextCustomID),
		Fingerprint:  fp,
		Program:      w.Classify(),
		Graph:        w.Graph(),
		Source:       source,
		RegisteredAt: r.now(),
	}
	r.nextCustomID++
	r.entries[fp] = entry
	r.discovered = append(r.discovered, entry)

	r.logger.Info("New waveform registered",
		log.String("name", entry.Name),
		log.Uint8("program", entry.Program),
		log.String("fingerprint", fp))

	if r.reporter != nil {
		r.reporter.ReportNewInstrument(entry)
	}
	if err := r.save(); err != nil {
		r.logger.Warn("Saving instrument table failed", log.Err(err))
	}
	return entry.Program
}

// Lookup returns the entry for the given fingerprint.
func (r *Registry) Lookup(fingerprint string) (Entry, bool) {
	entry, ok := r.entries[fingerprint]
	return entry, ok
}

// Len returns the number of known instruments.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns all entries sorted by name.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Discovered returns the entries that were created by this registry instance.
func (r *Registry) Discovered() []Entry {
	return append([]Entry(nil), r.discovered...)
}

func (r *Registry) save() error {
	return r.store.Save(r.Entries())
}

func customID(name string) (int, bool) {
	suffix, ok := strings.CutPrefix(name, customNamePrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return id, true
}
