package instrument

import (
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2midi/internal/waveform"
	"github.com/spf13/afero"
)

const tablePath = "instruments.ini"

type memoryStore struct {
	entries []Entry
	loadErr error
	saves   int
}

func (m *memoryStore) Load() ([]Entry, error) {
	return m.entries, m.loadErr
}

func (m *memoryStore) Save(entries []Entry) error {
	m.entries = append([]Entry(nil), entries...)
	m.saves++
	return nil
}

type recordingReporter struct {
	entries []Entry
}

func (r *recordingReporter) ReportNewInstrument(entry Entry) {
	r.entries = append(r.entries, entry)
}

func customWave(seed uint8) waveform.Waveform {
	var w waveform.Waveform
	for i := range w {
		w[i] = (seed + uint8(i)) % (waveform.MaxSample + 1)
	}
	return w
}

func TestNewPopulatesDefaults(t *testing.T) {
	logger := log.NewTestLogger(t)
	fs := afero.NewMemMapFs()
	store := NewFileStore(logger, fs, tablePath)

	r, err := New(logger, store, Defaults(), nil)
	assert.NoError(t, err)
	assert.Equal(t, len(Defaults()), r.Len())

	exists, err := afero.Exists(fs, tablePath)
	assert.NoError(t, err)
	assert.True(t, exists)

	for _, def := range Defaults() {
		entry, ok := r.Lookup(def.Waveform.Fingerprint())
		assert.True(t, ok)
		assert.Equal(t, def.Name, entry.Name)
		assert.Equal(t, def.Program, entry.Program)
		assert.Equal(t, BuiltinSource, entry.Source)
	}
}

func TestNewRegeneratesUnusableTable(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "unparseable", content: "[NOISE\nnot a key value line\n"},
		{name: "only malformed entries", content: "[broken]\nfingerprint = xyz\nmidi_instrument = 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := log.NewTestLogger(t)
			fs := afero.NewMemMapFs()
			assert.NoError(t, afero.WriteFile(fs, tablePath, []byte(tt.content), 0o644))

			r, err := New(logger, NewFileStore(logger, fs, tablePath), Defaults(), nil)
			assert.NoError(t, err)
			assert.Equal(t, len(Defaults()), r.Len())
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	logger := log.NewTestLogger(t)
	store := &memoryStore{}
	reporter := &recordingReporter{}

	r, err := New(logger, store, Defaults(), reporter)
	assert.NoError(t, err)
	known := r.Len()

	w := customWave(3)
	first := r.Resolve(w, "song.vgm")
	second := r.Resolve(w, "song.vgm")

	assert.Equal(t, first, second)
	assert.Equal(t, w.Classify(), first)
	assert.Equal(t, known+1, r.Len())
	assert.Len(t, r.Discovered(), 1)
	assert.Len(t, reporter.entries, 1)

	entry := reporter.entries[0]
	assert.Equal(t, "CustomWave_1", entry.Name)
	assert.Equal(t, "song.vgm", entry.Source)
	assert.Equal(t, w.Fingerprint(), entry.Fingerprint)
	assert.Equal(t, w.Graph(), entry.Graph)
	assert.Len(t, store.entries, known+1)
}

func TestResolveKnownWaveform(t *testing.T) {
	logger := log.NewTestLogger(t)
	store := &memoryStore{}
	r, err := New(logger, store, Defaults(), nil)
	assert.NoError(t, err)
	saves := store.saves

	for _, def := range Defaults() {
		assert.Equal(t, def.Program, r.Resolve(def.Waveform, "song.vgm"))
	}
	assert.Empty(t, r.Discovered())
	assert.Equal(t, saves, store.saves)
}

func TestResolveKeepsManualOverride(t *testing.T) {
	w := customWave(5)
	store := &memoryStore{
		entries: []Entry{
			{Name: "CustomWave_7", Fingerprint: w.Fingerprint(), Program: 42, Source: "old.vgm"},
		},
	}

	logger := log.NewTestLogger(t)
	r, err := New(logger, store, Defaults(), nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, uint8(42), r.Resolve(w, "song.vgm"))

	r.Resolve(customWave(9), "song.vgm")
	discovered := r.Discovered()
	assert.Len(t, discovered, 1)
	assert.Equal(t, "CustomWave_8", discovered[0].Name)
}

func TestResolveDistinctNames(t *testing.T) {
	logger := log.NewTestLogger(t)
	r, err := New(logger, &memoryStore{}, Defaults(), nil)
	assert.NoError(t, err)

	fixed := time.Date(2024, 5, 1, 12, 30, 0, 0, time.Local)
	r.now = func() time.Time { return fixed }

	r.Resolve(customWave(1), "a.vgm")
	changed := customWave(1)
	changed[0] ^= 1
	r.Resolve(changed, "b.vgm")

	discovered := r.Discovered()
	assert.Len(t, discovered, 2)
	assert.Equal(t, "CustomWave_1", discovered[0].Name)
	assert.Equal(t, "CustomWave_2", discovered[1].Name)
	assert.Equal(t, fixed, discovered[1].RegisteredAt)
}

func TestEntriesSortedByName(t *testing.T) {
	logger := log.NewTestLogger(t)
	r, err := New(logger, &memoryStore{}, Defaults(), nil)
	assert.NoError(t, err)

	entries := r.Entries()
	for i := 1; i < len(entries); i++ {
		assert.True(t, strings.Compare(entries[i-1].Name, entries[i].Name) < 0)
	}
}
