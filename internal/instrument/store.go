package instrument

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/vgm2midi/internal/waveform"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

const (
	keyFingerprint  = "fingerprint"
	keyProgram      = "midi_instrument"
	keySource       = "source"
	keyRegisteredAt = "registered_at"
)

const fileHeader = "WonderSwan instrument table\n" +
	"midi_instrument can be edited to override the program of a waveform"

// FileStore stores the instrument table as an INI file.
type FileStore struct {
	logger *log.Logger
	fs     afero.Fs
	path   string
}

// NewFileStore returns a store for the instrument table at the given path.
func NewFileStore(logger *log.Logger, fs afero.Fs, path string) *FileStore {
	return &FileStore{
		logger: logger,
		fs:     fs,
		path:   path,
	}
}

// Load reads all entries of the table. Sections that can not be decoded are skipped.
func (s *FileStore) Load() ([]Entry, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading instrument table '%s': %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parsing instrument table '%s': %w", s.path, err)
	}

	seen := set.New[string]()
	var entries []Entry
	for _, sec := range cfg.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}

		entry, err := decodeSection(sec)
		if err != nil {
			s.logger.Warn("Skipping malformed instrument entry",
				log.String("name", sec.Name()),
				log.Err(err))
			continue
		}
		if seen.Contains(entry.Fingerprint) {
			s.logger.Warn("Skipping duplicate instrument entry",
				log.String("name", entry.Name),
				log.String("fingerprint", entry.Fingerprint))
			continue
		}
		seen.Add(entry.Fingerprint)
		entries = append(entries, entry)
	}
	return entries, nil
}

// Save rewrites the whole table with the entries in the given order.
func (s *FileStore) Save(entries []Entry) error {
	cfg := ini.Empty()
	cfg.Section(ini.DefaultSection).Comment = fileHeader

	for _, entry := range entries {
		sec, err := cfg.NewSection(entry.Name)
		if err != nil {
			return fmt.Errorf("creating section '%s': %w", entry.Name, err)
		}
		if entry.Graph != "" {
			sec.Comment = entry.Graph
		}

		values := []struct {
			key   string
			value string
		}{
			{keyFingerprint, entry.Fingerprint},
			{keyProgram, strconv.Itoa(int(entry.Program))},
			{keySource, entry.Source},
			{keyRegisteredAt, entry.RegisteredAt.Format(TimestampLayout)},
		}
		for _, kv := range values {
			if _, err := sec.NewKey(kv.key, kv.value); err != nil {
				return fmt.Errorf("writing key '%s' of '%s': %w", kv.key, entry.Name, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return fmt.Errorf("encoding instrument table: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing instrument table '%s': %w", s.path, err)
	}
	return nil
}

// decodeSection converts a section into an entry. The graph is regenerated
// from the fingerprint, a manually edited graph is not taken over.
func decodeSection(sec *ini.Section) (Entry, error) {
	fp := sec.Key(keyFingerprint).String()
	w, err := waveform.ParseFingerprint(fp)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing fingerprint: %w", err)
	}

	program, err := sec.Key(keyProgram).Int()
	if err != nil {
		return Entry{}, fmt.Errorf("parsing %s: %w", keyProgram, err)
	}
	if program < 0 || program > 127 {
		return Entry{}, fmt.Errorf("%s %d out of range", keyProgram, program)
	}

	// an unreadable timestamp keeps the entry usable
	registered, _ := time.ParseInLocation(TimestampLayout, sec.Key(keyRegisteredAt).String(), time.Local)

	return Entry{
		Name:         sec.Name(),
		Fingerprint:  fp,
		Program:      uint8(program),
		Graph:        w.Graph(),
		Source:       sec.Key(keySource).String(),
		RegisteredAt: registered,
	}, nil
}
