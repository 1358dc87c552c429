// Package config handles application configuration and setup
package config

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2midi/internal/instrument"
	"github.com/spf13/afero"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateFileSystem returns the file system that captures, instrument tables
// and output files are accessed through.
func CreateFileSystem() afero.Fs {
	return afero.NewOsFs()
}

// OpenInstruments opens the instrument table at the given path, creating it
// with the built-in defaults if it does not exist or is unusable.
func OpenInstruments(logger *log.Logger, fs afero.Fs, path string, reporter instrument.Reporter) (*instrument.Registry, error) {
	store := instrument.NewFileStore(logger, fs, path)
	registry, err := instrument.New(logger, store, instrument.Defaults(), reporter)
	if err != nil {
		return nil, fmt.Errorf("opening instrument table '%s': %w", path, err)
	}
	return registry, nil
}
