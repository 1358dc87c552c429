// Package loader handles capture file loading operations.
package loader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/retroenv/vgm2midi/internal/detector"
	"github.com/spf13/afero"
)

// Loader handles loading capture files.
type Loader struct {
	fs afero.Fs
}

// New creates a new capture loader that reads from the given file system.
func New(fs afero.Fs) *Loader {
	return &Loader{
		fs: fs,
	}
}

// Read returns the raw content of a file.
func (l *Loader) Read(path string) ([]byte, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}

// Unpack returns the uncompressed capture for the given container format.
func (l *Loader) Unpack(data []byte, format detector.Format) ([]byte, error) {
	switch format {
	case detector.VGM:
		return data, nil

	case detector.VGZ:
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer func() { _ = reader.Close() }()

		unpacked, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("decompressing capture: %w", err)
		}
		return unpacked, nil

	default:
		return nil, fmt.Errorf("unsupported capture format '%s'", format)
	}
}
