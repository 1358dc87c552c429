// Package detector handles capture format detection.
package detector

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
)

// Format is the container format of a capture file.
type Format string

// Supported capture formats.
const (
	VGM Format = "vgm"
	VGZ Format = "vgz"
)

func (f Format) String() string {
	return string(f)
}

var (
	gzipMagic = []byte{0x1F, 0x8B}
	vgmMagic  = []byte("Vgm ")
)

// Detector handles capture format detection from file content and extensions.
type Detector struct {
	logger *log.Logger
}

// New creates a new format detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the container format of a capture. The file content is
// checked first, the filename extension is only used if the content does not
// identify the format.
func (d *Detector) Detect(filename string, data []byte) Format {
	format, ok := detectFromContent(data)
	if !ok {
		format = detectFromFile(filename)
	}
	d.logger.Debug("Detected capture format",
		log.Stringer("format", format),
		log.String("file", filename))
	return format
}

func detectFromContent(data []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return VGZ, true
	case bytes.HasPrefix(data, vgmMagic):
		return VGM, true
	default:
		return "", false
	}
}

// detectFromFile determines the format based on the file extension.
func detectFromFile(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".vgz":
		return VGZ
	default:
		return VGM
	}
}
