package detector

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestDetect(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name       string
		inputFile  string
		data       []byte
		wantFormat Format
	}{
		{
			name:       "vgm signature",
			inputFile:  "song.vgz",
			data:       []byte("Vgm \x00\x00"),
			wantFormat: VGM,
		},
		{
			name:       "gzip signature",
			inputFile:  "song.vgm",
			data:       []byte{0x1F, 0x8B, 0x08},
			wantFormat: VGZ,
		},
		{
			name:       "detect from .vgz extension",
			inputFile:  "SONG.VGZ",
			data:       []byte{0x00},
			wantFormat: VGZ,
		},
		{
			name:       "unknown defaults to vgm",
			inputFile:  "song.bin",
			data:       nil,
			wantFormat: VGM,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := d.Detect(tt.inputFile, tt.data)
			assert.Equal(t, tt.wantFormat, format)
		})
	}
}
