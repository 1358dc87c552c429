package loader

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/vgm2midi/internal/detector"
	"github.com/spf13/afero"
)

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	_, err := writer.Write(data)
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	capture := []byte("Vgm \x01\x02\x03\x04")
	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "song.vgm", capture, 0o644))
	assert.NoError(t, afero.WriteFile(fs, "song.vgz", compress(t, capture), 0o644))

	l := New(fs)

	t.Run("load vgm file", func(t *testing.T) {
		data, err := l.Read("song.vgm")
		assert.NoError(t, err)
		unpacked, err := l.Unpack(data, detector.VGM)
		assert.NoError(t, err)
		assert.Equal(t, capture, unpacked)
	})

	t.Run("load vgz file", func(t *testing.T) {
		data, err := l.Read("song.vgz")
		assert.NoError(t, err)
		unpacked, err := l.Unpack(data, detector.VGZ)
		assert.NoError(t, err)
		assert.Equal(t, capture, unpacked)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := l.Read("missing.vgm")
		assert.ErrorContains(t, err, "reading file missing.vgm")
	})

	t.Run("invalid gzip stream", func(t *testing.T) {
		_, err := l.Unpack(capture, detector.VGZ)
		assert.ErrorContains(t, err, "opening gzip stream")
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := l.Unpack(capture, detector.Format("zip"))
		assert.Error(t, err)
	})
}
