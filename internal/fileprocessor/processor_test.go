package fileprocessor

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2midi/internal/config"
	"github.com/retroenv/vgm2midi/internal/options"
	"github.com/retroenv/vgm2midi/internal/pipeline"
	"github.com/spf13/afero"
)

func TestGenerateOutputFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "song.vgm", want: "song.mid"},
		{input: "dir/song.vgz", want: "dir/song.mid"},
		{input: "song", want: "song.mid"},
		{input: "my.song.vgm", want: "my.song.mid"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateOutputFilename(tt.input))
		})
	}
}

func TestGetFilesToProcess(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"a.vgm", "b.vgm", "c.txt"} {
		assert.NoError(t, afero.WriteFile(fs, name, []byte{0}, 0o644))
	}

	files, err := GetFilesToProcess(fs, &options.Program{Parameters: options.Parameters{Batch: "*.vgm"}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"a.vgm", "b.vgm"}, files)

	files, err = GetFilesToProcess(fs, &options.Program{Parameters: options.Parameters{Input: "c.txt"}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"c.txt"}, files)

	_, err = GetFilesToProcess(fs, &options.Program{Parameters: options.Parameters{Batch: "[.vgm"}})
	assert.Error(t, err)
}

func TestResetReport(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "log.txt", []byte("old run"), 0o644))
	assert.NoError(t, ResetReport(fs, "log.txt"))

	data, err := afero.ReadFile(fs, "log.txt")
	assert.NoError(t, err)
	assert.Empty(t, data)
	assert.NoError(t, ResetReport(fs, ""))
}

func TestProcessFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger := log.NewTestLogger(t)

	capture := make([]byte, 0x40)
	copy(capture, "Vgm ")
	binary.LittleEndian.PutUint32(capture[0x08:], 0x150)
	capture = append(capture, 0x62, 0x66)
	assert.NoError(t, afero.WriteFile(fs, "silent.vgm", capture, 0o644))

	registry, err := config.OpenInstruments(logger, fs, "instruments.ini", nil)
	assert.NoError(t, err)
	p := pipeline.New(logger, fs, registry)

	opts := options.Program{
		Parameters: options.Parameters{Input: "silent.vgm", Output: GenerateOutputFilename("silent.vgm")},
		Flags:      options.Flags{Quiet: true},
	}
	assert.NoError(t, ProcessFile(context.Background(), logger, p, opts, options.NewConverter(opts)))

	exists, err := afero.Exists(fs, "silent.mid")
	assert.NoError(t, err)
	assert.True(t, exists)

	opts.Input = "missing.vgm"
	err = ProcessFile(context.Background(), logger, p, opts, options.NewConverter(opts))
	assert.ErrorContains(t, err, "converting 'missing.vgm'")
}

func TestPrintBanner(t *testing.T) {
	logger := log.NewTestLogger(t)
	PrintBanner(logger, options.Program{}, "1.0.0", "0123456789abcdef", "2024-01-01")
	PrintBanner(logger, options.Program{Flags: options.Flags{Quiet: true}}, "dev", "", "")
}
