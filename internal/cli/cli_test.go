package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/vgm2midi/internal/options"
)

//nolint:funlen // test functions can be long
func TestParseFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		want      options.Program
		converter options.Converter
	}{
		{
			name: "defaults",
			args: []string{"prog", "song.vgm"},
			want: options.Program{
				Parameters: options.Parameters{
					Input:       "song.vgm",
					Instruments: options.DefaultInstruments,
					Log:         options.DefaultLog,
				},
				Flags: options.Flags{Loops: options.DefaultLoops, Curve: options.DefaultCurve},
			},
			converter: options.Converter{Loops: options.DefaultLoops, LoudnessExponent: options.DefaultCurve},
		},
		{
			name: "positional output",
			args: []string{"prog", "-l", "0", "-curve", "0.5", "-verify", "song.vgz", "out.mid"},
			want: options.Program{
				Parameters: options.Parameters{
					Input:       "song.vgz",
					Output:      "out.mid",
					Instruments: options.DefaultInstruments,
					Log:         options.DefaultLog,
				},
				Flags: options.Flags{Loops: 0, Curve: 0.5, Verify: true},
			},
			converter: options.Converter{Loops: 0, LoudnessExponent: 0.5, Verify: true},
		},
		{
			name: "batch",
			args: []string{"prog", "-batch", "*.vgm", "-instruments", "table.ini", "-log", "run.txt", "-q"},
			want: options.Program{
				Parameters: options.Parameters{
					Batch:       "*.vgm",
					Instruments: "table.ini",
					Log:         "run.txt",
				},
				Flags: options.Flags{Loops: options.DefaultLoops, Curve: options.DefaultCurve, Quiet: true},
			},
			converter: options.Converter{Loops: options.DefaultLoops, LoudnessExponent: options.DefaultCurve},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })
			os.Args = tt.args

			opts, converter, err := ParseFlags()
			assert.NoError(t, err)
			assert.Equal(t, tt.want, opts)
			assert.Equal(t, tt.converter, converter)
		})
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		usage bool
	}{
		{name: "no input", args: []string{"prog"}, usage: true},
		{name: "flag after file", args: []string{"prog", "song.vgm", "-q"}, usage: true},
		{name: "too many files", args: []string{"prog", "a.vgm", "b.mid", "c.mid"}, usage: true},
		{name: "batch and file", args: []string{"prog", "-batch", "*.vgm", "a.vgm"}, usage: true},
		{name: "negative loops", args: []string{"prog", "-l", "-1", "song.vgm"}},
		{name: "zero curve", args: []string{"prog", "-curve", "0", "song.vgm"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })
			os.Args = tt.args

			_, _, err := ParseFlags()
			assert.Error(t, err)

			var usageErr *UsageError
			assert.Equal(t, tt.usage, errors.As(err, &usageErr))
		})
	}
}
