// Package options contains the program options.
package options

// Defaults of the converter options.
const (
	DefaultInstruments = "instruments.ini"
	DefaultLog         = "conversion_log.txt"
	DefaultLoops       = 2
	DefaultCurve       = 1.0
)

// Parameters contains file path options.
type Parameters struct {
	Input       string `flag:"i" usage:"input .vgm or .vgz file"`
	Output      string `flag:"o" usage:"output .mid file (default: input name with .mid extension)"`
	Batch       string `flag:"batch" usage:"batch process files matching pattern (e.g. *.vgm)"`
	Instruments string `flag:"instruments" usage:"instrument table file" default:"instruments.ini"`
	Log         string `flag:"log" usage:"conversion log file" default:"conversion_log.txt"`
}

// Flags contains behavior options.
type Flags struct {
	Loops  int     `flag:"l" usage:"number of times the loop section is repeated" default:"2"`
	Curve  float64 `flag:"curve" usage:"exponent of the volume to expression curve" default:"1.0"`
	Verify bool    `flag:"verify" usage:"verify the written MIDI file by reading it back"`
	Debug  bool    `flag:"debug" usage:"enable debug logging"`
	Quiet  bool    `flag:"q" usage:"quiet mode"`
}

// Program options of the converter.
type Program struct {
	Parameters
	Flags
}

// Converter defines options to control the conversion of a single capture.
type Converter struct {
	Loops            int     // number of times the loop section is repeated
	LoudnessExponent float64 // exponent of the volume to expression curve
	Verify           bool    // read back the written file
}

// NewConverter returns the converter options for the given program options.
func NewConverter(opts Program) Converter {
	exponent := opts.Curve
	if exponent <= 0 {
		exponent = DefaultCurve
	}
	return Converter{
		Loops:            max(opts.Loops, 0),
		LoudnessExponent: exponent,
		Verify:           opts.Verify,
	}
}
