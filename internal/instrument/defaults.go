package instrument

import "github.com/retroenv/vgm2midi/internal/waveform"

// BuiltinSource is the source label of entries created from the default table.
const BuiltinSource = "Built-in"

// Default describes a built-in instrument that seeds an empty instrument table.
type Default struct {
	Name        string
	Program     uint8
	Waveform    waveform.Waveform
	Description string
}

// Defaults returns the built-in instrument table.
func Defaults() []Default {
	return []Default{
		{
			Name:        "NOISE",
			Program:     127,
			Waveform:    waveform.Waveform{8, 2, 15, 5, 12, 9, 0, 7, 11, 4, 13, 1, 6, 10, 3, 14, 8, 2, 15, 5, 12, 9, 0, 7, 11, 4, 13, 1, 6, 10, 3, 14},
			Description: "Noise Channel",
		},
		{
			Name:        "PULSE",
			Program:     80,
			Waveform:    waveform.Waveform{15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15, 15},
			Description: "Pulse Wave",
		},
		{
			Name:        "WAVE_BUILTIN_1",
			Program:     84,
			Waveform:    waveform.Waveform{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
			Description: "Built-in Waveform (Triangle)",
		},
		{
			Name:        "WAVE_BUILTIN_2",
			Program:     28,
			Waveform:    waveform.Waveform{8, 10, 12, 14, 15, 15, 14, 12, 10, 8, 6, 4, 2, 1, 1, 2, 4, 6, 8, 10, 12, 14, 15, 15, 14, 12, 10, 8, 6, 4, 2, 1},
			Description: "Built-in Waveform (Sine-like)",
		},
		{
			Name:        "WAVE_BUILTIN_3",
			Program:     26,
			Waveform:    waveform.Waveform{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			Description: "Built-in Waveform (Sawtooth)",
		},
	}
}
