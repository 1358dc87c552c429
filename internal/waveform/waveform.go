// Package waveform handles the 32 sample custom waveforms of the wave-table channels.
package waveform

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Size is the number of samples of a waveform.
const Size = 32

// PackedSize is the number of bytes a waveform occupies in wave RAM.
const PackedSize = Size / 2

// MaxSample is the highest sample value, samples are 4 bit.
const MaxSample = 15

// General MIDI programs returned by Classify.
const (
	ProgramRecorder     uint8 = 74
	ProgramSquareLead   uint8 = 80
	ProgramSawtoothLead uint8 = 81
	ProgramCalliopeLead uint8 = 82
	ProgramChiffLead    uint8 = 83
)

var errInvalidFingerprint = errors.New("invalid fingerprint")

// Waveform is a snapshot of 32 samples with values in the range 0-15.
type Waveform [Size]uint8

// Unpack decodes a waveform from its packed wave RAM form. The low nibble
// of each byte is the earlier sample. Missing bytes decode as silence.
func Unpack(packed []byte) Waveform {
	var w Waveform
	for i := 0; i < PackedSize && i < len(packed); i++ {
		w[i*2] = packed[i] & 0x0F
		w[i*2+1] = packed[i] >> 4
	}
	return w
}

// Fingerprint returns the identity key of the waveform, every sample is
// encoded as two lowercase hex digits.
func (w Waveform) Fingerprint() string {
	return hex.EncodeToString(w[:])
}

// ParseFingerprint decodes a fingerprint back into its waveform.
func ParseFingerprint(fingerprint string) (Waveform, error) {
	var w Waveform
	if len(fingerprint) != Size*2 {
		return w, fmt.Errorf("%w: length %d", errInvalidFingerprint, len(fingerprint))
	}
	b, err := hex.DecodeString(fingerprint)
	if err != nil {
		return w, fmt.Errorf("%w: %w", errInvalidFingerprint, err)
	}
	for i, sample := range b {
		if sample > MaxSample {
			return w, fmt.Errorf("%w: sample %d out of range", errInvalidFingerprint, i)
		}
		w[i] = sample
	}
	return w, nil
}

// Classify guesses a General MIDI program that resembles the timbre of the waveform.
func (w Waveform) Classify() uint8 {
	high := 0
	for _, sample := range w {
		if sample > 7 {
			high++
		}
	}
	switch {
	case high <= 4 || high >= 28:
		return ProgramCalliopeLead
	case high <= 8 || high >= 24:
		return ProgramChiffLead
	case high >= 14 && high <= 18:
		return ProgramSquareLead
	}

	if w.consistentSlopes() > 25 {
		return ProgramSawtoothLead
	}

	peaks, troughs := w.extrema()
	if peaks >= 1 && troughs >= 1 {
		return ProgramRecorder
	}
	return ProgramSquareLead
}

// consistentSlopes counts consecutive sample differences that change by at most 1.
func (w Waveform) consistentSlopes() int {
	count := 0
	last := int(w[1]) - int(w[0])
	for i := 1; i < Size-1; i++ {
		diff := int(w[i+1]) - int(w[i])
		if abs(diff-last) <= 1 {
			count++
		}
		last = diff
	}
	return count
}

func (w Waveform) extrema() (peaks, troughs int) {
	for i := 1; i < Size-1; i++ {
		if w[i] > w[i-1] && w[i] > w[i+1] {
			peaks++
		}
		if w[i] < w[i-1] && w[i] < w[i+1] {
			troughs++
		}
	}
	return peaks, troughs
}

// Graph renders the waveform as 16 text rows, the top row representing the
// highest sample value.
func (w Waveform) Graph() string {
	var sb strings.Builder
	for y := MaxSample; y >= 0; y-- {
		if y != MaxSample {
			sb.WriteByte('\n')
		}
		sb.WriteByte('|')
		for _, sample := range w {
			if int(sample) >= y {
				sb.WriteString("█")
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('|')
	}
	return sb.String()
}

// Distance returns the number of samples that differ between both waveforms.
func (w Waveform) Distance(other Waveform) int {
	n := 0
	for i := range w {
		if w[i] != other[i] {
			n++
		}
	}
	return n
}

// Similar returns whether at most threshold samples differ.
func (w Waveform) Similar(other Waveform, threshold int) bool {
	return w.Distance(other) <= threshold
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
