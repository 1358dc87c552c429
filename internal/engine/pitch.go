package engine

import (
	"math"

	"github.com/retroenv/vgm2midi/internal/chip"
)

// Frequency returns the tone frequency in Hz of a channel period.
// Periods without a defined pitch return 0.
func Frequency(period uint16) float64 {
	if period >= chip.SilentPeriod {
		return 0
	}
	return float64(chip.ClockRate) / float64(chip.SilentPeriod-int(period)) / 32
}

// Note returns the nearest MIDI note of a channel period and whether the
// period has a defined pitch.
func Note(period uint16) (uint8, bool) {
	freq := Frequency(period)
	if freq <= 0 {
		return 0, false
	}
	note := math.Round(69 + 12*math.Log2(freq/440))
	return uint8(min(max(note, 0), 127)), true
}

// Ticks converts elapsed samples into output ticks, assuming 480 ticks per
// quarter note at 120 BPM. The ratio 57600/2646000 is reduced to 16/735
// to stay exact in integer math.
func Ticks(samples uint64) uint32 {
	return uint32(samples * 16 / 735)
}

// cents returns the distance of two frequencies in cents.
func cents(freq, base float64) float64 {
	return 1200 * math.Log2(freq/base)
}

// bendValue maps a deviation in cents onto the 14 bit pitch bend range.
func bendValue(deviation float64) uint16 {
	fraction := deviation / (BendRangeSemitones * 100)
	value := BendCenter + int(math.Round(fraction*(BendMax-BendCenter)))
	return uint16(min(max(value, 0), BendMax))
}

// levels converts the channel volumes into expression and pan values.
// The expression follows (max/15)^exponent, an exponent of 1 is linear.
func levels(left, right uint8, exponent float64) (expression, pan uint8) {
	loud := max(left, right)
	if loud > 0 {
		expression = uint8(math.Round(127 * math.Pow(float64(loud)/15, exponent)))
	}

	pan = 64
	if total := int(left) + int(right); total > 0 {
		pan = uint8(math.Round(127 * float64(right) / float64(total)))
	}
	return expression, pan
}
