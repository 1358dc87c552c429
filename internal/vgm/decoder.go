package vgm

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// Commands of the capture format.
const (
	cmdWonderSwanRegister = 0xBC
	cmdWonderSwanMemory   = 0xC6
	cmdWait               = 0x61
	cmdWaitNTSC           = 0x62
	cmdWaitPAL            = 0x63
	cmdEnd                = 0x66
	cmdDataBlock          = 0x67
	cmdPCMRAMWrite        = 0x68

	samplesNTSC = 735
	samplesPAL  = 882

	// WonderSwan register writes address the sound ports starting at 0x80.
	wonderSwanPortBase = 0x80

	contextCheckInterval = 4096
)

// Target receives the decoded chip operations.
type Target interface {
	WriteRegister(address, value uint8)
	WriteWaveRAM(address uint16, value uint8)
	Advance(samples uint16)
}

// Stats summarizes a decoded command stream.
type Stats struct {
	Commands       int
	RegisterWrites int
	MemoryWrites   int
	Samples        uint64
	Loops          int
	Truncated      bool
}

// Decoder runs the command stream of a capture against a target.
type Decoder struct {
	logger *log.Logger
	loops  int // number of times the loop section is repeated
}

// NewDecoder returns a new decoder that follows the loop point the given
// number of times.
func NewDecoder(logger *log.Logger, loops int) *Decoder {
	return &Decoder{
		logger: logger,
		loops:  max(loops, 0),
	}
}

// Run decodes all commands of the capture. Decoding stops at the end of the
// stream, after the loop point was followed the configured number of times
// or at a truncated command. Commands of other chips are skipped.
func (d *Decoder) Run(ctx context.Context, f *File, target Target) (Stats, error) {
	var stats Stats
	data := f.Data
	pos := int(f.DataOffset)

	for pos < len(data) {
		if stats.Commands%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stats, fmt.Errorf("decoding commands: %w", err)
			}
		}

		cmd := data[pos]
		length := commandLength(data, pos)
		if length == 0 || pos+length > len(data) {
			stats.Truncated = true
			d.logger.Debug("Truncated command stream",
				log.Hex("command", cmd),
				log.Int("offset", pos))
			return stats, nil
		}
		stats.Commands++

		switch {
		case cmd == cmdEnd:
			if f.LoopOffset == 0 || stats.Loops >= d.loops {
				return stats, nil
			}
			stats.Loops++
			pos = int(f.LoopOffset)
			d.logger.Debug("Following loop point", log.Int("loop", stats.Loops))
			continue

		case cmd == cmdWonderSwanRegister:
			target.WriteRegister(wonderSwanPortBase+data[pos+1], data[pos+2])
			stats.RegisterWrites++

		case cmd == cmdWonderSwanMemory:
			address := binary.BigEndian.Uint16(data[pos+1 : pos+3])
			target.WriteWaveRAM(address, data[pos+3])
			stats.MemoryWrites++

		default:
			if samples, ok := waitSamples(data, pos); ok {
				target.Advance(samples)
				stats.Samples += uint64(samples)
			}
		}

		pos += length
	}
	return stats, nil
}

// waitSamples returns the number of samples that a wait command waits.
func waitSamples(data []byte, pos int) (uint16, bool) {
	cmd := data[pos]
	switch {
	case cmd == cmdWait:
		return binary.LittleEndian.Uint16(data[pos+1 : pos+3]), true
	case cmd == cmdWaitNTSC:
		return samplesNTSC, true
	case cmd == cmdWaitPAL:
		return samplesPAL, true
	case cmd >= 0x70 && cmd <= 0x7F:
		return uint16(cmd&0x0F) + 1, true
	case cmd >= 0x80 && cmd <= 0x8F:
		// YM2612 DAC write followed by a short wait
		n := uint16(cmd & 0x0F)
		return n, n > 0
	default:
		return 0, false
	}
}

// commandLength returns the length of the command at the given position in
// bytes, including the command byte. It returns 0 if the length can not be
// determined because the data is truncated.
func commandLength(data []byte, pos int) int {
	cmd := data[pos]
	switch {
	case cmd == cmdDataBlock:
		// 0x67 0x66 tt ss ss ss ss followed by the data
		if pos+7 > len(data) {
			return 0
		}
		size := binary.LittleEndian.Uint32(data[pos+3 : pos+7])
		return 7 + int(size&0x7FFFFFFF)
	case cmd == cmdPCMRAMWrite:
		return 12
	case cmd == cmdWait:
		return 3
	case cmd >= 0x30 && cmd <= 0x3F:
		return 2
	case cmd >= 0x40 && cmd <= 0x4E:
		return 3
	case cmd == 0x4F || cmd == 0x50:
		return 2
	case cmd >= 0x51 && cmd <= 0x5F:
		return 3
	case cmd == 0x90 || cmd == 0x91 || cmd == 0x95:
		return 5
	case cmd == 0x92:
		return 6
	case cmd == 0x93:
		return 11
	case cmd == 0x94:
		return 2
	case cmd >= 0xA0 && cmd <= 0xBF:
		return 3
	case cmd >= 0xC0 && cmd <= 0xDF:
		return 4
	case cmd >= 0xE0:
		return 5
	default:
		return 1
	}
}
