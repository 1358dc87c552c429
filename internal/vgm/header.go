// Package vgm reads VGM captures of the WonderSwan sound chip.
package vgm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Errors of malformed capture headers.
var (
	ErrHeaderTooShort   = errors.New("vgm header too short")
	ErrInvalidSignature = errors.New("invalid vgm signature")
	ErrDataOffset       = errors.New("vgm data offset out of range")
)

const (
	headerSize        = 0x40
	defaultDataOffset = 0x40
	versionWonderSwan = 0x171

	offsetVersion         = 0x08
	offsetGD3             = 0x14
	offsetTotalSamples    = 0x18
	offsetLoop            = 0x1C
	offsetLoopSamples     = 0x20
	offsetRate            = 0x24
	offsetData            = 0x34
	offsetWonderSwanClock = 0xC0
)

var signature = []byte("Vgm ")

// Header contains the fields of the capture header. All offsets are absolute
// file offsets, 0 means the field is not present.
type Header struct {
	Version         uint32
	TotalSamples    uint32
	LoopOffset      uint32
	LoopSamples     uint32
	Rate            uint32
	DataOffset      uint32
	GD3Offset       uint32
	WonderSwanClock uint32
}

// File is a parsed capture.
type File struct {
	Header
	Tags Tags
	Data []byte // complete file content, commands start at DataOffset
}

// Parse validates the capture header and reads the optional GD3 tags.
// Malformed tags are ignored.
func Parse(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooShort, len(data))
	}
	if !bytes.Equal(data[:len(signature)], signature) {
		return nil, ErrInvalidSignature
	}

	h := Header{
		Version:      readUint32(data, offsetVersion),
		TotalSamples: readUint32(data, offsetTotalSamples),
		LoopOffset:   relativeOffset(data, offsetLoop),
		LoopSamples:  readUint32(data, offsetLoopSamples),
		Rate:         readUint32(data, offsetRate),
		GD3Offset:    relativeOffset(data, offsetGD3),
		DataOffset:   relativeOffset(data, offsetData),
	}

	// versions before 1.50 always start the commands at 0x40
	if h.DataOffset == 0 || h.Version < 0x150 {
		h.DataOffset = defaultDataOffset
	}
	if int(h.DataOffset) >= len(data) {
		return nil, fmt.Errorf("%w: 0x%X", ErrDataOffset, h.DataOffset)
	}
	if h.LoopOffset != 0 && (h.LoopOffset < h.DataOffset || int(h.LoopOffset) >= len(data)) {
		h.LoopOffset = 0
	}
	if h.Version >= versionWonderSwan && h.DataOffset >= offsetWonderSwanClock+4 {
		h.WonderSwanClock = readUint32(data, offsetWonderSwanClock)
	}

	f := &File{
		Header: h,
		Data:   data,
	}
	if h.GD3Offset != 0 {
		if tags, err := parseGD3(data, h.GD3Offset); err == nil {
			f.Tags = tags
		}
	}
	return f, nil
}

// VersionString returns the version in its dotted form, for example 1.71.
func (h Header) VersionString() string {
	return fmt.Sprintf("%x.%02x", h.Version>>8, h.Version&0xFF)
}

// Commands returns the command stream.
func (f *File) Commands() []byte {
	return f.Data[f.DataOffset:]
}

func readUint32(data []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(data[offset : offset+4])
}

// relativeOffset converts an offset field that is relative to its own
// position into an absolute offset.
func relativeOffset(data []byte, offset int) uint32 {
	value := readUint32(data, offset)
	if value == 0 {
		return 0
	}
	return uint32(offset) + value
}
