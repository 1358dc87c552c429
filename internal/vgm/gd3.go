package vgm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

var gd3Signature = []byte("Gd3 ")

var errGD3 = errors.New("invalid gd3 tag")

// Tags contains the GD3 metadata of a capture.
type Tags struct {
	TrackEN  string
	TrackJP  string
	GameEN   string
	GameJP   string
	SystemEN string
	SystemJP string
	AuthorEN string
	AuthorJP string
	Date     string
	Ripper   string
	Notes    string
}

// Title returns the track name, preferring the English one.
func (t Tags) Title() string {
	if t.TrackEN != "" {
		return t.TrackEN
	}
	return t.TrackJP
}

// Game returns the game name, preferring the English one.
func (t Tags) Game() string {
	if t.GameEN != "" {
		return t.GameEN
	}
	return t.GameJP
}

// Author returns the composer, preferring the English name.
func (t Tags) Author() string {
	if t.AuthorEN != "" {
		return t.AuthorEN
	}
	return t.AuthorJP
}

// parseGD3 reads the tag block at the given absolute offset. The block
// consists of a signature, a version, the data length and 11 NUL terminated
// UTF-16LE strings.
func parseGD3(data []byte, offset uint32) (Tags, error) {
	const blockHeader = 12
	start := int(offset)
	if start < 0 || start+blockHeader > len(data) {
		return Tags{}, fmt.Errorf("%w: offset 0x%X out of range", errGD3, offset)
	}
	if !bytes.Equal(data[start:start+4], gd3Signature) {
		return Tags{}, fmt.Errorf("%w: missing signature", errGD3)
	}

	length := int(binary.LittleEndian.Uint32(data[start+8 : start+12]))
	body := data[start+blockHeader:]
	if length < len(body) {
		body = body[:length]
	}

	fields := make([]string, 11)
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	for i := range fields {
		raw, rest, ok := cutUTF16(body)
		if !ok {
			return Tags{}, fmt.Errorf("%w: field %d not terminated", errGD3, i)
		}
		decoded, err := decoder.Bytes(raw)
		if err != nil {
			return Tags{}, fmt.Errorf("decoding gd3 field %d: %w", i, err)
		}
		fields[i] = string(decoded)
		body = rest
	}

	return Tags{
		TrackEN:  fields[0],
		TrackJP:  fields[1],
		GameEN:   fields[2],
		GameJP:   fields[3],
		SystemEN: fields[4],
		SystemJP: fields[5],
		AuthorEN: fields[6],
		AuthorJP: fields[7],
		Date:     fields[8],
		Ripper:   fields[9],
		Notes:    fields[10],
	}, nil
}

// cutUTF16 splits the data at the first NUL code unit.
func cutUTF16(data []byte) (field, rest []byte, ok bool) {
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return data[:i], data[i+2:], true
		}
	}
	return nil, nil, false
}
