// Package image describes the on-disk binary format shared by the
// assembler, which writes it, and the virtual machine, which loads it:
// a fixed 16-byte header followed by a data segment and a code segment.
package image

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	HeaderLength = 16
	MagicByte0   = 0x41
	MagicByte1   = 0x4E
)

var (
	ErrBadMagic        = errors.New("bad magic number")
	ErrTruncatedHeader = errors.New("truncated header")
	ErrImageTooLarge   = errors.New("declared image length exceeds memory size")
)

// Header is the fully decoded 16-byte image header.
type Header struct {
	DataOffset uint16
	DataLength uint16
	CodeOffset uint16
	CodeLength uint16
	EntryPoint uint16
	Reserved   [4]byte
}

// Pack builds the 16-byte header for a given data/code segment length pair,
// matching the original's getHeaderBuf exactly.
func Pack(dataLength, codeLength int) []byte {
	buf := make([]byte, HeaderLength)
	buf[0], buf[1] = MagicByte0, MagicByte1

	dataOffset := uint16(HeaderLength)
	codeOffset := uint16(HeaderLength + dataLength)
	entryPoint := codeOffset

	binary.LittleEndian.PutUint16(buf[2:4], dataOffset)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(dataLength))
	binary.LittleEndian.PutUint16(buf[6:8], codeOffset)
	binary.LittleEndian.PutUint16(buf[8:10], uint16(codeLength))
	binary.LittleEndian.PutUint16(buf[10:12], entryPoint)
	// bytes 12:16 stay zero (reserved)
	return buf
}

// Unpack validates and decodes a raw image's header, checking its
// invariants: magic bytes, DATA_OFFSET == 16,
// CODE_OFFSET == 16 + DATA_LENGTH, and that both segments fit within
// memSize bytes.
func Unpack(raw []byte, memSize int) (Header, error) {
	if len(raw) < HeaderLength {
		return Header{}, ErrTruncatedHeader
	}
	if raw[0] != MagicByte0 || raw[1] != MagicByte1 {
		return Header{}, ErrBadMagic
	}

	h := Header{
		DataOffset: binary.LittleEndian.Uint16(raw[2:4]),
		DataLength: binary.LittleEndian.Uint16(raw[4:6]),
		CodeOffset: binary.LittleEndian.Uint16(raw[6:8]),
		CodeLength: binary.LittleEndian.Uint16(raw[8:10]),
		EntryPoint: binary.LittleEndian.Uint16(raw[10:12]),
	}
	copy(h.Reserved[:], raw[12:16])

	if h.DataOffset != HeaderLength {
		return Header{}, errors.Wrapf(ErrBadMagic, "DATA_OFFSET=%d, want %d", h.DataOffset, HeaderLength)
	}
	if int(h.CodeOffset) != HeaderLength+int(h.DataLength) {
		return Header{}, errors.Wrapf(ErrBadMagic, "CODE_OFFSET=%d, want %d", h.CodeOffset, HeaderLength+int(h.DataLength))
	}
	if int(h.DataLength)+int(h.CodeLength) > memSize {
		return Header{}, ErrImageTooLarge
	}
	if len(raw) < int(h.CodeOffset)+int(h.CodeLength) {
		return Header{}, ErrTruncatedHeader
	}
	return h, nil
}

// Body returns the concatenated data+code bytes that the loader copies into
// memory starting at address 0.
func Body(raw []byte, h Header) []byte {
	return raw[HeaderLength : int(h.CodeOffset)+int(h.CodeLength)]
}
