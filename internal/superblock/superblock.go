package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-usvol/internal/binary"
)

// Signature starts every superblock.
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

var searchOffsets = []int64{0, 512, 1024, 2048}

var (
	ErrNotHDF5            = errors.New("not an HDF5 file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
	ErrInvalidSuperblock  = errors.New("invalid superblock structure")
)

// Superblock holds the fields the engine needs from any superblock version.
type Superblock struct {
	Version    uint8
	OffsetSize uint8
	LengthSize uint8
	Flags      uint8

	BaseAddress      uint64
	ExtensionAddress uint64
	EOFAddress       uint64

	// RootAddress is the root group's object header.
	RootAddress uint64

	// Scratch pad of the v0/v1 root symbol table entry. Undefined when the
	// entry carries no cached symbol table.
	RootBTreeAddress uint64
	RootHeapAddress  uint64

	GroupLeafK     uint16
	GroupInternalK uint16
	IndexedK       uint16

	// FileOffset is where the signature was found.
	FileOffset int64
}

// Config returns the binary field widths declared by the superblock.
func (sb *Superblock) Config() binpkg.Config {
	return binpkg.Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: int(sb.OffsetSize),
		LengthSize: int(sb.LengthSize),
	}
}

// HasSymbolTableRoot reports whether the root group is reached through a v0/v1
// symbol table entry.
func (sb *Superblock) HasSymbolTableRoot() bool {
	return sb.Version < 2
}

// Read finds and decodes the superblock.
func Read(r io.ReaderAt) (*Superblock, error) {
	for _, off := range searchOffsets {
		sig := make([]byte, 9)
		if n, _ := r.ReadAt(sig, off); n < len(sig) {
			break
		}
		if !bytes.Equal(sig[:8], Signature) {
			continue
		}

		var (
			sb  *Superblock
			err error
		)
		switch v := sig[8]; v {
		case 0, 1:
			sb, err = readLegacy(r, off, v)
		case 2, 3:
			sb, err = readCompact(r, off, v)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
		}
		if err != nil {
			return nil, err
		}
		sb.FileOffset = off
		return sb, nil
	}
	return nil, ErrNotHDF5
}

// readLegacy decodes versions 0 and 1.
func readLegacy(r io.ReaderAt, off int64, version uint8) (*Superblock, error) {
	fixed, err := binpkg.ReadBlock(r, off+8, 16)
	if err != nil {
		return nil, err
	}
	sb := &Superblock{
		Version:    version,
		OffsetSize: fixed[5],
		LengthSize: fixed[6],
	}
	cfg := sb.Config()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSuperblock, err)
	}

	o := int(sb.OffsetSize)
	extra := 0
	if version == 1 {
		extra = 4
	}
	// addresses (4) + symbol table entry (2 addresses, cache type, reserved, 16-byte scratch)
	body, err := binpkg.ReadBlock(r, off+24, extra+4*o+2*o+8+16)
	if err != nil {
		return nil, err
	}
	d := binpkg.NewDecoder(fixed, cfg)
	d.Skip(8)
	sb.GroupLeafK = d.Uint16()
	sb.GroupInternalK = d.Uint16()

	d = binpkg.NewDecoder(body, cfg)
	if version == 1 {
		sb.IndexedK = d.Uint16()
		d.Skip(2)
	}
	sb.BaseAddress = d.Offset()
	d.Offset() // free-space info
	sb.EOFAddress = d.Offset()
	d.Offset() // driver info

	d.Offset() // link name offset
	sb.RootAddress = d.Offset()
	cacheType := d.Uint32()
	d.Skip(4)
	sb.RootBTreeAddress = binpkg.Undefined(o)
	sb.RootHeapAddress = binpkg.Undefined(o)
	if cacheType == 1 {
		sb.RootBTreeAddress = d.Offset()
		sb.RootHeapAddress = d.Offset()
	}
	sb.ExtensionAddress = binpkg.Undefined(o)
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSuperblock, err)
	}
	return sb, nil
}

// readCompact decodes versions 2 and 3 and verifies the checksum.
func readCompact(r io.ReaderAt, off int64, version uint8) (*Superblock, error) {
	head, err := binpkg.ReadBlock(r, off, 12)
	if err != nil {
		return nil, err
	}
	sb := &Superblock{
		Version:    version,
		OffsetSize: head[9],
		LengthSize: head[10],
		Flags:      head[11],
	}
	cfg := sb.Config()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSuperblock, err)
	}

	size := Size(int(sb.OffsetSize))
	block, err := binpkg.ReadBlock(r, off, size)
	if err != nil {
		return nil, err
	}
	stored := binary.LittleEndian.Uint32(block[size-4:])
	if binpkg.Lookup3(block[:size-4]) != stored {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidSuperblock)
	}

	d := binpkg.NewDecoder(block, cfg)
	d.Skip(12)
	sb.BaseAddress = d.Offset()
	sb.ExtensionAddress = d.Offset()
	sb.EOFAddress = d.Offset()
	sb.RootAddress = d.Offset()
	return sb, d.Err()
}

// Size returns the encoded size of a version 2/3 superblock.
func Size(offsetSize int) int {
	return 12 + 4*offsetSize + 4
}

// New returns a version 3 superblock for a new file.
func New(offsetSize, lengthSize uint8) *Superblock {
	return &Superblock{
		Version:          3,
		OffsetSize:       offsetSize,
		LengthSize:       lengthSize,
		ExtensionAddress: binpkg.Undefined(int(offsetSize)),
	}
}

// Encode serializes a version 2/3 superblock. Legacy versions are never
// written.
func (sb *Superblock) Encode() ([]byte, error) {
	if sb.Version < 2 {
		return nil, fmt.Errorf("%w: cannot write version %d", ErrUnsupportedVersion, sb.Version)
	}
	e := binpkg.NewEncoder(sb.Config())
	e.Write(Signature)
	e.Uint8(sb.Version)
	e.Uint8(sb.OffsetSize)
	e.Uint8(sb.LengthSize)
	e.Uint8(sb.Flags)
	e.Offset(sb.BaseAddress)
	e.Offset(sb.ExtensionAddress)
	e.Offset(sb.EOFAddress)
	e.Offset(sb.RootAddress)
	e.AppendChecksum()
	return e.Bytes(), nil
}
