package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	binpkg "github.com/robert-malhotra/go-usvol/internal/binary"
)

func TestReadNotHDF5(t *testing.T) {
	_, err := Read(bytes.NewReader(make([]byte, 4096)))
	if !errors.Is(err, ErrNotHDF5) {
		t.Errorf("expected ErrNotHDF5, got %v", err)
	}
}

func TestReadUnsupportedVersion(t *testing.T) {
	data := make([]byte, 256)
	copy(data, Signature)
	data[8] = 99

	_, err := Read(bytes.NewReader(data))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, size := range []uint8{4, 8} {
		sb := New(size, size)
		sb.EOFAddress = 4096
		sb.RootAddress = 48

		buf, err := sb.Encode()
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if len(buf) != Size(int(size)) {
			t.Fatalf("encoded %d bytes, Size says %d", len(buf), Size(int(size)))
		}

		got, err := Read(bytes.NewReader(buf))
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if got.Version != 3 || got.EOFAddress != 4096 || got.RootAddress != 48 {
			t.Errorf("size %d: got %+v", size, got)
		}
		if !binpkg.IsUndefined(got.ExtensionAddress, int(size)) {
			t.Errorf("size %d: extension address should be undefined", size)
		}
		if got.HasSymbolTableRoot() {
			t.Error("v3 root should not be a symbol table entry")
		}
	}
}

func TestReadChecksumMismatch(t *testing.T) {
	sb := New(8, 8)
	buf, err := sb.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	buf[20] ^= 0xff

	_, err = Read(bytes.NewReader(buf))
	if !errors.Is(err, ErrInvalidSuperblock) {
		t.Errorf("expected ErrInvalidSuperblock, got %v", err)
	}
}

func TestReadAtUserBlockOffset(t *testing.T) {
	sb := New(8, 8)
	sb.RootAddress = 600
	buf, err := sb.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data := make([]byte, 512+len(buf))
	copy(data[512:], buf)

	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.FileOffset != 512 || got.RootAddress != 600 {
		t.Errorf("got offset %d root %d", got.FileOffset, got.RootAddress)
	}
}

func legacyBlock(version uint8, cacheType uint32) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.Write(Signature)
	buf.Write([]byte{version, 0, 0, 0, 0, 8, 8, 0})
	binary.Write(&buf, le, uint16(4))  // leaf K
	binary.Write(&buf, le, uint16(16)) // internal K
	binary.Write(&buf, le, uint32(0))  // flags
	if version == 1 {
		binary.Write(&buf, le, uint16(32))
		binary.Write(&buf, le, uint16(0))
	}
	binary.Write(&buf, le, uint64(0))    // base
	binary.Write(&buf, le, ^uint64(0))   // free space
	binary.Write(&buf, le, uint64(2048)) // EOF
	binary.Write(&buf, le, ^uint64(0))   // driver
	binary.Write(&buf, le, uint64(0))    // name offset
	binary.Write(&buf, le, uint64(96))   // object header
	binary.Write(&buf, le, cacheType)    // cache type
	binary.Write(&buf, le, uint32(0))    // reserved
	binary.Write(&buf, le, uint64(136))  // B-tree
	binary.Write(&buf, le, uint64(680))  // local heap
	return buf.Bytes()
}

func TestReadLegacy(t *testing.T) {
	tests := []struct {
		name      string
		version   uint8
		cacheType uint32
		wantBTree uint64
		wantK     uint16
	}{
		{"v0 cached", 0, 1, 136, 0},
		{"v0 uncached", 0, 0, ^uint64(0), 0},
		{"v1 cached", 1, 1, 136, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb, err := Read(bytes.NewReader(legacyBlock(tt.version, tt.cacheType)))
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if sb.RootAddress != 96 {
				t.Errorf("RootAddress: got %d, want 96", sb.RootAddress)
			}
			if sb.EOFAddress != 2048 {
				t.Errorf("EOFAddress: got %d", sb.EOFAddress)
			}
			if sb.RootBTreeAddress != tt.wantBTree {
				t.Errorf("RootBTreeAddress: got %d, want %d", sb.RootBTreeAddress, tt.wantBTree)
			}
			if sb.IndexedK != tt.wantK {
				t.Errorf("IndexedK: got %d, want %d", sb.IndexedK, tt.wantK)
			}
			if sb.GroupLeafK != 4 || sb.GroupInternalK != 16 {
				t.Errorf("K values: got %d/%d", sb.GroupLeafK, sb.GroupInternalK)
			}
			if !sb.HasSymbolTableRoot() {
				t.Error("legacy root should be a symbol table entry")
			}
			if _, err := sb.Encode(); !errors.Is(err, ErrUnsupportedVersion) {
				t.Errorf("Encode of legacy superblock: got %v", err)
			}
		})
	}
}
