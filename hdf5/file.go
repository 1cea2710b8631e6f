package hdf5

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/robert-malhotra/go-usvol/internal/alloc"
	"github.com/robert-malhotra/go-usvol/internal/binary"
	"github.com/robert-malhotra/go-usvol/internal/heap"
	"github.com/robert-malhotra/go-usvol/internal/message"
	"github.com/robert-malhotra/go-usvol/internal/object"
	"github.com/robert-malhotra/go-usvol/internal/superblock"
)

// File is an open HDF5 file.
type File struct {
	path   string
	file   *os.File
	r      io.ReaderAt
	cfg    binary.Config
	sb     *superblock.Superblock
	strs   *heap.Reader
	root   *Group
	closed bool

	// groups holds every group opened through this file by path, so a
	// group whose header moves can update the link in its parent.
	groups map[string]*Group

	writable bool
	alloc    *alloc.Allocator
}

// Open opens an HDF5 file for reading.
func Open(path string) (*File, error) {
	osf, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	f, err := newFile(path, osf)
	if err != nil {
		osf.Close()
		return nil, err
	}
	return f, nil
}

func newFile(path string, osf *os.File) (*File, error) {
	sb, err := superblock.Read(osf)
	if err != nil {
		return nil, fmt.Errorf("%s: reading superblock: %w", path, err)
	}
	f := &File{
		path:   path,
		file:   osf,
		r:      io.NewSectionReader(osf, sb.FileOffset, math.MaxInt64-sb.FileOffset),
		cfg:    sb.Config(),
		sb:     sb,
		groups: make(map[string]*Group),
	}
	f.strs = heap.NewReader(f.r, f.cfg)

	hdr, err := f.readHeader(sb.RootAddress)
	if err != nil {
		return nil, fmt.Errorf("%s: opening root group: %w", path, err)
	}
	f.root = f.groupFor("/", hdr)
	return f, nil
}

// Create creates a new file, truncating an existing one unless
// WithExclusive is given.
func Create(path string, opts ...FileOption) (*File, error) {
	o := defaultFileOptions()
	for _, opt := range opts {
		opt(o)
	}
	flags := os.O_RDWR | os.O_CREATE | os.O_TRUNC
	if o.exclusive {
		flags = os.O_RDWR | os.O_CREATE | os.O_EXCL
	}
	osf, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	sb := superblock.New(uint8(o.offsetSize), uint8(o.lengthSize))
	f := &File{
		path:     path,
		file:     osf,
		r:        osf,
		cfg:      sb.Config(),
		sb:       sb,
		groups:   make(map[string]*Group),
		writable: true,
		alloc:    alloc.New(uint64(superblock.Size(o.offsetSize))),
	}
	f.strs = heap.NewReader(f.r, f.cfg)

	hdr, err := f.writeHeader(newGroupMessages(f.cfg.OffsetSize))
	if err != nil {
		osf.Close()
		return nil, fmt.Errorf("%s: writing root group: %w", path, err)
	}
	sb.RootAddress = hdr.Address
	f.root = f.groupFor("/", hdr)
	if err := f.Flush(); err != nil {
		osf.Close()
		return nil, err
	}
	return f, nil
}

// OpenReadWrite opens an existing file for reading and appending objects.
// Files whose root group is an old-style symbol table cannot be modified.
func OpenReadWrite(path string) (*File, error) {
	osf, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	f, err := newFile(path, osf)
	if err != nil {
		osf.Close()
		return nil, err
	}
	if f.sb.HasSymbolTableRoot() || f.sb.FileOffset != 0 {
		osf.Close()
		return nil, fmt.Errorf("%s: modifying superblock version %d files: %w", path, f.sb.Version, ErrUnsupported)
	}
	st, err := osf.Stat()
	if err != nil {
		osf.Close()
		return nil, fmt.Errorf("opening file: %w", err)
	}
	f.writable = true
	f.alloc = alloc.New(max(f.sb.EOFAddress, uint64(st.Size())))
	return f, nil
}

// OpenAppend opens path with OpenReadWrite, creating it first if it does
// not exist.
func OpenAppend(path string) (*File, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Create(path)
	}
	return OpenReadWrite(path)
}

// Close commits a writable file and closes it. Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	var flushErr error
	if f.writable {
		flushErr = f.Flush()
	}
	f.closed = true
	closeErr := f.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// Flush writes the superblock so the file on disk reflects every object
// created so far.
func (f *File) Flush() error {
	if f.closed {
		return ErrClosed
	}
	if !f.writable {
		return ErrReadOnly
	}
	eof := f.alloc.EOF()
	f.sb.EOFAddress = eof
	buf, err := f.sb.Encode()
	if err != nil {
		return err
	}
	if _, err := f.file.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}
	if err := f.file.Truncate(int64(eof)); err != nil {
		return fmt.Errorf("sizing file: %w", err)
	}
	return nil
}

// Root returns the root group.
func (f *File) Root() *Group { return f.root }

// Path returns the path the file was opened with.
func (f *File) Path() string { return f.path }

// Version returns the superblock version.
func (f *File) Version() int { return int(f.sb.Version) }

// IsWritable reports whether objects can be added.
func (f *File) IsWritable() bool { return f.writable && !f.closed }

// AllocStats reports space used by the writer. It is zero for read-only
// files.
func (f *File) AllocStats() alloc.Stats {
	if f.alloc == nil {
		return alloc.Stats{}
	}
	return f.alloc.Stats()
}

// OpenGroup opens a group by absolute path.
func (f *File) OpenGroup(path string) (*Group, error) {
	return f.root.OpenGroup(path)
}

// OpenDataset opens a dataset by absolute path.
func (f *File) OpenDataset(path string) (*Dataset, error) {
	return f.root.OpenDataset(path)
}

func (f *File) readHeader(addr uint64) (*object.Header, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return object.Read(f.r, f.cfg, addr)
}

// groupFor returns the registered group at path, registering hdr when the
// path is new.
func (f *File) groupFor(path string, hdr *object.Header) *Group {
	if g, ok := f.groups[path]; ok {
		return g
	}
	g := &Group{file: f, path: path, header: hdr}
	f.groups[path] = g
	return g
}

// writeHeader encodes msgs as a new object header at the end of the file.
func (f *File) writeHeader(msgs []message.Message) (*object.Header, error) {
	enc := make([]message.Encodable, 0, len(msgs))
	kept := make([]message.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Type() {
		case message.TypeNIL, message.TypeContinuation:
			continue
		}
		e, ok := m.(message.Encodable)
		if !ok {
			return nil, fmt.Errorf("rewriting header message %#04x: %w", uint16(m.Type()), ErrUnsupported)
		}
		enc = append(enc, e)
		kept = append(kept, m)
	}
	buf, err := object.Encode(enc, f.cfg)
	if err != nil {
		return nil, err
	}
	addr, err := f.writeBlock(buf, "header")
	if err != nil {
		return nil, err
	}
	return &object.Header{Version: 2, Address: addr, Messages: kept, Size: len(buf)}, nil
}

// writeBlock appends buf to the file and returns its address.
func (f *File) writeBlock(buf []byte, tag string) (uint64, error) {
	addr := f.alloc.Alloc(uint64(len(buf)), tag)
	if _, err := f.file.WriteAt(buf, int64(addr)); err != nil {
		return 0, fmt.Errorf("writing %s at %d: %w", tag, addr, err)
	}
	return addr, nil
}

func newGroupMessages(offsetSize int) []message.Message {
	return []message.Message{message.NewLinkInfo(offsetSize), &message.GroupInfo{}}
}
