package hdf5

import (
	"fmt"
	"path"
	"strings"

	"github.com/robert-malhotra/go-usvol/internal/btree"
	"github.com/robert-malhotra/go-usvol/internal/heap"
	"github.com/robert-malhotra/go-usvol/internal/message"
	"github.com/robert-malhotra/go-usvol/internal/object"
)

// Group is an HDF5 group.
type Group struct {
	file   *File
	path   string
	header *object.Header
}

// entry is one member of a group as stored in either group format.
type entry struct {
	name     string
	addr     uint64
	soft     string
	external bool
}

// Name returns the last path component, or "/" for the root group.
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return path.Base(g.path)
}

// Path returns the absolute path of the group.
func (g *Group) Path() string { return g.path }

// File returns the file the group belongs to.
func (g *Group) File() *File { return g.file }

// Members lists member names. New-style groups list in link order, old-style
// groups in name order.
func (g *Group) Members() ([]string, error) {
	entries, err := g.entries()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names, nil
}

// Has reports whether name is a member of g.
func (g *Group) Has(name string) (bool, error) {
	entries, err := g.entries()
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.name == name {
			return true, nil
		}
	}
	return false, nil
}

func (g *Group) entries() ([]entry, error) {
	if g.file.closed {
		return nil, ErrClosed
	}
	if st := g.header.SymbolTable(); st != nil {
		return g.symbolEntries(st)
	}
	if li := g.header.LinkInfo(); li != nil && li.Dense(g.file.cfg.OffsetSize) {
		return nil, fmt.Errorf("%s: dense link storage: %w", g.path, ErrUnsupported)
	}
	var out []entry
	for _, l := range g.header.Links() {
		e := entry{name: l.Name}
		switch l.LinkType {
		case message.LinkHard:
			e.addr = l.Address
		case message.LinkSoft:
			e.soft = l.SoftTarget
		default:
			e.external = true
		}
		out = append(out, e)
	}
	return out, nil
}

func (g *Group) symbolEntries(st *message.SymbolTable) ([]entry, error) {
	f := g.file
	names, err := heap.ReadLocal(f.r, f.cfg, st.HeapAddress)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.path, err)
	}
	syms, err := btree.ReadGroup(f.r, f.cfg, st.BTreeAddress, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.path, err)
	}
	out := make([]entry, len(syms))
	for i, s := range syms {
		out[i] = entry{name: s.Name, addr: s.Address, soft: s.SoftTarget}
	}
	return out, nil
}

func (g *Group) lookup(name string) (entry, error) {
	entries, err := g.entries()
	if err != nil {
		return entry{}, err
	}
	for _, e := range entries {
		if e.name == name {
			if e.external {
				return entry{}, fmt.Errorf("%s: external link: %w", path.Join(g.path, name), ErrUnsupported)
			}
			return e, nil
		}
	}
	return entry{}, fmt.Errorf("%s: %w", path.Join(g.path, name), ErrNotFound)
}

// open resolves p relative to g, following soft links, and returns the
// object header and absolute path of the target.
func (g *Group) open(p string, depth int) (*object.Header, string, error) {
	if depth > MaxLinkDepth {
		return nil, "", ErrLinkDepth
	}
	if p == "" {
		return nil, "", ErrInvalidPath
	}
	cur := g
	if strings.HasPrefix(p, "/") {
		cur = g.file.root
	}
	parts := SplitPath(p)
	if len(parts) == 0 {
		return cur.header, cur.path, nil
	}
	for i, name := range parts {
		e, err := cur.lookup(name)
		if err != nil {
			return nil, "", err
		}
		var (
			hdr  *object.Header
			full string
		)
		if e.soft != "" {
			hdr, full, err = cur.open(e.soft, depth+1)
		} else {
			full = path.Join(cur.path, name)
			hdr, err = g.file.readHeader(e.addr)
			if err == nil {
				if known, ok := g.file.groups[full]; ok {
					hdr = known.header
				}
			}
		}
		if err != nil {
			return nil, "", err
		}
		if i == len(parts)-1 {
			return hdr, full, nil
		}
		if !hdr.IsGroup() {
			return nil, "", fmt.Errorf("%s: %w", full, ErrNotGroup)
		}
		cur = g.file.groupFor(full, hdr)
	}
	return nil, "", ErrInvalidPath
}

// OpenGroup opens a group by path relative to g, or absolute.
func (g *Group) OpenGroup(p string) (*Group, error) {
	hdr, full, err := g.open(p, 0)
	if err != nil {
		return nil, err
	}
	if !hdr.IsGroup() {
		return nil, fmt.Errorf("%s: %w", full, ErrNotGroup)
	}
	return g.file.groupFor(full, hdr), nil
}

// OpenDataset opens a dataset by path relative to g, or absolute.
func (g *Group) OpenDataset(p string) (*Dataset, error) {
	hdr, full, err := g.open(p, 0)
	if err != nil {
		return nil, err
	}
	return newDataset(g.file, full, hdr)
}

// Attrs lists attribute names in storage order.
func (g *Group) Attrs() []string { return attrNames(g.header) }

// LookupAttr returns the named attribute, or false when it is absent.
func (g *Group) LookupAttr(name string) (*Attribute, bool) {
	return lookupAttr(g.file, g.header, name)
}
