package hdf5

import (
	"fmt"
	"path"
	"strings"

	"github.com/robert-malhotra/go-usvol/internal/message"
)

// CreateGroup creates an empty group named name inside g.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if err := g.checkNewMember(name); err != nil {
		return nil, err
	}
	hdr, err := g.file.writeHeader(newGroupMessages(g.file.cfg.OffsetSize))
	if err != nil {
		return nil, err
	}
	child := g.file.groupFor(path.Join(g.path, name), hdr)
	if err := g.addLink(message.NewHardLink(name, hdr.Address)); err != nil {
		return nil, err
	}
	return child, nil
}

// SetAttr creates or replaces an attribute on g.
func (g *Group) SetAttr(name string, value any) error {
	if err := g.checkWritable(); err != nil {
		return err
	}
	attr, err := newAttributeMessage(name, value)
	if err != nil {
		return err
	}
	msgs := g.header.Messages
	replaced := false
	for i, m := range msgs {
		if a, ok := m.(*message.Attribute); ok && a.Name == name {
			msgs[i] = attr
			replaced = true
		}
	}
	if !replaced {
		msgs = append(msgs, attr)
	}
	return g.rewrite(msgs)
}

func (g *Group) checkWritable() error {
	switch {
	case g.file.closed:
		return ErrClosed
	case !g.file.writable:
		return ErrReadOnly
	case g.header.SymbolTable() != nil:
		return fmt.Errorf("%s: adding to a symbol table group: %w", g.path, ErrUnsupported)
	}
	return nil
}

func (g *Group) checkNewMember(name string) error {
	if err := g.checkWritable(); err != nil {
		return err
	}
	if name == "" || name == "." || strings.Contains(name, "/") {
		return fmt.Errorf("%q: %w", name, ErrInvalidPath)
	}
	exists, err := g.Has(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s: %w", path.Join(g.path, name), ErrExists)
	}
	return nil
}

func (g *Group) addLink(link *message.Link) error {
	return g.rewrite(append(g.header.Messages, link))
}

// rewrite writes msgs as a new header for g and points the parent's link,
// or the superblock for the root group, at it.
func (g *Group) rewrite(msgs []message.Message) error {
	old := g.header
	hdr, err := g.file.writeHeader(msgs)
	if err != nil {
		return err
	}
	g.header = hdr
	if old.Size > 0 {
		g.file.alloc.Abandon(uint64(old.Size))
	}
	if g.path == "/" {
		g.file.sb.RootAddress = hdr.Address
		return nil
	}

	parent, err := g.file.OpenGroup(path.Dir(g.path))
	if err != nil {
		return fmt.Errorf("%s: finding parent: %w", g.path, err)
	}
	return parent.relink(path.Base(g.path), old.Address, hdr.Address)
}

func (g *Group) relink(name string, from, to uint64) error {
	msgs := make([]message.Message, len(g.header.Messages))
	copy(msgs, g.header.Messages)
	for i, m := range msgs {
		if l, ok := m.(*message.Link); ok && l.Name == name && l.LinkType == message.LinkHard && l.Address == from {
			moved := *l
			moved.Address = to
			msgs[i] = &moved
			return g.rewrite(msgs)
		}
	}
	return fmt.Errorf("%s: no hard link %q to address %d", g.path, name, from)
}
