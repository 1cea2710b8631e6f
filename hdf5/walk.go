package hdf5

import (
	"errors"
	"path"
)

// WalkFunc is called for each object during Walk. obj is a *Group or a
// *Dataset; when a member cannot be opened obj is nil and err says why.
// Returning SkipGroup from a group visit skips its members; any other
// non-nil error stops the walk.
type WalkFunc func(path string, obj any, err error) error

// SkipGroup is returned by a WalkFunc to skip a group's members.
var SkipGroup = errors.New("skip this group")

// Walk visits g and everything below it, depth first in member order.
// Objects reachable through more than one link are visited once.
func Walk(g *Group, fn WalkFunc) error {
	seen := map[uint64]bool{g.header.Address: true}
	err := walkGroup(g, fn, seen)
	if errors.Is(err, SkipGroup) {
		return nil
	}
	return err
}

func walkGroup(g *Group, fn WalkFunc, seen map[uint64]bool) error {
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}
	members, err := g.Members()
	if err != nil {
		return fn(g.Path(), nil, err)
	}
	for _, name := range members {
		childPath := path.Join(g.Path(), name)
		hdr, full, err := g.open(name, 0)
		if err != nil {
			if err := fn(childPath, nil, err); err != nil {
				return err
			}
			continue
		}
		if seen[hdr.Address] {
			continue
		}
		seen[hdr.Address] = true

		switch {
		case hdr.IsGroup():
			err = walkGroup(g.file.groupFor(full, hdr), fn, seen)
			if errors.Is(err, SkipGroup) {
				err = nil
			}
		default:
			ds, dsErr := newDataset(g.file, full, hdr)
			if dsErr != nil {
				err = fn(childPath, nil, dsErr)
			} else {
				err = fn(childPath, ds, nil)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
