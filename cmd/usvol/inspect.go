package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/robert-malhotra/go-usvol/hdf5"
	"github.com/robert-malhotra/go-usvol/table"
)

// inspect prints every group and dataset of a container with its shape,
// storage and attributes.
func inspect(w io.Writer, name string) error {
	f, err := hdf5.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(w, "=== %s ===\n", name)
	fmt.Fprintf(w, "Superblock version: %d\n\n", f.Version())

	return hdf5.Walk(f.Root(), func(p string, obj any, err error) error {
		indent := strings.Repeat("  ", len(hdf5.SplitPath(p)))
		if err != nil {
			fmt.Fprintf(w, "%s%q: %s\n", indent, p, warn.Sprintf("ERROR %v", err))
			return nil
		}
		switch o := obj.(type) {
		case *hdf5.Group:
			members, err := o.Members()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%sGroup %q: %d members\n", indent, o.Path(), len(members))
			printAttrs(w, indent, o.Attrs(), o.LookupAttr)
		case *hdf5.Dataset:
			fmt.Fprintf(w, "%sDataset %q: %s %v, %s", indent, o.Name(), o.Datatype(), o.Shape(), o.Storage())
			if filters := o.Filters(); len(filters) > 0 {
				fmt.Fprintf(w, " [%s]", strings.Join(filters, ", "))
			}
			if level, ok := o.DeflateLevel(); ok {
				fmt.Fprintf(w, " level %d", level)
			}
			fmt.Fprintln(w)
			printAttrs(w, indent, o.Attrs(), o.LookupAttr)
			if table.IsTable(o) {
				printMeans(w, indent, o)
			}
		}
		return nil
	})
}

func printAttrs(w io.Writer, indent string, names []string, lookup func(string) (*hdf5.Attribute, bool)) {
	for _, n := range names {
		a, _ := lookup(n)
		v, err := a.Value()
		if err != nil {
			fmt.Fprintf(w, "%s  @%s: %s\n", indent, n, warn.Sprintf("ERROR %v", err))
			continue
		}
		fmt.Fprintf(w, "%s  @%s = %v\n", indent, n, v)
	}
}

// printMeans summarises each column of a measurement table.
func printMeans(w io.Writer, indent string, ds *hdf5.Dataset) {
	t, err := table.FromDataset(ds)
	if err != nil {
		fmt.Fprintf(w, "%s  %s\n", indent, warn.Sprintf("ERROR %v", err))
		return
	}
	if t.Len() == 0 {
		return
	}
	for _, c := range t.Columns() {
		m, _ := t.Mean(c)
		fmt.Fprintf(w, "%s  mean(%s) = %g\n", indent, c, m)
	}
}
