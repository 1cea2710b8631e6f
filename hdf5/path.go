package hdf5

import "strings"

// SplitPath splits a slash-separated path into its non-empty components.
//
//	"/"        -> []
//	"/left/raw" -> ["left", "raw"]
func SplitPath(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}

// CleanPath returns p with a leading slash and no trailing or repeated
// slashes.
func CleanPath(p string) string {
	return "/" + strings.Join(SplitPath(p), "/")
}
