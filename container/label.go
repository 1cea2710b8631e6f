package container

import (
	"strings"

	"github.com/robert-malhotra/go-usvol/viewer"
)

// Label is the dotted "{side}.{role}" name of a layer, such as
// "left.cropped_raw".
type Label struct {
	Side viewer.Side
	Role string
}

// ParseLabel splits name on its first dot. It returns false when the side
// is not left or right or the role is empty.
func ParseLabel(name string) (Label, bool) {
	side, role, ok := strings.Cut(name, ".")
	l := Label{Side: viewer.Side(side), Role: role}
	if !ok || !l.Side.Valid() || role == "" || strings.Contains(role, "/") {
		return Label{}, false
	}
	return l, true
}

func (l Label) String() string {
	return string(l.Side) + "." + l.Role
}
