package volume

import "strconv"

// Spacing is an optional isotropic voxel size. The zero value is absent,
// meaning the data was already resampled to unit spacing or the spacing is
// unknown.
type Spacing struct {
	Value float64
	Valid bool
}

// NoSpacing is the absent spacing.
var NoSpacing = Spacing{}

// Isotropic returns a present spacing of v.
func Isotropic(v float64) Spacing {
	return Spacing{Value: v, Valid: true}
}

func (s Spacing) String() string {
	if !s.Valid {
		return "none"
	}
	return strconv.FormatFloat(s.Value, 'g', -1, 64)
}
