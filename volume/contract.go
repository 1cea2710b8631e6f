package volume

import "fmt"

// MinExtent is the exclusive lower bound on every dimension of a volume.
const MinExtent = 3

// CheckVolume reports whether a is a volume: exactly three dimensions, each
// larger than MinExtent.
func (a *Array) CheckVolume() error {
	if len(a.Shape) != 3 {
		return fmt.Errorf("volume: want 3 dimensions, got shape %v", a.Shape)
	}
	for i, d := range a.Shape {
		if d <= MinExtent {
			return fmt.Errorf("volume: dimension %d is %d, must exceed %d", i, d, MinExtent)
		}
	}
	return nil
}

// MustBeVolume panics when a breaks the volume shape contract. Loaders call
// it on every array they return.
func MustBeVolume(a *Array) {
	if a == nil {
		panic("volume: shape contract violated: nil array")
	}
	if err := a.CheckVolume(); err != nil {
		panic(fmt.Sprintf("volume: shape contract violated: %v", err))
	}
}
