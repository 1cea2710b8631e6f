package dicom

import "encoding/binary"

// Transfer syntax UIDs.
const (
	ImplicitVRLittleEndian         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian         = "1.2.840.10008.1.2.1"
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
	ExplicitVRBigEndian            = "1.2.840.10008.1.2.2"
)

// syntax is the element encoding of the main dataset.
type syntax struct {
	uid      string
	implicit bool
	order    binary.ByteOrder
	deflated bool
}

// lookupSyntax returns the encoding for uid. Every syntax not listed, the
// encapsulated ones included, is explicit VR little endian; encapsulated
// pixel data is detected by its undefined length.
func lookupSyntax(uid string) syntax {
	switch uid {
	case ImplicitVRLittleEndian:
		return syntax{uid: uid, implicit: true, order: binary.LittleEndian}
	case ExplicitVRBigEndian:
		return syntax{uid: uid, order: binary.BigEndian}
	case DeflatedExplicitVRLittleEndian:
		return syntax{uid: uid, order: binary.LittleEndian, deflated: true}
	}
	return syntax{uid: uid, order: binary.LittleEndian}
}

var metaSyntax = syntax{uid: ExplicitVRLittleEndian, order: binary.LittleEndian}
