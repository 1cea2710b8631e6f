package dicom

import "fmt"

// Tag is a (group, element) pair, group in the high 16 bits.
type Tag uint32

// NewTag builds a tag from its group and element numbers.
func NewTag(group, element uint16) Tag {
	return Tag(uint32(group)<<16 | uint32(element))
}

func (t Tag) Group() uint16   { return uint16(t >> 16) }
func (t Tag) Element() uint16 { return uint16(t) }

func (t Tag) String() string {
	s := fmt.Sprintf("(%04X,%04X)", t.Group(), t.Element())
	if e, ok := dictionary[t]; ok {
		return e.name + " " + s
	}
	return s
}

const (
	TagFileMetaGroupLength     Tag = 0x00020000
	TagMediaStorageSOPClass    Tag = 0x00020002
	TagTransferSyntax          Tag = 0x00020010
	TagSpecificCharacterSet    Tag = 0x00080005
	TagSOPClassUID             Tag = 0x00080016
	TagModality                Tag = 0x00080060
	TagPatientName             Tag = 0x00100010
	TagSliceThickness          Tag = 0x00180050
	TagSpacingBetweenSlices    Tag = 0x00180088
	TagSamplesPerPixel         Tag = 0x00280002
	TagPhotometric             Tag = 0x00280004
	TagPlanarConfiguration     Tag = 0x00280006
	TagNumberOfFrames          Tag = 0x00280008
	TagRows                    Tag = 0x00280010
	TagColumns                 Tag = 0x00280011
	TagPixelSpacing            Tag = 0x00280030
	TagBitsAllocated           Tag = 0x00280100
	TagBitsStored              Tag = 0x00280101
	TagPixelRepresentation     Tag = 0x00280103
	TagFloatPixelData          Tag = 0x7FE00008
	TagDoubleFloatPixelData    Tag = 0x7FE00009
	TagPixelData               Tag = 0x7FE00010
	TagItem                    Tag = 0xFFFEE000
	TagItemDelimitation        Tag = 0xFFFEE00D
	TagSequenceDelimitation    Tag = 0xFFFEE0DD
	tagReferencedImageSequence Tag = 0x00081140
)

type dictEntry struct {
	vr   VR
	name string
}

// dictionary supplies VRs for implicit VR files. It only covers the
// elements the loaders look at; everything else reads as UN.
var dictionary = map[Tag]dictEntry{
	TagFileMetaGroupLength:     {UL, "FileMetaInformationGroupLength"},
	TagMediaStorageSOPClass:    {UI, "MediaStorageSOPClassUID"},
	TagTransferSyntax:          {UI, "TransferSyntaxUID"},
	TagSpecificCharacterSet:    {CS, "SpecificCharacterSet"},
	TagSOPClassUID:             {UI, "SOPClassUID"},
	TagModality:                {CS, "Modality"},
	TagPatientName:             {PN, "PatientName"},
	TagSliceThickness:          {DS, "SliceThickness"},
	TagSpacingBetweenSlices:    {DS, "SpacingBetweenSlices"},
	TagSamplesPerPixel:         {US, "SamplesPerPixel"},
	TagPhotometric:             {CS, "PhotometricInterpretation"},
	TagPlanarConfiguration:     {US, "PlanarConfiguration"},
	TagNumberOfFrames:          {IS, "NumberOfFrames"},
	TagRows:                    {US, "Rows"},
	TagColumns:                 {US, "Columns"},
	TagPixelSpacing:            {DS, "PixelSpacing"},
	TagBitsAllocated:           {US, "BitsAllocated"},
	TagBitsStored:              {US, "BitsStored"},
	TagPixelRepresentation:     {US, "PixelRepresentation"},
	TagFloatPixelData:          {OF, "FloatPixelData"},
	TagDoubleFloatPixelData:    {OD, "DoubleFloatPixelData"},
	TagPixelData:               {OW, "PixelData"},
	tagReferencedImageSequence: {SQ, "ReferencedImageSequence"},
}

// dictionaryVR returns the VR an implicit VR file implies for t.
func dictionaryVR(t Tag) VR {
	if e, ok := dictionary[t]; ok {
		return e.vr
	}
	if t.Element() == 0 {
		return UL
	}
	return UN
}
