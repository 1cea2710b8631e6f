package dicom

// VR is a two-letter value representation code.
type VR string

const (
	AE VR = "AE"
	AS VR = "AS"
	AT VR = "AT"
	CS VR = "CS"
	DA VR = "DA"
	DS VR = "DS"
	DT VR = "DT"
	FD VR = "FD"
	FL VR = "FL"
	IS VR = "IS"
	LO VR = "LO"
	LT VR = "LT"
	OB VR = "OB"
	OD VR = "OD"
	OF VR = "OF"
	OL VR = "OL"
	OV VR = "OV"
	OW VR = "OW"
	PN VR = "PN"
	SH VR = "SH"
	SL VR = "SL"
	SQ VR = "SQ"
	SS VR = "SS"
	ST VR = "ST"
	SV VR = "SV"
	TM VR = "TM"
	UC VR = "UC"
	UI VR = "UI"
	UL VR = "UL"
	UN VR = "UN"
	UR VR = "UR"
	US VR = "US"
	UT VR = "UT"
	UV VR = "UV"
)

// longLength reports whether explicit VR encodings give v a reserved field
// and a 32-bit length.
func (v VR) longLength() bool {
	switch v {
	case OB, OD, OF, OL, OV, OW, SQ, UC, UR, UT, UN, SV, UV:
		return true
	}
	return false
}

// text reports whether values of v are character strings.
func (v VR) text() bool {
	switch v {
	case AE, AS, CS, DA, DS, DT, IS, LO, LT, PN, SH, ST, TM, UC, UI, UR, UT:
		return true
	}
	return false
}

func (v VR) valid() bool {
	return v.text() || v.longLength() || v == AT || v == FD || v == FL || v == SL || v == SS || v == UL || v == US
}
