package dicom

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// charsets maps SpecificCharacterSet defined terms to single-byte decoders.
// ISO_IR 192 (UTF-8) and the default repertoire need no decoding.
var charsets = map[string]*charmap.Charmap{
	"ISO_IR 100": charmap.ISO8859_1,
	"ISO_IR 101": charmap.ISO8859_2,
	"ISO_IR 109": charmap.ISO8859_3,
	"ISO_IR 110": charmap.ISO8859_4,
	"ISO_IR 144": charmap.ISO8859_5,
	"ISO_IR 127": charmap.ISO8859_6,
	"ISO_IR 126": charmap.ISO8859_7,
	"ISO_IR 138": charmap.ISO8859_8,
	"ISO_IR 148": charmap.ISO8859_9,
}

// lookupCharset returns the decoder for a SpecificCharacterSet value, or nil
// when text needs no conversion. Only the first non-empty term of a
// multi-valued set is honoured.
func lookupCharset(value string) encoding.Encoding {
	for _, term := range strings.Split(value, `\`) {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if cm, ok := charsets[term]; ok {
			return cm
		}
		if term != "ISO_IR 192" && term != "ISO_IR 6" {
			diagf("character set %q not supported, reading text as is", term)
		}
		return nil
	}
	return nil
}

func decodeText(enc encoding.Encoding, b []byte) string {
	if enc == nil {
		return string(b)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
