package layout

import (
	"github.com/robert-malhotra/go-usvol/internal/filter"
	"github.com/robert-malhotra/go-usvol/internal/message"
)

// EncodeChunk runs a whole-dataset chunk through the filters in fp and
// returns the bytes to store.
func EncodeChunk(data []byte, fp *message.FilterPipeline, elemSize int) ([]byte, error) {
	p, err := filter.NewPipeline(fp, elemSize)
	if err != nil {
		return nil, err
	}
	return p.Encode(data)
}
