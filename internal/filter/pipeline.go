package filter

import (
	"fmt"

	"github.com/robert-malhotra/go-usvol/internal/message"
)

// Pipeline applies an ordered list of filters. Position i in the pipeline
// matches bit i of a chunk's filter mask.
type Pipeline struct {
	filters []Filter
}

// NewPipeline builds a pipeline from a filter pipeline message. A nil
// message yields an empty pipeline.
func NewPipeline(fp *message.FilterPipeline, elemSize int) (*Pipeline, error) {
	p := &Pipeline{}
	if fp == nil {
		return p, nil
	}
	for _, info := range fp.Filters {
		f, err := New(info, elemSize)
		if err != nil {
			return nil, err
		}
		// Skipped optional filters keep their slot so mask bits line up.
		p.filters = append(p.filters, f)
	}
	return p, nil
}

// Len returns the number of pipeline slots.
func (p *Pipeline) Len() int { return len(p.filters) }

// Empty reports whether the pipeline has no filters.
func (p *Pipeline) Empty() bool { return len(p.filters) == 0 }

// Encode runs the filters in order.
func (p *Pipeline) Encode(data []byte) ([]byte, error) {
	for _, f := range p.filters {
		if f == nil {
			continue
		}
		var err error
		if data, err = f.Encode(data); err != nil {
			return nil, fmt.Errorf("%s encode: %w", Name(f.ID()), err)
		}
	}
	return data, nil
}

// Decode runs the filters in reverse, skipping those whose mask bit is set.
func (p *Pipeline) Decode(data []byte, mask uint32) ([]byte, error) {
	for i := len(p.filters) - 1; i >= 0; i-- {
		f := p.filters[i]
		if f == nil || mask&(1<<uint(i)) != 0 {
			continue
		}
		var err error
		if data, err = f.Decode(data); err != nil {
			return nil, fmt.Errorf("%s decode: %w", Name(f.ID()), err)
		}
	}
	return data, nil
}
