package decode

import (
	"errors"
	"fmt"

	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/cursor"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
)

// ErrFormat is returned when the buffer cannot be split into whole records of
// the schema's size, or a field is too narrow for its decoder.
var ErrFormat = errors.New("point buffer format error")

// Request is the input for one node decode.
type Request struct {
	Buffer  []byte
	Schema  *schema.Schema
	Version schema.Version

	// NodeOffset is added to legacy float positions.
	NodeOffset [3]float64
	// Scale multiplies quantized uint32 positions.
	Scale float64

	// Passed through untouched.
	Name        string
	HasChildren bool
}

// fieldPlan is one schema field resolved to its decoder and record offset.
type fieldPlan struct {
	desc    schema.Descriptor
	offset  int
	decoder attributeDecoder
}

// plan validates the request and resolves every decodable field. Nothing is
// allocated for output until plan succeeds.
func plan(req *Request) ([]fieldPlan, int, error) {
	if req.Schema == nil {
		return nil, 0, fmt.Errorf("%w: nil schema", ErrFormat)
	}
	stride := req.Schema.ByteSize()
	if stride <= 0 {
		return nil, 0, fmt.Errorf("%w: schema has zero record size", ErrFormat)
	}
	if len(req.Buffer)%stride != 0 {
		return nil, 0, fmt.Errorf("%w: buffer length %d is not a multiple of record size %d",
			ErrFormat, len(req.Buffer), stride)
	}

	var fields []fieldPlan
	offset := 0
	for _, d := range req.Schema.Attributes() {
		if dec, ok := decoderFor(d.Name); ok {
			if d.ByteSize() < dec.fieldBytes {
				return nil, 0, fmt.Errorf("%w: field %v at offset %d is %d bytes, decoder reads %d",
					ErrFormat, d, offset, d.ByteSize(), dec.fieldBytes)
			}
			fields = append(fields, fieldPlan{desc: d, offset: offset, decoder: dec})
		}
		offset += d.ByteSize()
	}
	return fields, len(req.Buffer) / stride, nil
}

// Decode decodes every record in req.Buffer in a single pass over the schema
// fields. Each decodable field is materialised in full before the next one is
// visited. On error no bundle is returned.
func Decode(req Request) (*Bundle, error) {
	fields, numPoints, err := plan(&req)
	if err != nil {
		return nil, err
	}

	p := &pass{
		cur:        cursor.New(req.Buffer),
		numPoints:  numPoints,
		stride:     req.Schema.ByteSize(),
		version:    req.Version,
		nodeOffset: req.NodeOffset,
		scale:      req.Scale,
		box:        EmptyBox(),
	}

	columns := make(map[schema.AttributeName]*Column, len(fields)+1)
	for _, f := range fields {
		columns[f.desc.Name] = f.decoder.run(p, f.desc.Name, f.offset)
	}
	columns[schema.Indices] = indexColumn(numPoints)

	return &Bundle{
		Name:        req.Name,
		HasChildren: req.HasChildren,
		NumPoints:   numPoints,
		Columns:     columns,
		Mean:        p.mean,
		TightBox:    p.box,
		Buffer:      req.Buffer,
	}, nil
}
