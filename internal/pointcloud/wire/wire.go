// Package wire serialises decoded bundles for handoff across a process or
// worker boundary.
//
// The payload is protobuf wire format written with protowire, prefixed by a
// one-byte compression flag:
//
//	byte 0     compression (0 = none, 1 = zstd)
//	bytes 1..  Bundle message
//
//	Bundle  { 1 name string, 2 has_children bool, 3 num_points uint64,
//	          4 mean packed double[3], 5 box_min packed double[3],
//	          6 box_max packed double[3], 7 column Column (repeated),
//	          8 buffer bytes (optional) }
//	Column  { 1 name uint32, 2 type uint32, 3 components uint32,
//	          4 data bytes (little-endian values) }
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/decode"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
)

// Compression selects how the message body is compressed.
type Compression byte

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
)

// ErrCorrupt is returned for payloads that do not parse.
var ErrCorrupt = errors.New("corrupt bundle payload")

// Options controls Marshal.
type Options struct {
	Compression Compression
	// Level is the zstd encoder level (1 fastest .. 4 best); 0 means default.
	Level int
	// IncludeBuffer also ships the raw input records.
	IncludeBuffer bool
}

const (
	fieldName        protowire.Number = 1
	fieldHasChildren protowire.Number = 2
	fieldNumPoints   protowire.Number = 3
	fieldMean        protowire.Number = 4
	fieldBoxMin      protowire.Number = 5
	fieldBoxMax      protowire.Number = 6
	fieldColumn      protowire.Number = 7
	fieldBuffer      protowire.Number = 8

	fieldColumnName       protowire.Number = 1
	fieldColumnType       protowire.Number = 2
	fieldColumnComponents protowire.Number = 3
	fieldColumnData       protowire.Number = 4
)

var zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil)
})

// Marshal encodes b. Columns are written in attribute-name order so the
// output is deterministic.
func Marshal(b *decode.Bundle, opts Options) ([]byte, error) {
	var body []byte
	body = protowire.AppendTag(body, fieldName, protowire.BytesType)
	body = protowire.AppendString(body, b.Name)
	body = protowire.AppendTag(body, fieldHasChildren, protowire.VarintType)
	body = protowire.AppendVarint(body, protowire.EncodeBool(b.HasChildren))
	body = protowire.AppendTag(body, fieldNumPoints, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(b.NumPoints))
	body = appendVec3(body, fieldMean, b.Mean)
	body = appendVec3(body, fieldBoxMin, b.TightBox.Min)
	body = appendVec3(body, fieldBoxMax, b.TightBox.Max)

	names := make([]schema.AttributeName, 0, len(b.Columns))
	for name := range b.Columns {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	for _, name := range names {
		body = protowire.AppendTag(body, fieldColumn, protowire.BytesType)
		body = protowire.AppendBytes(body, marshalColumn(b.Columns[name]))
	}
	if opts.IncludeBuffer {
		body = protowire.AppendTag(body, fieldBuffer, protowire.BytesType)
		body = protowire.AppendBytes(body, b.Buffer)
	}

	switch opts.Compression {
	case CompressionNone:
		return append([]byte{byte(CompressionNone)}, body...), nil
	case CompressionZstd:
		level := zstd.SpeedDefault
		if opts.Level > 0 {
			level = zstd.EncoderLevel(opts.Level)
		}
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(body, []byte{byte(CompressionZstd)}), nil
	default:
		return nil, fmt.Errorf("unsupported compression %d", opts.Compression)
	}
}

func appendVec3(b []byte, num protowire.Number, v [3]float64) []byte {
	var packed []byte
	for _, x := range v {
		packed = protowire.AppendFixed64(packed, math.Float64bits(x))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func marshalColumn(c *decode.Column) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldColumnName, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.Name))
	b = protowire.AppendTag(b, fieldColumnType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.Type))
	b = protowire.AppendTag(b, fieldColumnComponents, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.Components))
	b = protowire.AppendTag(b, fieldColumnData, protowire.BytesType)
	return protowire.AppendBytes(b, c.Bytes())
}

// Unmarshal decodes a payload produced by Marshal.
func Unmarshal(data []byte) (*decode.Bundle, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrCorrupt)
	}
	body := data[1:]
	switch Compression(data[0]) {
	case CompressionNone:
	case CompressionZstd:
		dec, err := zstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		body, err = dec.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown compression flag %d", ErrCorrupt, data[0])
	}

	b := &decode.Bundle{
		Columns:  make(map[schema.AttributeName]*decode.Column),
		TightBox: decode.EmptyBox(),
	}
	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
		}
		body = body[n:]

		switch {
		case num == fieldName && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(body)
			if m < 0 {
				return nil, fmt.Errorf("%w: name: %v", ErrCorrupt, protowire.ParseError(m))
			}
			b.Name, n = v, m
		case num == fieldHasChildren && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(body)
			if m < 0 {
				return nil, fmt.Errorf("%w: has_children: %v", ErrCorrupt, protowire.ParseError(m))
			}
			b.HasChildren, n = protowire.DecodeBool(v), m
		case num == fieldNumPoints && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(body)
			if m < 0 {
				return nil, fmt.Errorf("%w: num_points: %v", ErrCorrupt, protowire.ParseError(m))
			}
			if v > math.MaxInt {
				return nil, fmt.Errorf("%w: num_points %d out of range", ErrCorrupt, v)
			}
			b.NumPoints, n = int(v), m
		case (num == fieldMean || num == fieldBoxMin || num == fieldBoxMax) && typ == protowire.BytesType:
			raw, m := protowire.ConsumeBytes(body)
			if m < 0 {
				return nil, fmt.Errorf("%w: vector: %v", ErrCorrupt, protowire.ParseError(m))
			}
			v, err := parseVec3(raw)
			if err != nil {
				return nil, err
			}
			switch num {
			case fieldMean:
				b.Mean = v
			case fieldBoxMin:
				b.TightBox.Min = v
			default:
				b.TightBox.Max = v
			}
			n = m
		case num == fieldColumn && typ == protowire.BytesType:
			raw, m := protowire.ConsumeBytes(body)
			if m < 0 {
				return nil, fmt.Errorf("%w: column: %v", ErrCorrupt, protowire.ParseError(m))
			}
			c, err := unmarshalColumn(raw)
			if err != nil {
				return nil, err
			}
			b.Columns[c.Name] = c
			n = m
		case num == fieldBuffer && typ == protowire.BytesType:
			raw, m := protowire.ConsumeBytes(body)
			if m < 0 {
				return nil, fmt.Errorf("%w: buffer: %v", ErrCorrupt, protowire.ParseError(m))
			}
			b.Buffer = append([]byte(nil), raw...)
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, body)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrCorrupt, num, protowire.ParseError(n))
			}
		}
		body = body[n:]
	}

	for _, c := range b.Columns {
		if c.Len() != b.NumPoints {
			return nil, fmt.Errorf("%w: column %v has %d points, header says %d", ErrCorrupt, c.Name, c.Len(), b.NumPoints)
		}
	}
	return b, nil
}

func parseVec3(raw []byte) ([3]float64, error) {
	var v [3]float64
	for k := 0; k < 3; k++ {
		x, n := protowire.ConsumeFixed64(raw)
		if n < 0 {
			return v, fmt.Errorf("%w: packed vector: %v", ErrCorrupt, protowire.ParseError(n))
		}
		v[k] = math.Float64frombits(x)
		raw = raw[n:]
	}
	if len(raw) != 0 {
		return v, fmt.Errorf("%w: packed vector has %d trailing bytes", ErrCorrupt, len(raw))
	}
	return v, nil
}

func unmarshalColumn(raw []byte) (*decode.Column, error) {
	c := &decode.Column{}
	var data []byte
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return nil, fmt.Errorf("%w: column tag: %v", ErrCorrupt, protowire.ParseError(n))
		}
		raw = raw[n:]
		switch {
		case typ == protowire.VarintType && num >= fieldColumnName && num <= fieldColumnComponents:
			v, m := protowire.ConsumeVarint(raw)
			if m < 0 {
				return nil, fmt.Errorf("%w: column field %d: %v", ErrCorrupt, num, protowire.ParseError(m))
			}
			switch num {
			case fieldColumnName:
				c.Name = schema.AttributeName(v)
			case fieldColumnType:
				c.Type = schema.AttributeType(v)
			default:
				c.Components = int(v)
			}
			n = m
		case num == fieldColumnData && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(raw)
			if m < 0 {
				return nil, fmt.Errorf("%w: column data: %v", ErrCorrupt, protowire.ParseError(m))
			}
			data, n = v, m
		default:
			n = protowire.ConsumeFieldValue(num, typ, raw)
			if n < 0 {
				return nil, fmt.Errorf("%w: column field %d: %v", ErrCorrupt, num, protowire.ParseError(n))
			}
		}
		raw = raw[n:]
	}

	if !c.Name.Valid() {
		return nil, fmt.Errorf("%w: column name %d", ErrCorrupt, uint8(c.Name))
	}
	if c.Components <= 0 {
		return nil, fmt.Errorf("%w: column %v has %d components", ErrCorrupt, c.Name, c.Components)
	}
	switch c.Type {
	case schema.TypeFloat:
		if len(data)%4 != 0 {
			return nil, fmt.Errorf("%w: float column %v has %d bytes", ErrCorrupt, c.Name, len(data))
		}
		c.Float32 = make([]float32, len(data)/4)
		for i := range c.Float32 {
			c.Float32[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
		}
	case schema.TypeUint32:
		if len(data)%4 != 0 {
			return nil, fmt.Errorf("%w: uint32 column %v has %d bytes", ErrCorrupt, c.Name, len(data))
		}
		c.Uint32 = make([]uint32, len(data)/4)
		for i := range c.Uint32 {
			c.Uint32[i] = binary.LittleEndian.Uint32(data[4*i:])
		}
	case schema.TypeUint8:
		c.Uint8 = append([]uint8(nil), data...)
	default:
		return nil, fmt.Errorf("%w: column %v has unsupported type %v", ErrCorrupt, c.Name, c.Type)
	}
	return c, nil
}
