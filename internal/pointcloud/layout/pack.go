package layout

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/decode"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
)

func (t StorageType) size() int {
	if t == Uint8 {
		return 1
	}
	return 4
}

// Pack re-packs a decoded bundle into one interleaved buffer of
// NumPoints × Stride bytes. Attributes whose source field produced no column
// (return number and friends are skipped by the decode pass) are zero-filled.
func Pack(b *decode.Bundle, l *Layout) ([]byte, error) {
	cols := make([]*decode.Column, len(l.Attributes))
	offsets := make([]int, len(l.Attributes))
	offset := 0
	for i, a := range l.Attributes {
		if a.Elements*a.Type.size() > a.Bytes {
			return nil, fmt.Errorf("attribute %q: %d×%v does not fit in %d bytes", a.Name, a.Elements, a.Type, a.Bytes)
		}
		offsets[i] = offset
		offset += a.Bytes

		c, ok := b.Columns[a.Source]
		if !ok && a.Name == "normal" {
			c, ok = b.Normals()
		}
		if !ok {
			continue
		}
		if c.Len() != b.NumPoints {
			return nil, fmt.Errorf("column %v has %d points, bundle has %d", c.Name, c.Len(), b.NumPoints)
		}
		if a.Type == Uint8 && c.Type != schema.TypeUint8 {
			return nil, fmt.Errorf("attribute %q wants uint8 data, column %v is %v", a.Name, c.Name, c.Type)
		}
		cols[i] = c
	}

	out := make([]byte, b.NumPoints*l.Stride)
	for p := 0; p < b.NumPoints; p++ {
		base := p * l.Stride
		for i, a := range l.Attributes {
			c := cols[i]
			if c == nil {
				continue
			}
			dst := out[base+offsets[i]:]
			n := min(a.Elements, c.Components)
			switch a.Type {
			case Uint8:
				copy(dst[:n], c.Uint8[p*c.Components:p*c.Components+n])
			case Float32:
				for e := 0; e < n; e++ {
					v := float32(c.Float64At(p*c.Components + e))
					binary.LittleEndian.PutUint32(dst[4*e:], math.Float32bits(v))
				}
			}
		}
	}
	return out, nil
}
