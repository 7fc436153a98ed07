package decode

import (
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/cursor"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
)

// Raw bytes each algorithm reads from its field. A descriptor narrower than
// this would read into the next field or past the record, so Decode rejects it.
const (
	positionFieldBytes     = 12 // 3 × float32 or 3 × uint32
	colorFieldBytes        = 3  // R, G, B
	intensityFieldBytes    = 2  // uint16
	classificationBytes    = 1  // uint8
	compressedNormalBytes  = 2  // two code bytes
	plainNormalFieldBytes  = 12 // 3 × float32
	colorOutputComponents  = 4  // RGBA slot per point
	vectorOutputComponents = 3
)

// pass carries the state shared by every attribute decoder during one Decode.
type pass struct {
	cur       cursor.Cursor
	numPoints int
	stride    int

	version    schema.Version
	nodeOffset [3]float64
	scale      float64

	mean [3]float64
	box  Box
}

// recordOffset returns the byte offset of field fieldOffset in record i.
func (p *pass) recordOffset(i, fieldOffset int) int {
	return i*p.stride + fieldOffset
}

// attributeDecoder fills one output column for every point.
type attributeDecoder struct {
	fieldBytes int
	run        func(p *pass, name schema.AttributeName, fieldOffset int) *Column
}

// decoderFor returns the algorithm registered for name. The second result is
// false for names the decode pass skips: their bytes still count towards the
// record offset, but no column is produced.
func decoderFor(name schema.AttributeName) (attributeDecoder, bool) {
	switch name {
	case schema.PositionCartesian:
		return attributeDecoder{positionFieldBytes, decodePosition}, true
	case schema.ColorPacked:
		return attributeDecoder{colorFieldBytes, decodeColor}, true
	case schema.Intensity:
		return attributeDecoder{intensityFieldBytes, decodeIntensity}, true
	case schema.Classification:
		return attributeDecoder{classificationBytes, decodeClassification}, true
	case schema.NormalSphereMapped:
		return attributeDecoder{compressedNormalBytes, decodeSphereMappedNormal}, true
	case schema.NormalOct16:
		return attributeDecoder{compressedNormalBytes, decodeOct16Normal}, true
	case schema.Normal:
		return attributeDecoder{plainNormalFieldBytes, decodePlainNormal}, true
	default:
		// FILLER, COLOR_FLOATS_*, NORMAL_FLOATS, RETURN_NUMBER,
		// NUMBER_OF_RETURNS, SOURCE_ID, INDICES, SPACING.
		return attributeDecoder{}, false
	}
}

// HasDecoder reports whether Decode produces a column for name.
func HasDecoder(name schema.AttributeName) bool {
	_, ok := decoderFor(name)
	return ok
}

// decodePosition reads xyz and accumulates the running mean and tight box.
// Records newer than 1.3 store scaled uint32 values; older ones store float32
// values relative to the node offset.
func decodePosition(p *pass, name schema.AttributeName, fieldOffset int) *Column {
	col := newFloat32Column(name, vectorOutputComponents, p.numPoints)
	quantized := p.version.QuantizedPositions()
	n := float64(p.numPoints)

	// A repeated position field replaces the earlier column, so its
	// statistics start over too.
	p.mean = [3]float64{}
	p.box = EmptyBox()

	for i := 0; i < p.numPoints; i++ {
		off := p.recordOffset(i, fieldOffset)

		var v [3]float64
		for k := 0; k < 3; k++ {
			if quantized {
				v[k] = float64(p.cur.Uint32(off+4*k)) * p.scale
			} else {
				v[k] = float64(p.cur.Float32(off+4*k)) + p.nodeOffset[k]
			}
		}

		// Statistics use the stored float32 values so the box always
		// contains every output position exactly.
		for k := 0; k < 3; k++ {
			f := float32(v[k])
			col.Float32[3*i+k] = f
			v[k] = float64(f)
			p.mean[k] += v[k] / n
		}
		p.box.Extend(v)
	}
	return col
}

// decodeColor copies R, G, B into a 4-byte slot. Alpha is left at zero.
func decodeColor(p *pass, name schema.AttributeName, fieldOffset int) *Column {
	col := newUint8Column(name, colorOutputComponents, p.numPoints)
	for i := 0; i < p.numPoints; i++ {
		off := p.recordOffset(i, fieldOffset)
		col.Uint8[4*i+0] = p.cur.Uint8(off + 0)
		col.Uint8[4*i+1] = p.cur.Uint8(off + 1)
		col.Uint8[4*i+2] = p.cur.Uint8(off + 2)
	}
	return col
}

// decodeIntensity widens the raw uint16 to float32 without normalising.
func decodeIntensity(p *pass, name schema.AttributeName, fieldOffset int) *Column {
	col := newFloat32Column(name, 1, p.numPoints)
	for i := 0; i < p.numPoints; i++ {
		col.Float32[i] = float32(p.cur.Uint16(p.recordOffset(i, fieldOffset)))
	}
	return col
}

func decodeClassification(p *pass, name schema.AttributeName, fieldOffset int) *Column {
	col := newUint8Column(name, 1, p.numPoints)
	for i := 0; i < p.numPoints; i++ {
		col.Uint8[i] = p.cur.Uint8(p.recordOffset(i, fieldOffset))
	}
	return col
}

func decodeSphereMappedNormal(p *pass, name schema.AttributeName, fieldOffset int) *Column {
	return decodeCompressedNormal(p, name, fieldOffset, SphereMappedNormal)
}

func decodeOct16Normal(p *pass, name schema.AttributeName, fieldOffset int) *Column {
	return decodeCompressedNormal(p, name, fieldOffset, Oct16Normal)
}

func decodeCompressedNormal(p *pass, name schema.AttributeName, fieldOffset int, codec func(bx, by byte) [3]float32) *Column {
	col := newFloat32Column(name, vectorOutputComponents, p.numPoints)
	for i := 0; i < p.numPoints; i++ {
		off := p.recordOffset(i, fieldOffset)
		n := codec(p.cur.Uint8(off), p.cur.Uint8(off+1))
		copy(col.Float32[3*i:3*i+3], n[:])
	}
	return col
}

func decodePlainNormal(p *pass, name schema.AttributeName, fieldOffset int) *Column {
	col := newFloat32Column(name, vectorOutputComponents, p.numPoints)
	for i := 0; i < p.numPoints; i++ {
		off := p.recordOffset(i, fieldOffset)
		col.Float32[3*i+0] = p.cur.Float32(off + 0)
		col.Float32[3*i+1] = p.cur.Float32(off + 4)
		col.Float32[3*i+2] = p.cur.Float32(off + 8)
	}
	return col
}

// indexColumn is appended to every bundle regardless of schema.
func indexColumn(numPoints int) *Column {
	col := newUint32Column(schema.Indices, 1, numPoints)
	for i := range col.Uint32 {
		col.Uint32[i] = uint32(i)
	}
	return col
}
