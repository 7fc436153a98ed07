package layout

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/decode"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
	"github.com/banshee-data/pointcloud-decoder/internal/testutil"
)

func TestBuild_PositionAndColor(t *testing.T) {
	l := Build(schema.MustNewSchema("POSITION_CARTESIAN", "RGBA_PACKED"))

	want := &Layout{
		Attributes: []Attribute{
			{Name: "position", Bytes: 12, Elements: 3, Type: Float32, Source: schema.PositionCartesian},
			{Name: "color", Bytes: 4, Elements: 4, Type: Uint8, Normalized: true, Source: schema.ColorPacked},
		},
		Stride: 16,
	}
	if diff := cmp.Diff(want, l); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_AllMappedFields(t *testing.T) {
	s := schema.MustNewSchema(
		"POSITION_CARTESIAN", "FILLER_1B", "RGB_PACKED", "INTENSITY", "CLASSIFICATION",
		"RETURN_NUMBER", "NUMBER_OF_RETURNS", "SOURCE_ID", "NORMAL_OCT16", "SPACING", "INDICES",
	)
	l := Build(s)

	var names []string
	for _, a := range l.Attributes {
		names = append(names, a.Name)
	}
	wantNames := []string{
		"position", "color", "intensity", "classification",
		"returnNumber", "numberOfReturns", "pointSourceID", "normal",
	}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("attribute names mismatch (-want +got):\n%s", diff)
	}
	if l.Stride != 12+4+4*5+12 {
		t.Errorf("Stride = %d, want %d", l.Stride, 12+4+4*5+12)
	}

	off, ok := l.OffsetOf("normal")
	if !ok || off != 36 {
		t.Errorf("OffsetOf(normal) = %d, %v; want 36, true", off, ok)
	}
	if _, ok := l.OffsetOf("spacing"); ok {
		t.Error("OffsetOf(spacing) should report not found")
	}
}

func TestNewLayout_StrideRounding(t *testing.T) {
	tests := []struct {
		name  string
		bytes []int
		want  int
	}{
		{"empty", nil, 0},
		{"aligned", []int{12, 4}, 16},
		{"raw 15 rounds to 16", []int{12, 3}, 16},
		{"raw 13 rounds to 16", []int{12, 1}, 16},
		{"raw 17 rounds to 20", []int{12, 4, 1}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attrs []Attribute
			for i, b := range tt.bytes {
				attrs = append(attrs, Attribute{Name: string(rune('a' + i)), Bytes: b, Elements: 1, Type: Uint8})
			}
			if got := NewLayout(attrs...).Stride; got != tt.want {
				t.Errorf("Stride = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOffsetOf_FirstMatchWins(t *testing.T) {
	l := NewLayout(
		Attribute{Name: "position", Bytes: 12},
		Attribute{Name: "dup", Bytes: 4},
		Attribute{Name: "dup", Bytes: 4},
	)
	off, ok := l.OffsetOf("dup")
	if !ok || off != 12 {
		t.Errorf("OffsetOf(dup) = %d, %v; want 12, true", off, ok)
	}
	off, ok = l.OffsetOf("position")
	if !ok || off != 0 {
		t.Errorf("OffsetOf(position) = %d, %v; want 0, true", off, ok)
	}
}

func TestPack(t *testing.T) {
	s := schema.MustNewSchema("POSITION_CARTESIAN", "RGBA_PACKED", "CLASSIFICATION", "RETURN_NUMBER", "NORMAL_SPHEREMAPPED")
	buf := testutil.NewRecordBuilder().
		Float32(1, 2, 3).Uint8(10, 20, 30, 99).Uint8(5).Uint8(2).Uint8(128, 128).
		Float32(4, 5, 6).Uint8(40, 50, 60, 99).Uint8(6).Uint8(1).Uint8(255, 255).
		Bytes()
	b, err := decode.Decode(decode.Request{Buffer: buf, Schema: s, Version: schema.MustParseVersion("1.0")})
	testutil.AssertNoError(t, err)

	l := Build(s)
	out, err := Pack(b, l)
	testutil.AssertNoError(t, err)

	if l.Stride != 12+4+4+4+12 {
		t.Fatalf("Stride = %d", l.Stride)
	}
	if len(out) != 2*l.Stride {
		t.Fatalf("len(out) = %d, want %d", len(out), 2*l.Stride)
	}

	f32 := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(out[off:])) }

	second := l.Stride
	if got := f32(second + 8); got != 6 {
		t.Errorf("point 1 z = %v, want 6", got)
	}
	colorOff, _ := l.OffsetOf("color")
	if got := out[second+colorOff : second+colorOff+4]; !cmp.Equal(got, []byte{40, 50, 60, 0}) {
		t.Errorf("point 1 color = %v, want [40 50 60 0]", got)
	}
	classOff, _ := l.OffsetOf("classification")
	if got := f32(classOff); got != 5 {
		t.Errorf("point 0 classification = %v, want 5", got)
	}
	retOff, _ := l.OffsetOf("returnNumber")
	if got := f32(second + retOff); got != 0 {
		t.Errorf("returnNumber has no decoded column and should be zero, got %v", got)
	}
	normalOff, _ := l.OffsetOf("normal")
	if got := f32(second + normalOff + 8); got != -1 {
		t.Errorf("point 1 normal z = %v, want -1", got)
	}
}

func TestPack_Errors(t *testing.T) {
	b := &decode.Bundle{
		NumPoints: 2,
		Columns: map[schema.AttributeName]*decode.Column{
			schema.ColorPacked: {Name: schema.ColorPacked, Type: schema.TypeFloat, Components: 1, Float32: []float32{1, 2}},
			schema.Intensity:   {Name: schema.Intensity, Type: schema.TypeFloat, Components: 1, Float32: []float32{1}},
		},
	}

	_, err := Pack(b, NewLayout(Attribute{Name: "color", Bytes: 4, Elements: 4, Type: Uint8, Source: schema.ColorPacked}))
	testutil.AssertError(t, err)

	_, err = Pack(b, NewLayout(Attribute{Name: "intensity", Bytes: 4, Elements: 1, Type: Float32, Source: schema.Intensity}))
	testutil.AssertError(t, err)

	_, err = Pack(b, NewLayout(Attribute{Name: "wide", Bytes: 4, Elements: 3, Type: Float32}))
	testutil.AssertError(t, err)
}
