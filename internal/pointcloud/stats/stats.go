// Package stats summarises decoded columns per component.
package stats

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/decode"
	"github.com/banshee-data/pointcloud-decoder/internal/pointcloud/schema"
)

// ErrEmptyColumn is returned when a column has no points to summarise.
var ErrEmptyColumn = errors.New("empty column")

// Summary describes one component of a column.
type Summary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Summarize returns one Summary per component of col.
func Summarize(col *decode.Column) ([]Summary, error) {
	n := col.Len()
	if n == 0 {
		return nil, fmt.Errorf("%v: %w", col.Name, ErrEmptyColumn)
	}

	out := make([]Summary, col.Components)
	values := make([]float64, n)
	for c := 0; c < col.Components; c++ {
		for i := 0; i < n; i++ {
			values[i] = col.Float64At(i*col.Components + c)
		}
		mean, std := stat.MeanStdDev(values, nil)
		if n == 1 {
			std = 0
		}
		out[c] = Summary{
			Min:    floats.Min(values),
			Max:    floats.Max(values),
			Mean:   mean,
			StdDev: std,
		}
	}
	return out, nil
}

// SummarizeBundle summarises every column in b, keyed by attribute name.
// The synthetic index column is skipped. An empty bundle yields an empty map.
func SummarizeBundle(b *decode.Bundle) (map[string][]Summary, error) {
	out := make(map[string][]Summary, len(b.Columns))
	if b.NumPoints == 0 {
		return out, nil
	}
	for name, col := range b.Columns {
		if name == schema.Indices {
			continue
		}
		s, err := Summarize(col)
		if err != nil {
			return nil, err
		}
		out[name.String()] = s
	}
	return out, nil
}
