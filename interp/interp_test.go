package interp

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func TestAt(t *testing.T) {
	tests := []struct {
		name   string
		xs, ys []float64
		values []float64
		opts   []Option
		x, y   float64
		want   float64
	}{
		{name: "centre", xs: []float64{0, 1}, ys: []float64{0, 1}, values: []float64{0, 1, 2, 3}, x: 0.5, y: 0.5, want: 1.5},
		{name: "on row", xs: []float64{0, 1}, ys: []float64{0, 1}, values: []float64{0, 1, 2, 3}, x: 0.25, y: 0, want: 0.25},
		{name: "descending y", xs: []float64{0, 1}, ys: []float64{1, 0}, values: []float64{2, 3, 0, 1}, x: 0.25, y: 0.5, want: 1.25},
		{name: "descending x", xs: []float64{1, 0}, ys: []float64{0, 1}, values: []float64{1, 0, 3, 2}, x: 0.25, y: 0, want: 0.25},
		{name: "irregular", xs: []float64{0, 1, 3}, ys: []float64{0, 1}, values: []float64{0, 10, 30, 0, 10, 30}, x: 2, y: 0.5, want: 20},
		{name: "within half a cell", xs: []float64{0, 1}, ys: []float64{0, 1}, values: []float64{0, 1, 2, 3}, x: -0.4, y: 1.5, want: 2},
		{name: "beyond half a cell", xs: []float64{0, 1}, ys: []float64{0, 1}, values: []float64{0, 1, 2, 3}, x: -0.6, y: 0, want: nan},
		{name: "far outside", xs: []float64{0, 1}, ys: []float64{0, 1}, values: []float64{0, 1, 2, 3}, x: 0.5, y: 100, want: nan},
		{name: "nan corner", xs: []float64{0, 1}, ys: []float64{0, 1}, values: []float64{nan, 1, 2, 3}, x: 0.5, y: 0.5, want: nan},
		{name: "nan corner on edge", xs: []float64{0, 1}, ys: []float64{0, 1}, values: []float64{nan, 1, 2, 3}, x: 0, y: 0.5, want: nan},
		{name: "nan corner without weight", xs: []float64{0, 1}, ys: []float64{0, 1}, values: []float64{nan, 1, 2, 3}, x: 1, y: 1, want: 3},
		{name: "nan corner without weight on row", xs: []float64{0, 1}, ys: []float64{0, 1}, values: []float64{nan, 1, 2, 3}, x: 0.5, y: 1, want: 2.5},
		{name: "periodic seam", xs: []float64{0, 90, 180, 270}, ys: []float64{0, 1}, values: []float64{0, 1, 2, 3, 0, 1, 2, 3},
			opts: []Option{WithPeriodX(360)}, x: 315, y: 0, want: 1.5},
		{name: "periodic negative", xs: []float64{0, 90, 180, 270}, ys: []float64{0, 1}, values: []float64{0, 1, 2, 3, 0, 1, 2, 3},
			opts: []Option{WithPeriodX(360)}, x: -45, y: 0, want: 1.5},
		{name: "periodic shifted", xs: []float64{0, 90, 180, 270}, ys: []float64{0, 1}, values: []float64{0, 1, 2, 3, 0, 1, 2, 3},
			opts: []Option{WithPeriodX(360)}, x: 405, y: 0, want: 0.5},
		{name: "clamped y", xs: []float64{0, 1}, ys: []float64{-45, 90}, values: []float64{4, 4, 8, 8},
			opts: []Option{WithEdgeClampY()}, x: 0.5, y: -85, want: 4},
		{name: "unclamped y", xs: []float64{0, 1}, ys: []float64{-45, 90}, values: []float64{4, 4, 8, 8}, x: 0.5, y: -200, want: nan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip, err := New(tt.xs, tt.ys, tt.values, tt.opts...)
			require.NoError(t, err)
			got := ip.At(tt.x, tt.y)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got), "want NaN, got %v", got)
				return
			}
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestGrid(t *testing.T) {
	ip, err := New([]float64{0, 1}, []float64{0, 1}, []float64{0, 1, 2, 3})
	require.NoError(t, err)
	got := ip.Grid([]float64{0, 0.5, 1, 5}, []float64{1, 0.5})
	want := []float64{2, 2.5, 3, nan, 1, 1.5, 2, nan}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Grid() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewDoesNotModifyInput(t *testing.T) {
	xs := []float64{1, 0}
	ys := []float64{1, 0}
	values := []float64{3, 2, 1, 0}
	_, err := New(xs, ys, values)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, xs)
	assert.Equal(t, []float64{3, 2, 1, 0}, values)
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		xs, ys []float64
		values []float64
		opts   []Option
	}{
		{name: "empty", xs: nil, ys: []float64{0}, values: nil},
		{name: "shape", xs: []float64{0, 1}, ys: []float64{0}, values: []float64{1}},
		{name: "not monotonic", xs: []float64{0, 2, 1}, ys: []float64{0}, values: []float64{1, 2, 3}},
		{name: "wider than period", xs: []float64{0, 180, 360}, ys: []float64{0}, values: []float64{1, 2, 3}, opts: []Option{WithPeriodX(360)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.xs, tt.ys, tt.values, tt.opts...)
			assert.Error(t, err)
		})
	}
}
