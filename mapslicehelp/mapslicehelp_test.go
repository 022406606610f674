package mapslicehelp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestOrderedMapKeys(t *testing.T) {
	m := orderedmap.New[string, int]()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("c", 3)
	assert.Equal(t, []string{"b", "a", "c"}, OrderedMapKeys(m))
	assert.Equal(t, []string{}, OrderedMapKeys(orderedmap.New[string, int]()))
}

func TestReverseClone(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{name: "nil", in: nil, want: nil},
		{name: "empty", in: []float64{}, want: []float64{}},
		{name: "one", in: []float64{1}, want: []float64{1}},
		{name: "many", in: []float64{1, 2, 3}, want: []float64{3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReverseClone(tt.in)
			assert.Equal(t, tt.want, got)
			if len(tt.in) > 1 {
				assert.NotEqual(t, tt.in, got, "input must not be reversed in place")
			}
		})
	}
}
