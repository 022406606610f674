package zonal

import (
	"strconv"
	"strings"

	"github.com/iridl/pingrid/grid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Statistic is one zonal mean. NoData is set when nothing with weight was covered.
type Statistic struct {
	Value  float64 `yaml:"value" json:"value"`
	NoData bool    `yaml:"no_data,omitempty" json:"no_data,omitempty"`
}

func NewStatistic(v float64) Statistic {
	if grid.IsNoData(v) {
		return Statistic{Value: v, NoData: true}
	}
	return Statistic{Value: v}
}

// Series maps slice labels to their statistic, in the order of the result values.
type Series = orderedmap.OrderedMap[string, Statistic]

// ToSeries labels every value of a zonal result with the coordinates of its slice, e.g.
// "T=3,M=1". A result without dimensions is labelled with its name.
func ToSeries(result *grid.Field) *Series {
	series := orderedmap.New[string, Statistic]()
	if len(result.Dims) == 0 {
		for _, v := range result.Values {
			series.Set(result.Name, NewStatistic(v))
		}
		return series
	}
	shape := result.Shape()
	index := make([]int, len(shape))
	for _, v := range result.Values {
		series.Set(label(result.Dims, index), NewStatistic(v))
		// row-major increment
		for d := len(index) - 1; d >= 0; d-- {
			index[d]++
			if index[d] < shape[d] {
				break
			}
			index[d] = 0
		}
	}
	return series
}

func label(dims []grid.Dim, index []int) string {
	parts := make([]string, len(dims))
	for d, dim := range dims {
		parts[d] = dim.Name + "=" + strconv.FormatFloat(dim.Coords[index[d]], 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
