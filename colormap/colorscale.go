package colormap

import "fmt"

// Stop is one point of a web colorscale: the colour at a fraction of the scale.
type Stop struct {
	Fraction float64 `yaml:"fraction" json:"fraction"`
	Color    string  `yaml:"color" json:"color"`
}

// Colorscale turns the LUT into the stops a web colorbar understands. Runs of equal
// entries become two stops, at the start and at the end of the run, so the bar keeps
// its hard edges.
func (l *LUT) Colorscale() []Stop {
	var stops []Stop
	start := 0
	for i := 1; i <= Size; i++ {
		if i < Size && l[i] == l[start] {
			continue
		}
		stops = append(stops, Stop{Fraction: float64(start) / (Size - 1), Color: l[start].CSS()})
		if end := i - 1; end != start {
			stops = append(stops, Stop{Fraction: float64(end) / (Size - 1), Color: l[start].CSS()})
		}
		start = i
	}
	return stops
}

// CSS formats c as rgb() for opaque colours and rgba() otherwise.
func (c RGBA) CSS() string {
	if c.A == 255 {
		return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", c.R, c.G, c.B, float64(c.A)/255)
}
