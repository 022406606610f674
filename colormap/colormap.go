// Package colormap decodes compact palette specs into 256-entry lookup tables and maps
// scalar values to colours with them.
//
// A spec is a space separated list of tokens:
//
//	null      transparent
//	16711680  opaque colour, packed as 0xRRGGBB (decimal, 0x or # hex)
//	[255      the same, bracket-marked
//	[4] or 4] append 3 more copies of the previous entry
//
// A spec wrapped as a whole in brackets, "[0 255 [256]]", is unwrapped first.
package colormap

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iridl/pingrid/mathhelp"
)

// Size is the number of entries in a LUT.
const Size = 256

type RGBA struct {
	R, G, B, A uint8
}

var Transparent = RGBA{}

// WithAlpha returns c with its alpha replaced.
func (c RGBA) WithAlpha(alpha uint8) RGBA {
	c.A = alpha
	return c
}

// ParseError reports a malformed palette spec.
type ParseError struct {
	Spec   string
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid colormap %q: %s", e.Spec, e.Reason)
	}
	return fmt.Sprintf("invalid colormap %q: token %q: %s", e.Spec, e.Token, e.Reason)
}

type tokenKind int

const (
	tokenNull tokenKind = iota
	tokenColor
	tokenRepeat
)

type token struct {
	kind  tokenKind
	text  string
	color RGBA
	count int
}

// Palette is the decoded list of entries, before resampling to Size entries.
type Palette []RGBA

// LUT is a palette resampled to exactly Size entries.
type LUT [Size]RGBA

// Parse decodes spec and resamples it into a LUT.
func Parse(spec string) (*LUT, error) {
	palette, err := Decode(spec)
	if err != nil {
		return nil, err
	}
	return palette.Resample(), nil
}

// Decode turns spec into its palette list.
func Decode(spec string) (Palette, error) {
	tokens, err := tokenize(spec)
	if err != nil {
		return nil, err
	}
	var palette Palette
	for _, t := range tokens {
		switch t.kind {
		case tokenNull:
			palette = append(palette, Transparent)
		case tokenColor:
			palette = append(palette, t.color)
		case tokenRepeat:
			if len(palette) == 0 {
				return nil, &ParseError{Spec: spec, Token: t.text, Reason: "repeat without a preceding colour"}
			}
			last := palette[len(palette)-1]
			for i := 1; i < t.count; i++ {
				palette = append(palette, last)
			}
		}
	}
	return palette, nil
}

// unwrap strips brackets enclosing a multi-token spec as a whole.
func unwrap(spec string) string {
	if len(spec) < 2 || spec[0] != '[' || spec[len(spec)-1] != ']' {
		return spec
	}
	inner := spec[1 : len(spec)-1]
	if !strings.Contains(inner, " ") {
		return spec
	}
	depth := 0
	for i, r := range spec {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth == 0 && i < len(spec)-1 {
			// the opening bracket closes early
			return spec
		}
	}
	if depth != 0 {
		return spec
	}
	return inner
}

func tokenize(spec string) ([]token, error) {
	fields := strings.Fields(unwrap(strings.TrimSpace(spec)))
	if len(fields) == 0 {
		return nil, &ParseError{Spec: spec, Reason: "empty"}
	}
	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		t, err := parseToken(f)
		if err != nil {
			return nil, &ParseError{Spec: spec, Token: f, Reason: err.Error()}
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func parseToken(s string) (token, error) {
	switch {
	case s == "null":
		return token{kind: tokenNull, text: s}, nil
	case strings.HasSuffix(s, "]"):
		n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSuffix(s, "]"), "["))
		if err != nil {
			return token{}, fmt.Errorf("bad repeat count: %w", err)
		}
		if n <= 1 || n > Size {
			return token{}, fmt.Errorf("repeat count %d is not in (1, %d]", n, Size)
		}
		return token{kind: tokenRepeat, text: s, count: n}, nil
	case strings.HasPrefix(s, "["):
		c, err := parseColor(s[1:])
		return token{kind: tokenColor, text: s, color: c}, err
	default:
		c, err := parseColor(s)
		return token{kind: tokenColor, text: s, color: c}, err
	}
}

func parseColor(s string) (RGBA, error) {
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("bad colour: %w", err)
	}
	return RGBA{R: uint8(v >> 16 & 0xFF), G: uint8(v >> 8 & 0xFF), B: uint8(v & 0xFF), A: 255}, nil
}

// Resample picks entry i of the LUT from position floor(i*len(p)/Size) of the palette.
func (p Palette) Resample() *LUT {
	var lut LUT
	if len(p) == 0 {
		return &lut
	}
	for i := range lut {
		lut[i] = p[i*len(p)/Size]
	}
	return &lut
}

// WithAlpha returns a copy of the LUT in which every opaque entry has the given alpha.
// Transparent entries stay transparent.
func (l *LUT) WithAlpha(alpha uint8) *LUT {
	out := *l
	for i, c := range out {
		if c.A != 0 {
			out[i] = c.WithAlpha(alpha)
		}
	}
	return &out
}

// Index maps v into [0, Size) relative to the scale [lo, hi]. ok is false for NaN.
func Index(v, lo, hi float64) (idx int, ok bool) {
	if math.IsNaN(v) {
		return 0, false
	}
	if !(hi > lo) {
		if v <= lo {
			return 0, true
		}
		return Size - 1, true
	}
	f := math.Round((v - lo) * (Size - 1) / (hi - lo))
	return int(mathhelp.Clamp(f, 0, Size-1)), true
}

// Apply returns the colour of v for the scale [lo, hi]. NaN is transparent.
func (l *LUT) Apply(v, lo, hi float64) RGBA {
	idx, ok := Index(v, lo, hi)
	if !ok {
		return Transparent
	}
	return l[idx]
}
