package colormap

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = RGBA{A: 255}
	red   = RGBA{R: 255, A: 255}
	green = RGBA{G: 255, A: 255}
	blue  = RGBA{B: 255, A: 255}
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want Palette
	}{
		{name: "null", spec: "null", want: Palette{Transparent}},
		{name: "decimal", spec: "16711680 65280 255", want: Palette{red, green, blue}},
		{name: "hex", spec: "0xff0000 #00FF00 0x0000ff", want: Palette{red, green, blue}},
		{name: "bracket-marked", spec: "[16711680 255", want: Palette{red, blue}},
		{name: "bracketed repeat", spec: "255 [3]", want: Palette{blue, blue, blue}},
		{name: "bare repeat", spec: "null 65280 3]", want: Palette{Transparent, green, green, green}},
		{name: "wrapped", spec: "[0 [2]]", want: Palette{black, black}},
		{name: "wrapped with inner brackets", spec: "[[0 2] 255]", want: Palette{black, black, blue}},
		{name: "extra spaces", spec: "  0   255 ", want: Palette{black, blue}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{name: "empty", spec: ""},
		{name: "blank", spec: "   "},
		{name: "repeat first", spec: "[256]"},
		{name: "repeat of one", spec: "0 [1]"},
		{name: "repeat too large", spec: "0 257]"},
		{name: "negative repeat", spec: "0 [-3]"},
		{name: "not a colour", spec: "0 red"},
		{name: "empty hex", spec: "0x"},
		{name: "too wide", spec: "99999999999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.spec)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, tt.spec, parseErr.Spec)
		})
	}
}

func TestParse(t *testing.T) {
	lut, err := Parse("0 [256]")
	require.NoError(t, err)
	for i, c := range lut {
		assert.Equal(t, black, c, "entry %d", i)
	}

	lut, err = Parse("null")
	require.NoError(t, err)
	for i, c := range lut {
		assert.Equal(t, Transparent, c, "entry %d", i)
	}

	lut, err = Parse("0xff0000 0x0000ff")
	require.NoError(t, err)
	assert.Equal(t, red, lut[0])
	assert.Equal(t, red, lut[127])
	assert.Equal(t, blue, lut[128])
	assert.Equal(t, blue, lut[255])

	// three entries: floor(i*3/256)
	lut, err = Parse("0xff0000 0x00ff00 0x0000ff")
	require.NoError(t, err)
	assert.Equal(t, red, lut[85])
	assert.Equal(t, green, lut[86])
	assert.Equal(t, green, lut[170])
	assert.Equal(t, blue, lut[171])
}

func TestParseDeterministic(t *testing.T) {
	spec := "[0x000000 [0xff0000 63] 0x00ff00 [0x0000ff 128] null]"
	a, err := Parse(spec)
	require.NoError(t, err)
	b, err := Parse(spec)
	require.NoError(t, err)
	assert.Equal(t, *a, *b)
	assert.NotSame(t, a, b)
}

func TestApply(t *testing.T) {
	specs := []string{"0 [256]", "0xff0000 0x00ff00 0x0000ff", "null 255 [40] 65280 [200]", "#123456 null #abcdef"}
	scales := [][2]float64{{0, 1}, {-10, 10}, {0.001, 0.002}, {-1e6, 5e6}}
	for _, spec := range specs {
		lut, err := Parse(spec)
		require.NoError(t, err)
		for _, scale := range scales {
			lo, hi := scale[0], scale[1]
			assert.Equal(t, lut[0], lut.Apply(lo, lo, hi), "%q min", spec)
			assert.Equal(t, lut[255], lut.Apply(hi, lo, hi), "%q max", spec)
			assert.Equal(t, Transparent, lut.Apply(math.NaN(), lo, hi), "%q NaN", spec)
			assert.Equal(t, lut[0], lut.Apply(lo-1, lo, hi), "%q below", spec)
			assert.Equal(t, lut[255], lut.Apply(hi+1, lo, hi), "%q above", spec)
		}
	}
}

func TestIndex(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
		want      int
		ok        bool
	}{
		{v: 10, lo: 0, hi: 20, want: 128, ok: true},
		{v: 0, lo: 0, hi: 20, want: 0, ok: true},
		{v: 20, lo: 0, hi: 20, want: 255, ok: true},
		{v: 1, lo: 0, hi: 255, want: 1, ok: true},
		{v: math.Inf(1), lo: 0, hi: 1, want: 255, ok: true},
		{v: math.Inf(-1), lo: 0, hi: 1, want: 0, ok: true},
		{v: math.NaN(), lo: 0, hi: 1, want: 0, ok: false},
		{v: 5, lo: 5, hi: 5, want: 0, ok: true},
	}
	for _, tt := range tests {
		got, ok := Index(tt.v, tt.lo, tt.hi)
		assert.Equal(t, tt.ok, ok, "Index(%v, %v, %v)", tt.v, tt.lo, tt.hi)
		assert.Equal(t, tt.want, got, "Index(%v, %v, %v)", tt.v, tt.lo, tt.hi)
	}
}

func TestWithAlpha(t *testing.T) {
	lut, err := Parse("null 255")
	require.NoError(t, err)
	faded := lut.WithAlpha(128)
	assert.Equal(t, Transparent, faded[0])
	assert.Equal(t, RGBA{B: 255, A: 128}, faded[255])
	assert.Equal(t, blue, lut[255], "receiver must not change")
}

func TestColorscale(t *testing.T) {
	lut, err := Parse("0xff0000 0x0000ff")
	require.NoError(t, err)
	assert.Equal(t, []Stop{
		{Fraction: 0, Color: "rgb(255,0,0)"},
		{Fraction: 127.0 / 255, Color: "rgb(255,0,0)"},
		{Fraction: 128.0 / 255, Color: "rgb(0,0,255)"},
		{Fraction: 1, Color: "rgb(0,0,255)"},
	}, lut.Colorscale())

	lut, err = Parse("null")
	require.NoError(t, err)
	assert.Equal(t, []Stop{{Fraction: 0, Color: "rgba(0,0,0,0)"}, {Fraction: 1, Color: "rgba(0,0,0,0)"}}, lut.Colorscale())
}

func TestCache(t *testing.T) {
	var lookups []bool
	cache, err := NewCache(WithCacheSize(4), WithLookupObserver(func(hit bool) {
		lookups = append(lookups, hit)
	}))
	require.NoError(t, err)

	ctx := context.Background()
	first, err := cache.Get(ctx, "0 [256]")
	require.NoError(t, err)
	second, err := cache.Get(ctx, "0 [256]")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, []bool{false, true}, lookups)

	_, err = cache.Get(ctx, "[256]")
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}
