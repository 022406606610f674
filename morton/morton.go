// Package morton interleaves tile columns and rows into Z-order codes.
package morton

import (
	"fmt"
	"iter"
	"math"
)

// Z is a Morton code: the bits of x on even positions, the bits of y on odd ones.
type Z = uint

var (
	masks = [...]uint{
		0b0101010101010101010101010101010101010101010101010101010101010101,
		0b0011001100110011001100110011001100110011001100110011001100110011,
		0b0000111100001111000011110000111100001111000011110000111100001111,
		0b0000000011111111000000001111111100000000111111110000000011111111,
		0b0000000000000000111111111111111100000000000000001111111111111111,
		0b0000000000000000000000000000000011111111111111111111111111111111,
	}
	powersOfTwo = [...]uint{0, 1, 2, 4, 8, 16}
)

// ToZ interleaves x and y. ok is false when either does not fit in 32 bits.
func ToZ(x, y uint) (z Z, ok bool) {
	ok = x <= math.MaxUint32 && y <= math.MaxUint32
	for i := 4; i >= 0; i-- {
		x = (x | (x << powersOfTwo[i+1])) & masks[i]
		y = (y | (y << powersOfTwo[i+1])) & masks[i]
	}
	return x | (y << 1), ok
}

func MustToZ(x, y uint) Z {
	z, ok := ToZ(x, y)
	if !ok {
		panic(fmt.Errorf(`cannot make Z out of %v and %v`, x, y))
	}
	return z
}

func FromZ(z Z) (x, y uint) {
	x = z
	y = z >> 1
	for i := 0; i <= 5; i++ {
		x = (x | (x >> powersOfTwo[i])) & masks[i]
		y = (y | (y >> powersOfTwo[i])) & masks[i]
	}
	return x, y
}

// Range yields the columns and rows of the rectangle [minX, maxX] x [minY, maxY]
// (inclusive) in Z-order.
func Range(minX, minY, maxX, maxY uint) iter.Seq2[uint, uint] {
	return func(yield func(uint, uint) bool) {
		if minX > maxX || minY > maxY {
			return
		}
		first, last := MustToZ(minX, minY), MustToZ(maxX, maxY)
		for code := first; code <= last; code++ {
			x, y := FromZ(code)
			if x < minX || x > maxX || y < minY || y > maxY {
				continue
			}
			if !yield(x, y) {
				return
			}
			if code == last {
				return
			}
		}
	}
}
