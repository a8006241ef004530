// Package noise implements a seeded value-noise lattice in one to four
// dimensions plus the six-octave fractal sum used by procedural materials.
//
// Lattice values come from chained lookups into small tables of
// pseudo-random numbers, so a Field is cheap to build and fully
// deterministic for a given seed.
package noise

import (
	"math/rand"

	"github.com/chazu/csgray/pkg/vecmath"
)

const (
	// Tables is the number of independent hash tables.
	Tables = 5
	// TableSize is the number of entries in each table.
	TableSize = 1024
	tableMask = TableSize - 1

	// DefaultSeed matches an unseeded C library rand().
	DefaultSeed = 1

	// Octaves, Lacunarity and Gain parameterise Fractal.
	Octaves    = 6
	Lacunarity = 2.0
	Gain       = 0.5
)

// Lattice offsets keep sample coordinates positive so integer truncation
// behaves like floor for all reasonable scene coordinates.
const (
	offset1D = 2e5

	offset2DA, offset2DB = 3e5, 7e5

	offset3DA, offset3DB, offset3DC = 1e5, 2e5, 3e5

	offset4DD = 8e4
)

// Field is an immutable noise lattice. It is safe for concurrent use.
type Field struct {
	data [Tables][TableSize]int
}

// New fills the lookup tables from a deterministic generator seeded with seed.
func New(seed int64) *Field {
	f := &Field{}
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < Tables; i++ {
		for j := 0; j < TableSize; j++ {
			f.data[i][j] = (int(r.Int31()) << 1) & 0xffff
		}
	}
	return f
}

// semiRand hashes the first n lattice coordinates through the chained tables
// and maps the result to [-1, 1).
func (f *Field) semiRand(c [4]int, n int) float64 {
	h := f.data[0][c[0]&tableMask]
	for i := 1; i < n; i++ {
		h = f.data[i][(h+c[i])&tableMask]
	}
	return float64(h)/32768.0 - 1.0
}

func smoothstep(t float64) float64 {
	return 3*t*t - 2*t*t*t
}

// lattice interpolates the n-dimensional lattice around p. Dimension 0 is
// blended innermost.
func (f *Field) lattice(p [4]float64, n int) float64 {
	var base [4]int
	var frac [4]float64
	for i := 0; i < n; i++ {
		base[i] = int(p[i])
		frac[i] = smoothstep(p[i] - float64(base[i]))
	}
	return f.blend(base, frac, n, n-1)
}

func (f *Field) blend(c [4]int, frac [4]float64, n, d int) float64 {
	if d < 0 {
		return f.semiRand(c, n)
	}
	lo := f.blend(c, frac, n, d-1)
	c[d]++
	hi := f.blend(c, frac, n, d-1)
	return lo*(1-frac[d]) + hi*frac[d]
}

// Noise1 samples one-dimensional noise.
func (f *Field) Noise1(a float64) float64 {
	return f.lattice([4]float64{a + offset1D}, 1)
}

// Noise2 samples two-dimensional noise.
func (f *Field) Noise2(a, b float64) float64 {
	return f.lattice([4]float64{a + offset2DA, b + offset2DB}, 2)
}

// Noise3 samples three-dimensional noise.
func (f *Field) Noise3(a, b, c float64) float64 {
	return f.lattice([4]float64{a + offset3DA, b + offset3DB, c + offset3DC}, 3)
}

// Noise4 samples four-dimensional noise.
func (f *Field) Noise4(a, b, c, d float64) float64 {
	return f.lattice([4]float64{a + offset3DA, b + offset3DB, c + offset3DC, d + offset4DD}, 4)
}

// Fractal sums Octaves octaves of Noise3 at p, doubling frequency and halving
// amplitude each octave. The result is not clamped.
func (f *Field) Fractal(p vecmath.Vec3) float64 {
	scale, amplitude := 1.0, 1.0
	var v float64
	for i := 0; i < Octaves; i++ {
		v += amplitude * f.Noise3(p.X*scale, p.Y*scale, p.Z*scale)
		scale *= Lacunarity
		amplitude *= Gain
	}
	return v
}
