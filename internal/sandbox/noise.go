package sandbox

import (
	"math"
	"math/rand"
)

const noiseTableSize = 256

// noiseField is a seeded 2D value-noise lattice with smoothstep
// interpolation, in [0, 1]. No library in the stack provides gradient
// noise, so this stays hand-rolled.
type noiseField struct {
	perm [noiseTableSize * 2]int
}

func newNoiseField(seed int64) *noiseField {
	n := &noiseField{}
	n.Reseed(seed)
	return n
}

// Reseed rebuilds the permutation table from the given seed.
func (n *noiseField) Reseed(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	var base [noiseTableSize]int
	for i := range base {
		base[i] = i
	}
	rng.Shuffle(noiseTableSize, func(i, j int) {
		base[i], base[j] = base[j], base[i]
	})
	for i := 0; i < noiseTableSize*2; i++ {
		n.perm[i] = base[i%noiseTableSize]
	}
}

// At samples the field at (x, y). For 1D use, pass y = 0.
func (n *noiseField) At(x, y float64) float64 {
	xi := int(math.Floor(x))
	yi := int(math.Floor(y))
	fx := x - math.Floor(x)
	fy := y - math.Floor(y)

	v00 := n.lattice(xi, yi)
	v10 := n.lattice(xi+1, yi)
	v01 := n.lattice(xi, yi+1)
	v11 := n.lattice(xi+1, yi+1)

	sx := smoothstep(fx)
	sy := smoothstep(fy)

	top := v00 + (v10-v00)*sx
	bottom := v01 + (v11-v01)*sx
	return top + (bottom-top)*sy
}

func (n *noiseField) lattice(x, y int) float64 {
	x &= noiseTableSize - 1
	y &= noiseTableSize - 1
	return float64(n.perm[n.perm[x]+y]) / float64(noiseTableSize-1)
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}
