package tensor

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// NewSource returns a seeded random source for the fill functions.
func NewSource(seed uint64) rand.Source {
	return rand.NewSource(seed)
}

// RandNormal returns an array drawn from N(mean, std²).
func RandNormal(src rand.Source, mean, std float64, shape ...int) *Array {
	a := Zeros(shape...)
	dist := distuv.Normal{Mu: mean, Sigma: std, Src: src}
	for i := range a.data {
		a.data[i] = dist.Rand()
	}
	return a
}

// RandUniform returns an array drawn from U(lo, hi).
func RandUniform(src rand.Source, lo, hi float64, shape ...int) *Array {
	a := Zeros(shape...)
	dist := distuv.Uniform{Min: lo, Max: hi, Src: src}
	for i := range a.data {
		a.data[i] = dist.Rand()
	}
	return a
}

// Bernoulli returns a 0/1 mask where each element is 1 with probability keep.
func Bernoulli(src rand.Source, keep float64, shape ...int) *Array {
	a := Zeros(shape...)
	r := rand.New(src)
	for i := range a.data {
		if r.Float64() < keep {
			a.data[i] = 1
		}
	}
	return a
}

// Permutation returns a random permutation of [0, n).
func Permutation(src rand.Source, n int) []int {
	return rand.New(src).Perm(n)
}
