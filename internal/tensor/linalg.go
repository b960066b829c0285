package tensor

import (
	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/mat"
)

// asDense views a 2D array as a gonum matrix without copying.
func (a *Array) asDense() *mat.Dense {
	return mat.NewDense(a.shape[0], a.shape[1], a.data)
}

// Dot returns the matrix product of two 2D arrays: [M, K] · [K, N] → [M, N].
func (a *Array) Dot(b *Array) *Array {
	if len(a.shape) != 2 || len(b.shape) != 2 {
		exceptions.Panicf("tensor.Dot: expected 2D operands, got %v and %v", a.shape, b.shape)
	}
	if a.shape[1] != b.shape[0] {
		exceptions.Panicf("tensor.Dot: inner dimensions differ: %v · %v", a.shape, b.shape)
	}

	out := mat.NewDense(a.shape[0], b.shape[1], nil)
	out.Mul(a.asDense(), b.asDense())
	return &Array{shape: Shape{a.shape[0], b.shape[1]}, data: out.RawMatrix().Data}
}

// T returns the transpose of a 2D array.
func (a *Array) T() *Array {
	if len(a.shape) != 2 {
		exceptions.Panicf("tensor.T: expected 2D array, got shape %v", a.shape)
	}
	return a.Transpose()
}
