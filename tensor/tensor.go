// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the float64 n-dimensional arrays that flow
// through the graph.
//
// Arrays are row-major and immutable by convention: every operation
// returns a fresh array. Elementwise operations broadcast following NumPy
// rules; reductions take an axis and a keepDims flag.
//
// Example:
//
//	x := tensor.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
//	w := tensor.Full(0.5, 3, 2)
//	y := x.Dot(w).Add(tensor.FromSlice([]float64{1, -1}, 2))
package tensor

import (
	"golang.org/x/exp/rand"

	"github.com/born-ml/graphnet/internal/tensor"
)

// Array is a dense float64 n-dimensional array.
type Array = tensor.Array

// Shape is the extent of each axis of an Array.
type Shape = tensor.Shape

// New creates an array with the given shape over data.
func New(shape Shape, data []float64) *Array {
	return tensor.New(shape, data)
}

// FromSlice creates an array from data with the given shape.
func FromSlice(data []float64, shape ...int) *Array {
	return tensor.FromSlice(data, shape...)
}

// FromRows creates a 2D array from equal-length rows.
func FromRows(rows [][]float64) *Array {
	return tensor.FromRows(rows)
}

// Scalar creates a 0-dimensional array.
func Scalar(v float64) *Array {
	return tensor.Scalar(v)
}

// Zeros creates an array of zeros.
func Zeros(shape ...int) *Array {
	return tensor.Zeros(shape...)
}

// Ones creates an array of ones.
func Ones(shape ...int) *Array {
	return tensor.Ones(shape...)
}

// Full creates an array filled with v.
func Full(v float64, shape ...int) *Array {
	return tensor.Full(v, shape...)
}

// Concatenate joins arrays along axis.
func Concatenate(arrays []*Array, axis int) *Array {
	return tensor.Concatenate(arrays, axis)
}

// Stack joins arrays along a new axis.
func Stack(arrays []*Array, axis int) *Array {
	return tensor.Stack(arrays, axis)
}

// NewSource returns a seeded random source.
func NewSource(seed uint64) rand.Source {
	return tensor.NewSource(seed)
}

// RandNormal draws an array from N(mean, std²).
func RandNormal(src rand.Source, mean, std float64, shape ...int) *Array {
	return tensor.RandNormal(src, mean, std, shape...)
}

// RandUniform draws an array from U(lo, hi).
func RandUniform(src rand.Source, lo, hi float64, shape ...int) *Array {
	return tensor.RandUniform(src, lo, hi, shape...)
}

// SetWorkers sets the number of goroutines elementwise kernels may use on
// large arrays. n <= 1 disables parallel kernels.
func SetWorkers(n int) {
	tensor.SetWorkers(n)
}
