package tensor

import (
	"math"

	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/floats"
)

// splitAxis decomposes shape around axis into (outer, dim, inner) extents.
func splitAxis(shape Shape, axis int) (outer, dim, inner int) {
	outer, inner = 1, 1
	for i := 0; i < axis; i++ {
		outer *= shape[i]
	}
	for i := axis + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[axis], inner
}

// reducedShape returns shape with axis removed or kept as 1.
func reducedShape(shape Shape, axis int, keepDims bool) Shape {
	out := make(Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != axis:
			out = append(out, d)
		case keepDims:
			out = append(out, 1)
		}
	}
	return out
}

// reduceAxis folds every line along axis with fn, starting from init.
func (a *Array) reduceAxis(axis int, keepDims bool, init float64, fn func(acc, v float64) float64) *Array {
	axis = a.shape.normalizeAxis(axis)
	outer, dim, inner := splitAxis(a.shape, axis)
	out := &Array{shape: reducedShape(a.shape, axis, keepDims), data: make([]float64, outer*inner)}
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			acc := init
			base := o*dim*inner + in
			for d := 0; d < dim; d++ {
				acc = fn(acc, a.data[base+d*inner])
			}
			out.data[o*inner+in] = acc
		}
	}
	return out
}

// Sum reduces along axis.
func (a *Array) Sum(axis int, keepDims bool) *Array {
	return a.reduceAxis(axis, keepDims, 0, func(acc, v float64) float64 { return acc + v })
}

// Mean averages along axis.
func (a *Array) Mean(axis int, keepDims bool) *Array {
	axis = a.shape.normalizeAxis(axis)
	out := a.Sum(axis, keepDims)
	out.ScaleInPlace(1 / float64(a.shape[axis]))
	return out
}

// Max takes the maximum along axis.
func (a *Array) Max(axis int, keepDims bool) *Array {
	return a.reduceAxis(axis, keepDims, math.Inf(-1), math.Max)
}

// SumAll returns the sum of every element.
func (a *Array) SumAll() float64 {
	return floats.Sum(a.data)
}

// MeanAll returns the mean of every element.
func (a *Array) MeanAll() float64 {
	return floats.Sum(a.data) / float64(len(a.data))
}

// MaxAll returns the largest element.
func (a *Array) MaxAll() float64 {
	return floats.Max(a.data)
}

// Norm returns the L2 norm of the flattened array.
func (a *Array) Norm() float64 {
	return floats.Norm(a.data, 2)
}

// ArgMaxRows returns, for a 2D array, the column index of each row's maximum.
func (a *Array) ArgMaxRows() []int {
	if len(a.shape) != 2 {
		exceptions.Panicf("tensor.ArgMaxRows: expected 2D array, got shape %v", a.shape)
	}
	rows, cols := a.shape[0], a.shape[1]
	out := make([]int, rows)
	for r := 0; r < rows; r++ {
		out[r] = floats.MaxIdx(a.data[r*cols : (r+1)*cols])
	}
	return out
}

// SumTo reduces a broadcast result back to target by summing the
// broadcast axes. It is the adjoint of BroadcastTo.
//
//	[N, D] → [D]     sums axis 0
//	[N, D] → [N, 1]  sums axis 1, keeping it
func (a *Array) SumTo(target Shape) *Array {
	if a.shape.Equal(target) {
		return a.Clone()
	}
	if target.NumElements() == 1 {
		return New(target.Clone(), []float64{a.SumAll()})
	}

	out := a
	for len(out.shape) > len(target) {
		out = out.Sum(0, false)
	}
	if len(out.shape) < len(target) {
		exceptions.Panicf("tensor.SumTo: cannot reduce shape %v to %v", a.shape, target)
	}
	for i := range target {
		switch {
		case target[i] == out.shape[i]:
		case target[i] == 1:
			out = out.Sum(i, true)
		default:
			exceptions.Panicf("tensor.SumTo: cannot reduce shape %v to %v", a.shape, target)
		}
	}
	if out == a {
		return a.Clone()
	}
	return out
}

// BroadcastTo expands a to target following broadcasting rules.
func (a *Array) BroadcastTo(target Shape) *Array {
	if a.shape.Equal(target) {
		return a.Clone()
	}
	if len(a.data) == 1 {
		return Full(a.data[0], target...)
	}
	outShape, _, err := BroadcastShapes(a.shape, target)
	if err != nil || !outShape.Equal(target) {
		exceptions.Panicf("tensor.BroadcastTo: cannot broadcast shape %v to %v", a.shape, target)
	}
	return Zeros(target...).Add(a)
}
