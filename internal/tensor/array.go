// Package tensor implements the float64 n-dimensional array that backs the
// graphnet computation graph.
//
// Arrays are dense, row-major and immutable by convention: every operation
// allocates its result and never writes into its operands. The only
// in-place entry points are Set, Fill, AddInPlace and ScaleInPlace, which
// exist for gradient accumulation and optimizer updates.
//
// Linear algebra is delegated to gonum (mat for matrix products, floats for
// vector kernels).
package tensor

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/floats"
)

// Array is a dense row-major float64 n-dimensional array.
type Array struct {
	shape Shape
	data  []float64
}

// New wraps data with the given shape. The slice is used directly, not copied.
func New(shape Shape, data []float64) *Array {
	if err := shape.Validate(); err != nil {
		exceptions.Panicf("tensor.New: %v", err)
	}
	if len(data) != shape.NumElements() {
		exceptions.Panicf("tensor.New: data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	return &Array{shape: shape.Clone(), data: data}
}

// FromSlice copies data into a new array of the given shape.
func FromSlice(data []float64, shape ...int) *Array {
	buf := make([]float64, len(data))
	copy(buf, data)
	return New(Shape(shape), buf)
}

// FromRows builds a 2D array from equally sized rows.
func FromRows(rows [][]float64) *Array {
	if len(rows) == 0 {
		exceptions.Panicf("tensor.FromRows: no rows")
	}
	cols := len(rows[0])
	buf := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			exceptions.Panicf("tensor.FromRows: row %d has %d columns, want %d", i, len(row), cols)
		}
		buf = append(buf, row...)
	}
	return New(Shape{len(rows), cols}, buf)
}

// Scalar returns a 0-dimensional array holding v.
func Scalar(v float64) *Array {
	return &Array{shape: Shape{}, data: []float64{v}}
}

// Zeros returns a zero-filled array.
func Zeros(shape ...int) *Array {
	s := Shape(shape)
	if err := s.Validate(); err != nil {
		exceptions.Panicf("tensor.Zeros: %v", err)
	}
	return &Array{shape: s.Clone(), data: make([]float64, s.NumElements())}
}

// Ones returns an array filled with ones.
func Ones(shape ...int) *Array {
	return Full(1, shape...)
}

// Full returns an array filled with v.
func Full(v float64, shape ...int) *Array {
	a := Zeros(shape...)
	for i := range a.data {
		a.data[i] = v
	}
	return a
}

// ZerosLike returns a zero array with the shape of a.
func ZerosLike(a *Array) *Array {
	return Zeros(a.shape...)
}

// OnesLike returns an array of ones with the shape of a.
func OnesLike(a *Array) *Array {
	return Ones(a.shape...)
}

// Shape returns a copy of the array's shape.
func (a *Array) Shape() Shape {
	return a.shape.Clone()
}

// Ndim returns the number of dimensions.
func (a *Array) Ndim() int {
	return len(a.shape)
}

// Size returns the number of elements.
func (a *Array) Size() int {
	return len(a.data)
}

// Data returns the backing slice. Callers must treat it as read-only unless
// they own the array.
func (a *Array) Data() []float64 {
	return a.data
}

// Item returns the single value of a one-element array.
func (a *Array) Item() float64 {
	if len(a.data) != 1 {
		exceptions.Panicf("tensor.Item: array of shape %v has %d elements", a.shape, len(a.data))
	}
	return a.data[0]
}

// offset converts a multi-index into a flat offset.
func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		exceptions.Panicf("tensor: index %v has %d coordinates, shape %v has %d", idx, len(idx), a.shape, len(a.shape))
	}
	off := 0
	strides := a.shape.ComputeStrides()
	for i, v := range idx {
		if v < 0 || v >= a.shape[i] {
			exceptions.Panicf("tensor: index %v out of range for shape %v", idx, a.shape)
		}
		off += v * strides[i]
	}
	return off
}

// At returns the element at the given multi-index.
func (a *Array) At(idx ...int) float64 {
	return a.data[a.offset(idx)]
}

// Set writes v at the given multi-index.
func (a *Array) Set(v float64, idx ...int) {
	a.data[a.offset(idx)] = v
}

// Fill overwrites every element with v.
func (a *Array) Fill(v float64) {
	for i := range a.data {
		a.data[i] = v
	}
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	buf := make([]float64, len(a.data))
	copy(buf, a.data)
	return &Array{shape: a.shape.Clone(), data: buf}
}

// AddInPlace adds b into a. Shapes must match exactly.
func (a *Array) AddInPlace(b *Array) {
	if !a.shape.Equal(b.shape) {
		exceptions.Panicf("tensor.AddInPlace: shape %v vs %v", a.shape, b.shape)
	}
	floats.Add(a.data, b.data)
}

// ScaleInPlace multiplies every element of a by s.
func (a *Array) ScaleInPlace(s float64) {
	floats.Scale(s, a.data)
}

// CopyFrom overwrites a with the contents of b. Shapes must match exactly.
func (a *Array) CopyFrom(b *Array) {
	if !a.shape.Equal(b.shape) {
		exceptions.Panicf("tensor.CopyFrom: shape %v vs %v", a.shape, b.shape)
	}
	copy(a.data, b.data)
}

// Equal reports whether a and b have identical shapes and values.
func (a *Array) Equal(b *Array) bool {
	return a.shape.Equal(b.shape) && floats.Equal(a.data, b.data)
}

// AllClose reports whether a and b have identical shapes and values within tol.
func (a *Array) AllClose(b *Array, tol float64) bool {
	return a.shape.Equal(b.shape) && floats.EqualApprox(a.data, b.data, tol)
}

// HasNaN reports whether any element is NaN.
func (a *Array) HasNaN() bool {
	return floats.HasNaN(a.data)
}

// String renders the array with its shape; large arrays are elided.
func (a *Array) String() string {
	const maxShown = 16
	var sb strings.Builder
	fmt.Fprintf(&sb, "Array%v[", []int(a.shape))
	for i, v := range a.data {
		if i == maxShown {
			fmt.Fprintf(&sb, " ... (%d more)", len(a.data)-maxShown)
			break
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		if math.Trunc(v) == v && math.Abs(v) < 1e15 {
			fmt.Fprintf(&sb, "%.0f", v)
		} else {
			fmt.Fprintf(&sb, "%.6g", v)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
