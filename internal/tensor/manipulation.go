package tensor

import (
	"github.com/gomlx/exceptions"
)

// Reshape returns a copy of a with a new shape. One dimension may be -1 and
// is inferred from the element count.
func (a *Array) Reshape(shape ...int) *Array {
	s := Shape(shape).Clone()
	infer := -1
	known := 1
	for i, d := range s {
		if d == -1 {
			if infer >= 0 {
				exceptions.Panicf("tensor.Reshape: more than one -1 in %v", shape)
			}
			infer = i
			continue
		}
		known *= d
	}
	if infer >= 0 {
		if known == 0 || len(a.data)%known != 0 {
			exceptions.Panicf("tensor.Reshape: cannot infer dimension of %v for %d elements", shape, len(a.data))
		}
		s[infer] = len(a.data) / known
	}
	if s.NumElements() != len(a.data) {
		exceptions.Panicf("tensor.Reshape: cannot reshape %v into %v", a.shape, s)
	}
	out := a.Clone()
	out.shape = s
	return out
}

// Flatten returns a 1D copy of a.
func (a *Array) Flatten() *Array {
	return a.Reshape(len(a.data))
}

// Transpose permutes the axes of a. With no axes it reverses them.
func (a *Array) Transpose(axes ...int) *Array {
	ndim := len(a.shape)
	axes = append([]int(nil), axes...)
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		exceptions.Panicf("tensor.Transpose: axes %v do not match shape %v", axes, a.shape)
	}

	outShape := make(Shape, ndim)
	seen := make([]bool, ndim)
	for i, ax := range axes {
		ax = a.shape.normalizeAxis(ax)
		if seen[ax] {
			exceptions.Panicf("tensor.Transpose: repeated axis in %v", axes)
		}
		seen[ax] = true
		axes[i] = ax
		outShape[i] = a.shape[ax]
	}

	inStrides := a.shape.ComputeStrides()
	permStrides := make([]int, ndim)
	for i, ax := range axes {
		permStrides[i] = inStrides[ax]
	}
	outStrides := outShape.ComputeStrides()

	out := &Array{shape: outShape, data: make([]float64, len(a.data))}
	for i := range out.data {
		out.data[i] = a.data[flatIndex(i, outStrides, permStrides)]
	}
	return out
}

// Concatenate joins arrays along axis. All other dimensions must agree.
func Concatenate(arrays []*Array, axis int) *Array {
	if len(arrays) == 0 {
		exceptions.Panicf("tensor.Concatenate: no arrays")
	}
	first := arrays[0].shape
	axis = first.normalizeAxis(axis)

	outShape := first.Clone()
	outShape[axis] = 0
	for _, arr := range arrays {
		if len(arr.shape) != len(first) {
			exceptions.Panicf("tensor.Concatenate: rank mismatch %v vs %v", first, arr.shape)
		}
		for i := range first {
			if i != axis && arr.shape[i] != first[i] {
				exceptions.Panicf("tensor.Concatenate: shape %v does not match %v off axis %d", arr.shape, first, axis)
			}
		}
		outShape[axis] += arr.shape[axis]
	}

	outer, _, inner := splitAxis(outShape, axis)
	out := &Array{shape: outShape, data: make([]float64, outShape.NumElements())}
	rowLen := outShape[axis] * inner
	pos := 0
	for _, arr := range arrays {
		chunk := arr.shape[axis] * inner
		for o := 0; o < outer; o++ {
			copy(out.data[o*rowLen+pos:o*rowLen+pos+chunk], arr.data[o*chunk:(o+1)*chunk])
		}
		pos += chunk
	}
	return out
}

// Split cuts a along axis into consecutive pieces of the given sizes.
// The sizes must add up to the axis length.
func (a *Array) Split(sizes []int, axis int) []*Array {
	axis = a.shape.normalizeAxis(axis)
	total := 0
	for _, s := range sizes {
		if s <= 0 {
			exceptions.Panicf("tensor.Split: non-positive size in %v", sizes)
		}
		total += s
	}
	if total != a.shape[axis] {
		exceptions.Panicf("tensor.Split: sizes %v do not add up to dimension %d of %v", sizes, axis, a.shape)
	}

	outer, dim, inner := splitAxis(a.shape, axis)
	rowLen := dim * inner
	outs := make([]*Array, len(sizes))
	pos := 0
	for k, size := range sizes {
		shape := a.shape.Clone()
		shape[axis] = size
		chunk := size * inner
		piece := &Array{shape: shape, data: make([]float64, outer*chunk)}
		for o := 0; o < outer; o++ {
			copy(piece.data[o*chunk:(o+1)*chunk], a.data[o*rowLen+pos:o*rowLen+pos+chunk])
		}
		outs[k] = piece
		pos += chunk
	}
	return outs
}

// Index selects position i along axis, dropping that axis.
func (a *Array) Index(axis, i int) *Array {
	axis = a.shape.normalizeAxis(axis)
	if i < 0 || i >= a.shape[axis] {
		exceptions.Panicf("tensor.Index: index %d out of range for axis %d of %v", i, axis, a.shape)
	}
	outer, dim, inner := splitAxis(a.shape, axis)
	out := &Array{shape: reducedShape(a.shape, axis, false), data: make([]float64, outer*inner)}
	for o := 0; o < outer; o++ {
		copy(out.data[o*inner:(o+1)*inner], a.data[o*dim*inner+i*inner:o*dim*inner+(i+1)*inner])
	}
	return out
}

// Stack joins equally shaped arrays along a new axis.
func Stack(arrays []*Array, axis int) *Array {
	if len(arrays) == 0 {
		exceptions.Panicf("tensor.Stack: no arrays")
	}
	base := arrays[0].shape
	if axis < 0 {
		axis += len(base) + 1
	}
	if axis < 0 || axis > len(base) {
		exceptions.Panicf("tensor.Stack: axis %d out of range for shape %v", axis, base)
	}
	expanded := make([]*Array, len(arrays))
	for k, arr := range arrays {
		if !arr.shape.Equal(base) {
			exceptions.Panicf("tensor.Stack: shape %v does not match %v", arr.shape, base)
		}
		shape := make(Shape, 0, len(base)+1)
		shape = append(shape, base[:axis]...)
		shape = append(shape, 1)
		shape = append(shape, base[axis:]...)
		expanded[k] = &Array{shape: shape, data: arr.data}
	}
	return Concatenate(expanded, axis)
}

// TakeRows gathers the given indices along axis 0.
func (a *Array) TakeRows(indices []int) *Array {
	if len(a.shape) == 0 {
		exceptions.Panicf("tensor.TakeRows: scalar array")
	}
	rowLen := len(a.data) / a.shape[0]
	shape := a.shape.Clone()
	shape[0] = len(indices)
	out := &Array{shape: shape, data: make([]float64, len(indices)*rowLen)}
	for k, idx := range indices {
		if idx < 0 || idx >= a.shape[0] {
			exceptions.Panicf("tensor.TakeRows: row %d out of range for shape %v", idx, a.shape)
		}
		copy(out.data[k*rowLen:(k+1)*rowLen], a.data[idx*rowLen:(idx+1)*rowLen])
	}
	return out
}
