package nn

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Merge layers take several inputs, so they are used from a graph model's
// forward function through Merge. Their single-input Forward is not
// implemented.

// Concatenate joins its inputs along Axis.
type Concatenate struct {
	Base
	axis int
}

// NewConcatenate creates a Concatenate layer. Negative axes count from the
// end.
func NewConcatenate(axis int) *Concatenate {
	return &Concatenate{Base: newBase("Concatenate"), axis: axis}
}

// Forward is not implemented for merge layers.
func (l *Concatenate) Forward(autograd.Node, Phase) autograd.Node {
	autograd.NotImplemented(l, "Forward")
	return nil
}

// Merge concatenates xs.
func (l *Concatenate) Merge(xs ...autograd.Node) autograd.Node {
	return autograd.Concatenate(l.axis, xs...)
}

// Add sums its inputs elementwise.
type Add struct {
	Base
}

// NewAdd creates an Add layer.
func NewAdd() *Add {
	return &Add{Base: newBase("Add")}
}

// Forward is not implemented for merge layers.
func (l *Add) Forward(autograd.Node, Phase) autograd.Node {
	autograd.NotImplemented(l, "Forward")
	return nil
}

// Merge returns x0 + x1 + ...
func (l *Add) Merge(xs ...autograd.Node) autograd.Node {
	return fold(l.name, xs, func(a, b autograd.Node) autograd.Node { return autograd.Add(a, b) })
}

// Mul multiplies its inputs elementwise.
type Mul struct {
	Base
}

// NewMul creates a Mul layer.
func NewMul() *Mul {
	return &Mul{Base: newBase("Mul")}
}

// Forward is not implemented for merge layers.
func (l *Mul) Forward(autograd.Node, Phase) autograd.Node {
	autograd.NotImplemented(l, "Forward")
	return nil
}

// Merge returns x0 * x1 * ...
func (l *Mul) Merge(xs ...autograd.Node) autograd.Node {
	return fold(l.name, xs, func(a, b autograd.Node) autograd.Node { return autograd.Mul(a, b) })
}

func fold(name string, xs []autograd.Node, op func(a, b autograd.Node) autograd.Node) autograd.Node {
	if len(xs) == 0 {
		panicShape(name, tensor.Shape{-1}, nil)
	}
	y := xs[0]
	for _, x := range xs[1:] {
		y = op(y, x)
	}
	return y
}

// Split cuts its input in two along the last axis, the first part holding
// Size features. Both outputs must be used before backward reaches the
// input.
type Split struct {
	Base
	size int
}

// NewSplit creates a Split layer.
func NewSplit(size int) *Split {
	return &Split{Base: newBase("Split"), size: size}
}

// Forward is not implemented; use Split.
func (l *Split) Forward(autograd.Node, Phase) autograd.Node {
	autograd.NotImplemented(l, "Forward")
	return nil
}

// Split returns x[..., :size] and x[..., size:].
func (l *Split) Split(x autograd.Node) (a, b autograd.Node) {
	shape := x.Shape()
	last := shape[len(shape)-1]
	if l.size <= 0 || l.size >= last {
		want := shape.Clone()
		want[len(want)-1] = -1
		panicShape(l.name, want, shape)
	}
	parts := autograd.Split(x, []int{l.size, last - l.size}, len(shape)-1)
	return parts[0], parts[1]
}
