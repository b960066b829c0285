package autograd

import (
	"github.com/born-ml/graphnet/internal/tensor"
)

// Arithmetic, shape and reduction functions. Binary arithmetic broadcasts
// and reduces the gradients back to each input's shape.

type add struct {
	GradMask
	aShape, bShape tensor.Shape
}

func (f *add) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.aShape, f.bShape = xs[0].Shape(), xs[1].Shape()
	return []*tensor.Array{xs[0].Add(xs[1])}
}

func (f *add) Backward(dys ...*tensor.Array) []*tensor.Array {
	dx := make([]*tensor.Array, 2)
	if f.Need(0) {
		dx[0] = dys[0].SumTo(f.aShape)
	}
	if f.Need(1) {
		dx[1] = dys[0].SumTo(f.bShape)
	}
	return dx
}

// Add returns a + b.
func Add(a, b Node) *Tensor { return Apply(&add{}, a, b) }

type sub struct {
	GradMask
	aShape, bShape tensor.Shape
}

func (f *sub) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.aShape, f.bShape = xs[0].Shape(), xs[1].Shape()
	return []*tensor.Array{xs[0].Sub(xs[1])}
}

func (f *sub) Backward(dys ...*tensor.Array) []*tensor.Array {
	dx := make([]*tensor.Array, 2)
	if f.Need(0) {
		dx[0] = dys[0].SumTo(f.aShape)
	}
	if f.Need(1) {
		dx[1] = dys[0].Neg().SumTo(f.bShape)
	}
	return dx
}

// Sub returns a - b.
func Sub(a, b Node) *Tensor { return Apply(&sub{}, a, b) }

type mul struct {
	GradMask
	a, b *tensor.Array
}

func (f *mul) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.a, f.b = xs[0], xs[1]
	return []*tensor.Array{f.a.Mul(f.b)}
}

func (f *mul) Backward(dys ...*tensor.Array) []*tensor.Array {
	dx := make([]*tensor.Array, 2)
	if f.Need(0) {
		dx[0] = dys[0].Mul(f.b).SumTo(f.a.Shape())
	}
	if f.Need(1) {
		dx[1] = dys[0].Mul(f.a).SumTo(f.b.Shape())
	}
	return dx
}

// Mul returns the elementwise product a * b.
func Mul(a, b Node) *Tensor { return Apply(&mul{}, a, b) }

type div struct {
	GradMask
	a, b *tensor.Array
}

func (f *div) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.a, f.b = xs[0], xs[1]
	return []*tensor.Array{f.a.Div(f.b)}
}

func (f *div) Backward(dys ...*tensor.Array) []*tensor.Array {
	dx := make([]*tensor.Array, 2)
	if f.Need(0) {
		dx[0] = dys[0].Div(f.b).SumTo(f.a.Shape())
	}
	if f.Need(1) {
		// d(a/b)/db = -a / b²
		dx[1] = dys[0].Mul(f.a.Div(f.b.Pow(2)).Neg()).SumTo(f.b.Shape())
	}
	return dx
}

// Div returns the elementwise quotient a / b.
func Div(a, b Node) *Tensor { return Apply(&div{}, a, b) }

type neg struct{}

func (neg) Forward(xs ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{xs[0].Neg()}
}

func (neg) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{dys[0].Neg()}
}

// Neg returns -x.
func Neg(x Node) *Tensor { return Apply(neg{}, x) }

type pow struct {
	p float64
	x *tensor.Array
}

func (f *pow) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.x = xs[0]
	return []*tensor.Array{f.x.Pow(f.p)}
}

func (f *pow) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{dys[0].Mul(f.x.Pow(f.p - 1).MulScalar(f.p))}
}

// Pow raises x to the constant power p.
func Pow(x Node, p float64) *Tensor { return Apply(&pow{p: p}, x) }

type dot struct {
	GradMask
	a, b *tensor.Array
}

func (f *dot) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.a, f.b = xs[0], xs[1]
	return []*tensor.Array{f.a.Dot(f.b)}
}

func (f *dot) Backward(dys ...*tensor.Array) []*tensor.Array {
	dx := make([]*tensor.Array, 2)
	if f.Need(0) {
		dx[0] = dys[0].Dot(f.b.T())
	}
	if f.Need(1) {
		dx[1] = f.a.T().Dot(dys[0])
	}
	return dx
}

// Dot returns the matrix product of two 2D nodes.
func Dot(a, b Node) *Tensor { return Apply(&dot{}, a, b) }

type reshape struct {
	shape  []int
	xShape tensor.Shape
}

func (f *reshape) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.xShape = xs[0].Shape()
	return []*tensor.Array{xs[0].Reshape(f.shape...)}
}

func (f *reshape) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{dys[0].Reshape(f.xShape...)}
}

// Reshape changes the shape of x. One dimension may be -1.
func Reshape(x Node, shape ...int) *Tensor {
	return Apply(&reshape{shape: append([]int(nil), shape...)}, x)
}

// Flatten keeps the leading (batch) axis and flattens the rest.
func Flatten(x Node) *Tensor {
	s := x.Shape()
	if len(s) == 0 {
		return Reshape(x, 1)
	}
	return Reshape(x, s[0], -1)
}

type transpose struct {
	axes []int
}

func (f *transpose) Forward(xs ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{xs[0].Transpose(f.axes...)}
}

func (f *transpose) Backward(dys ...*tensor.Array) []*tensor.Array {
	if len(f.axes) == 0 {
		return []*tensor.Array{dys[0].Transpose()}
	}
	inverse := make([]int, len(f.axes))
	for i, a := range f.axes {
		inverse[normalize(a, len(f.axes))] = i
	}
	return []*tensor.Array{dys[0].Transpose(inverse...)}
}

// Transpose permutes the axes of x; without axes it reverses them.
func Transpose(x Node, axes ...int) *Tensor {
	return Apply(&transpose{axes: append([]int(nil), axes...)}, x)
}

type concatenate struct {
	axis  int
	sizes []int
}

func (f *concatenate) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.sizes = make([]int, len(xs))
	for i, x := range xs {
		s := x.Shape()
		axis := f.axis
		if axis < 0 {
			axis += len(s)
		}
		f.sizes[i] = s[axis]
	}
	return []*tensor.Array{tensor.Concatenate(xs, f.axis)}
}

func (f *concatenate) Backward(dys ...*tensor.Array) []*tensor.Array {
	return dys[0].Split(f.sizes, f.axis)
}

// Concatenate joins xs along axis.
func Concatenate(axis int, xs ...Node) *Tensor {
	return Apply(&concatenate{axis: axis}, xs...)
}

type split struct {
	sizes []int
	axis  int
}

func (f *split) Forward(xs ...*tensor.Array) []*tensor.Array {
	return xs[0].Split(f.sizes, f.axis)
}

func (f *split) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{tensor.Concatenate(dys, f.axis)}
}

// Split cuts x along axis into consecutive pieces of the given sizes. The
// gradient of x is only formed once every piece has reported.
func Split(x Node, sizes []int, axis int) []*Tensor {
	return Call(&split{sizes: append([]int(nil), sizes...), axis: axis}, x)
}

type sum struct {
	axis     int
	keepDims bool
	all      bool
	xShape   tensor.Shape
}

func (f *sum) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.xShape = xs[0].Shape()
	if f.all {
		return []*tensor.Array{tensor.Scalar(xs[0].SumAll())}
	}
	return []*tensor.Array{xs[0].Sum(f.axis, f.keepDims)}
}

func (f *sum) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{expandReduced(dys[0], f.xShape, f.axis, f.keepDims || f.all)}
}

// Sum reduces x along axis.
func Sum(x Node, axis int, keepDims bool) *Tensor {
	return Apply(&sum{axis: axis, keepDims: keepDims}, x)
}

// SumAll reduces x to a scalar.
func SumAll(x Node) *Tensor {
	return Apply(&sum{all: true}, x)
}

type mean struct {
	sum
}

func (f *mean) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.xShape = xs[0].Shape()
	if f.all {
		return []*tensor.Array{tensor.Scalar(xs[0].MeanAll())}
	}
	return []*tensor.Array{xs[0].Mean(f.axis, f.keepDims)}
}

func (f *mean) Backward(dys ...*tensor.Array) []*tensor.Array {
	n := f.xShape.NumElements()
	if !f.all {
		n = f.xShape[normalize(f.axis, len(f.xShape))]
	}
	dx := f.sum.Backward(dys...)[0]
	return []*tensor.Array{dx.MulScalar(1 / float64(n))}
}

// Mean averages x along axis.
func Mean(x Node, axis int, keepDims bool) *Tensor {
	return Apply(&mean{sum{axis: axis, keepDims: keepDims}}, x)
}

// MeanAll averages every element of x into a scalar.
func MeanAll(x Node) *Tensor {
	return Apply(&mean{sum{all: true}}, x)
}

type broadcastTo struct {
	shape  tensor.Shape
	xShape tensor.Shape
}

func (f *broadcastTo) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.xShape = xs[0].Shape()
	return []*tensor.Array{xs[0].BroadcastTo(f.shape)}
}

func (f *broadcastTo) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{dys[0].SumTo(f.xShape)}
}

// BroadcastTo expands x to shape; its gradient is summed back.
func BroadcastTo(x Node, shape ...int) *Tensor {
	return Apply(&broadcastTo{shape: tensor.Shape(shape).Clone()}, x)
}

// expandReduced broadcasts the gradient of a reduction back to the input
// shape. When the reduced axis was dropped it is reinserted first.
func expandReduced(dy *tensor.Array, xShape tensor.Shape, axis int, kept bool) *tensor.Array {
	if !kept {
		axis = normalize(axis, len(xShape))
		keep := xShape.Clone()
		keep[axis] = 1
		dy = dy.Reshape(keep...)
	}
	return dy.BroadcastTo(xShape)
}

func normalize(axis, ndim int) int {
	if axis < 0 {
		return axis + ndim
	}
	return axis
}
