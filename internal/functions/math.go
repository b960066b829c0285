// Package functions holds the differentiable building blocks applied by
// layers: elementwise math, activations, losses, dropout, embedding lookup,
// batch normalization and recurrent cells.
//
// Every constructor returns a fresh autograd.Function value; apply it with
// autograd.Apply or autograd.Call exactly once.
package functions

import (
	"math"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

type expFn struct{ y *tensor.Array }

func (f *expFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.y = xs[0].Exp()
	return []*tensor.Array{f.y}
}

func (f *expFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{dys[0].Mul(f.y)}
}

// Exp returns e^x.
func Exp(x autograd.Node) *autograd.Tensor { return autograd.Apply(&expFn{}, x) }

type logFn struct{ x *tensor.Array }

func (f *logFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.x = xs[0]
	return []*tensor.Array{f.x.Log()}
}

func (f *logFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{dys[0].Div(f.x)}
}

// Log returns the natural logarithm of x.
func Log(x autograd.Node) *autograd.Tensor { return autograd.Apply(&logFn{}, x) }

type sqrtFn struct{ y *tensor.Array }

func (f *sqrtFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.y = xs[0].Sqrt()
	return []*tensor.Array{f.y}
}

func (f *sqrtFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{dys[0].Div(f.y.MulScalar(2))}
}

// Sqrt returns the square root of x.
func Sqrt(x autograd.Node) *autograd.Tensor { return autograd.Apply(&sqrtFn{}, x) }

type absFn struct{ x *tensor.Array }

func (f *absFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.x = xs[0]
	return []*tensor.Array{f.x.Abs()}
}

func (f *absFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	sign := f.x.Map(func(v float64) float64 {
		if v < 0 {
			return -1
		}
		return 1
	})
	return []*tensor.Array{dys[0].Mul(sign)}
}

// Abs returns |x|.
func Abs(x autograd.Node) *autograd.Tensor { return autograd.Apply(&absFn{}, x) }

// MaxFn reduces along an axis keeping the maximum. It has no backward pass.
type MaxFn struct {
	autograd.ForwardOnly
	Axis     int
	KeepDims bool
}

// Forward returns the maximum of xs[0] along Axis.
func (f *MaxFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{xs[0].Max(f.Axis, f.KeepDims)}
}

// Max reduces x along axis. Backpropagating through it fails with a
// NotImplementedError.
func Max(x autograd.Node, axis int, keepDims bool) *autograd.Tensor {
	return autograd.Apply(&MaxFn{Axis: axis, KeepDims: keepDims}, x)
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
