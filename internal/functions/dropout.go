package functions

import (
	"golang.org/x/exp/rand"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// DropoutFn zeroes each element with probability Rate while training. At
// inference it is the identity, or a scale by (1 - Rate) when UseScale is
// set.
type DropoutFn struct {
	Rate     float64
	Training bool
	UseScale bool
	Src      rand.Source

	mask *tensor.Array
}

func (f *DropoutFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	x := xs[0]
	switch {
	case f.Training:
		f.mask = tensor.Bernoulli(f.Src, 1-f.Rate, x.Shape()...)
		return []*tensor.Array{x.Mul(f.mask)}
	case f.UseScale:
		return []*tensor.Array{x.MulScalar(1 - f.Rate)}
	default:
		return []*tensor.Array{x.Clone()}
	}
}

func (f *DropoutFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	switch {
	case f.mask != nil:
		return []*tensor.Array{dys[0].Mul(f.mask)}
	case f.UseScale:
		return []*tensor.Array{dys[0].MulScalar(1 - f.Rate)}
	default:
		return []*tensor.Array{dys[0]}
	}
}

// Dropout applies a DropoutFn with the given settings.
func Dropout(x autograd.Node, rate float64, training, useScale bool, src rand.Source) *autograd.Tensor {
	return autograd.Apply(&DropoutFn{Rate: rate, Training: training, UseScale: useScale, Src: src}, x)
}
