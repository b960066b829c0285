package functions

import (
	"math"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Losses take a prediction y and a target t with the batch on axis 0 and
// return a scalar averaged over the batch. Targets get no gradient.

const lossEps = 1e-7

type mseFn struct{ diff *tensor.Array }

func (f *mseFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.diff = xs[0].Sub(xs[1])
	n := batchSize(xs[1])
	return []*tensor.Array{tensor.Scalar(0.5 * f.diff.Pow(2).SumAll() / n)}
}

func (f *mseFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{f.diff.MulScalar(dys[0].Item() / batchSize(f.diff)), nil}
}

// MeanSquaredError returns 0.5 * Σ(y - t)² / N.
func MeanSquaredError(y, t autograd.Node) *autograd.Tensor {
	return autograd.Apply(&mseFn{}, y, t)
}

type maeFn struct{ diff *tensor.Array }

func (f *maeFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.diff = xs[0].Sub(xs[1])
	return []*tensor.Array{tensor.Scalar(f.diff.Abs().SumAll() / batchSize(xs[1]))}
}

func (f *maeFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{signNonNeg(f.diff).MulScalar(dys[0].Item() / batchSize(f.diff)), nil}
}

// MeanAbsoluteError returns Σ|y - t| / N.
func MeanAbsoluteError(y, t autograd.Node) *autograd.Tensor {
	return autograd.Apply(&maeFn{}, y, t)
}

type huberFn struct {
	diff *tensor.Array
	l1   bool
}

func (f *huberFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.diff = xs[0].Sub(xs[1])
	n := batchSize(xs[1])
	l1 := f.diff.Abs().SumAll() / n
	if l1 > 1 {
		f.l1 = true
		return []*tensor.Array{tensor.Scalar(l1)}
	}
	return []*tensor.Array{tensor.Scalar(0.5 * f.diff.Pow(2).SumAll() / n)}
}

func (f *huberFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	scale := dys[0].Item() / batchSize(f.diff)
	if f.l1 {
		return []*tensor.Array{signNonNeg(f.diff).MulScalar(scale), nil}
	}
	return []*tensor.Array{f.diff.MulScalar(scale), nil}
}

// Huber switches between the absolute error (when it exceeds 1) and the
// squared error of the whole batch.
func Huber(y, t autograd.Node) *autograd.Tensor {
	return autograd.Apply(&huberFn{}, y, t)
}

type softmaxCrossEntropyFn struct {
	p, t *tensor.Array
}

func (f *softmaxCrossEntropyFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.p, f.t = Softmax(xs[0]), xs[1]
	ll := f.t.Mul(f.p.AddScalar(lossEps).Log()).SumAll()
	return []*tensor.Array{tensor.Scalar(-ll / batchSize(f.t))}
}

func (f *softmaxCrossEntropyFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{f.p.Sub(f.t).MulScalar(dys[0].Item() / batchSize(f.t)), nil}
}

// SoftmaxCrossEntropy applies a row-wise softmax to the logits y and returns
// the cross entropy against the one-hot (or soft) targets t.
func SoftmaxCrossEntropy(y, t autograd.Node) *autograd.Tensor {
	return autograd.Apply(&softmaxCrossEntropyFn{}, y, t)
}

type sigmoidCrossEntropyFn struct {
	p, t *tensor.Array
}

func (f *sigmoidCrossEntropyFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.p, f.t = xs[0].Map(sigmoid), xs[1]
	ll := 0.0
	pd, td := f.p.Data(), f.t.Data()
	for i, p := range pd {
		ll += td[i]*math.Log(p+lossEps) + (1-td[i])*math.Log(1-p+lossEps)
	}
	return []*tensor.Array{tensor.Scalar(-ll / batchSize(f.t))}
}

func (f *sigmoidCrossEntropyFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{f.p.Sub(f.t).MulScalar(dys[0].Item() / batchSize(f.t)), nil}
}

// SigmoidCrossEntropy applies a sigmoid to the logits y and returns the
// binary cross entropy against t.
func SigmoidCrossEntropy(y, t autograd.Node) *autograd.Tensor {
	return autograd.Apply(&sigmoidCrossEntropyFn{}, y, t)
}

func batchSize(a *tensor.Array) float64 {
	s := a.Shape()
	if len(s) == 0 {
		return 1
	}
	return float64(s[0])
}

// signNonNeg is 1 where a >= 0 and -1 elsewhere.
func signNonNeg(a *tensor.Array) *tensor.Array {
	return a.Map(func(v float64) float64 {
		if v >= 0 {
			return 1
		}
		return -1
	})
}
