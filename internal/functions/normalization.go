package functions

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// BatchNormFn normalizes x over Axis and applies gamma and beta.
//
// While training it uses the batch statistics and folds them into
// RunningMean and RunningVar with Momentum; otherwise it normalizes with
// the running statistics. The running arrays are replaced, never mutated.
type BatchNormFn struct {
	Axis        int
	Momentum    float64
	Eps         float64
	Training    bool
	RunningMean *tensor.Array
	RunningVar  *tensor.Array

	gamma, xc, xn, std *tensor.Array
}

func (f *BatchNormFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	x, gamma, beta := xs[0], xs[1], xs[2]
	f.gamma = gamma
	var xn *tensor.Array
	if f.Training {
		mean := x.Mean(f.Axis, true)
		f.xc = x.Sub(mean)
		variance := f.xc.Pow(2).Mean(f.Axis, true)
		f.std = variance.AddScalar(f.Eps).Sqrt()
		xn = f.xc.Div(f.std)
		f.xn = xn
		f.RunningMean = f.RunningMean.MulScalar(f.Momentum).Add(mean.MulScalar(1 - f.Momentum))
		f.RunningVar = f.RunningVar.MulScalar(f.Momentum).Add(variance.MulScalar(1 - f.Momentum))
	} else {
		f.xc = x.Sub(f.RunningMean)
		f.std = f.RunningVar.AddScalar(f.Eps).Sqrt()
		xn = f.xc.Div(f.std)
		f.xn = xn
	}
	return []*tensor.Array{gamma.Mul(xn).Add(beta)}
}

func (f *BatchNormFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	dy := dys[0]
	dbeta := dy.Sum(f.Axis, true)
	dgamma := f.xn.Mul(dy).Sum(f.Axis, true)
	dxn := f.gamma.Mul(dy)
	dxc := dxn.Div(f.std)
	if !f.Training {
		return []*tensor.Array{dxc, dgamma, dbeta}
	}

	n := float64(dy.Shape()[f.Axis])
	dstd := dxn.Mul(f.xc).Div(f.std.Pow(2)).Sum(f.Axis, true).Neg()
	dvar := dstd.Div(f.std).MulScalar(0.5)
	dxc = dxc.Add(f.xc.Mul(dvar).MulScalar(2 / n))
	dmean := dxc.Sum(f.Axis, true)
	return []*tensor.Array{dxc.Sub(dmean.MulScalar(1 / n)), dgamma, dbeta}
}

// BatchNormalization applies fn to x with the learnable gamma and beta.
// Read fn.RunningMean and fn.RunningVar afterwards for the updated
// statistics.
func BatchNormalization(fn *BatchNormFn, x, gamma, beta autograd.Node) *autograd.Tensor {
	return autograd.Apply(fn, x, gamma, beta)
}
