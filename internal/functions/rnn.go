package functions

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// TimeSplitFn cuts a [batch, time, features] array into one [batch,
// features] output per time step.
type TimeSplitFn struct{}

func (TimeSplitFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	steps := xs[0].Shape()[1]
	ys := make([]*tensor.Array, steps)
	for t := range ys {
		ys[t] = xs[0].Index(1, t)
	}
	return ys
}

func (TimeSplitFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{tensor.Stack(dys, 1)}
}

// TimeSplit returns one node per time step of x.
func TimeSplit(x autograd.Node) []*autograd.Tensor {
	return autograd.Call(TimeSplitFn{}, x)
}

// TimeConcatenateFn stacks per-step [batch, features] inputs into a
// [batch, time, features] array.
type TimeConcatenateFn struct{}

func (TimeConcatenateFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{tensor.Stack(xs, 1)}
}

func (TimeConcatenateFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	steps := dys[0].Shape()[1]
	dxs := make([]*tensor.Array, steps)
	for t := range dxs {
		dxs[t] = dys[0].Index(1, t)
	}
	return dxs
}

// TimeConcatenate stacks steps along a new time axis.
func TimeConcatenate(steps ...autograd.Node) *autograd.Tensor {
	return autograd.Apply(TimeConcatenateFn{}, steps...)
}

// SimpleRNNCellFn computes x·W + h·U + b for one step. The activation is
// applied separately. The bias input may be nil.
type SimpleRNNCellFn struct {
	autograd.GradMask
	x, h, w, u *tensor.Array
	hasBias    bool
}

func (f *SimpleRNNCellFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.x, f.h, f.w, f.u = xs[0], xs[1], xs[2], xs[3]
	y := f.x.Dot(f.w).Add(f.h.Dot(f.u))
	if len(xs) > 4 && xs[4] != nil {
		f.hasBias = true
		y = y.Add(xs[4])
	}
	return []*tensor.Array{y}
}

func (f *SimpleRNNCellFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	return f.linearGrads(dys[0])
}

// linearGrads returns the gradients of x·W + h·U + b given dy.
func (f *SimpleRNNCellFn) linearGrads(dy *tensor.Array) []*tensor.Array {
	n := 4
	if f.hasBias {
		n = 5
	}
	g := make([]*tensor.Array, n)
	if f.Need(0) {
		g[0] = dy.Dot(f.w.T())
	}
	if f.Need(1) {
		g[1] = dy.Dot(f.u.T())
	}
	if f.Need(2) {
		g[2] = f.x.T().Dot(dy)
	}
	if f.Need(3) {
		g[3] = f.h.T().Dot(dy)
	}
	if f.hasBias && f.Need(4) {
		g[4] = dy.Sum(0, false)
	}
	return g
}

// SimpleRNNCell applies one recurrent step. bias may be nil.
func SimpleRNNCell(x, h, w, u, bias autograd.Node) *autograd.Tensor {
	inputs := []autograd.Node{x, h, w, u}
	if bias != nil {
		inputs = append(inputs, bias)
	}
	return autograd.Apply(&SimpleRNNCellFn{}, inputs...)
}

// LSTMCellFn computes one LSTM step from (x, h, c, W, U, b). Gates are laid
// out in W, U and b as [forget, candidate, input, output]. It returns the
// new h and, when ReturnC is set, the new c as a second output.
type LSTMCellFn struct {
	ReturnC bool

	lin                           SimpleRNNCellFn
	c, c2                         *tensor.Array
	forget, cand, in, out, tanhC2 *tensor.Array
}

// CellState returns the new cell state computed by Forward.
func (f *LSTMCellFn) CellState() *tensor.Array {
	return f.c2
}

// MaskGrads forwards the mask, shifting past the cell state input.
func (f *LSTMCellFn) MaskGrads(needs []bool) {
	f.lin.MaskGrads(append([]bool{needs[0], needs[1]}, needs[3:]...))
}

func (f *LSTMCellFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	f.c = xs[2]
	lin := []*tensor.Array{xs[0], xs[1]}
	lin = append(lin, xs[3:]...)
	a := f.lin.Forward(lin...)[0]

	units := f.c.Shape()[1]
	gates := a.Split([]int{units, units, units, units}, 1)
	f.forget = gates[0].Map(sigmoid)
	f.cand = gates[1].Tanh()
	f.in = gates[2].Map(sigmoid)
	f.out = gates[3].Map(sigmoid)

	c2 := f.forget.Mul(f.c).Add(f.cand.Mul(f.in))
	f.c2 = c2
	f.tanhC2 = c2.Tanh()
	h2 := f.out.Mul(f.tanhC2)
	if f.ReturnC {
		return []*tensor.Array{h2, c2}
	}
	return []*tensor.Array{h2}
}

func (f *LSTMCellFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	dh2 := dys[0]
	dc2 := dh2.Mul(f.out).Mul(f.tanhC2.Map(func(t float64) float64 { return 1 - t*t }))
	if len(dys) > 1 {
		dc2 = dc2.Add(dys[1])
	}
	sigGrad := func(s float64) float64 { return s * (1 - s) }

	dout := dh2.Mul(f.tanhC2).Mul(f.out.Map(sigGrad))
	din := dc2.Mul(f.cand).Mul(f.in.Map(sigGrad))
	dcand := dc2.Mul(f.in).Mul(f.cand.Map(func(t float64) float64 { return 1 - t*t }))
	dforget := dc2.Mul(f.c).Mul(f.forget.Map(sigGrad))
	da := tensor.Concatenate([]*tensor.Array{dforget, dcand, din, dout}, 1)

	lg := f.lin.linearGrads(da)
	g := []*tensor.Array{lg[0], lg[1], dc2.Mul(f.forget)}
	return append(g, lg[2:]...)
}

// LSTMCell applies one LSTM step and returns the new h and c. bias may be
// nil.
func LSTMCell(x, h, c, w, u, bias autograd.Node) (h2, c2 *autograd.Tensor) {
	outs := autograd.Call(&LSTMCellFn{ReturnC: true}, lstmInputs(x, h, c, w, u, bias)...)
	return outs[0], outs[1]
}

// LSTMCellH applies one LSTM step whose cell state is not consumed.
func LSTMCellH(x, h, c, w, u, bias autograd.Node) *autograd.Tensor {
	return autograd.Apply(&LSTMCellFn{}, lstmInputs(x, h, c, w, u, bias)...)
}

func lstmInputs(x, h, c, w, u, bias autograd.Node) []autograd.Node {
	inputs := []autograd.Node{x, h, c, w, u}
	if bias != nil {
		inputs = append(inputs, bias)
	}
	return inputs
}

// LSTMCellFinal is LSTMCellH that also returns the new cell state as a plain
// array, for layers that carry state across batches.
func LSTMCellFinal(x, h, c, w, u, bias autograd.Node) (*autograd.Tensor, *tensor.Array) {
	fn := &LSTMCellFn{}
	h2 := autograd.Apply(fn, lstmInputs(x, h, c, w, u, bias)...)
	return h2, fn.CellState()
}
