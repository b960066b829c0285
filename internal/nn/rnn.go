package nn

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/functions"
	"github.com/born-ml/graphnet/internal/tensor"
)

// RNNConfig holds configuration shared by SimpleRNN and LSTM.
type RNNConfig struct {
	Units           int                  // Hidden width (required)
	ReturnSequences bool                 // Return [batch, time, units] instead of the last step
	Stateful        bool                 // Carry the final state into the next batch
	Activation      functions.Activation // SimpleRNN only (default: tanh)
	WeightInit      Initializer          // Input kernel initializer (default: Xavier)
	RecurrentInit   Initializer          // Recurrent kernel initializer (default: Xavier)
	BiasInit        Initializer          // Bias initializer (default: Zeros)
	NoBias          bool                 // Omit the bias term
	WeightReg       Regularizer          // Optional input kernel penalty
	RecurrentReg    Regularizer          // Optional recurrent kernel penalty
	BiasReg         Regularizer          // Optional bias penalty
}

func (c *RNNConfig) defaults() {
	if c.Activation == nil {
		c.Activation = functions.TanhFn
	}
	if c.WeightInit == nil {
		c.WeightInit = NewXavier(0)
	}
	if c.RecurrentInit == nil {
		c.RecurrentInit = NewXavier(0)
	}
	if c.BiasInit == nil {
		c.BiasInit = Zeros{}
	}
}

// recurrent holds the parameters and state common to recurrent layers.
type recurrent struct {
	Base
	config          RNNConfig
	gates           int
	weight          *autograd.Param
	recurrentKernel *autograd.Param
	bias            *autograd.Param
	h, c            *tensor.Array
}

func newRecurrent(name string, config RNNConfig, gates int) recurrent {
	config.defaults()
	r := recurrent{Base: newBase(name), config: config, gates: gates}
	r.weight = r.newParam("weight")
	r.recurrentKernel = r.newParam("recurrent")
	if !config.NoBias {
		r.bias = r.newParam("bias")
	}
	return r
}

// steps validates a [batch, time, features] input, builds the parameters
// and returns one node per time step.
func (r *recurrent) steps(x autograd.Node) []*autograd.Tensor {
	shape := x.Shape()
	if len(shape) != 3 || shape[1] == 0 {
		panicShape(r.name, tensor.Shape{-1, -1, -1}, shape)
	}
	r.buildOnce(shape, func(in tensor.Shape) {
		width := r.gates * r.config.Units
		initParam(r.weight, r.config.WeightInit, tensor.Shape{in[2], width}, in[2], width)
		initParam(r.recurrentKernel, r.config.RecurrentInit, tensor.Shape{r.config.Units, width}, r.config.Units, width)
		if r.bias != nil {
			initParam(r.bias, r.config.BiasInit, tensor.Shape{width}, in[2], width)
		}
	})
	if w := r.weight.Shape(); w[0] != shape[2] {
		panicShape(r.name, tensor.Shape{shape[0], shape[1], w[0]}, shape)
	}
	return functions.TimeSplit(x)
}

// initial returns the starting state for a batch of size n. A stateful layer
// reuses the previous batch's final state when the batch size matches.
func (r *recurrent) initial(prev *tensor.Array, n int) autograd.Node {
	if r.config.Stateful && prev != nil && prev.Shape()[0] == n {
		return autograd.Const(prev)
	}
	return autograd.Const(tensor.Zeros(n, r.config.Units))
}

func (r *recurrent) output(hs []autograd.Node) autograd.Node {
	if r.config.ReturnSequences {
		return functions.TimeConcatenate(hs...)
	}
	return hs[len(hs)-1]
}

// ResetState clears the state carried by a stateful layer.
func (r *recurrent) ResetState() {
	r.h, r.c = nil, nil
}

// RegularizationLoss implements Regularized.
func (r *recurrent) RegularizationLoss() autograd.Node {
	return regularize(
		penalty{r.config.WeightReg, r.weight},
		penalty{r.config.RecurrentReg, r.recurrentKernel},
		penalty{r.config.BiasReg, r.bias},
	)
}

// Units returns the hidden width.
func (r *recurrent) Units() int {
	return r.config.Units
}

// SimpleRNN is a fully connected recurrent layer: h' = act(x·W + h·U + b).
//
// Input shape: [batch, time, features].
// Output shape: [batch, units], or [batch, time, units] with ReturnSequences.
type SimpleRNN struct {
	recurrent
}

// NewSimpleRNN creates a SimpleRNN layer.
func NewSimpleRNN(config RNNConfig) *SimpleRNN {
	return &SimpleRNN{recurrent: newRecurrent("SimpleRNN", config, 1)}
}

// Forward runs the recurrence over every time step of x.
func (l *SimpleRNN) Forward(x autograd.Node, _ Phase) autograd.Node {
	xs := l.steps(x)
	h := l.initial(l.h, x.Shape()[0])
	hs := make([]autograd.Node, len(xs))
	for t, xt := range xs {
		a := functions.SimpleRNNCell(xt, h, l.weight, l.recurrentKernel, node(l.bias))
		h = l.config.Activation.Apply(a)
		hs[t] = h
	}
	if l.config.Stateful {
		l.h = h.Data()
	}
	return l.output(hs)
}

// LSTM is a long short-term memory layer.
//
// Gates are packed in the kernels as [forget, candidate, input, output], so
// W is [features, 4*units], U is [units, 4*units] and b is [4*units].
type LSTM struct {
	recurrent
}

// NewLSTM creates an LSTM layer. The Activation field is ignored.
func NewLSTM(config RNNConfig) *LSTM {
	return &LSTM{recurrent: newRecurrent("LSTM", config, 4)}
}

// Forward runs the recurrence over every time step of x.
func (l *LSTM) Forward(x autograd.Node, _ Phase) autograd.Node {
	xs := l.steps(x)
	n := x.Shape()[0]
	h := l.initial(l.h, n)
	c := l.initial(l.c, n)
	hs := make([]autograd.Node, len(xs))
	last := len(xs) - 1
	for t, xt := range xs[:last] {
		h2, c2 := functions.LSTMCell(xt, h, c, l.weight, l.recurrentKernel, node(l.bias))
		h, c = h2, c2
		hs[t] = h
	}
	// The final cell state is not part of the output.
	h2, c2 := functions.LSTMCellFinal(xs[last], h, c, l.weight, l.recurrentKernel, node(l.bias))
	hs[last] = h2
	if l.config.Stateful {
		l.h, l.c = h2.Data(), c2
	}
	return l.output(hs)
}
