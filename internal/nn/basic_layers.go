package nn

import (
	"golang.org/x/exp/rand"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/functions"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Input checks that inputs have the expected per-sample shape and passes
// them through unchanged.
type Input struct {
	Base
	shape tensor.Shape
}

// NewInput creates an input layer for samples of the given shape (without
// the batch axis).
func NewInput(shape ...int) *Input {
	return &Input{Base: newBase("Input"), shape: tensor.Shape(shape).Clone()}
}

// Forward returns x after checking its shape.
func (l *Input) Forward(x autograd.Node, _ Phase) autograd.Node {
	got := x.Shape()
	if len(got) != len(l.shape)+1 || !got[1:].Equal(l.shape) {
		want := append(tensor.Shape{-1}, l.shape...)
		panicShape(l.name, want, got)
	}
	return x
}

// SampleShape returns the per-sample shape.
func (l *Input) SampleShape() tensor.Shape {
	return l.shape.Clone()
}

// Flatten keeps the batch axis and flattens the rest.
type Flatten struct {
	Base
}

// NewFlatten creates a Flatten layer.
func NewFlatten() *Flatten {
	return &Flatten{Base: newBase("Flatten")}
}

// Forward flattens x to [batch, features].
func (l *Flatten) Forward(x autograd.Node, _ Phase) autograd.Node {
	return autograd.Flatten(x)
}

// Reshape changes the per-sample shape.
type Reshape struct {
	Base
	shape []int
}

// NewReshape creates a Reshape layer to the given per-sample shape.
func NewReshape(shape ...int) *Reshape {
	return &Reshape{Base: newBase("Reshape"), shape: append([]int(nil), shape...)}
}

// Forward reshapes x to [batch, shape...].
func (l *Reshape) Forward(x autograd.Node, _ Phase) autograd.Node {
	return autograd.Reshape(x, append([]int{x.Shape()[0]}, l.shape...)...)
}

// Dropout randomly zeroes a fraction of its inputs while training.
type Dropout struct {
	Base
	rate     float64
	useScale bool
	src      rand.Source
}

// DropoutConfig holds configuration for a Dropout layer.
type DropoutConfig struct {
	Rate     float64 // Fraction of inputs to drop (default: 0.5)
	Seed     uint64  // Mask seed, 0 seeds from the clock
	UseScale bool    // Scale by (1 - Rate) at inference
}

// NewDropout creates a Dropout layer.
func NewDropout(config DropoutConfig) *Dropout {
	if config.Rate == 0 {
		config.Rate = 0.5
	}
	return &Dropout{
		Base:     newBase("Dropout"),
		rate:     config.Rate,
		useScale: config.UseScale,
		src:      tensor.NewSource(seedOrClock(config.Seed)),
	}
}

// Forward applies dropout in the Training phase.
func (l *Dropout) Forward(x autograd.Node, phase Phase) autograd.Node {
	return functions.Dropout(x, l.rate, phase == Training, l.useScale, l.src)
}

// Activation applies a pointwise nonlinearity.
type Activation struct {
	Base
	fn functions.Activation
}

// NewActivation wraps fn as a layer named name.
func NewActivation(name string, fn functions.Activation) *Activation {
	return &Activation{Base: newBase(name), fn: fn}
}

// Forward applies the activation.
func (l *Activation) Forward(x autograd.Node, _ Phase) autograd.Node {
	return l.fn.Apply(x)
}

// NewSigmoid creates a sigmoid activation layer.
func NewSigmoid() *Activation { return NewActivation("Sigmoid", functions.SigmoidFn) }

// NewTanh creates a tanh activation layer.
func NewTanh() *Activation { return NewActivation("Tanh", functions.TanhFn) }

// NewReLU creates a ReLU activation layer.
func NewReLU() *Activation { return NewActivation("ReLU", functions.ReLUFn) }

// NewLeakyReLU creates a leaky ReLU layer with the given negative slope.
func NewLeakyReLU(alpha float64) *Activation {
	return NewActivation("LeakyReLU", functions.LeakyReLUFn(alpha))
}

// NewELU creates an ELU activation layer.
func NewELU(alpha float64) *Activation { return NewActivation("ELU", functions.ELUFn(alpha)) }

// NewSoftplus creates a softplus activation layer.
func NewSoftplus() *Activation { return NewActivation("Softplus", functions.SoftplusFn) }

// NewSoftsign creates a softsign activation layer.
func NewSoftsign() *Activation { return NewActivation("Softsign", functions.SoftsignFn) }

// NewSwish creates a swish activation layer.
func NewSwish() *Activation { return NewActivation("Swish", functions.SwishFn) }
