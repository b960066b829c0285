package functions

import (
	"math"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// elementwise is an activation given by its value and its derivative,
// both evaluated pointwise on the input.
type elementwise struct {
	f, df func(float64) float64
	x     *tensor.Array
}

func (e *elementwise) Forward(xs ...*tensor.Array) []*tensor.Array {
	e.x = xs[0]
	return []*tensor.Array{e.x.Map(e.f)}
}

func (e *elementwise) Backward(dys ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{dys[0].Mul(e.x.Map(e.df))}
}

// Activation names a pointwise nonlinearity. Each call to Function returns
// a fresh application.
type Activation func() autograd.Function

// Apply applies the activation to x.
func (a Activation) Apply(x autograd.Node) *autograd.Tensor {
	return autograd.Apply(a(), x)
}

// SigmoidFn is 1 / (1 + e^-x).
func SigmoidFn() autograd.Function {
	return &elementwise{
		f: sigmoid,
		df: func(v float64) float64 {
			s := sigmoid(v)
			return s * (1 - s)
		},
	}
}

// TanhFn is the hyperbolic tangent.
func TanhFn() autograd.Function {
	return &elementwise{
		f: math.Tanh,
		df: func(v float64) float64 {
			t := math.Tanh(v)
			return 1 - t*t
		},
	}
}

// ReLUFn is max(0, x).
func ReLUFn() autograd.Function {
	return &elementwise{
		f: func(v float64) float64 { return math.Max(0, v) },
		df: func(v float64) float64 {
			if v > 0 {
				return 1
			}
			return 0
		},
	}
}

// LeakyReLUFn returns x for positive inputs and alpha*x otherwise.
func LeakyReLUFn(alpha float64) Activation {
	return func() autograd.Function {
		return &elementwise{
			f: func(v float64) float64 {
				if v > 0 {
					return v
				}
				return alpha * v
			},
			df: func(v float64) float64 {
				if v > 0 {
					return 1
				}
				return alpha
			},
		}
	}
}

// ELUFn returns x for non-negative inputs and alpha*(e^x - 1) otherwise.
func ELUFn(alpha float64) Activation {
	return func() autograd.Function {
		return &elementwise{
			f: func(v float64) float64 {
				if v >= 0 {
					return v
				}
				return alpha * (math.Exp(v) - 1)
			},
			df: func(v float64) float64 {
				if v >= 0 {
					return 1
				}
				return alpha * math.Exp(v)
			},
		}
	}
}

// SoftplusFn is log(1 + e^x).
func SoftplusFn() autograd.Function {
	return &elementwise{
		f:  func(v float64) float64 { return math.Log1p(math.Exp(v)) },
		df: sigmoid,
	}
}

// SoftsignFn is x / (1 + |x|).
func SoftsignFn() autograd.Function {
	return &elementwise{
		f: func(v float64) float64 { return v / (1 + math.Abs(v)) },
		df: func(v float64) float64 {
			d := 1 + math.Abs(v)
			return 1 / (d * d)
		},
	}
}

// SwishFn is x * sigmoid(x).
func SwishFn() autograd.Function {
	return &elementwise{
		f: func(v float64) float64 { return v * sigmoid(v) },
		df: func(v float64) float64 {
			s := sigmoid(v)
			y := v * s
			return y + s*(1-y)
		},
	}
}

// Sigmoid applies SigmoidFn to x.
func Sigmoid(x autograd.Node) *autograd.Tensor { return autograd.Apply(SigmoidFn(), x) }

// Tanh applies TanhFn to x.
func Tanh(x autograd.Node) *autograd.Tensor { return autograd.Apply(TanhFn(), x) }

// ReLU applies ReLUFn to x.
func ReLU(x autograd.Node) *autograd.Tensor { return autograd.Apply(ReLUFn(), x) }

// LeakyReLU applies LeakyReLUFn(alpha) to x.
func LeakyReLU(x autograd.Node, alpha float64) *autograd.Tensor {
	return LeakyReLUFn(alpha).Apply(x)
}

// ELU applies ELUFn(alpha) to x.
func ELU(x autograd.Node, alpha float64) *autograd.Tensor { return ELUFn(alpha).Apply(x) }

// Softplus applies SoftplusFn to x.
func Softplus(x autograd.Node) *autograd.Tensor { return autograd.Apply(SoftplusFn(), x) }

// Softsign applies SoftsignFn to x.
func Softsign(x autograd.Node) *autograd.Tensor { return autograd.Apply(SoftsignFn(), x) }

// Swish applies SwishFn to x.
func Swish(x autograd.Node) *autograd.Tensor { return autograd.Apply(SwishFn(), x) }

// Softmax normalizes each row of a 2D array into a probability
// distribution. It is a plain array helper used by losses and evaluation.
func Softmax(x *tensor.Array) *tensor.Array {
	shifted := x.Sub(x.Max(1, true))
	e := shifted.Exp()
	return e.Div(e.Sum(1, true))
}
