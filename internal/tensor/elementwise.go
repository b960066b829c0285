package tensor

import (
	"math"

	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/graphnet/internal/parallel"
)

// kernels controls how elementwise kernels over large arrays are split.
var kernels = parallel.DefaultConfig()

// SetWorkers sets the number of goroutines used by elementwise kernels on
// large arrays. n <= 1 makes every kernel sequential.
func SetWorkers(n int) {
	kernels.NumWorkers = n
	kernels.Enabled = n > 1
}

// binary applies op elementwise with NumPy broadcasting.
func binary(name string, a, b *Array, op func(x, y float64) float64) *Array {
	outShape, needsBroadcast, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		exceptions.Panicf("tensor.%s: %v", name, err)
	}
	out := &Array{shape: outShape, data: make([]float64, outShape.NumElements())}

	if !needsBroadcast {
		parallel.For(len(out.data), func(i int) {
			out.data[i] = op(a.data[i], b.data[i])
		}, kernels)
		return out
	}

	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(a.shape, outShape)
	bStrides := broadcastStrides(b.shape, outShape)
	parallel.For(len(out.data), func(i int) {
		out.data[i] = op(a.data[flatIndex(i, outStrides, aStrides)], b.data[flatIndex(i, outStrides, bStrides)])
	}, kernels)
	return out
}

// Map returns f applied to every element.
func (a *Array) Map(f func(float64) float64) *Array {
	out := &Array{shape: a.shape.Clone(), data: make([]float64, len(a.data))}
	parallel.Range(len(a.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = f(a.data[i])
		}
	}, kernels)
	return out
}

// Add returns a + b with broadcasting.
func (a *Array) Add(b *Array) *Array {
	if a.shape.Equal(b.shape) {
		out := &Array{shape: a.shape.Clone(), data: make([]float64, len(a.data))}
		floats.AddTo(out.data, a.data, b.data)
		return out
	}
	return binary("Add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub returns a - b with broadcasting.
func (a *Array) Sub(b *Array) *Array {
	if a.shape.Equal(b.shape) {
		out := &Array{shape: a.shape.Clone(), data: make([]float64, len(a.data))}
		floats.SubTo(out.data, a.data, b.data)
		return out
	}
	return binary("Sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul returns a * b elementwise with broadcasting.
func (a *Array) Mul(b *Array) *Array {
	if a.shape.Equal(b.shape) {
		out := &Array{shape: a.shape.Clone(), data: make([]float64, len(a.data))}
		floats.MulTo(out.data, a.data, b.data)
		return out
	}
	return binary("Mul", a, b, func(x, y float64) float64 { return x * y })
}

// Div returns a / b elementwise with broadcasting.
func (a *Array) Div(b *Array) *Array {
	if a.shape.Equal(b.shape) {
		out := &Array{shape: a.shape.Clone(), data: make([]float64, len(a.data))}
		floats.DivTo(out.data, a.data, b.data)
		return out
	}
	return binary("Div", a, b, func(x, y float64) float64 { return x / y })
}

// Maximum returns the elementwise maximum of a and b with broadcasting.
func (a *Array) Maximum(b *Array) *Array {
	return binary("Maximum", a, b, math.Max)
}

// AddScalar returns a + s.
func (a *Array) AddScalar(s float64) *Array {
	out := a.Clone()
	floats.AddConst(s, out.data)
	return out
}

// MulScalar returns a * s.
func (a *Array) MulScalar(s float64) *Array {
	out := a.Clone()
	floats.Scale(s, out.data)
	return out
}

// Neg returns -a.
func (a *Array) Neg() *Array {
	return a.MulScalar(-1)
}

// Pow returns a raised elementwise to p.
func (a *Array) Pow(p float64) *Array {
	switch p {
	case 1:
		return a.Clone()
	case 2:
		return a.Map(func(v float64) float64 { return v * v })
	}
	return a.Map(func(v float64) float64 { return math.Pow(v, p) })
}

// Exp returns e^a elementwise.
func (a *Array) Exp() *Array { return a.Map(math.Exp) }

// Log returns the natural logarithm elementwise.
func (a *Array) Log() *Array { return a.Map(math.Log) }

// Sqrt returns the square root elementwise.
func (a *Array) Sqrt() *Array { return a.Map(math.Sqrt) }

// Tanh returns the hyperbolic tangent elementwise.
func (a *Array) Tanh() *Array { return a.Map(math.Tanh) }

// Abs returns |a| elementwise.
func (a *Array) Abs() *Array { return a.Map(math.Abs) }

// Sign returns -1, 0 or 1 per element.
func (a *Array) Sign() *Array {
	return a.Map(func(v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		}
		return 0
	})
}
