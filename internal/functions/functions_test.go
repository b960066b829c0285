package functions

import (
	"math"
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// checkGrad compares the backward pass of build against central finite
// differences of the weighted sum of its output.
func checkGrad(t *testing.T, name string, x0 *tensor.Array, build func(x autograd.Node) autograd.Node) {
	t.Helper()

	v := autograd.NewVariable(x0.Clone())
	out := build(v)
	weights := tensor.RandUniform(tensor.NewSource(7), -1, 1, out.Shape()...)
	autograd.Backprop(autograd.SumAll(autograd.Mul(out, autograd.Const(weights))))
	require.NotNil(t, v.Grad(), name)
	analytic := v.Grad().Data()

	shape := x0.Shape()
	numeric := fd.Gradient(nil, func(xs []float64) float64 {
		a := tensor.New(shape, append([]float64(nil), xs...))
		return build(autograd.Const(a)).Data().Mul(weights).SumAll()
	}, x0.Data(), &fd.Settings{Formula: fd.Central, Step: 1e-6})

	for i := range numeric {
		tol := 1e-3 * math.Max(1, math.Abs(numeric[i]))
		assert.InDelta(t, numeric[i], analytic[i], tol, "%s: element %d", name, i)
	}
}

func randArray(seed uint64, shape ...int) *tensor.Array {
	return tensor.RandNormal(tensor.NewSource(seed), 0, 1, shape...)
}

func TestMathGradients(t *testing.T) {
	pos := tensor.RandUniform(tensor.NewSource(3), 0.5, 2, 2, 3)
	checkGrad(t, "exp", randArray(1, 2, 3), func(x autograd.Node) autograd.Node { return Exp(x) })
	checkGrad(t, "log", pos, func(x autograd.Node) autograd.Node { return Log(x) })
	checkGrad(t, "sqrt", pos, func(x autograd.Node) autograd.Node { return Sqrt(x) })
	checkGrad(t, "abs", pos.MulScalar(-1), func(x autograd.Node) autograd.Node { return Abs(x) })
}

func TestActivationGradients(t *testing.T) {
	x := randArray(2, 3, 4)
	cases := map[string]func(autograd.Node) autograd.Node{
		"sigmoid":   func(x autograd.Node) autograd.Node { return Sigmoid(x) },
		"tanh":      func(x autograd.Node) autograd.Node { return Tanh(x) },
		"relu":      func(x autograd.Node) autograd.Node { return ReLU(x) },
		"leakyrelu": func(x autograd.Node) autograd.Node { return LeakyReLU(x, 0.3) },
		"elu":       func(x autograd.Node) autograd.Node { return ELU(x, 1) },
		"softplus":  func(x autograd.Node) autograd.Node { return Softplus(x) },
		"softsign":  func(x autograd.Node) autograd.Node { return Softsign(x) },
		"swish":     func(x autograd.Node) autograd.Node { return Swish(x) },
	}
	for name, build := range cases {
		checkGrad(t, name, x, build)
	}
}

func TestLossGradients(t *testing.T) {
	y := randArray(4, 4, 3)
	onehot := tensor.FromRows([][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {0, 1, 0}})
	binary := tensor.FromRows([][]float64{{1, 0, 1}, {0, 0, 1}, {1, 1, 0}, {0, 1, 0}})
	target := randArray(5, 4, 3)

	checkGrad(t, "mse", y, func(x autograd.Node) autograd.Node {
		return MeanSquaredError(x, autograd.Const(target))
	})
	checkGrad(t, "softmax", y, func(x autograd.Node) autograd.Node {
		return SoftmaxCrossEntropy(x, autograd.Const(onehot))
	})
	checkGrad(t, "sigmoid", y, func(x autograd.Node) autograd.Node {
		return SigmoidCrossEntropy(x, autograd.Const(binary))
	})
}

func TestLossValues(t *testing.T) {
	y := autograd.Const(tensor.FromRows([][]float64{{1, 2}, {3, 4}}))
	tt := autograd.Const(tensor.FromRows([][]float64{{1, 0}, {3, 2}}))

	assert.InDelta(t, 0.5*(4+4)/2, MeanSquaredError(y, tt).Data().Item(), 1e-12)
	assert.InDelta(t, (2+2)/2.0, MeanAbsoluteError(y, tt).Data().Item(), 1e-12)
	// |error| mean is 2 > 1, so Huber falls back to the absolute error.
	assert.InDelta(t, 2.0, Huber(y, tt).Data().Item(), 1e-12)

	small := autograd.Const(tensor.FromRows([][]float64{{1.5, 0}, {3, 2}}))
	assert.InDelta(t, 0.5*0.25/2, Huber(small, tt).Data().Item(), 1e-12)
}

func TestSoftmaxRowsSumToOne(t *testing.T) {
	p := Softmax(tensor.FromRows([][]float64{{1000, 1000}, {0, math.Log(3)}}))
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.25, 0.75}, p.Data(), 1e-12)
}

func TestDropout(t *testing.T) {
	x := autograd.NewVariable(tensor.Ones(10, 10))
	y := Dropout(x, 0.5, true, false, tensor.NewSource(1))

	mask := y.Data()
	zeros := 0
	for _, v := range mask.Data() {
		if v == 0 {
			zeros++
		}
	}
	assert.Greater(t, zeros, 20)
	assert.Less(t, zeros, 80)

	autograd.Backprop(y)
	assert.Equal(t, mask.Data(), x.Grad().Data(), "gradient flows through the same mask")

	scaled := Dropout(autograd.Const(tensor.Ones(2)), 0.25, false, true, nil)
	assert.Equal(t, []float64{0.75, 0.75}, scaled.Data().Data())
}

func TestEmbeddingMaskZero(t *testing.T) {
	w := autograd.NewVariable(tensor.FromRows([][]float64{{9, 9}, {1, 2}, {3, 4}}))
	ids := autograd.Const(tensor.FromRows([][]float64{{0, 1}, {2, 1}}))

	y := Embedding(ids, w, true)
	assert.Equal(t, tensor.Shape{2, 2, 2}, y.Shape())
	assert.Equal(t, []float64{0, 0, 1, 2, 3, 4, 1, 2}, y.Data().Data())

	autograd.Backprop(y)
	assert.Equal(t, []float64{0, 0, 2, 2, 1, 1}, w.Grad().Data())
}

func TestBatchNormGradient(t *testing.T) {
	gamma := autograd.Const(tensor.FromRows([][]float64{{1.5, 0.5, 2}}))
	beta := autograd.Const(tensor.FromRows([][]float64{{0.1, -0.2, 0.3}}))
	build := func(x autograd.Node) autograd.Node {
		fn := &BatchNormFn{Momentum: 0.9, Eps: 1e-7, Training: true,
			RunningMean: tensor.Zeros(1, 3), RunningVar: tensor.Ones(1, 3)}
		return BatchNormalization(fn, x, gamma, beta)
	}
	checkGrad(t, "batchnorm", randArray(8, 5, 3), build)

	fn := &BatchNormFn{Momentum: 0.9, Eps: 1e-7, Training: true,
		RunningMean: tensor.Zeros(1, 3), RunningVar: tensor.Ones(1, 3)}
	BatchNormalization(fn, autograd.Const(tensor.FromRows([][]float64{{1, 2, 3}, {3, 4, 5}})), gamma, beta)
	assert.InDeltaSlice(t, []float64{0.2, 0.3, 0.4}, fn.RunningMean.Data(), 1e-12)
}

func TestTimeSplitConcatenateRoundTrip(t *testing.T) {
	x := autograd.NewVariable(randArray(9, 2, 3, 4))
	steps := TimeSplit(x)
	require.Len(t, steps, 3)
	assert.Equal(t, tensor.Shape{2, 4}, steps[1].Shape())

	nodes := make([]autograd.Node, len(steps))
	for i, s := range steps {
		nodes[i] = s
	}
	y := TimeConcatenate(nodes...)
	assert.True(t, y.Data().Equal(x.Data()))

	autograd.Backprop(y)
	assert.True(t, x.Grad().Equal(tensor.Ones(2, 3, 4)))
}

func TestRecurrentCellGradients(t *testing.T) {
	const batch, in, units = 3, 2, 4
	x := randArray(10, batch, in)
	h := randArray(11, batch, units)
	c := randArray(12, batch, units)
	w := randArray(13, in, 4*units).MulScalar(0.5)
	u := randArray(14, units, 4*units).MulScalar(0.5)
	b := randArray(15, 4*units)

	k := autograd.Const
	checkGrad(t, "rnn/x", x, func(v autograd.Node) autograd.Node {
		return Tanh(SimpleRNNCell(v, k(h), k(w.Split([]int{units, 3 * units}, 1)[0]),
			k(u.Split([]int{units, 3 * units}, 1)[0]), nil))
	})
	checkGrad(t, "lstm/x", x, func(v autograd.Node) autograd.Node {
		return LSTMCellH(v, k(h), k(c), k(w), k(u), k(b))
	})
	checkGrad(t, "lstm/c", c, func(v autograd.Node) autograd.Node {
		// Both outputs must be consumed for the cell to fire.
		h2, c2 := LSTMCell(k(x), k(h), v, k(w), k(u), k(b))
		return autograd.Add(h2, c2)
	})
	checkGrad(t, "lstm/w", w, func(v autograd.Node) autograd.Node {
		return LSTMCellH(k(x), k(h), k(c), v, k(u), k(b))
	})
	checkGrad(t, "lstm/b", b, func(v autograd.Node) autograd.Node {
		return LSTMCellH(k(x), k(h), k(c), k(w), k(u), v)
	})
}

func TestMaxIsForwardOnly(t *testing.T) {
	x := autograd.NewVariable(tensor.FromRows([][]float64{{1, 5}, {7, 2}}))
	y := Max(x, 1, false)
	assert.Equal(t, []float64{5, 7}, y.Data().Data())

	err := exceptions.TryCatch[error](func() { autograd.Backprop(y) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, autograd.ErrNotImplemented))
	assert.Contains(t, err.Error(), "MaxFn")
}
