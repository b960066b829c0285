package autograd

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/graphnet/internal/tensor"
)

// countingFn is an identity function that counts its backward calls.
type countingFn struct {
	calls int
}

func (f *countingFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{xs[0].Clone()}
}

func (f *countingFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	f.calls++
	return []*tensor.Array{dys[0]}
}

func TestDenseScenario(t *testing.T) {
	x := NewVariable(tensor.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}}))
	w := NewVariable(tensor.FromRows([][]float64{{10, 20}, {10, 20}, {10, 20}}))
	b := NewVariable(tensor.FromSlice([]float64{5, 10}, 2))

	y := Add(Dot(x, w), b)
	assert.Equal(t, []float64{65, 130, 155, 310}, y.Data().Data())

	Backprop(y)

	assert.Equal(t, []float64{5, 5, 7, 7, 9, 9}, w.Grad().Data())
	assert.Equal(t, []float64{2, 2}, b.Grad().Data())
	assert.Equal(t, []float64{30, 30, 30, 30, 30, 30}, x.Grad().Data())
}

func TestSelfAddRegistersTwoEdges(t *testing.T) {
	x := NewVariable(tensor.FromSlice([]float64{1, 2, 3}, 3))
	y := Add(x, x)
	require.Equal(t, 2, x.NumEdges())

	Backprop(y)
	assert.Equal(t, []float64{2, 2, 2}, x.Grad().Data())
	assert.Equal(t, 0, x.NumEdges(), "edges are released after firing")
}

func TestFanInWaitsForEveryEdge(t *testing.T) {
	x := NewVariable(tensor.FromSlice([]float64{1, 1}, 2))
	f1, f2, f3 := &countingFn{}, &countingFn{}, &countingFn{}
	a := Apply(f1, x)
	b := Apply(f2, x)
	c := Apply(f3, x)
	require.Equal(t, 3, x.NumEdges())

	// Report out of order; x must stay silent until the third arrives.
	BackpropWith(c, tensor.FromSlice([]float64{1, 2}, 2))
	assert.Nil(t, x.Grad())
	BackpropWith(a, tensor.FromSlice([]float64{10, 20}, 2))
	assert.Nil(t, x.Grad())
	BackpropWith(b, tensor.FromSlice([]float64{100, 200}, 2))

	require.NotNil(t, x.Grad())
	assert.Equal(t, []float64{111, 222}, x.Grad().Data())
	assert.Equal(t, 1, f1.calls)
	assert.Equal(t, 1, f2.calls)
	assert.Equal(t, 1, f3.calls)
}

func TestSharedInteriorNodeFiresOnce(t *testing.T) {
	x := NewVariable(tensor.FromSlice([]float64{2}, 1))
	f := &countingFn{}
	h := Apply(f, x)
	y := Add(Mul(h, h), h)

	Backprop(y)
	assert.Equal(t, 1, f.calls)
	// d(h² + h)/dh = 2h + 1
	assert.Equal(t, []float64{5}, x.Grad().Data())
}

func TestBatchAxisReduction(t *testing.T) {
	b := NewVariable(tensor.Zeros(3))
	x := Const(tensor.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}}))
	y := Mul(x, b)
	Backprop(y)
	assert.Equal(t, []float64{5, 7, 9}, b.Grad().Data())
}

func TestAccumulateShapeRules(t *testing.T) {
	v := NewVariable(tensor.Zeros(2, 3))
	v.accumulate(tensor.Ones(2, 3))
	v.accumulate(tensor.Ones(4, 2, 3))
	v.accumulate(tensor.Ones(2, 3, 1))
	assert.Equal(t, []float64{6, 6, 6, 6, 6, 6}, v.Grad().Data())

	err := exceptions.TryCatch[error](func() { v.accumulate(tensor.Ones(3, 2)) })
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, tensor.Shape{2, 3}, shapeErr.DataShape)
	assert.Equal(t, tensor.Shape{3, 2}, shapeErr.GradShape)
	assert.Contains(t, shapeErr.Error(), "shape is mismatched")
}

func TestSplitWaitsForBothOutputs(t *testing.T) {
	x := NewVariable(tensor.FromRows([][]float64{{1, 2, 3, 4}}))
	parts := Split(x, []int{1, 3}, 1)
	require.Len(t, parts, 2)
	assert.Equal(t, []float64{1}, parts[0].Data().Data())
	assert.Equal(t, []float64{2, 3, 4}, parts[1].Data().Data())

	BackpropWith(parts[1], tensor.FromRows([][]float64{{7, 8, 9}}))
	assert.Nil(t, x.Grad(), "link must hold until every output reported")

	BackpropWith(parts[0], tensor.FromRows([][]float64{{6}}))
	assert.Equal(t, []float64{6, 7, 8, 9}, x.Grad().Data())
}

func TestStagingTwiceIsFatal(t *testing.T) {
	x := NewVariable(tensor.FromSlice([]float64{1}, 1))
	a := Apply(&countingFn{}, x)
	_ = Apply(&countingFn{}, x)
	Backprop(a)
	assert.Panics(t, func() { Backprop(a) })
}

func TestNoGradIsSilent(t *testing.T) {
	x := Const(tensor.FromSlice([]float64{1, 2}, 2))
	y := Mul(x, x)
	assert.Nil(t, y.Link())
	assert.False(t, y.RequiresGrad())
	assert.NotPanics(t, func() { Backprop(y) })
}

func TestFrozenVariableGetsZeroScalar(t *testing.T) {
	x := NewVariable(tensor.FromSlice([]float64{1, 2}, 2))
	w := NewVariable(tensor.FromSlice([]float64{3, 4}, 2))
	w.SetRequiresGrad(false)

	Backprop(SumAll(Mul(x, w)))
	assert.Equal(t, []float64{3, 4}, x.Grad().Data())
	require.NotNil(t, w.Grad())
	assert.Equal(t, 0.0, w.Grad().Item())
}

func TestRepeatedPassesAreIdentical(t *testing.T) {
	x := NewVariable(tensor.FromRows([][]float64{{1, -2}, {3, 0.5}}))
	w := NewVariable(tensor.FromRows([][]float64{{0.1, 0.2}, {-0.3, 0.4}}))

	run := func() []float64 {
		w.ZeroGrad()
		x.ZeroGrad()
		Backprop(MeanAll(Pow(Dot(x, w), 2)))
		return append([]float64(nil), w.Grad().Data()...)
	}
	first := run()
	assert.Equal(t, first, run())
}

func TestReductionsAndShapeOps(t *testing.T) {
	x := NewVariable(tensor.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}}))

	s := Sum(x, 1, false)
	assert.Equal(t, []float64{6, 15}, s.Data().Data())
	BackpropWith(s, tensor.FromSlice([]float64{1, 2}, 2))
	assert.Equal(t, []float64{1, 1, 1, 2, 2, 2}, x.Grad().Data())

	x.ZeroGrad()
	m := Mean(x, 0, true)
	Backprop(m)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, x.Grad().Data())

	x.ZeroGrad()
	tr := Transpose(x)
	assert.Equal(t, tensor.Shape{3, 2}, tr.Shape())
	BackpropWith(tr, tensor.FromRows([][]float64{{1, 4}, {2, 5}, {3, 6}}))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, x.Grad().Data())

	x.ZeroGrad()
	c := Concatenate(1, x, Const(tensor.Zeros(2, 1)))
	assert.Equal(t, tensor.Shape{2, 4}, c.Shape())
	Backprop(c)
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, x.Grad().Data())
}

type forwardOnlyFn struct {
	ForwardOnly
}

func (forwardOnlyFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	return []*tensor.Array{xs[0].Clone()}
}

func TestForwardOnlyFailsOnBackward(t *testing.T) {
	x := NewVariable(tensor.Ones(2))
	y := Apply(forwardOnlyFn{}, x)

	err := exceptions.TryCatch[error](func() { Backprop(y) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotImplemented))
	assert.Contains(t, err.Error(), "Backward")
}
