package nn_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/nn"
	"github.com/born-ml/graphnet/internal/optim"
	"github.com/born-ml/graphnet/internal/tensor"
)

func xorData() (x, y *tensor.Array) {
	x = tensor.FromRows([][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}})
	y = tensor.FromRows([][]float64{{0}, {1}, {1}, {0}})
	return x, y
}

func TestTrainXOR(t *testing.T) {
	model := nn.NewSequential(
		nn.NewInput(2),
		nn.NewDense(nn.DenseConfig{Units: 8, WeightInit: nn.NewXavier(42)}),
		nn.NewTanh(),
		nn.NewDense(nn.DenseConfig{Units: 1, WeightInit: nn.NewXavier(43)}),
	)
	model.Setup(optim.NewAdam(optim.AdamConfig{LR: 0.05}), nn.SigmoidCrossEntropy{})

	x, y := xorData()
	history, err := model.Train(x, y, nn.TrainConfig{Epochs: 1500, BatchSize: 4})
	require.NoError(t, err)
	require.Len(t, history, 1500)
	assert.Less(t, history[len(history)-1].Loss, history[0].Loss)

	accuracy, loss, err := model.Evaluate(x, y, 4)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy)
	assert.Less(t, loss, 0.1)

	pred, err := model.Predict1(tensor.FromSlice([]float64{1, 0}, 2))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1}, pred.Shape())
	assert.Greater(t, pred.Item(), 0.0)
}

func TestTrainWithShuffleAndTestSplit(t *testing.T) {
	model := nn.NewSequential(nn.NewDense(nn.DenseConfig{Units: 3, WeightInit: nn.NewXavier(1)}))
	model.Setup(optim.NewSGD(optim.SGDConfig{LR: 0.1}), nn.SoftmaxCrossEntropy{})

	x := tensor.RandNormal(tensor.NewSource(2), 0, 1, 10, 4)
	y := tensor.Zeros(10, 3)
	for i := 0; i < 10; i++ {
		y.Set(1, i, i%3)
	}
	history, err := model.Train(x, y, nn.TrainConfig{
		Epochs:    3,
		BatchSize: 4,
		Shuffle:   true,
		Seed:      5,
		Test:      &nn.Dataset{X: x, Y: y},
	})
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, s := range history {
		assert.Equal(t, i+1, s.Epoch)
		assert.Greater(t, s.TestLoss, 0.0)
		assert.GreaterOrEqual(t, s.TestAccuracy, 0.0)
		assert.LessOrEqual(t, s.TestAccuracy, 1.0)
	}
}

func TestModelNotSetup(t *testing.T) {
	model := nn.NewSequential(nn.NewDense(nn.DenseConfig{Units: 1}))
	x, y := xorData()

	_, err := model.TrainOnBatch(x, y)
	assert.True(t, errors.Is(err, nn.ErrNotSetup))
	_, err = model.Train(x, y, nn.TrainConfig{})
	assert.True(t, errors.Is(err, nn.ErrNotSetup))
	_, _, err = model.Evaluate(x, y, 2)
	assert.True(t, errors.Is(err, nn.ErrNotSetup))
	assert.False(t, model.Layers()[0].(*nn.Dense).Built(), "no graph work before setup")
}

func TestGraphModelWithoutForward(t *testing.T) {
	model := nn.NewGraph(nil)
	_, err := model.Predict(tensor.Ones(2, 2), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, autograd.ErrNotImplemented), "got %v", err)
}

func TestShapeErrorsAreReturned(t *testing.T) {
	model := nn.NewSequential(nn.NewInput(3), nn.NewDense(nn.DenseConfig{Units: 1}))
	model.Setup(optim.NewSGD(optim.SGDConfig{}), nn.MeanSquaredError{})

	_, err := model.TrainOnBatch(tensor.Ones(2, 4), tensor.Ones(2, 1))
	var shapeErr *nn.ShapeError
	require.True(t, errors.As(err, &shapeErr), "got %v", err)
	assert.Equal(t, "Input", shapeErr.Layer)
}

func TestGraphModelMergeAndSplit(t *testing.T) {
	left := nn.NewDense(nn.DenseConfig{Units: 2, WeightInit: nn.NewXavier(1)})
	right := nn.NewDense(nn.DenseConfig{Units: 2, WeightInit: nn.NewXavier(2)})
	split := nn.NewSplit(1)
	concat := nn.NewConcatenate(1)
	head := nn.NewDense(nn.DenseConfig{Units: 1, WeightInit: nn.NewXavier(3)})

	model := nn.NewGraph(func(x autograd.Node, phase nn.Phase) autograd.Node {
		a, b := split.Split(x)
		return head.Forward(concat.Merge(left.Forward(a, phase), right.Forward(b, phase)), phase)
	}, split, left, right, concat, head)
	model.Setup(optim.NewSGD(optim.SGDConfig{LR: 0.1}), nn.MeanSquaredError{})

	x := tensor.RandNormal(tensor.NewSource(4), 0, 1, 6, 3)
	y := tensor.RandNormal(tensor.NewSource(5), 0, 1, 6, 1)
	_, err := model.Forward(autograd.Const(x), nn.Inference)
	require.NoError(t, err)
	before := left.Weight().Data()

	first, err := model.TrainOnBatch(x, y)
	require.NoError(t, err)
	assert.NotSame(t, before, left.Weight().Data(), "left branch updated")
	assert.Equal(t, tensor.Shape{1, 2}, left.Weight().Shape())
	assert.Equal(t, tensor.Shape{2, 2}, right.Weight().Shape())

	for step := 0; step < 50; step++ {
		_, err = model.TrainOnBatch(x, y)
		require.NoError(t, err)
	}
	_, last, err := model.TestOnBatch(x, y)
	require.NoError(t, err)
	assert.Less(t, last, first)
}

func TestTrainingWithRegularizerAndFrozenLayer(t *testing.T) {
	frozen := nn.NewDense(nn.DenseConfig{Units: 3, WeightInit: nn.NewXavier(1)})
	reg := nn.NewDense(nn.DenseConfig{Units: 1, WeightInit: nn.NewXavier(2), WeightReg: nn.L2{Lambda: 0.01}})
	model := nn.NewSequential(frozen, nn.NewReLU(), reg)
	model.Setup(optim.NewSGD(optim.SGDConfig{LR: 0.1}), nn.MeanSquaredError{})

	x := tensor.RandNormal(tensor.NewSource(3), 0, 1, 5, 2)
	y := tensor.RandNormal(tensor.NewSource(4), 0, 1, 5, 1)
	_, err := model.TrainOnBatch(x, y)
	require.NoError(t, err)

	frozen.SetTrainable(false)
	w := frozen.Weight().Data().Clone()
	_, err = model.TrainOnBatch(x, y)
	require.NoError(t, err)
	assert.True(t, w.Equal(frozen.Weight().Data()), "frozen weights unchanged")
	for _, p := range model.Params() {
		assert.Zero(t, p.NumEdges(), "%s has stale edges", p.Name())
	}
}

func TestEvaluateAccuracyRules(t *testing.T) {
	identity := nn.NewGraph(func(x autograd.Node, _ nn.Phase) autograd.Node { return x })

	identity.Setup(nil, nn.SigmoidCrossEntropy{})
	x := tensor.FromRows([][]float64{{-1}, {2}, {0.5}})
	y := tensor.FromRows([][]float64{{0}, {1}, {0}})
	correct, _, err := identity.TestOnBatch(x, y)
	require.NoError(t, err)
	assert.Equal(t, 2, correct)

	identity.Setup(nil, nn.MeanSquaredError{})
	correct, loss, err := identity.TestOnBatch(
		tensor.FromRows([][]float64{{-1}, {2}}),
		tensor.FromRows([][]float64{{-3}, {1}}),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, correct)
	assert.InDelta(t, 0.5*(4+1)/2, loss, 1e-12)

	correct, _, err = identity.TestOnBatch(
		tensor.FromRows([][]float64{{1, 0}, {0, 1}}),
		tensor.FromRows([][]float64{{1, 0}, {1, 0}}),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, correct)

	accuracy, _, err := identity.Evaluate(
		tensor.FromRows([][]float64{{1, 0}, {0, 1}, {0, 1}}),
		tensor.FromRows([][]float64{{1, 0}, {1, 0}, {0, 1}}),
		2,
	)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, accuracy, 1e-12)
}

func TestTrainStopsOnNaN(t *testing.T) {
	model := nn.NewSequential(nn.NewDense(nn.DenseConfig{Units: 1}))
	model.Setup(optim.NewSGD(optim.SGDConfig{}), nn.LossFunc(func(pred, _ autograd.Node) autograd.Node {
		return autograd.Scalar(math.NaN())
	}))
	x, y := xorData()
	history, err := model.Train(x, y, nn.TrainConfig{Epochs: 5, BatchSize: 2})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPredictBatchesAndResetsEdges(t *testing.T) {
	d := nn.NewDense(nn.DenseConfig{Units: 3})
	model := nn.NewSequential(d)
	x := tensor.RandNormal(tensor.NewSource(1), 0, 1, 5, 2)

	all, err := model.Predict(x, 0)
	require.NoError(t, err)
	batched, err := model.Predict(x, 2)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{5, 3}, batched.Shape())
	assert.True(t, all.AllClose(batched, 1e-12))
	assert.Equal(t, 1, d.Weight().NumEdges(), "only the last pass is recorded")

	_, err = model.Forward(autograd.Const(x), nn.Inference)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Weight().NumEdges())
	assert.Equal(t, tensor.Shape{5, 3}, model.Output().Shape())
}

func TestParamTags(t *testing.T) {
	last := nn.NewDense(nn.DenseConfig{Units: 1})
	model := nn.NewSequential(nn.NewInput(10), nn.NewDense(nn.DenseConfig{Units: 5}), last)
	_, err := model.Predict1(tensor.Zeros(10))
	require.NoError(t, err)

	assert.Equal(t, "Dense_1__bias", last.Bias().Name())
	assert.Equal(t, "Dense_1__weight", last.Weight().Name())
	assert.Equal(t, 10*5+5+5+1, model.NumParams())

	summary := model.Summary()
	assert.Contains(t, summary, "Dense_0__weight")
	assert.Contains(t, summary, "total parameters: 61")
}

func TestIterator(t *testing.T) {
	x := tensor.FromRows([][]float64{{0}, {1}, {2}, {3}, {4}})
	y := x.MulScalar(10)

	it := nn.NewIterator(x, y, tensor.NewSource(3), false)
	assert.Equal(t, 3, it.MaxSteps(2))
	seen := map[float64]bool{}
	steps := 0
	err := it.ForEach(2, func(xb, yb *tensor.Array, step int) error {
		assert.Equal(t, steps, step)
		steps++
		for i, v := range xb.Data() {
			assert.Equal(t, v*10, yb.Data()[i], "rows stay aligned")
			seen[v] = true
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)
	assert.Len(t, seen, 5)

	rounded := nn.NewIterator(x, y, nil, true)
	assert.Equal(t, 2, rounded.MaxSteps(2))
	n := 0
	require.NoError(t, rounded.ForEach(2, func(xb, _ *tensor.Array, _ int) error {
		assert.Equal(t, 2, xb.Shape()[0])
		n++
		return nil
	}))
	assert.Equal(t, 2, n)
}
