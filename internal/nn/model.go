package nn

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/optim"
	"github.com/born-ml/graphnet/internal/tensor"
)

// ForwardFunc is the body of a graph model. It applies the model's layers
// to x in any order, calling Merge and Split where needed.
type ForwardFunc func(x autograd.Node, phase Phase) autograd.Node

// Model drives forward and backward passes over a set of layers.
//
// A sequential model threads its input through the layers in order. A graph
// model runs a user ForwardFunc and only uses the layer list to collect
// parameters. In both cases the loss is built in the same graph and a
// single backward pass from it reaches every parameter.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewDense(nn.DenseConfig{Units: 4}),
//	    nn.NewTanh(),
//	    nn.NewDense(nn.DenseConfig{Units: 1}),
//	)
//	model.Setup(optim.NewAdam(optim.AdamConfig{}), nn.SigmoidCrossEntropy{})
//	history, err := model.Train(x, y, nn.TrainConfig{Epochs: 100, BatchSize: 4})
type Model struct {
	layers  []Layer
	forward ForwardFunc
	opt     optim.Optimizer
	loss    Loss
	output  autograd.Node
}

// NewSequential creates a model that applies layers in order.
func NewSequential(layers ...Layer) *Model {
	m := &Model{layers: layers}
	m.forward = m.sequential
	m.tag()
	return m
}

// NewGraph creates a model whose forward pass is forward. layers must list
// every layer forward uses. A nil forward fails on the first pass.
func NewGraph(forward ForwardFunc, layers ...Layer) *Model {
	m := &Model{layers: layers, forward: forward}
	m.tag()
	return m
}

func (m *Model) sequential(x autograd.Node, phase Phase) autograd.Node {
	for _, l := range m.layers {
		x = l.Forward(x, phase)
	}
	return x
}

// keyed is implemented by layers that embed Base.
type keyed interface {
	paramKeys() []string
}

// tag names every parameter "<Layer>_<i>__<key>", where i counts layers of
// the same name.
func (m *Model) tag() {
	seen := make(map[string]int)
	for _, l := range m.layers {
		id := seen[l.Name()]
		seen[l.Name()]++
		k, ok := l.(keyed)
		if !ok {
			continue
		}
		keys := k.paramKeys()
		for i, p := range l.Params() {
			p.SetName(fmt.Sprintf("%s_%d__%s", l.Name(), id, keys[i]))
		}
	}
}

// Setup sets the optimizer and the loss used by training and evaluation.
func (m *Model) Setup(opt optim.Optimizer, loss Loss) {
	m.opt = opt
	m.loss = loss
}

// Optimizer returns the optimizer set by Setup.
func (m *Model) Optimizer() optim.Optimizer {
	return m.opt
}

// Loss returns the loss set by Setup.
func (m *Model) Loss() Loss {
	return m.loss
}

// Layers returns the model's layers.
func (m *Model) Layers() []Layer {
	return m.layers
}

// Params returns the parameters of every layer, in layer order.
func (m *Model) Params() []*autograd.Param {
	var params []*autograd.Param
	for _, l := range m.layers {
		params = append(params, l.Params()...)
	}
	return params
}

// Output returns the node produced by the last forward pass.
func (m *Model) Output() autograd.Node {
	return m.output
}

// Forward runs the model on x and remembers the output node.
//
// Parameter edges left by earlier passes that were never backpropagated
// (predictions, evaluations) are dropped first.
func (m *Model) Forward(x autograd.Node, phase Phase) (autograd.Node, error) {
	var out autograd.Node
	err := exceptions.TryCatch[error](func() { out = m.run(x, phase) })
	if err != nil {
		return nil, errors.Wrapf(err, "nn: forward pass (%s)", phase)
	}
	return out, nil
}

// run is Forward without the panic boundary.
func (m *Model) run(x autograd.Node, phase Phase) autograd.Node {
	for _, p := range m.Params() {
		p.ResetEdges()
	}
	if m.forward == nil {
		autograd.NotImplemented(m, "Forward")
	}
	m.output = m.forward(x, phase)
	return m.output
}

// lossNode builds the training loss: the data loss plus every regularization
// term.
func (m *Model) lossNode(out, y autograd.Node) autograd.Node {
	total := m.loss.Loss(out, y)
	for _, l := range m.layers {
		r, ok := l.(Regularized)
		if !ok {
			continue
		}
		if term := r.RegularizationLoss(); term != nil {
			total = autograd.Add(total, term)
		}
	}
	return total
}

// TrainOnBatch runs one forward pass, backpropagates the loss and updates
// the parameters. It returns the loss value.
func (m *Model) TrainOnBatch(x, y *tensor.Array) (float64, error) {
	if m.opt == nil || m.loss == nil {
		return 0, ErrNotSetup
	}
	var loss float64
	err := exceptions.TryCatch[error](func() {
		out := m.run(autograd.Const(x), Training)
		l := m.lossNode(out, autograd.Const(y))
		loss = l.Data().Item()
		autograd.Backprop(l)
		m.opt.Update(m.Params())
	})
	if err != nil {
		return 0, errors.Wrap(err, "nn: train on batch")
	}
	return loss, nil
}

// TestOnBatch runs an inference pass and returns the number of correctly
// predicted samples and the data loss.
func (m *Model) TestOnBatch(x, y *tensor.Array) (correct int, loss float64, err error) {
	if m.loss == nil {
		return 0, 0, ErrNotSetup
	}
	err = exceptions.TryCatch[error](func() {
		out := m.run(autograd.Const(x), Inference)
		correct = m.countCorrect(out.Data(), y)
		loss = m.loss.Loss(out, autograd.Const(y)).Data().Item()
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "nn: test on batch")
	}
	return correct, loss, nil
}

// countCorrect compares predictions y with targets t sample by sample.
//
// Single-output models are judged by sign: a logit under 0 must match a
// target under 0.5 with SigmoidCrossEntropy, and under 0 otherwise. Wider
// outputs are judged by the position of the maximum.
func (m *Model) countCorrect(y, t *tensor.Array) int {
	shape := y.Shape()
	n := shape[0]
	if len(shape) == 2 && shape[1] == 1 {
		threshold := 0.0
		if _, ok := m.loss.(SigmoidCrossEntropy); ok {
			threshold = 0.5
		}
		yd, td := y.Data(), t.Reshape(n).Data()
		correct := 0
		for i := 0; i < n; i++ {
			if (yd[i] < 0) == (td[i] < threshold) {
				correct++
			}
		}
		return correct
	}

	width := shape.NumElements() / n
	yi := y.Reshape(n, width).ArgMaxRows()
	ti := t.Reshape(n, width).ArgMaxRows()
	correct := 0
	for i := range yi {
		if yi[i] == ti[i] {
			correct++
		}
	}
	return correct
}

// Evaluate returns the accuracy and the mean per-batch loss over x and y,
// taken in order in batches of batchSize.
func (m *Model) Evaluate(x, y *tensor.Array, batchSize int) (accuracy, loss float64, err error) {
	if m.loss == nil {
		return 0, 0, ErrNotSetup
	}
	n := x.Shape()[0]
	batchSize = min(max(batchSize, 1), n)
	it := NewIterator(x, y, nil, false)
	total, sum := 0, 0.0
	err = it.ForEach(batchSize, func(xb, yb *tensor.Array, _ int) error {
		c, l, err := m.TestOnBatch(xb, yb)
		if err != nil {
			return err
		}
		total += c
		sum += l
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return float64(total) / float64(n), sum / float64(it.MaxSteps(batchSize)), nil
}

// Dataset is a pair of aligned inputs and targets.
type Dataset struct {
	X, Y *tensor.Array
}

// TrainConfig holds configuration for Train.
type TrainConfig struct {
	Epochs    int      // Passes over the data (default: 1)
	BatchSize int      // Samples per update (default: 32)
	Shuffle   bool     // Reshuffle samples every epoch
	Seed      uint64   // Shuffle seed, 0 seeds from the clock
	Test      *Dataset // Optional data evaluated after every epoch
}

// EpochStats records one epoch of training.
type EpochStats struct {
	Epoch        int
	Loss         float64 // Mean training loss over the epoch's batches
	TestAccuracy float64 // Zero without test data
	TestLoss     float64 // Zero without test data
}

// Train fits the model to x and y. It stops early, without an error, when
// the loss becomes NaN.
func (m *Model) Train(x, y *tensor.Array, config TrainConfig) ([]EpochStats, error) {
	if m.opt == nil || m.loss == nil {
		return nil, ErrNotSetup
	}
	if config.Epochs == 0 {
		config.Epochs = 1
	}
	if config.BatchSize == 0 {
		config.BatchSize = 32
	}

	var it *Iterator
	if config.Shuffle {
		it = NewIterator(x, y, tensor.NewSource(seedOrClock(config.Seed)), false)
	} else {
		it = NewIterator(x, y, nil, false)
	}

	history := make([]EpochStats, 0, config.Epochs)
	for epoch := 1; epoch <= config.Epochs; epoch++ {
		stats := EpochStats{Epoch: epoch}
		sum, diverged := 0.0, false
		err := it.ForEach(config.BatchSize, func(xb, yb *tensor.Array, step int) error {
			l, err := m.TrainOnBatch(xb, yb)
			if err != nil {
				return errors.WithMessagef(err, "epoch %d, step %d", epoch, step)
			}
			if math.IsNaN(l) {
				diverged = true
				return errNaN
			}
			sum += l
			return nil
		})
		if diverged {
			klog.Warningf("nn: loss is NaN at epoch %d, training stopped", epoch)
			return history, nil
		}
		if err != nil {
			return history, err
		}
		stats.Loss = sum / float64(it.MaxSteps(config.BatchSize))

		if config.Test != nil {
			stats.TestAccuracy, stats.TestLoss, err = m.Evaluate(config.Test.X, config.Test.Y, config.BatchSize)
			if err != nil {
				return history, err
			}
			klog.V(1).Infof("nn: epoch %d/%d: loss %.6f, test accuracy %.4f, test loss %.6f",
				epoch, config.Epochs, stats.Loss, stats.TestAccuracy, stats.TestLoss)
		} else {
			klog.V(1).Infof("nn: epoch %d/%d: loss %.6f", epoch, config.Epochs, stats.Loss)
		}
		history = append(history, stats)
	}
	return history, nil
}

var errNaN = errors.New("nn: loss is NaN")

// Predict runs an inference pass over x in batches of batchSize and returns
// the stacked outputs. A batchSize of 0 uses one batch.
func (m *Model) Predict(x *tensor.Array, batchSize int) (*tensor.Array, error) {
	n := x.Shape()[0]
	if batchSize <= 0 || batchSize > n {
		batchSize = n
	}
	var outs []*tensor.Array
	it := NewIterator(x, nil, nil, false)
	err := it.ForEach(batchSize, func(xb, _ *tensor.Array, _ int) error {
		out, err := m.Forward(autograd.Const(xb), Inference)
		if err != nil {
			return err
		}
		outs = append(outs, out.Data())
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(outs) == 1 {
		return outs[0], nil
	}
	return tensor.Concatenate(outs, 0), nil
}

// Predict1 predicts a single sample given without its batch axis.
func (m *Model) Predict1(sample *tensor.Array) (*tensor.Array, error) {
	x := sample.Reshape(append([]int{1}, sample.Shape()...)...)
	y, err := m.Predict(x, 1)
	if err != nil {
		return nil, err
	}
	return y.Index(0, 0), nil
}

// NumParams returns the number of scalars in the built parameters.
func (m *Model) NumParams() int {
	total := 0
	for _, p := range m.Params() {
		if p.Built() {
			total += p.Data().Size()
		}
	}
	return total
}

// Summary lists every layer and parameter with its shape and size.
func (m *Model) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-4s %-22s %-32s %14s\n", "#", "layer", "param", "size")
	for i, l := range m.layers {
		params := l.Params()
		if len(params) == 0 {
			fmt.Fprintf(&sb, "%-4d %-22s %-32s %14s\n", i, l.Name(), "-", "0")
			continue
		}
		for _, p := range params {
			size := "unbuilt"
			if p.Built() {
				size = fmt.Sprintf("%v %s", []int(p.Shape()), humanize.Comma(int64(p.Data().Size())))
			}
			fmt.Fprintf(&sb, "%-4d %-22s %-32s %14s\n", i, l.Name(), p.Name(), size)
		}
	}
	fmt.Fprintf(&sb, "total parameters: %s\n", humanize.Comma(int64(m.NumParams())))
	return sb.String()
}
