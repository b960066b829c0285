// Package nn builds neural networks on top of the autograd graph.
//
// This package provides:
//   - Layer interface: Base interface for all layers
//   - Initializers: Zeros, Constant, RandomUniform, RandomNormal, Xavier, He
//   - Layers: Input, Dense, Flatten, Reshape, Dropout, activations,
//     BatchNormalization, Embedding, SimpleRNN, LSTM, merges and Split
//   - Regularizers: L1, L2, L1L2
//   - Losses: MeanSquaredError, MeanAbsoluteError, Huber,
//     SoftmaxCrossEntropy, SigmoidCrossEntropy
//   - Model: Sequential and define-by-run graph models with training,
//     evaluation and prediction
//
// Layers own their parameters and create them lazily on the first forward
// pass, once the input shape is known. Parameters enter the graph as
// ordinary function inputs, so their gradients accumulate through the same
// fan-in path as activations.
package nn

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// ErrNotSetup is returned when a model is trained or evaluated before Setup.
var ErrNotSetup = errors.New("nn: model is not set up; call Setup with an optimizer and a loss")

// Phase selects training or inference behavior for layers that differ
// between the two (Dropout, BatchNormalization).
type Phase int

const (
	// Inference runs layers deterministically with stored statistics.
	Inference Phase = iota
	// Training enables dropout masks and batch statistics.
	Training
)

func (p Phase) String() string {
	if p == Training {
		return "training"
	}
	return "inference"
}

// Layer is the base interface for all layers.
//
// Every layer must implement:
//   - Name: The layer kind, used in parameter tags and summaries
//   - Forward: Apply the layer to a node
//   - Params: Return the layer's parameters (possibly not yet built)
type Layer interface {
	// Name returns the layer name, e.g. "Dense".
	Name() string

	// Forward applies the layer. Parameters are built on the first call.
	Forward(x autograd.Node, phase Phase) autograd.Node

	// Params returns the parameters owned by the layer.
	Params() []*autograd.Param
}

// Regularized is implemented by layers that add penalty terms to the loss.
type Regularized interface {
	// RegularizationLoss returns the scalar penalty, or nil if there is none.
	RegularizationLoss() autograd.Node
}

// ShapeError reports an input whose shape a layer cannot accept.
type ShapeError struct {
	Layer string
	Want  tensor.Shape
	Got   tensor.Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("nn: %s expects input shape %v, got %v", e.Layer, e.Want, e.Got)
}

func panicShape(layer string, want, got tensor.Shape) {
	panic(errors.WithStack(&ShapeError{Layer: layer, Want: want, Got: got}))
}

// Base holds the state shared by all layers: the name, the owned parameters
// and whether they have been built.
type Base struct {
	name      string
	params    []*autograd.Param
	keys      []string
	built     bool
	trainable bool
}

func newBase(name string) Base {
	return Base{name: name, trainable: true}
}

// Name returns the layer name.
func (b *Base) Name() string {
	return b.name
}

// Params returns the parameters owned by the layer.
func (b *Base) Params() []*autograd.Param {
	return b.params
}

// Built reports whether the layer's parameters have been allocated.
func (b *Base) Built() bool {
	return b.built
}

// Trainable reports whether the layer's parameters receive gradients.
func (b *Base) Trainable() bool {
	return b.trainable
}

// SetTrainable freezes or unfreezes the layer's parameters. A frozen layer
// still passes gradients to its inputs; its own parameters receive a zero
// gradient and are skipped by optimizers.
func (b *Base) SetTrainable(trainable bool) {
	b.trainable = trainable
	for _, p := range b.params {
		p.SetRequiresGrad(trainable)
	}
}

// newParam registers an unbuilt parameter under key.
func (b *Base) newParam(key string) *autograd.Param {
	p := autograd.NewParam(key, nil)
	p.SetRequiresGrad(b.trainable)
	b.params = append(b.params, p)
	b.keys = append(b.keys, key)
	return p
}

func (b *Base) paramKeys() []string {
	return b.keys
}

// buildOnce runs build with the input shape the first time it is called.
func (b *Base) buildOnce(inputShape tensor.Shape, build func(tensor.Shape)) {
	if b.built {
		return
	}
	build(inputShape)
	b.built = true
	klog.V(2).Infof("nn: built %s for input shape %v", b.name, inputShape)
}

// initParam allocates p with shape and fills it with init.
func initParam(p *autograd.Param, init Initializer, shape tensor.Shape, fanIn, fanOut int) {
	p.SetData(tensor.Zeros(shape...))
	init.Init(p, fanIn, fanOut)
}

// node returns p as a graph input, or an untyped nil when p is absent.
func node(p *autograd.Param) autograd.Node {
	if p == nil {
		return nil
	}
	return p
}

// MergeLayer combines several inputs into one output.
type MergeLayer interface {
	Layer
	Merge(xs ...autograd.Node) autograd.Node
}
