// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and model orchestration.
//
// # Overview
//
// This package contains:
//   - Layers: Input, Dense, Flatten, Reshape, Dropout, BatchNormalization,
//     Embedding, SimpleRNN, LSTM
//   - Activations: Sigmoid, Tanh, ReLU, LeakyReLU, ELU, Softplus, Softsign, Swish
//   - Merges: Concatenate, Add, Mul and the two-output Split
//   - Losses: MeanSquaredError, MeanAbsoluteError, Huber,
//     SoftmaxCrossEntropy, SigmoidCrossEntropy
//   - Initializers and regularizers
//   - Model: sequential and graph models with training and evaluation
//
// Layers create their parameters lazily, from the shape of the first input
// they see, and bind them into the graph on every forward pass. A model
// resets the parameters' edges before each pass, so forward-only passes
// (Predict, Evaluate) never leave history behind.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/graphnet/nn"
//	    "github.com/born-ml/graphnet/optim"
//	)
//
//	func main() {
//	    model := nn.NewSequential(
//	        nn.NewInput(2),
//	        nn.NewDense(nn.DenseConfig{Units: 8}),
//	        nn.NewTanh(),
//	        nn.NewDense(nn.DenseConfig{Units: 1}),
//	    )
//	    model.Setup(optim.NewAdam(optim.AdamConfig{LR: 0.05}), nn.SigmoidCrossEntropy{})
//
//	    history, err := model.Train(x, y, nn.TrainConfig{Epochs: 500, BatchSize: 4})
//	}
//
// # Graph Models
//
// Models with merges or splits describe their forward pass as a function:
//
//	left, right := nn.NewDense(nn.DenseConfig{Units: 4}), nn.NewDense(nn.DenseConfig{Units: 4})
//	cat := nn.NewConcatenate(1)
//	model := nn.NewGraph(func(x autograd.Node, phase nn.Phase) autograd.Node {
//	    return cat.Merge(left.Forward(x, phase), right.Forward(x, phase))
//	}, left, right, cat)
package nn

import (
	"golang.org/x/exp/rand"

	"github.com/born-ml/graphnet/internal/functions"
	"github.com/born-ml/graphnet/internal/nn"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Phase selects training or inference behavior.
type Phase = nn.Phase

// Learning phases.
const (
	Inference = nn.Inference
	Training  = nn.Training
)

// ErrNotSetup is returned when a model is used before Setup.
var ErrNotSetup = nn.ErrNotSetup

// Core interfaces.
type (
	// Layer is the base interface for all layers.
	Layer = nn.Layer
	// MergeLayer combines several inputs into one.
	MergeLayer = nn.MergeLayer
	// Regularized layers add penalty terms to the training loss.
	Regularized = nn.Regularized
	// ShapeError reports an input a layer cannot accept.
	ShapeError = nn.ShapeError
	// ActivationFunc names a pointwise nonlinearity.
	ActivationFunc = functions.Activation
)

// Layers.
type (
	Input              = nn.Input
	Dense              = nn.Dense
	DenseConfig        = nn.DenseConfig
	Flatten            = nn.Flatten
	Reshape            = nn.Reshape
	Dropout            = nn.Dropout
	DropoutConfig      = nn.DropoutConfig
	Activation         = nn.Activation
	BatchNormalization = nn.BatchNormalization
	BatchNormConfig    = nn.BatchNormConfig
	Embedding          = nn.Embedding
	EmbeddingConfig    = nn.EmbeddingConfig
	SimpleRNN          = nn.SimpleRNN
	LSTM               = nn.LSTM
	RNNConfig          = nn.RNNConfig
	Concatenate        = nn.Concatenate
	Add                = nn.Add
	Mul                = nn.Mul
	Split              = nn.Split
)

// NewInput creates an input layer checking the per-sample shape.
func NewInput(shape ...int) *Input { return nn.NewInput(shape...) }

// NewDense creates a fully connected layer.
func NewDense(config DenseConfig) *Dense { return nn.NewDense(config) }

// NewFlatten creates a layer flattening all but the batch axis.
func NewFlatten() *Flatten { return nn.NewFlatten() }

// NewReshape creates a layer reshaping each sample.
func NewReshape(shape ...int) *Reshape { return nn.NewReshape(shape...) }

// NewDropout creates a dropout layer, active in the Training phase only.
func NewDropout(config DropoutConfig) *Dropout { return nn.NewDropout(config) }

// NewActivation creates an activation layer from a nonlinearity.
func NewActivation(name string, fn ActivationFunc) *Activation { return nn.NewActivation(name, fn) }

// NewSigmoid creates a sigmoid activation layer.
func NewSigmoid() *Activation { return nn.NewSigmoid() }

// NewTanh creates a tanh activation layer.
func NewTanh() *Activation { return nn.NewTanh() }

// NewReLU creates a ReLU activation layer.
func NewReLU() *Activation { return nn.NewReLU() }

// NewLeakyReLU creates a leaky ReLU activation layer.
func NewLeakyReLU(alpha float64) *Activation { return nn.NewLeakyReLU(alpha) }

// NewELU creates an ELU activation layer.
func NewELU(alpha float64) *Activation { return nn.NewELU(alpha) }

// NewSoftplus creates a softplus activation layer.
func NewSoftplus() *Activation { return nn.NewSoftplus() }

// NewSoftsign creates a softsign activation layer.
func NewSoftsign() *Activation { return nn.NewSoftsign() }

// NewSwish creates a swish activation layer.
func NewSwish() *Activation { return nn.NewSwish() }

// NewBatchNormalization creates a batch normalization layer.
func NewBatchNormalization(config BatchNormConfig) *BatchNormalization {
	return nn.NewBatchNormalization(config)
}

// NewEmbedding creates an embedding layer.
func NewEmbedding(config EmbeddingConfig) *Embedding { return nn.NewEmbedding(config) }

// NewSimpleRNN creates a fully connected recurrent layer.
func NewSimpleRNN(config RNNConfig) *SimpleRNN { return nn.NewSimpleRNN(config) }

// NewLSTM creates a long short-term memory layer.
func NewLSTM(config RNNConfig) *LSTM { return nn.NewLSTM(config) }

// NewConcatenate creates a merge joining its inputs along axis.
func NewConcatenate(axis int) *Concatenate { return nn.NewConcatenate(axis) }

// NewAdd creates a merge summing its inputs.
func NewAdd() *Add { return nn.NewAdd() }

// NewMul creates a merge multiplying its inputs.
func NewMul() *Mul { return nn.NewMul() }

// NewSplit creates a layer cutting the last axis at size into two outputs.
func NewSplit(size int) *Split { return nn.NewSplit(size) }

// Initializers.
type (
	Initializer   = nn.Initializer
	Zeros         = nn.Zeros
	Constant      = nn.Constant
	RandomUniform = nn.RandomUniform
	RandomNormal  = nn.RandomNormal
	Xavier        = nn.Xavier
	He            = nn.He
)

// NewRandomUniform draws from U(min, max). A zero seed uses the clock.
func NewRandomUniform(min, max float64, seed uint64) *RandomUniform {
	return nn.NewRandomUniform(min, max, seed)
}

// NewRandomNormal draws from N(mean, std²). A zero seed uses the clock.
func NewRandomNormal(mean, std float64, seed uint64) *RandomNormal {
	return nn.NewRandomNormal(mean, std, seed)
}

// NewXavier creates a Xavier (Glorot) initializer.
func NewXavier(seed uint64) *Xavier { return nn.NewXavier(seed) }

// NewHe creates a He normal initializer.
func NewHe(seed uint64) *He { return nn.NewHe(seed) }

// Regularizers.
type (
	Regularizer = nn.Regularizer
	L1          = nn.L1
	L2          = nn.L2
	L1L2        = nn.L1L2
)

// Losses.
type (
	Loss                = nn.Loss
	LossFunc            = nn.LossFunc
	MeanSquaredError    = nn.MeanSquaredError
	MeanAbsoluteError   = nn.MeanAbsoluteError
	Huber               = nn.Huber
	SoftmaxCrossEntropy = nn.SoftmaxCrossEntropy
	SigmoidCrossEntropy = nn.SigmoidCrossEntropy
)

// Models.
type (
	Model       = nn.Model
	ForwardFunc = nn.ForwardFunc
	Dataset     = nn.Dataset
	TrainConfig = nn.TrainConfig
	EpochStats  = nn.EpochStats
	Iterator    = nn.Iterator
)

// NewSequential creates a model applying layers in order.
func NewSequential(layers ...Layer) *Model { return nn.NewSequential(layers...) }

// NewGraph creates a model whose forward pass is given by forward. layers
// lists every layer forward uses, for parameter collection and tagging.
func NewGraph(forward ForwardFunc, layers ...Layer) *Model { return nn.NewGraph(forward, layers...) }

// NewIterator iterates over the rows of x and y in batches. A nil src keeps
// the rows in order; otherwise they are shuffled on every Reset.
func NewIterator(x, y *tensor.Array, src rand.Source, lastRoundDown bool) *Iterator {
	return nn.NewIterator(x, y, src, lastRoundDown)
}
