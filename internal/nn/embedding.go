package nn

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/functions"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Embedding maps integer token ids to dense vectors.
//
// Input shape: [batch, length] holding ids in [0, InputDim).
// Output shape: [batch, length, OutputDim].
//
// With MaskZero, id 0 is reserved for padding: it maps to a zero vector and
// its row receives no gradient.
type Embedding struct {
	Base
	inputDim   int
	outputDim  int
	maskZero   bool
	weightInit Initializer
	weightReg  Regularizer
	weight     *autograd.Param
}

// EmbeddingConfig holds configuration for an Embedding layer.
type EmbeddingConfig struct {
	InputDim   int         // Vocabulary size (required)
	OutputDim  int         // Vector width (required)
	MaskZero   bool        // Treat id 0 as padding
	WeightInit Initializer // Table initializer (default: U(-0.05, 0.05))
	WeightReg  Regularizer // Optional table penalty
}

// NewEmbedding creates an Embedding layer.
func NewEmbedding(config EmbeddingConfig) *Embedding {
	if config.WeightInit == nil {
		config.WeightInit = NewRandomUniform(-0.05, 0.05, 0)
	}
	l := &Embedding{
		Base:       newBase("Embedding"),
		inputDim:   config.InputDim,
		outputDim:  config.OutputDim,
		maskZero:   config.MaskZero,
		weightInit: config.WeightInit,
		weightReg:  config.WeightReg,
	}
	l.weight = l.newParam("weight")
	return l
}

// Forward looks up the ids in x.
func (l *Embedding) Forward(x autograd.Node, _ Phase) autograd.Node {
	if len(x.Shape()) != 2 {
		panicShape(l.name, tensor.Shape{-1, -1}, x.Shape())
	}
	l.buildOnce(x.Shape(), func(tensor.Shape) {
		initParam(l.weight, l.weightInit, tensor.Shape{l.inputDim, l.outputDim}, l.inputDim, l.outputDim)
	})
	return functions.Embedding(x, l.weight, l.maskZero)
}

// RegularizationLoss implements Regularized.
func (l *Embedding) RegularizationLoss() autograd.Node {
	return regularize(penalty{l.weightReg, l.weight})
}

// Weight returns the embedding table.
func (l *Embedding) Weight() *autograd.Param {
	return l.weight
}
