package nn

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/functions"
)

// Loss turns a prediction and a target into a scalar node in the same
// graph, so backward from the loss reaches every parameter.
type Loss interface {
	Loss(pred, target autograd.Node) autograd.Node
}

// LossFunc adapts a plain function to the Loss interface.
type LossFunc func(pred, target autograd.Node) autograd.Node

// Loss implements Loss.
func (f LossFunc) Loss(pred, target autograd.Node) autograd.Node {
	return f(pred, target)
}

// MeanSquaredError is 0.5 * Σ(y - t)² / N.
type MeanSquaredError struct{}

// Loss implements Loss.
func (MeanSquaredError) Loss(pred, target autograd.Node) autograd.Node {
	return functions.MeanSquaredError(pred, target)
}

// MeanAbsoluteError is Σ|y - t| / N.
type MeanAbsoluteError struct{}

// Loss implements Loss.
func (MeanAbsoluteError) Loss(pred, target autograd.Node) autograd.Node {
	return functions.MeanAbsoluteError(pred, target)
}

// Huber uses the absolute error when it exceeds 1 and the squared error
// otherwise.
type Huber struct{}

// Loss implements Loss.
func (Huber) Loss(pred, target autograd.Node) autograd.Node {
	return functions.Huber(pred, target)
}

// SoftmaxCrossEntropy expects logits and one-hot targets.
type SoftmaxCrossEntropy struct{}

// Loss implements Loss.
func (SoftmaxCrossEntropy) Loss(pred, target autograd.Node) autograd.Node {
	return functions.SoftmaxCrossEntropy(pred, target)
}

// SigmoidCrossEntropy expects logits and targets in [0, 1].
type SigmoidCrossEntropy struct{}

// Loss implements Loss.
func (SigmoidCrossEntropy) Loss(pred, target autograd.Node) autograd.Node {
	return functions.SigmoidCrossEntropy(pred, target)
}
