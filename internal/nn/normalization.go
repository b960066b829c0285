package nn

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/functions"
	"github.com/born-ml/graphnet/internal/tensor"
)

// BatchNormalization normalizes activations over the batch axis and applies
// a learnable scale (gamma) and shift (beta).
//
// In the Training phase the batch statistics are used and folded into
// running averages; at inference the running averages are used.
type BatchNormalization struct {
	Base
	momentum    float64
	eps         float64
	gamma       *autograd.Param
	beta        *autograd.Param
	runningMean *tensor.Array
	runningVar  *tensor.Array
}

// BatchNormConfig holds configuration for BatchNormalization.
type BatchNormConfig struct {
	Momentum float64 // Running average decay (default: 0.9)
	Eps      float64 // Variance offset (default: 1e-7)
}

// NewBatchNormalization creates a batch normalization layer.
func NewBatchNormalization(config BatchNormConfig) *BatchNormalization {
	if config.Momentum == 0 {
		config.Momentum = 0.9
	}
	if config.Eps == 0 {
		config.Eps = 1e-7
	}
	l := &BatchNormalization{
		Base:     newBase("BatchNormalization"),
		momentum: config.Momentum,
		eps:      config.Eps,
	}
	l.gamma = l.newParam("gamma")
	l.beta = l.newParam("beta")
	return l
}

// Forward normalizes x.
func (l *BatchNormalization) Forward(x autograd.Node, phase Phase) autograd.Node {
	l.buildOnce(x.Shape(), func(in tensor.Shape) {
		shape := in.Clone()
		shape[0] = 1
		features := shape.NumElements()
		initParam(l.gamma, Constant{Value: 1}, shape, features, features)
		initParam(l.beta, Zeros{}, shape, features, features)
		l.runningMean = tensor.Zeros(shape...)
		l.runningVar = tensor.Ones(shape...)
	})

	fn := &functions.BatchNormFn{
		Momentum:    l.momentum,
		Eps:         l.eps,
		Training:    phase == Training,
		RunningMean: l.runningMean,
		RunningVar:  l.runningVar,
	}
	y := functions.BatchNormalization(fn, x, l.gamma, l.beta)
	l.runningMean, l.runningVar = fn.RunningMean, fn.RunningVar
	return y
}

// RunningMean returns the running mean, or nil before the first pass.
func (l *BatchNormalization) RunningMean() *tensor.Array {
	return l.runningMean
}

// RunningVar returns the running variance, or nil before the first pass.
func (l *BatchNormalization) RunningVar() *tensor.Array {
	return l.runningVar
}
