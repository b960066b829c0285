package nn

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Dense implements a fully connected layer.
//
// Performs the transformation: y = x · W + b
// where:
//   - x is the input with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, units]
//   - b is the bias vector with shape [units]
//   - y is the output with shape [batch_size, units]
//
// Weights default to Xavier initialization and biases to zeros. Both are
// allocated on the first forward pass.
//
// Example:
//
//	layer := nn.NewDense(nn.DenseConfig{Units: 128})
//	y := layer.Forward(x, nn.Training) // [32, 784] -> [32, 128]
type Dense struct {
	Base
	units      int
	weightInit Initializer
	biasInit   Initializer
	weightReg  Regularizer
	biasReg    Regularizer
	weight     *autograd.Param
	bias       *autograd.Param
}

// DenseConfig holds configuration for a Dense layer.
type DenseConfig struct {
	Units      int         // Output width (required)
	WeightInit Initializer // Weight initializer (default: Xavier)
	BiasInit   Initializer // Bias initializer (default: Zeros)
	WeightReg  Regularizer // Optional weight penalty
	BiasReg    Regularizer // Optional bias penalty
	NoBias     bool        // Omit the bias term
}

// NewDense creates a new Dense layer.
func NewDense(config DenseConfig) *Dense {
	if config.WeightInit == nil {
		config.WeightInit = NewXavier(0)
	}
	if config.BiasInit == nil {
		config.BiasInit = Zeros{}
	}
	d := &Dense{
		Base:       newBase("Dense"),
		units:      config.Units,
		weightInit: config.WeightInit,
		biasInit:   config.BiasInit,
		weightReg:  config.WeightReg,
		biasReg:    config.BiasReg,
	}
	d.weight = d.newParam("weight")
	if !config.NoBias {
		d.bias = d.newParam("bias")
	}
	return d
}

// Forward computes x · W + b.
func (d *Dense) Forward(x autograd.Node, _ Phase) autograd.Node {
	shape := x.Shape()
	if len(shape) != 2 {
		panicShape(d.name, tensor.Shape{-1, -1}, shape)
	}
	d.buildOnce(shape, func(in tensor.Shape) {
		initParam(d.weight, d.weightInit, tensor.Shape{in[1], d.units}, in[1], d.units)
		if d.bias != nil {
			initParam(d.bias, d.biasInit, tensor.Shape{d.units}, in[1], d.units)
		}
	})
	if w := d.weight.Shape(); w[0] != shape[1] {
		panicShape(d.name, tensor.Shape{shape[0], w[0]}, shape)
	}

	y := autograd.Dot(x, d.weight)
	if d.bias == nil {
		return y
	}
	return autograd.Add(y, d.bias)
}

// RegularizationLoss implements Regularized.
func (d *Dense) RegularizationLoss() autograd.Node {
	return regularize(penalty{d.weightReg, d.weight}, penalty{d.biasReg, d.bias})
}

// Weight returns the weight parameter.
func (d *Dense) Weight() *autograd.Param {
	return d.weight
}

// Bias returns the bias parameter, or nil with NoBias.
func (d *Dense) Bias() *autograd.Param {
	return d.bias
}

// Units returns the output width.
func (d *Dense) Units() int {
	return d.units
}
