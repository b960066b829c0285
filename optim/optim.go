// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum, optionally Nesterov
//   - RMSProp: Root mean square propagation
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// Every optimizer reads the gradients accumulated on parameters, updates
// their values and resets the consumed gradients. ClipNorm rescales all
// gradients of a step when their global norm exceeds it.
//
// # Basic Usage
//
//	model := nn.NewSequential(nn.NewDense(nn.DenseConfig{Units: 10}))
//	model.Setup(optim.NewAdam(optim.AdamConfig{LR: 0.001}), nn.SoftmaxCrossEntropy{})
package optim

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/optim"
)

// Optimizer updates parameters from their gradients.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.01, Momentum: 0.9})
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// NewNesterov creates SGD with Nesterov momentum (default momentum 0.9).
func NewNesterov(config SGDConfig) *SGD {
	return optim.NewNesterov(config)
}

// Adam is the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// RMSProp is the RMSProp optimizer.
type RMSProp = optim.RMSProp

// RMSPropConfig contains configuration for RMSProp.
type RMSPropConfig = optim.RMSPropConfig

// NewRMSProp creates a new RMSProp optimizer.
func NewRMSProp(config RMSPropConfig) *RMSProp {
	return optim.NewRMSProp(config)
}

// ClipByNorm rescales the gradients of params so their global L2 norm is at
// most maxNorm and returns the norm before clipping.
func ClipByNorm(params []*autograd.Param, maxNorm float64) float64 {
	return optim.ClipByNorm(params, maxNorm)
}
