// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum, optionally Nesterov
//   - RMSProp: Root mean square propagation
//   - Adam: Adaptive Moment Estimation
//
// Optimizers consume the gradients accumulated on parameters by a backward
// pass, update the parameter values, and then reset those gradients.
//
// Example usage:
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.001})
//
//	for step := range steps {
//	    loss := model.Loss(batch)
//	    autograd.Backprop(loss)
//	    opt.Update(model.Params())
//	}
package optim

import (
	"math"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Update applies one step to every parameter that holds a gradient and
	// then clears the consumed gradients.
	//
	// Parameters without a gradient (not part of the last backward pass) and
	// frozen parameters are skipped.
	Update(params []*autograd.Param)

	// LR returns the current learning rate.
	LR() float64

	// SetLR updates the learning rate, for scheduling.
	SetLR(lr float64)
}

// stepFunc computes the new value of one parameter from its gradient.
type stepFunc func(p *autograd.Param, grad *tensor.Array) *tensor.Array

// update runs step over params with global norm clipping and resets the
// consumed gradients.
func update(params []*autograd.Param, clipNorm float64, step stepFunc) {
	live := make([]*autograd.Param, 0, len(params))
	for _, p := range params {
		if p == nil || !p.RequiresGrad() || p.Grad() == nil || !p.Built() {
			continue
		}
		live = append(live, p)
	}

	scale := 1.0
	if clipNorm > 0 {
		if norm := globalNorm(live); norm > clipNorm {
			scale = clipNorm / (norm + 1e-7)
		}
	}

	for _, p := range live {
		grad := p.Grad()
		if scale != 1 {
			grad = grad.MulScalar(scale)
		}
		p.SetData(step(p, grad))
		p.ZeroGrad()
	}
}

// globalNorm is the L2 norm of all gradients taken together.
func globalNorm(params []*autograd.Param) float64 {
	sum := 0.0
	for _, p := range params {
		n := p.Grad().Norm()
		sum += n * n
	}
	return math.Sqrt(sum)
}

// ClipByNorm rescales the gradients of params so their global L2 norm is at
// most maxNorm. It returns the norm before clipping.
func ClipByNorm(params []*autograd.Param, maxNorm float64) float64 {
	live := make([]*autograd.Param, 0, len(params))
	for _, p := range params {
		if p != nil && p.Grad() != nil {
			live = append(live, p)
		}
	}
	norm := globalNorm(live)
	if norm <= maxNorm {
		return norm
	}
	scale := maxNorm / (norm + 1e-7)
	for _, p := range live {
		p.Grad().ScaleInPlace(scale)
	}
	return norm
}
