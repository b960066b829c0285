package optim

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity - lr * gradient
//	param = param + velocity
//
// With Nesterov set, the step looks ahead along the velocity:
//
//	param = param + momentum * velocity - lr * gradient
//
// Example:
//
//	opt := optim.NewSGD(optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	lr         float64
	momentum   float64
	nesterov   bool
	clipNorm   float64
	velocities map[*autograd.Param]*tensor.Array
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
	Nesterov bool    // Use Nesterov momentum (default: false)
	ClipNorm float64 // Global gradient norm limit, 0 disables (default: 0)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		lr:         config.LR,
		momentum:   config.Momentum,
		nesterov:   config.Nesterov,
		clipNorm:   config.ClipNorm,
		velocities: make(map[*autograd.Param]*tensor.Array),
	}
}

// NewNesterov creates SGD with Nesterov momentum (default momentum: 0.9).
func NewNesterov(config SGDConfig) *SGD {
	if config.Momentum == 0 {
		config.Momentum = 0.9
	}
	config.Nesterov = true
	return NewSGD(config)
}

// Update performs a single optimization step.
func (s *SGD) Update(params []*autograd.Param) {
	update(params, s.clipNorm, s.step)
}

func (s *SGD) step(p *autograd.Param, grad *tensor.Array) *tensor.Array {
	if s.momentum == 0 {
		return p.Data().Sub(grad.MulScalar(s.lr))
	}

	v, ok := s.velocities[p]
	if !ok {
		v = tensor.ZerosLike(p.Data())
	}
	v = v.MulScalar(s.momentum).Sub(grad.MulScalar(s.lr))
	s.velocities[p] = v

	if s.nesterov {
		return p.Data().Add(v.MulScalar(s.momentum)).Sub(grad.MulScalar(s.lr))
	}
	return p.Data().Add(v)
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
