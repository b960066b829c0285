package optim

import (
	"math"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	lr       float64
	beta1    float64
	beta2    float64
	eps      float64
	clipNorm float64
	t        int                               // Timestep for bias correction
	m        map[*autograd.Param]*tensor.Array // First moment estimates
	v        map[*autograd.Param]*tensor.Array // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR       float64 // Learning rate (default: 0.001)
	Beta1    float64 // First moment decay (default: 0.9)
	Beta2    float64 // Second moment decay (default: 0.999)
	Eps      float64 // Term for numerical stability (default: 1e-7)
	ClipNorm float64 // Global gradient norm limit, 0 disables (default: 0)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-7
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Beta1 == 0 {
		config.Beta1 = 0.9
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-7
	}
	return &Adam{
		lr:       config.LR,
		beta1:    config.Beta1,
		beta2:    config.Beta2,
		eps:      config.Eps,
		clipNorm: config.ClipNorm,
		m:        make(map[*autograd.Param]*tensor.Array),
		v:        make(map[*autograd.Param]*tensor.Array),
	}
}

// Update performs a single optimization step using Adam algorithm.
func (a *Adam) Update(params []*autograd.Param) {
	a.t++
	update(params, a.clipNorm, a.step)
}

func (a *Adam) step(p *autograd.Param, grad *tensor.Array) *tensor.Array {
	biasCorrection1 := 1 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1 - math.Pow(a.beta2, float64(a.t))

	m, ok := a.m[p]
	if !ok {
		m = tensor.ZerosLike(p.Data())
	}
	v, ok := a.v[p]
	if !ok {
		v = tensor.ZerosLike(p.Data())
	}
	m = m.MulScalar(a.beta1).Add(grad.MulScalar(1 - a.beta1))
	v = v.MulScalar(a.beta2).Add(grad.Pow(2).MulScalar(1 - a.beta2))
	a.m[p], a.v[p] = m, v

	mHat := m.MulScalar(1 / biasCorrection1)
	vHat := v.MulScalar(1 / biasCorrection2)
	return p.Data().Sub(mHat.Div(vHat.Sqrt().AddScalar(a.eps)).MulScalar(a.lr))
}

// LR returns the current learning rate.
func (a *Adam) LR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// RMSProp divides the step by a running root mean square of the gradients.
//
//	s_t = rho * s_{t-1} + (1-rho) * gradient²
//	param = param - lr * gradient / (sqrt(s_t) + eps)
type RMSProp struct {
	lr       float64
	rho      float64
	eps      float64
	clipNorm float64
	s        map[*autograd.Param]*tensor.Array
}

// RMSPropConfig holds configuration for RMSProp optimizer.
type RMSPropConfig struct {
	LR       float64 // Learning rate (default: 0.001)
	Rho      float64 // Decay of the squared-gradient average (default: 0.9)
	Eps      float64 // Term for numerical stability (default: 1e-7)
	ClipNorm float64 // Global gradient norm limit, 0 disables (default: 0)
}

// NewRMSProp creates a new RMSProp optimizer.
func NewRMSProp(config RMSPropConfig) *RMSProp {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Rho == 0 {
		config.Rho = 0.9
	}
	if config.Eps == 0 {
		config.Eps = 1e-7
	}
	return &RMSProp{
		lr:       config.LR,
		rho:      config.Rho,
		eps:      config.Eps,
		clipNorm: config.ClipNorm,
		s:        make(map[*autograd.Param]*tensor.Array),
	}
}

// Update performs a single optimization step.
func (r *RMSProp) Update(params []*autograd.Param) {
	update(params, r.clipNorm, r.step)
}

func (r *RMSProp) step(p *autograd.Param, grad *tensor.Array) *tensor.Array {
	s, ok := r.s[p]
	if !ok {
		s = tensor.ZerosLike(p.Data())
	}
	s = s.MulScalar(r.rho).Add(grad.Pow(2).MulScalar(1 - r.rho))
	r.s[p] = s
	return p.Data().Sub(grad.Div(s.Sqrt().AddScalar(r.eps)).MulScalar(r.lr))
}

// LR returns the current learning rate.
func (r *RMSProp) LR() float64 {
	return r.lr
}

// SetLR updates the learning rate.
func (r *RMSProp) SetLR(lr float64) {
	r.lr = lr
}
