package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/optim"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Helper to check float equality with tolerance.
func floatEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// withGrad creates a parameter holding value and a gradient from one
// backward pass of sum(grad * p).
func withGrad(value, grad float64) *autograd.Param {
	p := autograd.NewParam("x", tensor.FromSlice([]float64{value}, 1))
	setGrad(p, grad)
	return p
}

func setGrad(p *autograd.Param, grad float64) {
	g := autograd.Const(tensor.FromSlice([]float64{grad}, 1))
	autograd.Backprop(autograd.SumAll(autograd.Mul(g, p)))
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	param := withGrad(2.0, 1.0)
	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1})

	optimizer.Update([]*autograd.Param{param})

	// Expected: x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0 = 1.9
	actual := param.Data().Item()
	if !floatEqual(actual, 1.9, 1e-12) {
		t.Errorf("SGD update: got %f, want %f", actual, 1.9)
	}
	assert.Nil(t, param.Grad(), "consumed gradient must be reset")
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	param := withGrad(1.0, 1.0)
	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// v1 = -0.1, x1 = 0.9
	optimizer.Update([]*autograd.Param{param})
	assert.InDelta(t, 0.9, param.Data().Item(), 1e-12)

	// v2 = 0.9 * -0.1 - 0.1 = -0.19, x2 = 0.71
	setGrad(param, 1.0)
	optimizer.Update([]*autograd.Param{param})
	assert.InDelta(t, 0.71, param.Data().Item(), 1e-12)
}

func TestNesterov(t *testing.T) {
	param := withGrad(1.0, 1.0)
	optimizer := optim.NewNesterov(optim.SGDConfig{LR: 0.1})

	// v1 = -0.1; x1 = 1 + 0.9 * -0.1 - 0.1 = 0.81
	optimizer.Update([]*autograd.Param{param})
	assert.InDelta(t, 0.81, param.Data().Item(), 1e-12)
}

func TestAdam_FirstStepMovesByLR(t *testing.T) {
	param := withGrad(1.0, 3.0)
	optimizer := optim.NewAdam(optim.AdamConfig{LR: 0.01})

	// With bias correction the first step is lr * g / |g|.
	optimizer.Update([]*autograd.Param{param})
	assert.InDelta(t, 0.99, param.Data().Item(), 1e-6)
	assert.Equal(t, 0.01, optimizer.LR())
}

func TestRMSProp(t *testing.T) {
	param := withGrad(1.0, 2.0)
	optimizer := optim.NewRMSProp(optim.RMSPropConfig{LR: 0.01})

	// s = 0.1 * 4 = 0.4, step = 0.01 * 2 / sqrt(0.4)
	optimizer.Update([]*autograd.Param{param})
	assert.InDelta(t, 1-0.02/math.Sqrt(0.4), param.Data().Item(), 1e-6)
}

func TestSkipsFrozenAndUnusedParams(t *testing.T) {
	frozen := withGrad(1.0, 1.0)
	frozen.SetRequiresGrad(false)
	unused := autograd.NewParam("unused", tensor.FromSlice([]float64{5}, 1))

	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.5})
	optimizer.Update([]*autograd.Param{frozen, unused, nil})

	assert.Equal(t, 1.0, frozen.Data().Item())
	assert.Equal(t, 5.0, unused.Data().Item())
}

func TestClipNorm(t *testing.T) {
	a := withGrad(0, 3)
	b := withGrad(0, 4)

	optimizer := optim.NewSGD(optim.SGDConfig{LR: 1, ClipNorm: 1})
	optimizer.Update([]*autograd.Param{a, b})

	// Global norm 5 is scaled down to 1.
	assert.InDelta(t, -0.6, a.Data().Item(), 1e-6)
	assert.InDelta(t, -0.8, b.Data().Item(), 1e-6)

	c := withGrad(0, 3)
	d := withGrad(0, 4)
	norm := optim.ClipByNorm([]*autograd.Param{c, d}, 2.5)
	require.InDelta(t, 5, norm, 1e-12)
	assert.InDelta(t, 1.5, c.Grad().Item(), 1e-6)
	assert.InDelta(t, 2.0, d.Grad().Item(), 1e-6)
}

func TestSetLR(t *testing.T) {
	for _, opt := range []optim.Optimizer{
		optim.NewSGD(optim.SGDConfig{}),
		optim.NewAdam(optim.AdamConfig{}),
		optim.NewRMSProp(optim.RMSPropConfig{}),
	} {
		opt.SetLR(0.5)
		assert.Equal(t, 0.5, opt.LR())
	}
}
