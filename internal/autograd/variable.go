package autograd

import (
	"fmt"

	"github.com/born-ml/graphnet/internal/tensor"
)

// Variable is a leaf node that accumulates the gradient it receives.
//
// Gradients are added into Grad on every completed backward pass and are
// never cleared by the graph engine; optimizers (or the caller) reset them
// with ZeroGrad.
type Variable struct {
	fanIn
	name         string
	data         *tensor.Array
	grad         *tensor.Array
	requiresGrad bool
}

// NewVariable wraps data as a leaf that requires a gradient.
func NewVariable(data *tensor.Array) *Variable {
	return &Variable{data: data, requiresGrad: true}
}

// Data returns the current value.
func (v *Variable) Data() *tensor.Array {
	return v.data
}

// SetData replaces the value.
func (v *Variable) SetData(data *tensor.Array) {
	v.data = data
}

// Shape returns the shape of the value.
func (v *Variable) Shape() tensor.Shape {
	return v.data.Shape()
}

// Grad returns the accumulated gradient, or nil before the first backward pass.
func (v *Variable) Grad() *tensor.Array {
	return v.grad
}

// ZeroGrad clears the accumulated gradient.
func (v *Variable) ZeroGrad() {
	v.grad = nil
}

// RequiresGrad reports whether gradients are accumulated.
func (v *Variable) RequiresGrad() bool {
	return v.requiresGrad
}

// SetRequiresGrad toggles accumulation. A variable that does not require a
// gradient still takes part in traversal; its Grad becomes a zero scalar.
func (v *Variable) SetRequiresGrad(requiresGrad bool) {
	v.requiresGrad = requiresGrad
}

// Name returns the variable name, possibly empty.
func (v *Variable) Name() string {
	return v.name
}

// SetName tags the variable.
func (v *Variable) SetName(name string) {
	v.name = name
}

func (v *Variable) String() string {
	if v.name != "" {
		return fmt.Sprintf("variable %q%v", v.name, []int(v.data.Shape()))
	}
	return fmt.Sprintf("variable%v", []int(v.data.Shape()))
}

// Backward stages grad and accumulates the fan-in sum once complete.
func (v *Variable) Backward(grad *tensor.Array, slot int) {
	sum, ok := v.stage(v, grad, slot)
	if !ok {
		return
	}
	v.accumulate(sum)
}

// accumulate adds grad into v.grad. Three shapes are accepted: an exact
// match, one extra leading (batch) axis which is summed away, and one extra
// trailing singleton axis which is dropped.
func (v *Variable) accumulate(grad *tensor.Array) {
	if !v.requiresGrad {
		v.grad = tensor.Scalar(0)
		return
	}

	ds, gs := v.data.Shape(), grad.Shape()
	if v.grad == nil || !v.grad.Shape().Equal(ds) {
		v.grad = tensor.Zeros(ds...)
	}

	switch {
	case gs.Equal(ds):
		v.grad.AddInPlace(grad)
	case len(gs) == len(ds)+1 && gs[len(gs)-1] == 1 && gs[:len(ds)].Equal(ds):
		v.grad.AddInPlace(grad.Reshape(ds...))
	case len(gs) == len(ds)+1 && gs[1:].Equal(ds):
		v.grad.AddInPlace(grad.Sum(0, false))
	default:
		panicShape(v.String(), ds, gs)
	}
}

// Param is a learnable variable owned by a layer. Its data is allocated when
// the owning layer is built.
type Param struct {
	Variable
}

// NewParam creates a parameter. data may be nil until the layer is built.
func NewParam(name string, data *tensor.Array) *Param {
	return &Param{Variable: Variable{name: name, data: data, requiresGrad: true}}
}

// Built reports whether the parameter's data has been allocated.
func (p *Param) Built() bool {
	return p.data != nil
}

func (p *Param) String() string {
	if p.data == nil {
		return fmt.Sprintf("param %q (unbuilt)", p.name)
	}
	return fmt.Sprintf("param %q%v", p.name, []int(p.data.Shape()))
}
