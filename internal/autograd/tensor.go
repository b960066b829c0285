package autograd

import (
	"fmt"

	"github.com/born-ml/graphnet/internal/tensor"
)

// Tensor is an interior node: the output of a Function application, or a
// constant that was never produced by one.
type Tensor struct {
	fanIn
	data  *tensor.Array
	link  *Link
	index int
}

// Const wraps data as a node that never requires a gradient.
func Const(data *tensor.Array) *Tensor {
	return &Tensor{data: data}
}

// Scalar wraps v as a constant scalar node.
func Scalar(v float64) *Tensor {
	return Const(tensor.Scalar(v))
}

// Data returns the value.
func (t *Tensor) Data() *tensor.Array {
	return t.data
}

// Shape returns the shape of the value.
func (t *Tensor) Shape() tensor.Shape {
	return t.data.Shape()
}

// Link returns the link that produced this tensor, or nil for constants and
// for outputs of applications without a gradient-requiring input.
func (t *Tensor) Link() *Link {
	return t.link
}

// OutputIndex returns this tensor's position among its function's outputs.
func (t *Tensor) OutputIndex() int {
	return t.index
}

// RequiresGrad reports whether the producing link requires a gradient.
func (t *Tensor) RequiresGrad() bool {
	return t.link != nil && t.link.RequiresGrad()
}

func (t *Tensor) String() string {
	if t.link == nil {
		return fmt.Sprintf("const%v", []int(t.data.Shape()))
	}
	return fmt.Sprintf("%T#%d%v", t.link.fn, t.index, []int(t.data.Shape()))
}

// Backward stages grad and forwards the fan-in sum to the producing link.
// On a constant it is a silent no-op once staged.
func (t *Tensor) Backward(grad *tensor.Array, slot int) {
	sum, ok := t.stage(t, grad, slot)
	if !ok || !t.RequiresGrad() {
		return
	}
	t.link.Backward(sum, t.index)
}
