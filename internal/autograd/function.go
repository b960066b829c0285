package autograd

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/graphnet/internal/tensor"
)

// Function is one forward application of a differentiable transform.
//
// Forward receives the raw input values in order and returns one or more
// fresh outputs; it must not mutate its inputs. It may cache whatever it
// needs for Backward. Backward receives one gradient per output and returns
// one gradient per input, in Forward's input order, with nil for inputs
// that get no gradient.
//
// A Function value holds the state of a single application and must not be
// applied twice.
type Function interface {
	Forward(xs ...*tensor.Array) []*tensor.Array
	Backward(dys ...*tensor.Array) []*tensor.Array
}

// GradMasker is implemented by functions that can skip computing gradients
// for inputs that do not require one. Call invokes it before Forward.
type GradMasker interface {
	MaskGrads(needs []bool)
}

// Call applies f to inputs and returns one Tensor per output.
//
// A Link is recorded only if at least one input requires a gradient; in that
// case an edge is registered on every non-nil input, including inputs that
// do not require a gradient, so freezing never changes the graph's shape.
func Call(f Function, inputs ...Node) []*Tensor {
	xs := make([]*tensor.Array, len(inputs))
	needs := make([]bool, len(inputs))
	anyGrad := false
	for i, in := range inputs {
		if in == nil {
			continue
		}
		xs[i] = in.Data()
		needs[i] = in.RequiresGrad()
		anyGrad = anyGrad || needs[i]
	}
	if m, ok := f.(GradMasker); ok {
		m.MaskGrads(needs)
	}

	ys := f.Forward(xs...)
	if len(ys) == 0 {
		exceptions.Panicf("autograd: %T.Forward returned no outputs", f)
	}

	var link *Link
	if anyGrad {
		link = newLink(f, inputs, len(ys))
		for i, in := range inputs {
			if in != nil {
				link.edgeIDs[i] = in.addEdge(link, i)
			}
		}
	}

	outs := make([]*Tensor, len(ys))
	for i, y := range ys {
		outs[i] = &Tensor{data: y, link: link, index: i}
	}
	return outs
}

// Apply is Call for single-output functions.
func Apply(f Function, inputs ...Node) *Tensor {
	outs := Call(f, inputs...)
	if len(outs) != 1 {
		exceptions.Panicf("autograd: Apply on %T which returned %d outputs", f, len(outs))
	}
	return outs[0]
}

// GradMask is embedded by functions to implement GradMasker.
type GradMask struct {
	needs []bool
}

// MaskGrads records which inputs need a gradient.
func (m *GradMask) MaskGrads(needs []bool) {
	m.needs = needs
}

// Need reports whether input i needs a gradient. Without a mask every input
// does.
func (m *GradMask) Need(i int) bool {
	return m.needs == nil || (i < len(m.needs) && m.needs[i])
}

// ForwardOnly is embedded by functions without a backward pass. Using such a
// function on a gradient-requiring input fails on the first backward pass.
type ForwardOnly struct{}

// Backward panics with a NotImplementedError.
func (f ForwardOnly) Backward(...*tensor.Array) []*tensor.Array {
	NotImplemented(f, "Backward")
	return nil
}

func (ForwardOnly) forwardOnly() {}

type forwardOnly interface{ forwardOnly() }
