package autograd

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/graphnet/internal/tensor"
)

// Link records one Function application: the function, its inputs and, for
// each input, the id of the edge this link occupies on that input node.
type Link struct {
	fn         Function
	prevs      []Node
	edgeIDs    []int
	numOutputs int

	held  []*tensor.Array
	count int

	requiresGrad     bool
	requiresGradDone bool
}

func newLink(fn Function, prevs []Node, numOutputs int) *Link {
	ids := make([]int, len(prevs))
	for i := range ids {
		ids[i] = -1
	}
	return &Link{
		fn:         fn,
		prevs:      prevs,
		edgeIDs:    ids,
		numOutputs: numOutputs,
		held:       make([]*tensor.Array, numOutputs),
	}
}

// Function returns the recorded function instance.
func (l *Link) Function() Function {
	return l.fn
}

// Prevs returns the input nodes, with nil for absent inputs.
func (l *Link) Prevs() []Node {
	return l.prevs
}

// NumOutputs returns the arity of the function's output.
func (l *Link) NumOutputs() int {
	return l.numOutputs
}

// RequiresGrad reports whether any input requires a gradient. It is computed
// on first use and cached.
func (l *Link) RequiresGrad() bool {
	if !l.requiresGradDone {
		for _, p := range l.prevs {
			if p != nil && p.RequiresGrad() {
				l.requiresGrad = true
				break
			}
		}
		l.requiresGradDone = true
	}
	return l.requiresGrad
}

// Backward stages grad for output index. Once every output has reported it
// invokes Function.Backward once and routes each input gradient to its node
// on the edge recorded at creation.
func (l *Link) Backward(grad *tensor.Array, index int) {
	if index < 0 || index >= l.numOutputs {
		exceptions.Panicf("autograd: %T has %d outputs, got gradient for output %d", l.fn, l.numOutputs, index)
	}
	if l.held[index] != nil {
		exceptions.Panicf("autograd: gradient for output %d of %T reported twice in one pass", index, l.fn)
	}
	l.held[index] = grad
	l.count++
	if l.count < l.numOutputs {
		return
	}

	dys := l.held
	l.held = make([]*tensor.Array, l.numOutputs)
	l.count = 0
	if !l.RequiresGrad() {
		return
	}

	if _, ok := l.fn.(forwardOnly); ok {
		NotImplemented(l.fn, "Backward")
	}
	dxs := l.fn.Backward(dys...)
	if len(dxs) != len(l.prevs) {
		exceptions.Panicf("autograd: %T.Backward returned %d gradients for %d inputs", l.fn, len(dxs), len(l.prevs))
	}
	for i, prev := range l.prevs {
		if prev == nil || l.edgeIDs[i] < 0 {
			continue
		}
		dx := dxs[i]
		if dx == nil {
			dx = tensor.ZerosLike(prev.Data())
		}
		prev.Backward(dx, l.edgeIDs[i])
	}
}
