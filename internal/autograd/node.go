// Package autograd implements a define-by-run computation graph.
//
// Applying a Function to Nodes executes it immediately and, when any input
// requires a gradient, records a Link: the function instance plus its input
// nodes. Every input node gets one outgoing edge per (link, input position)
// pair, and the edge id is stored back in the link.
//
// Backward is driven by fan-in counting. A node stages the gradient arriving
// on each of its edges and only fires once all of them have reported; a
// link stages one gradient per output and only calls Function.Backward once
// every output has reported. Recursive completion therefore realizes a
// reverse topological order without an explicit sort, and each node and
// link fires exactly once per pass.
//
// After firing, a node drops its staged gradients and its outgoing edges,
// so the history recorded by a forward pass is released by the backward
// pass that consumes it. Long-lived leaves (parameters) that take part in a
// forward pass without a matching backward pass must be cleared with
// ResetEdges before they are reused.
package autograd

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/graphnet/internal/tensor"
)

// Node is a vertex of the computation graph.
type Node interface {
	// Data returns the value held by the node.
	Data() *tensor.Array

	// Shape returns the shape of Data.
	Shape() tensor.Shape

	// RequiresGrad reports whether backward work flows through this node.
	RequiresGrad() bool

	// Backward stages grad for the outgoing edge slot. The node fires once
	// every edge has reported. A node without edges (a root) fires on the
	// first call with slot 0.
	Backward(grad *tensor.Array, slot int)

	// NumEdges returns the number of outgoing edges recorded so far.
	NumEdges() int

	// ResetEdges drops outgoing edges and staged gradients.
	ResetEdges()

	// String describes the node for error messages.
	String() string

	addEdge(link *Link, input int) int
}

type edge struct {
	link  *Link
	input int
}

// fanIn is the outgoing-edge list and gradient staging area shared by all
// node kinds.
type fanIn struct {
	edges []edge
	held  []*tensor.Array
	count int
}

// addEdge appends an edge and returns its id. Call registers each
// (link, input) pair once, so no duplicate check is needed here.
func (f *fanIn) addEdge(link *Link, input int) int {
	f.edges = append(f.edges, edge{link: link, input: input})
	if f.held != nil {
		f.held = append(f.held, nil)
	}
	return len(f.edges) - 1
}

// NumEdges returns the number of outgoing edges.
func (f *fanIn) NumEdges() int {
	return len(f.edges)
}

// ResetEdges drops outgoing edges and staged gradients.
func (f *fanIn) ResetEdges() {
	f.edges = nil
	f.held = nil
	f.count = 0
}

// stage records grad at slot and, once every expected slot has reported,
// returns their sum and clears the node's pass state.
func (f *fanIn) stage(owner Node, grad *tensor.Array, slot int) (*tensor.Array, bool) {
	expected := max(len(f.edges), 1)
	if slot < 0 || slot >= expected {
		exceptions.Panicf("autograd: %s has no edge %d (%d edges)", owner, slot, len(f.edges))
	}
	if f.held == nil {
		f.held = make([]*tensor.Array, expected)
	}
	if f.held[slot] != nil {
		exceptions.Panicf("autograd: gradient for edge %d of %s reported twice in one pass", slot, owner)
	}
	f.held[slot] = grad
	f.count++
	if f.count < expected {
		return nil, false
	}

	sum := f.held[0]
	for _, g := range f.held[1:] {
		sum = sum.Add(g)
	}
	f.ResetEdges()
	return sum, true
}

// Backprop seeds root with ones of its own shape and runs the backward pass.
func Backprop(root Node) {
	root.Backward(tensor.OnesLike(root.Data()), 0)
}

// BackpropWith seeds root with seed and runs the backward pass.
func BackpropWith(root Node, seed *tensor.Array) {
	root.Backward(seed, 0)
}
