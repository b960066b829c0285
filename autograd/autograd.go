// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autograd provides the define-by-run computation graph.
//
// # Overview
//
// Operations on Nodes run immediately and record a Link whenever one of
// their inputs requires a gradient. A single backward pass from a scalar
// node then delivers gradients to every Variable and Param below it.
//
// Each use of a node adds one outgoing edge, so x + x registers two edges
// on x and x only fires once both have reported. After firing, a node
// releases its edges and is ready for the next pass.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/graphnet/autograd"
//	    "github.com/born-ml/graphnet/tensor"
//	)
//
//	x := autograd.NewVariable(tensor.FromRows([][]float64{{1, 2}, {3, 4}}))
//	w := autograd.NewParam("w", tensor.Full(0.5, 2, 1))
//	loss := autograd.SumAll(autograd.Sigmoid(autograd.Dot(x, w)))
//	autograd.Backprop(loss)
//	fmt.Println(w.Grad())
//
// # Custom Functions
//
// Implement Function and apply it with Call (several outputs) or Apply
// (one output). Embed ForwardOnly for functions without a backward pass.
package autograd

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/functions"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Graph types.
type (
	// Node is a vertex of the computation graph.
	Node = autograd.Node
	// Tensor is the output of a function application, or a constant.
	Tensor = autograd.Tensor
	// Variable is a leaf that accumulates its gradient.
	Variable = autograd.Variable
	// Param is a learnable variable owned by a layer.
	Param = autograd.Param
	// Link records one function application and its inputs.
	Link = autograd.Link
	// Function is one forward application of a differentiable transform.
	Function = autograd.Function
	// GradMasker is implemented by functions that skip gradients nobody needs.
	GradMasker = autograd.GradMasker
	// GradMask records which inputs need a gradient.
	GradMask = autograd.GradMask
	// ForwardOnly marks a function without a backward pass.
	ForwardOnly = autograd.ForwardOnly
)

// Errors.
type (
	// ShapeError reports a gradient that cannot be reduced to its node.
	ShapeError = autograd.ShapeError
	// NotImplementedError reports a missing capability.
	NotImplementedError = autograd.NotImplementedError
)

// ErrNotImplemented matches every NotImplementedError.
var ErrNotImplemented = autograd.ErrNotImplemented

// NewVariable wraps data as a leaf that requires a gradient.
func NewVariable(data *tensor.Array) *Variable { return autograd.NewVariable(data) }

// NewParam creates a named parameter.
func NewParam(name string, data *tensor.Array) *Param { return autograd.NewParam(name, data) }

// Const wraps data as a node without a gradient.
func Const(data *tensor.Array) *Tensor { return autograd.Const(data) }

// Scalar wraps v as a constant scalar node.
func Scalar(v float64) *Tensor { return autograd.Scalar(v) }

// Call applies f to inputs and returns one node per output.
func Call(f Function, inputs ...Node) []*Tensor { return autograd.Call(f, inputs...) }

// Apply applies a single-output function.
func Apply(f Function, inputs ...Node) *Tensor { return autograd.Apply(f, inputs...) }

// Backprop seeds root with ones and runs the backward pass.
func Backprop(root Node) { autograd.Backprop(root) }

// BackpropWith seeds root with seed and runs the backward pass.
func BackpropWith(root Node, seed *tensor.Array) { autograd.BackpropWith(root, seed) }

// Arithmetic

// Add returns a + b with broadcasting.
func Add(a, b Node) *Tensor { return autograd.Add(a, b) }

// Sub returns a - b with broadcasting.
func Sub(a, b Node) *Tensor { return autograd.Sub(a, b) }

// Mul returns a * b elementwise with broadcasting.
func Mul(a, b Node) *Tensor { return autograd.Mul(a, b) }

// Div returns a / b elementwise with broadcasting.
func Div(a, b Node) *Tensor { return autograd.Div(a, b) }

// Neg returns -x.
func Neg(x Node) *Tensor { return autograd.Neg(x) }

// Pow returns x raised to p.
func Pow(x Node, p float64) *Tensor { return autograd.Pow(x, p) }

// Dot returns the matrix product of two 2D nodes.
func Dot(a, b Node) *Tensor { return autograd.Dot(a, b) }

// Exp returns e^x.
func Exp(x Node) *Tensor { return functions.Exp(x) }

// Log returns the natural logarithm of x.
func Log(x Node) *Tensor { return functions.Log(x) }

// Sqrt returns the square root of x.
func Sqrt(x Node) *Tensor { return functions.Sqrt(x) }

// Abs returns |x|.
func Abs(x Node) *Tensor { return functions.Abs(x) }

// Shape operations

// Reshape changes the shape of x. One extent may be -1.
func Reshape(x Node, shape ...int) *Tensor { return autograd.Reshape(x, shape...) }

// Flatten keeps the batch axis and flattens the rest.
func Flatten(x Node) *Tensor { return autograd.Flatten(x) }

// Transpose permutes the axes of x, reversing them when none are given.
func Transpose(x Node, axes ...int) *Tensor { return autograd.Transpose(x, axes...) }

// Concatenate joins xs along axis.
func Concatenate(axis int, xs ...Node) *Tensor { return autograd.Concatenate(axis, xs...) }

// Split cuts x along axis into parts of the given sizes. Every part must be
// used before backward reaches x.
func Split(x Node, sizes []int, axis int) []*Tensor { return autograd.Split(x, sizes, axis) }

// BroadcastTo expands x to shape.
func BroadcastTo(x Node, shape ...int) *Tensor { return autograd.BroadcastTo(x, shape...) }

// Reductions

// Sum reduces x along axis.
func Sum(x Node, axis int, keepDims bool) *Tensor { return autograd.Sum(x, axis, keepDims) }

// SumAll reduces x to a scalar.
func SumAll(x Node) *Tensor { return autograd.SumAll(x) }

// Mean averages x along axis.
func Mean(x Node, axis int, keepDims bool) *Tensor { return autograd.Mean(x, axis, keepDims) }

// MeanAll averages every element of x.
func MeanAll(x Node) *Tensor { return autograd.MeanAll(x) }

// Max takes the maximum along axis. It has no backward pass.
func Max(x Node, axis int, keepDims bool) *Tensor { return functions.Max(x, axis, keepDims) }

// Activations

// Sigmoid returns 1 / (1 + e^-x).
func Sigmoid(x Node) *Tensor { return functions.Sigmoid(x) }

// Tanh returns the hyperbolic tangent of x.
func Tanh(x Node) *Tensor { return functions.Tanh(x) }

// ReLU returns max(0, x).
func ReLU(x Node) *Tensor { return functions.ReLU(x) }

// LeakyReLU returns x for positive inputs and alpha*x otherwise.
func LeakyReLU(x Node, alpha float64) *Tensor { return functions.LeakyReLU(x, alpha) }

// ELU returns x for positive inputs and alpha*(e^x - 1) otherwise.
func ELU(x Node, alpha float64) *Tensor { return functions.ELU(x, alpha) }

// Softplus returns log(1 + e^x).
func Softplus(x Node) *Tensor { return functions.Softplus(x) }

// Softsign returns x / (1 + |x|).
func Softsign(x Node) *Tensor { return functions.Softsign(x) }

// Swish returns x * sigmoid(x).
func Swish(x Node) *Tensor { return functions.Swish(x) }
