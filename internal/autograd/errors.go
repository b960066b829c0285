package autograd

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/graphnet/internal/tensor"
)

// ErrNotImplemented is matched by every NotImplementedError.
var ErrNotImplemented = errors.New("not implemented")

// ShapeError is raised when a gradient cannot be reduced to the shape of the
// node it is accumulated into.
type ShapeError struct {
	Node      string
	DataShape tensor.Shape
	GradShape tensor.Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("autograd: shape is mismatched for %s: data %v, grad %v", e.Node, e.DataShape, e.GradShape)
}

// NotImplementedError is raised on first use of a capability a type does
// not provide, such as the backward pass of a forward-only function.
type NotImplementedError struct {
	Type   string
	Method string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s does not implement %s", e.Type, e.Method)
}

// Is makes errors.Is(err, ErrNotImplemented) hold.
func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

// NotImplemented panics with a NotImplementedError naming v's type.
func NotImplemented(v any, method string) {
	panic(errors.WithStack(&NotImplementedError{Type: fmt.Sprintf("%T", v), Method: method}))
}

func panicShape(node string, data, grad tensor.Shape) {
	panic(errors.WithStack(&ShapeError{Node: node, DataShape: data, GradShape: grad}))
}
