package functions

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// EmbeddingFn looks up rows of a [vocab, dim] weight for a [batch, length]
// array of token ids, producing [batch, length, dim]. With MaskZero, id 0
// maps to a zero vector and contributes no gradient.
type EmbeddingFn struct {
	autograd.GradMask
	MaskZero bool

	ids    []int
	wShape tensor.Shape
	xShape tensor.Shape
}

func (f *EmbeddingFn) Forward(xs ...*tensor.Array) []*tensor.Array {
	x, w := xs[0], xs[1]
	f.xShape, f.wShape = x.Shape(), w.Shape()
	if len(f.wShape) != 2 {
		exceptions.Panicf("functions.Embedding: weight must be 2D, got %v", f.wShape)
	}
	vocab, dim := f.wShape[0], f.wShape[1]

	raw := x.Data()
	f.ids = make([]int, len(raw))
	out := make([]float64, len(raw)*dim)
	wd := w.Data()
	for i, v := range raw {
		id := int(v)
		if id < 0 || id >= vocab {
			exceptions.Panicf("functions.Embedding: token id %d out of range [0, %d)", id, vocab)
		}
		f.ids[i] = id
		if f.MaskZero && id == 0 {
			continue
		}
		copy(out[i*dim:(i+1)*dim], wd[id*dim:(id+1)*dim])
	}
	shape := append(f.xShape.Clone(), dim)
	return []*tensor.Array{tensor.New(shape, out)}
}

func (f *EmbeddingFn) Backward(dys ...*tensor.Array) []*tensor.Array {
	if !f.Need(1) {
		return []*tensor.Array{nil, nil}
	}
	dim := f.wShape[1]
	dw := tensor.Zeros(f.wShape...)
	dwd, dyd := dw.Data(), dys[0].Data()
	for i, id := range f.ids {
		if f.MaskZero && id == 0 {
			continue
		}
		row := dwd[id*dim : (id+1)*dim]
		for j := range row {
			row[j] += dyd[i*dim+j]
		}
	}
	return []*tensor.Array{nil, dw}
}

// Embedding looks up ids (a node of integral values) in weight.
func Embedding(ids, weight autograd.Node, maskZero bool) *autograd.Tensor {
	return autograd.Apply(&EmbeddingFn{MaskZero: maskZero}, ids, weight)
}
