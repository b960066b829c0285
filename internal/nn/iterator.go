package nn

import (
	"golang.org/x/exp/rand"

	"github.com/born-ml/graphnet/internal/tensor"
)

// Iterator yields aligned (x, y) mini batches along axis 0.
//
// With a random source the sample order is reshuffled on every Reset. The
// last batch holds the remainder unless LastRoundDown drops it.
type Iterator struct {
	x, y          *tensor.Array
	src           rand.Source
	lastRoundDown bool
	order         []int
	pos           int
}

// NewIterator creates an iterator over x and y, which must have the same
// number of samples. A nil src keeps samples in order.
func NewIterator(x, y *tensor.Array, src rand.Source, lastRoundDown bool) *Iterator {
	if y != nil && y.Shape()[0] != x.Shape()[0] {
		panicShape("Iterator", tensor.Shape{x.Shape()[0], -1}, y.Shape())
	}
	it := &Iterator{x: x, y: y, src: src, lastRoundDown: lastRoundDown}
	it.Reset()
	return it
}

// NumSamples returns the number of samples.
func (it *Iterator) NumSamples() int {
	return it.x.Shape()[0]
}

// MaxSteps returns the number of batches of batchSize in one pass.
func (it *Iterator) MaxSteps(batchSize int) int {
	n := it.NumSamples()
	if it.lastRoundDown {
		return n / batchSize
	}
	return (n + batchSize - 1) / batchSize
}

// HasNext reports whether Next will return another batch.
func (it *Iterator) HasNext(batchSize int) bool {
	left := len(it.order) - it.pos
	if it.lastRoundDown {
		return left >= batchSize
	}
	return left > 0
}

// Next returns the next batch. y is nil if the iterator has no targets.
func (it *Iterator) Next(batchSize int) (x, y *tensor.Array, ok bool) {
	if !it.HasNext(batchSize) {
		return nil, nil, false
	}
	end := min(it.pos+batchSize, len(it.order))
	idx := it.order[it.pos:end]
	it.pos = end
	x = it.x.TakeRows(idx)
	if it.y != nil {
		y = it.y.TakeRows(idx)
	}
	return x, y, true
}

// Reset rewinds the iterator and reshuffles if it has a random source.
func (it *Iterator) Reset() {
	n := it.NumSamples()
	if it.src != nil {
		it.order = tensor.Permutation(it.src, n)
	} else {
		it.order = make([]int, n)
		for i := range it.order {
			it.order[i] = i
		}
	}
	it.pos = 0
}

// ForEach calls fn for every batch of one pass and resets the iterator. It
// stops at the first error.
func (it *Iterator) ForEach(batchSize int, fn func(x, y *tensor.Array, step int) error) error {
	defer it.Reset()
	for step := 0; ; step++ {
		x, y, ok := it.Next(batchSize)
		if !ok {
			return nil
		}
		if err := fn(x, y, step); err != nil {
			return err
		}
	}
}
