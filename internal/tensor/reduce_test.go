package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumAxis(t *testing.T) {
	x := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})

	s0 := x.Sum(0, false)
	assert.Equal(t, Shape{3}, s0.Shape())
	assert.Equal(t, []float64{5, 7, 9}, s0.Data())

	s1 := x.Sum(1, true)
	assert.Equal(t, Shape{2, 1}, s1.Shape())
	assert.Equal(t, []float64{6, 15}, s1.Data())

	assert.Equal(t, []float64{6, 15}, x.Sum(-1, false).Data())
	assert.Equal(t, []float64{2, 5}, x.Mean(1, false).Data())
	assert.Equal(t, []float64{3, 6}, x.Max(1, false).Data())
	assert.Equal(t, 21.0, x.SumAll())
	assert.Equal(t, 3.5, x.MeanAll())
}

func TestSumToReducesBroadcastAxes(t *testing.T) {
	g := Ones(4, 3)

	assert.Equal(t, []float64{4, 4, 4}, g.SumTo(Shape{3}).Data())

	col := g.SumTo(Shape{4, 1})
	assert.Equal(t, Shape{4, 1}, col.Shape())
	assert.Equal(t, []float64{3, 3, 3, 3}, col.Data())

	assert.Equal(t, []float64{12}, g.SumTo(Shape{}).Data())
	assert.Panics(t, func() { g.SumTo(Shape{2}) })
}

func TestBroadcastToIsAdjointOfSumTo(t *testing.T) {
	b := FromSlice([]float64{1, 2}, 2)
	wide := b.BroadcastTo(Shape{3, 2})
	assert.Equal(t, []float64{1, 2, 1, 2, 1, 2}, wide.Data())
	assert.Equal(t, []float64{3, 6}, wide.SumTo(Shape{2}).Data())

	assert.Equal(t, []float64{5, 5}, Scalar(5).BroadcastTo(Shape{2}).Data())
	assert.Panics(t, func() { b.BroadcastTo(Shape{3}) })
}

func TestArgMaxRows(t *testing.T) {
	x := FromRows([][]float64{{0.1, 0.7, 0.2}, {0.9, 0.05, 0.05}})
	assert.Equal(t, []int{1, 0}, x.ArgMaxRows())
}
