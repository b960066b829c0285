package nn

import (
	"math"
	"time"

	"golang.org/x/exp/rand"

	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/tensor"
)

// Initializer fills a freshly allocated parameter once, when its layer is
// built. fanIn and fanOut are the layer's input and output widths.
type Initializer interface {
	Init(p *autograd.Param, fanIn, fanOut int)
}

// Zeros initializes parameters to 0.
type Zeros struct{}

// Init implements Initializer.
func (Zeros) Init(p *autograd.Param, _, _ int) {
	p.SetData(tensor.ZerosLike(p.Data()))
}

// Constant initializes parameters to Value.
type Constant struct {
	Value float64
}

// Init implements Initializer.
func (c Constant) Init(p *autograd.Param, _, _ int) {
	p.SetData(tensor.Full(c.Value, p.Shape()...))
}

// seeded lazily creates the random source of a random initializer. A zero
// seed draws one from the clock; any other seed makes initialization
// deterministic.
type seeded struct {
	Seed uint64
	src  rand.Source
}

func (s *seeded) source() rand.Source {
	if s.src == nil {
		s.src = tensor.NewSource(seedOrClock(s.Seed))
	}
	return s.src
}

func seedOrClock(seed uint64) uint64 {
	if seed == 0 {
		return uint64(time.Now().UnixNano())
	}
	return seed
}

// RandomUniform draws from U(Min, Max).
type RandomUniform struct {
	seeded
	Min, Max float64
}

// NewRandomUniform creates a uniform initializer.
func NewRandomUniform(min, max float64, seed uint64) *RandomUniform {
	return &RandomUniform{seeded: seeded{Seed: seed}, Min: min, Max: max}
}

// Init implements Initializer.
func (r *RandomUniform) Init(p *autograd.Param, _, _ int) {
	p.SetData(tensor.RandUniform(r.source(), r.Min, r.Max, p.Shape()...))
}

// RandomNormal draws from N(Mean, Std²).
type RandomNormal struct {
	seeded
	Mean, Std float64
}

// NewRandomNormal creates a normal initializer.
func NewRandomNormal(mean, std float64, seed uint64) *RandomNormal {
	return &RandomNormal{seeded: seeded{Seed: seed}, Mean: mean, Std: std}
}

// Init implements Initializer.
func (r *RandomNormal) Init(p *autograd.Param, _, _ int) {
	p.SetData(tensor.RandNormal(r.source(), r.Mean, r.Std, p.Shape()...))
}

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from N(0, 1/fan_in).
//
// This initialization helps maintain variance of activations across layers
// with sigmoid or tanh activations.
type Xavier struct {
	seeded
}

// NewXavier creates a Xavier initializer.
func NewXavier(seed uint64) *Xavier {
	return &Xavier{seeded{Seed: seed}}
}

// Init implements Initializer.
func (x *Xavier) Init(p *autograd.Param, fanIn, _ int) {
	p.SetData(tensor.RandNormal(x.source(), 0, 1/math.Sqrt(float64(max(fanIn, 1))), p.Shape()...))
}

// He initialization for weights followed by ReLU.
//
// Initializes weights with values drawn from N(0, 2/fan_in).
type He struct {
	seeded
}

// NewHe creates a He initializer.
func NewHe(seed uint64) *He {
	return &He{seeded{Seed: seed}}
}

// Init implements Initializer.
func (h *He) Init(p *autograd.Param, fanIn, _ int) {
	p.SetData(tensor.RandNormal(h.source(), 0, math.Sqrt(2/float64(max(fanIn, 1))), p.Shape()...))
}
