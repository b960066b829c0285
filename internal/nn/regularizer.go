package nn

import (
	"github.com/born-ml/graphnet/internal/autograd"
	"github.com/born-ml/graphnet/internal/functions"
)

// Regularizer turns a parameter into a scalar penalty node. The penalty is
// added to the training loss, so the parameter gets a second edge and its
// gradient is the sum of the data term and the penalty term.
type Regularizer interface {
	Penalty(p *autograd.Param) autograd.Node
}

// L1 adds Lambda * Σ|p|.
type L1 struct {
	Lambda float64
}

// Penalty implements Regularizer.
func (r L1) Penalty(p *autograd.Param) autograd.Node {
	return autograd.Mul(autograd.Scalar(r.Lambda), autograd.SumAll(functions.Abs(p)))
}

// L2 adds 0.5 * Lambda * Σp².
type L2 struct {
	Lambda float64
}

// Penalty implements Regularizer.
func (r L2) Penalty(p *autograd.Param) autograd.Node {
	return autograd.Mul(autograd.Scalar(0.5*r.Lambda), autograd.SumAll(autograd.Pow(p, 2)))
}

// L1L2 adds both penalties. The parameter gets one edge per term.
type L1L2 struct {
	L1Lambda float64
	L2Lambda float64
}

// Penalty implements Regularizer.
func (r L1L2) Penalty(p *autograd.Param) autograd.Node {
	return autograd.Add(L1{Lambda: r.L1Lambda}.Penalty(p), L2{Lambda: r.L2Lambda}.Penalty(p))
}

// penalty pairs a regularizer with the parameter it applies to.
type penalty struct {
	reg Regularizer
	p   *autograd.Param
}

// regularize sums the penalties that are set and built. It returns nil when
// nothing applies.
func regularize(terms ...penalty) autograd.Node {
	var total autograd.Node
	for _, t := range terms {
		if t.reg == nil || t.p == nil || !t.p.Built() {
			continue
		}
		term := t.reg.Penalty(t.p)
		if total == nil {
			total = term
		} else {
			total = autograd.Add(total, term)
		}
	}
	return total
}
