package tokenizer

import (
	"github.com/born-ml/graphnet/internal/tensor"
)

// Pad is the compact id reserved for padding.
const Pad = 0

// Vocab maps the token ids of a corpus onto a dense range starting at 1, so
// an embedding table only needs a row per token actually seen.
type Vocab struct {
	compact map[int]int
	tokens  []int // compact id -> token id; tokens[Pad] is unused
}

// BuildVocab collects the distinct tokens of ids in order of first
// appearance.
func BuildVocab(ids []int) *Vocab {
	v := &Vocab{compact: make(map[int]int), tokens: []int{-1}}
	for _, id := range ids {
		if _, ok := v.compact[id]; !ok {
			v.compact[id] = len(v.tokens)
			v.tokens = append(v.tokens, id)
		}
	}
	return v
}

// Size returns the number of compact ids, padding included.
func (v *Vocab) Size() int {
	return len(v.tokens)
}

// Compact maps token ids to compact ids. Tokens outside the vocabulary map
// to Pad.
func (v *Vocab) Compact(ids []int) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = v.compact[id]
	}
	return out
}

// Expand maps compact ids back to token ids, skipping Pad.
func (v *Vocab) Expand(compact []int) []int {
	out := make([]int, 0, len(compact))
	for _, c := range compact {
		if c > Pad && c < len(v.tokens) {
			out = append(out, v.tokens[c])
		}
	}
	return out
}

// Windows slides a window of length over ids and returns the contexts x,
// shaped [n, length] with compact ids as values, and the one-hot next
// tokens y, shaped [n, size]. It returns nils when ids are too short.
func Windows(ids []int, length, size int) (x, y *tensor.Array) {
	n := len(ids) - length
	if n <= 0 {
		return nil, nil
	}
	x = tensor.Zeros(n, length)
	y = tensor.Zeros(n, size)
	for i := 0; i < n; i++ {
		for j := 0; j < length; j++ {
			x.Set(float64(ids[i+j]), i, j)
		}
		y.Set(1, i, ids[i+length])
	}
	return x, y
}
