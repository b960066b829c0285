package tokenizer

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// BPETokenizer implements Byte-Pair Encoding over whitespace-separated
// words.
//
// Unknown symbols map to the unknown token when one is set and are dropped
// otherwise.
type BPETokenizer struct {
	vocab        map[string]int
	reverseVocab map[int]string
	ranks        map[pair]int
	unkToken     int
}

type pair struct {
	first  string
	second string
}

// NewBPETokenizer creates a BPE tokenizer from a vocabulary and merge rules
// listed by priority.
func NewBPETokenizer(vocab map[string]int, merges []pair) *BPETokenizer {
	reverseVocab := make(map[int]string, len(vocab))
	for token, id := range vocab {
		reverseVocab[id] = token
	}
	ranks := make(map[pair]int, len(merges))
	for i, m := range merges {
		if _, ok := ranks[m]; !ok {
			ranks[m] = i
		}
	}
	return &BPETokenizer{vocab: vocab, reverseVocab: reverseVocab, ranks: ranks, unkToken: -1}
}

// SetUnkToken sets the id used for symbols missing from the vocabulary. A
// negative id drops them.
func (b *BPETokenizer) SetUnkToken(id int) {
	b.unkToken = id
}

// Encode converts text to token ids.
func (b *BPETokenizer) Encode(text string) ([]int, error) {
	var ids []int
	for _, word := range strings.Fields(text) {
		for _, sym := range b.merge(word) {
			if id, ok := b.vocab[sym]; ok {
				ids = append(ids, id)
			} else if b.unkToken >= 0 {
				ids = append(ids, b.unkToken)
			}
		}
	}
	return ids, nil
}

// merge splits word into runes and applies the best-ranked merge until none
// applies.
func (b *BPETokenizer) merge(word string) []string {
	syms := strings.Split(word, "")
	for len(syms) > 1 {
		best, bestRank := -1, 0
		for i := 0; i < len(syms)-1; i++ {
			if rank, ok := b.ranks[pair{syms[i], syms[i+1]}]; ok && (best < 0 || rank < bestRank) {
				best, bestRank = i, rank
			}
		}
		if best < 0 {
			break
		}
		merged := make([]string, 0, len(syms)-1)
		merged = append(merged, syms[:best]...)
		merged = append(merged, syms[best]+syms[best+1])
		syms = append(merged, syms[best+2:]...)
	}
	return syms
}

// Decode joins the symbols of ids. Unknown ids decode to U+FFFD.
func (b *BPETokenizer) Decode(ids []int) (string, error) {
	var sb strings.Builder
	for _, id := range ids {
		if sym, ok := b.reverseVocab[id]; ok {
			sb.WriteString(sym)
		} else {
			sb.WriteRune('�')
		}
	}
	return sb.String(), nil
}

// VocabSize returns the number of vocabulary entries.
func (b *BPETokenizer) VocabSize() int {
	return len(b.vocab)
}

// huggingFaceConfig is the subset of tokenizer.json this package reads.
type huggingFaceConfig struct {
	Model struct {
		Vocab  map[string]int `json:"vocab"`
		Merges []string       `json:"merges"`
		Unk    *string        `json:"unk_token"`
	} `json:"model"`
}

// LoadBPEFromHuggingFace loads a BPE tokenizer from a tokenizer.json file.
func LoadBPEFromHuggingFace(path string) (*BPETokenizer, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path comes from trusted caller
	if err != nil {
		return nil, errors.Wrap(err, "failed to read tokenizer.json")
	}

	var config huggingFaceConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to parse tokenizer.json")
	}

	var merges []pair
	for _, m := range config.Model.Merges {
		parts := strings.Fields(m)
		if len(parts) == 2 {
			merges = append(merges, pair{parts[0], parts[1]})
		}
	}

	tok := NewBPETokenizer(config.Model.Vocab, merges)
	if config.Model.Unk != nil {
		if id, ok := config.Model.Vocab[*config.Model.Unk]; ok {
			tok.SetUnkToken(id)
		}
	}
	return tok, nil
}
