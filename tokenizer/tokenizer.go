// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer turns text into training data for next-token models.
//
// Example usage:
//
//	import "github.com/born-ml/graphnet/tokenizer"
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ids, err := tok.Encode(text)
//	vocab := tokenizer.BuildVocab(ids)
//	x, y := tokenizer.Windows(vocab.Compact(ids), 8, vocab.Size())
package tokenizer

import (
	"github.com/born-ml/graphnet/internal/tensor"
	"github.com/born-ml/graphnet/internal/tokenizer"
)

// Tokenizer converts between text and token ids.
type Tokenizer = tokenizer.Tokenizer

// Vocab maps corpus token ids onto a dense range, with 0 for padding.
type Vocab = tokenizer.Vocab

// Pad is the compact id reserved for padding.
const Pad = tokenizer.Pad

// NewTikToken creates a tokenizer for an OpenAI encoding such as
// "cl100k_base".
func NewTikToken(encodingName string) (Tokenizer, error) {
	tok, err := tokenizer.NewTikToken(encodingName)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// NewTikTokenForModel creates a tokenizer for a model such as "gpt-4".
func NewTikTokenForModel(modelName string) (Tokenizer, error) {
	tok, err := tokenizer.NewTikTokenForModel(modelName)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// LoadBPE loads a BPE tokenizer from a HuggingFace tokenizer.json file.
func LoadBPE(path string) (Tokenizer, error) {
	tok, err := tokenizer.LoadBPEFromHuggingFace(path)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// BuildVocab collects the distinct tokens of ids.
func BuildVocab(ids []int) *Vocab {
	return tokenizer.BuildVocab(ids)
}

// Windows returns fixed-length contexts and one-hot next tokens.
func Windows(ids []int, length, size int) (x, y *tensor.Array) {
	return tokenizer.Windows(ids, length, size)
}
