package tokenizer

import (
	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
)

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI encodings.
//
// Supported encodings:
//   - cl100k_base: GPT-4, GPT-3.5-turbo
//   - p50k_base: GPT-3, Codex
//   - r50k_base: GPT-3, davinci
//
// The encoding tables are fetched on first use unless they are cached
// locally (see TIKTOKEN_CACHE_DIR in tiktoken-go).
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken creates a tokenizer for the named encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load tiktoken encoding %q", encodingName)
	}
	return &TikToken{encoding: encoding, name: encodingName}, nil
}

// NewTikTokenForModel creates a tokenizer for a model name such as "gpt-4".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	encoding, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load tiktoken for model %q", modelName)
	}
	return &TikToken{encoding: encoding, name: modelName}, nil
}

// Encode converts text to token ids. Special tokens are encoded as plain
// text.
func (t *TikToken) Encode(text string) ([]int, error) {
	return t.encoding.Encode(text, nil, nil), nil
}

// Decode converts token ids back to text.
func (t *TikToken) Decode(ids []int) (string, error) {
	return t.encoding.Decode(ids), nil
}

// Name returns the encoding or model name.
func (t *TikToken) Name() string {
	return t.name
}
