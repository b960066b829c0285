// Package tokenizer turns text into training data for next-token models.
//
// It provides:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//   - BPETokenizer: a small BPE tokenizer loaded from a HuggingFace
//     tokenizer.json, usable offline
//   - Vocab: a compact id space over the tokens a corpus actually uses,
//     with id 0 reserved for padding
//   - Windows: fixed-length (context, next token) pairs for an Embedding
//     and LSTM model
//
// Example usage:
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ids, err := tok.Encode(text)
//	vocab := tokenizer.BuildVocab(ids)
//	x, y := tokenizer.Windows(vocab.Compact(ids), 8, vocab.Size())
package tokenizer
