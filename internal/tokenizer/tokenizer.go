package tokenizer

// Tokenizer converts between text and token ids.
type Tokenizer interface {
	// Encode converts text to token ids.
	Encode(text string) ([]int, error)

	// Decode converts token ids back to text.
	Decode(ids []int) (string, error)
}
