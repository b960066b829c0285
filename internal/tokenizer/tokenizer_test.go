package tokenizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleBPE() *BPETokenizer {
	vocab := map[string]int{
		"h": 0, "e": 1, "l": 2, "o": 3, "w": 4, "r": 5, "d": 6,
		"he": 7, "ll": 8, "wo": 9, "ld": 10, "hell": 11,
	}
	merges := []pair{{"h", "e"}, {"l", "l"}, {"w", "o"}, {"l", "d"}, {"he", "ll"}}
	return NewBPETokenizer(vocab, merges)
}

func TestBPE_Encode(t *testing.T) {
	tok := exampleBPE()

	tests := []struct {
		name string
		text string
		want []int
	}{
		{name: "merged word", text: "hello", want: []int{11, 3}},
		{name: "two words", text: "hello world", want: []int{11, 3, 9, 5, 10}},
		{name: "empty string", text: "", want: nil},
		{name: "unknown runes dropped", text: "hex", want: []int{7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := tok.Encode(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBPE_UnknownToken(t *testing.T) {
	tok := exampleBPE()
	tok.SetUnkToken(99)
	ids, err := tok.Encode("hex")
	require.NoError(t, err)
	assert.Equal(t, []int{7, 99}, ids)

	text, err := tok.Decode([]int{11, 3, 99})
	require.NoError(t, err)
	assert.Equal(t, "hello�", text)
}

func TestBPE_LoadFromHuggingFace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	config := `{"model": {"vocab": {"<unk>": 0, "a": 1, "b": 2, "ab": 3}, "merges": ["a b"], "unk_token": "<unk>"}}`
	require.NoError(t, os.WriteFile(path, []byte(config), 0o600))

	tok, err := LoadBPEFromHuggingFace(path)
	require.NoError(t, err)
	assert.Equal(t, 4, tok.VocabSize())

	ids, err := tok.Encode("ab ba c")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1, 0}, ids)

	_, err = LoadBPEFromHuggingFace(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestVocab(t *testing.T) {
	v := BuildVocab([]int{500, 7, 500, 42})
	assert.Equal(t, 4, v.Size())
	assert.Equal(t, []int{1, 2, 1, 3, Pad}, v.Compact([]int{500, 7, 500, 42, 8}))
	assert.Equal(t, []int{500, 42}, v.Expand([]int{1, Pad, 3}))
}

func TestWindows(t *testing.T) {
	x, y := Windows([]int{1, 2, 3, 1}, 2, 4)
	require.NotNil(t, x)
	assert.Equal(t, []float64{1, 2, 2, 3}, x.Data())
	assert.Equal(t, []float64{
		0, 0, 0, 1,
		0, 1, 0, 0,
	}, y.Data())

	x, y = Windows([]int{1, 2}, 2, 3)
	assert.Nil(t, x)
	assert.Nil(t, y)
}

func TestTikToken_Roundtrip(t *testing.T) {
	tok, err := NewTikToken("cl100k_base")
	if err != nil {
		t.Skipf("cl100k_base tables unavailable: %v", err)
	}
	assert.Equal(t, "cl100k_base", tok.Name())

	text := "Hello, world! The quick brown fox."
	ids, err := tok.Encode(text)
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	decoded, err := tok.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, text, decoded)

	_, err = NewTikToken("invalid_encoding_xyz")
	assert.Error(t, err)
}

var (
	_ Tokenizer = (*TikToken)(nil)
	_ Tokenizer = (*BPETokenizer)(nil)
)
