package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForVisitsEveryIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 10}
	n := 1000
	seen := make([]int32, n)
	For(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	}, cfg)
	for i, c := range seen {
		require.Equalf(t, int32(1), c, "index %d", i)
	}
}

func TestRangeChunksAreDisjoint(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 8}
	var mu sync.Mutex
	var chunks [][2]int
	Range(100, func(start, end int) {
		mu.Lock()
		chunks = append(chunks, [2]int{start, end})
		mu.Unlock()
	}, cfg)

	total := 0
	for _, c := range chunks {
		assert.Less(t, c[0], c[1])
		assert.GreaterOrEqual(t, c[1]-c[0], 8)
		total += c[1] - c[0]
	}
	assert.Equal(t, 100, total)
	assert.Len(t, chunks, 3)
}

func TestRangeSequentialFallback(t *testing.T) {
	for _, cfg := range []Config{
		{Enabled: false, NumWorkers: 8, MinChunkSize: 1},
		{Enabled: true, NumWorkers: 8, MinChunkSize: 64},
		{Enabled: true, NumWorkers: 1, MinChunkSize: 1},
	} {
		calls := 0
		Range(100, func(start, end int) {
			calls++
			assert.Equal(t, 0, start)
			assert.Equal(t, 100, end)
		}, cfg)
		assert.Equal(t, 1, calls, "%+v", cfg)
	}
}

func TestRangeEmpty(t *testing.T) {
	Range(0, func(int, int) { t.Fatal("called on empty range") }, DefaultConfig())
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 1 << 20
	out := make([]float64, n)

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			For(n, func(i int) { out[i] = float64(i) * 0.5 }, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			For(n, func(i int) { out[i] = float64(i) * 0.5 }, cfgSeq)
		}
	})
}
