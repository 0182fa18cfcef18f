package services

import (
	"math/rand/v2"
	"sync"
)

// RandomSource drives question sampling and per-view shuffling
type RandomSource interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource returns an unseeded source safe for concurrent use
func NewRandomSource() RandomSource {
	return &lockedRandom{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededRandomSource returns a deterministic source, used by tests
func NewSeededRandomSource(seed uint64) RandomSource {
	return &lockedRandom{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *lockedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

func (r *lockedRandom) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(n, swap)
}

// sampleIndexes draws k distinct indexes from [0, n) with a partial Fisher-Yates
func sampleIndexes(rnd RandomSource, n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rnd.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
