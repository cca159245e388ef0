// Package generator picks random words for a batch.
package generator

import (
	"math/rand"
	"sync"
	"time"
)

// Generator produces randomized word batches. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Pick selects count words uniformly, avoiding the same word twice in a row
// when the list allows it.
func (g *Generator) Pick(words []string, count int) []string {
	if len(words) == 0 || count <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	result := make([]string, 0, count)
	prev := -1
	for i := 0; i < count; i++ {
		idx := g.rnd.Intn(len(words))
		if idx == prev && len(words) > 1 {
			idx = (idx + 1 + g.rnd.Intn(len(words)-1)) % len(words)
		}
		result = append(result, words[idx])
		prev = idx
	}
	return result
}
