package env

import (
	"sync"

	"github.com/msxvi/strategy/core/model"
)

type memoKey struct {
	segment int
	elapsed float64
}

// Memo wraps an oracle with a memoization table safe for concurrent readers.
// Sources may perform I/O, so repeated (segment, time) queries within one
// optimization run are answered from the table. Only successful samples are
// cached; availability errors are recomputed on each query.
type Memo struct {
	inner Oracle

	mu sync.RWMutex
	m  map[memoKey]model.EnvironmentSample
}

// NewMemo wraps the given oracle.
func NewMemo(inner Oracle) *Memo {
	return &Memo{inner: inner, m: make(map[memoKey]model.EnvironmentSample)}
}

// Sample returns the cached sample when present, querying the wrapped oracle
// otherwise. Determinism of the wrapped oracle makes the cache transparent.
func (c *Memo) Sample(segmentIndex int, elapsedS float64) (model.EnvironmentSample, error) {
	key := memoKey{segment: segmentIndex, elapsed: elapsedS}
	c.mu.RLock()
	s, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}
	s, err := c.inner.Sample(segmentIndex, elapsedS)
	if err != nil {
		return model.EnvironmentSample{}, err
	}
	c.mu.Lock()
	c.m[key] = s
	c.mu.Unlock()
	return s, nil
}
