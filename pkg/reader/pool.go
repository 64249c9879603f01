package reader

import "sync"

// Pool shares one string instance across repeated values. A reader with
// a pool configured interns every field value it produces; correctness
// never depends on the pool, only allocation behavior does.
type Pool interface {
	// Intern returns a canonical instance equal to s.
	Intern(s string) string
}

// InternPool is a map-backed Pool, safe for concurrent use so one pool
// may serve several readers.
type InternPool struct {
	mu      sync.RWMutex
	strings map[string]string
}

// NewInternPool returns an empty pool.
func NewInternPool() *InternPool {
	return &InternPool{strings: make(map[string]string)}
}

// Intern returns the pooled instance of s, adding it on first sight.
func (p *InternPool) Intern(s string) string {
	p.mu.RLock()
	v, ok := p.strings[s]
	p.mu.RUnlock()
	if ok {
		return v
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.strings[s]; ok {
		return v
	}
	p.strings[s] = s
	return s
}

// Len reports how many distinct values the pool holds.
func (p *InternPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.strings)
}
