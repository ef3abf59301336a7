package modhash

import (
	"crypto/sha1"
	"hash"
	"sync"
)

// Engine is a reusable SHA-1 context. It is not safe for concurrent use.
type Engine struct {
	h hash.Hash
}

// NewEngine allocates a hashing engine.
func NewEngine() *Engine {
	return &Engine{h: sha1.New()}
}

// Sum hashes blob from a clean state.
func (e *Engine) Sum(blob []byte) Digest {
	e.h.Reset()
	e.h.Write(blob)
	var d Digest
	e.h.Sum(d[:0])
	return d
}

// enginePool hands out engines under a mutex. Engines are created lazily on
// first use and kept for reuse.
type enginePool struct {
	mu      sync.Mutex
	free    []*Engine
	created int
}

func (p *enginePool) get() *Engine {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		e := p.free[n-1]
		p.free = p.free[:n-1]
		return e
	}
	p.created++
	return NewEngine()
}

func (p *enginePool) put(e *Engine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, e)
}

// size reports how many engines the pool has created.
func (p *enginePool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}
