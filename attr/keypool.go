// Copyright © 2016, The T Authors.

package attr

import "sync"

// A KeyPool interns attribute keys: repeated calls to Intern with
// equal strings return the same backing string, so thousands of
// Marks carrying the same logical attribute name (e.g. a
// LineCounter's "lines"/"words"/"chars" sentinels, or a key decoded
// off an external JSON request) do not each hold their own copy of
// it. A KeyPool is shared by every Set that calls SetKeyPool with
// it; the zero value is not usable, use NewKeyPool.
type KeyPool struct {
	mu   sync.Mutex
	keys map[string]string
}

// NewKeyPool returns an empty KeyPool.
func NewKeyPool() *KeyPool {
	return &KeyPool{keys: make(map[string]string)}
}

// Intern returns the pool's canonical copy of key, adding key to
// the pool on its first use.
func (p *KeyPool) Intern(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if k, ok := p.keys[key]; ok {
		return k
	}
	p.keys[key] = key
	return key
}

// Len returns the number of distinct keys the pool has interned.
func (p *KeyPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}
