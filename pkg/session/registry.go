package session

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
)

// KeyRegistry hands out stable per-process keys for named bindings, such
// as the cookie binding of each Scope. A name maps to the same key until
// Reset, which the Manager calls on logout.
type KeyRegistry struct {
	mu   sync.Mutex
	keys map[string]string
}

func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{keys: make(map[string]string)}
}

// Key returns the key for name, issuing "{name}_{1000..9999}" on first use.
func (r *KeyRegistry) Key(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if k, ok := r.keys[name]; ok {
		return k
	}
	k := fmt.Sprintf("%s_%d", name, 1000+randomInt(9000))
	r.keys[name] = k
	return k
}

// Len returns the number of issued keys.
func (r *KeyRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

// Reset forgets all issued keys.
func (r *KeyRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.keys)
}

func randomInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}
