package otpguard

import (
	"context"
	"sync"
	"time"

	"github.com/iudanet/rentspace/internal/crypto"
)

type attemptWindow struct {
	resetAt time.Time
	count   int
}

// MemoryGuard Guard в памяти процесса, используется без Redis
type MemoryGuard struct {
	now         func() time.Time
	attempts    map[string]*attemptWindow
	used        map[string]time.Time
	window      time.Duration
	maxAttempts int
	mu          sync.Mutex
}

var _ Guard = (*MemoryGuard)(nil)

// NewMemoryGuard создает MemoryGuard: не более maxAttempts попыток за window
func NewMemoryGuard(maxAttempts int, window time.Duration) *MemoryGuard {
	return &MemoryGuard{
		now:         time.Now,
		attempts:    make(map[string]*attemptWindow),
		used:        make(map[string]time.Time),
		window:      window,
		maxAttempts: maxAttempts,
	}
}

// Allow implements Guard
func (g *MemoryGuard) Allow(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	w, ok := g.attempts[key]
	if !ok || !now.Before(w.resetAt) {
		w = &attemptWindow{resetAt: now.Add(g.window)}
		g.attempts[key] = w
	}
	w.count++

	if w.count > g.maxAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

// Reset implements Guard
func (g *MemoryGuard) Reset(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.attempts, key)
	return nil
}

// Consume implements Guard
func (g *MemoryGuard) Consume(_ context.Context, sealed string, ttl time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.sweep(now)

	key := crypto.Fingerprint(sealed)
	if exp, ok := g.used[key]; ok && now.Before(exp) {
		return ErrAlreadyUsed
	}
	g.used[key] = now.Add(usedTTL(ttl))
	return nil
}

// sweep удаляет устаревшие записи, вызывается под мьютексом
func (g *MemoryGuard) sweep(now time.Time) {
	for k, exp := range g.used {
		if !now.Before(exp) {
			delete(g.used, k)
		}
	}
	for k, w := range g.attempts {
		if !now.Before(w.resetAt) {
			delete(g.attempts, k)
		}
	}
}
