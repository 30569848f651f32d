package memory

import (
	"context"
	"sync"
)

// SettlementLock process-local keyed lock; non-blocking
type SettlementLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewSettlementLock() *SettlementLock {
	return &SettlementLock{held: make(map[string]struct{})}
}

// TryAcquire returns ok=false when the key is already held
func (l *SettlementLock) TryAcquire(ctx context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}
	return release, true, nil
}
