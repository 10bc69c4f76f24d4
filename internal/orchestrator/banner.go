package orchestrator

import "sync"

// Banner holds the last unrecovered error for the current batch. Blocking
// UI reads it to unlock immediately on failure.
type Banner struct {
	mu       sync.RWMutex
	hasError bool
	message  string
}

func (b *Banner) Set(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasError = true
	b.message = message
}

func (b *Banner) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasError = false
	b.message = ""
}

func (b *Banner) State() (bool, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.hasError, b.message
}
