package store

import "sync"

// Memory is an in-process CounterStore used in tests.
type Memory struct {
	mu     sync.Mutex
	counts map[int64]int64
}

func NewMemory() *Memory {
	return &Memory{counts: make(map[int64]int64)}
}

func (m *Memory) Increment(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[userID]++
	return nil
}

func (m *Memory) Count(userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[userID], nil
}

func (m *Memory) Close() error { return nil }
