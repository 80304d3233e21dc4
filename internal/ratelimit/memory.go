package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory: скользящий журнал попыток в памяти процесса. Учитываются только
// пропущенные попытки, поэтому на ключ хранится не больше Limit отметок.
type Memory struct {
	cfg Config
	now func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewMemory(cfg Config) *Memory {
	return &Memory{
		cfg:  cfg.normalized(),
		now:  time.Now,
		hits: make(map[string][]time.Time),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	if m.cfg.Limit <= 0 {
		return Decision{Allowed: true, Limit: m.cfg.Limit, Remaining: m.cfg.Limit}, nil
	}

	now := m.now()
	cutoff := now.Add(-m.cfg.Window)

	m.mu.Lock()
	defer m.mu.Unlock()

	hits := prune(m.hits[key], cutoff)

	if len(hits) >= m.cfg.Limit {
		m.hits[key] = hits
		resetAt := hits[0].Add(m.cfg.Window)
		return Decision{
			Allowed:    false,
			Limit:      m.cfg.Limit,
			Remaining:  0,
			RetryAfter: resetAt.Sub(now),
			ResetAt:    resetAt,
		}, nil
	}

	hits = append(hits, now)
	m.hits[key] = hits
	return Decision{
		Allowed:   true,
		Limit:     m.cfg.Limit,
		Remaining: m.cfg.Limit - len(hits),
		ResetAt:   hits[0].Add(m.cfg.Window),
	}, nil
}

// Sweep удаляет ключи, у которых все отметки вышли из окна.
func (m *Memory) Sweep() int {
	cutoff := m.now().Add(-m.cfg.Window)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, hits := range m.hits {
		hits = prune(hits, cutoff)
		if len(hits) == 0 {
			delete(m.hits, k)
			removed++
			continue
		}
		m.hits[k] = hits
	}
	return removed
}

// RunSweeper чистит карту раз в interval до отмены ctx.
func (m *Memory) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hits)
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0:0], hits[i:]...)
}
