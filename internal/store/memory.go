// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Live Klondike sessions are only ever held here; nothing about a game in
// progress is written to disk.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Sessions idle for longer than the TTL are dropped by Sweep.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/solitaire/internal/game"
)

// ErrNotFound is returned by Get for unknown or evicted games.
var ErrNotFound = errors.New("store: game not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or updates a game session.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID.
	// Returns ErrNotFound if the game is unknown.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Delete drops a game. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}

// Memory is an in-memory map-based Store implementation.
type Memory struct {
	mu    sync.RWMutex          // guards games map
	games map[string]*game.Game // keyed by Game.ID
	ttl   time.Duration
}

// NewMemoryStore constructs a new in-memory Store. A ttl of 0 disables
// eviction.
func NewMemoryStore(ttl time.Duration) *Memory {
	return &Memory{games: make(map[string]*game.Game), ttl: ttl}
}

// Save adds or updates the game in the map.
func (m *Memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return nil
}

// Get looks up a game by ID.
func (m *Memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return nil, ErrNotFound
}

// Delete removes a game.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

// Len is the number of live sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Sweep drops sessions idle since before now-ttl and returns how many went.
func (m *Memory) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, g := range m.games {
		if g.LastActive().Before(cutoff) {
			delete(m.games, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Memory) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(n int)) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := m.Sweep(now); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
