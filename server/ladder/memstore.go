package ladder

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MemStore is a Store held in process memory.
type MemStore struct {
	mu      sync.RWMutex
	players map[string]Player
	results []Result
}

func NewMemStore() *MemStore {
	return &MemStore{players: make(map[string]Player)}
}

func (m *MemStore) Player(ctx context.Context, id string) (Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return Player{}, errors.Wrapf(ErrNotFound, "player %s", id)
	}
	return p, nil
}

func (m *MemStore) Players(ctx context.Context, ids []string) (map[string]Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Player, len(ids))
	for _, id := range ids {
		if p, ok := m.players[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *MemStore) SavePlayer(ctx context.Context, p Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.ID] = p
	return nil
}

func (m *MemStore) Leaderboard(ctx context.Context, limit int) ([]Player, error) {
	m.mu.RLock()
	out := make([]Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, p)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean > out[j].Mean
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) RecordResult(ctx context.Context, res *Result, players []Player) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := int64(len(m.results) + 1)
	cp := *res
	cp.EventID = id
	cp.Changes = append([]Change(nil), res.Changes...)
	m.results = append(m.results, cp)
	for _, p := range players {
		m.players[p.ID] = p
	}
	return id, nil
}

// History walks the events newest first.
func (m *MemStore) History(ctx context.Context, playerID string, limit int) ([]HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []HistoryEntry
	for i := len(m.results) - 1; i >= 0; i-- {
		r := m.results[i]
		for _, c := range r.Changes {
			if c.PlayerID != playerID {
				continue
			}
			out = append(out, HistoryEntry{EventID: r.EventID, EventName: r.Name, Weight: r.Weight, Change: c, CreatedAt: r.CreatedAt})
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
