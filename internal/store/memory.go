package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"tradeplan/internal/models"
)

// MemoryStore keeps everything in process-local maps guarded by one RWMutex.
// Values are copied on the way in and out so callers never share mutable
// state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	permissions map[string]models.WalletPermission
	usage       map[string]decimal.Decimal
	agents      map[string]models.AgentConfig
	performance map[string]models.AgentPerformance
	positions   map[string][]models.Position
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		permissions: map[string]models.WalletPermission{},
		usage:       map[string]decimal.Decimal{},
		agents:      map[string]models.AgentConfig{},
		performance: map[string]models.AgentPerformance{},
		positions:   map[string][]models.Position{},
	}
}

func (s *MemoryStore) PutPermission(_ context.Context, p *models.WalletPermission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetPermission(_ context.Context, id string) (*models.WalletPermission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (s *MemoryStore) ListPermissions(_ context.Context) ([]*models.WalletPermission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.WalletPermission, 0, len(s.permissions))
	for _, p := range s.permissions {
		cp := p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) IncrUsage(_ context.Context, bucket string, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := s.usage[bucket].Add(amount)
	s.usage[bucket] = total
	return total, nil
}

func (s *MemoryStore) GetUsage(_ context.Context, bucket string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage[bucket], nil
}

func (s *MemoryStore) PutAgent(_ context.Context, a *models.AgentConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetAgent(_ context.Context, id string) (*models.AgentConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := a
	return &cp, nil
}

func (s *MemoryStore) ListAgents(_ context.Context) ([]*models.AgentConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AgentConfig, 0, len(s.agents))
	for _, a := range s.agents {
		cp := a
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) PutPerformance(_ context.Context, p *models.AgentPerformance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.performance[p.AgentID] = *p
	return nil
}

func (s *MemoryStore) GetPerformance(_ context.Context, agentID string) (*models.AgentPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.performance[agentID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (s *MemoryStore) PutPosition(_ context.Context, p *models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.positions[p.AgentID]
	for i := range list {
		if list[i].ID == p.ID {
			list[i] = *p
			return nil
		}
	}
	s.positions[p.AgentID] = append(list, *p)
	return nil
}

func (s *MemoryStore) ListPositions(_ context.Context, agentID string) ([]*models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.positions[agentID]
	out := make([]*models.Position, 0, len(list))
	for _, p := range list {
		cp := p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) DeletePosition(_ context.Context, agentID, positionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.positions[agentID]
	for i := range list {
		if list[i].ID == positionID {
			s.positions[agentID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ClearPositions(_ context.Context, agentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.positions[agentID])
	delete(s.positions, agentID)
	return n, nil
}
