package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pitroute/internal/model"
)

// Memory is the default store for single-node and test deployments.
type Memory struct {
	mu        sync.Mutex
	plans     map[string]model.PlanResult
	scenarios map[string]*model.Snapshot
}

func NewMemory() *Memory {
	return &Memory{
		plans:     map[string]model.PlanResult{},
		scenarios: map[string]*model.Snapshot{},
	}
}

func (m *Memory) SavePlan(ctx context.Context, plan model.PlanResult) (model.PlanResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	if plan.CreatedAt == "" {
		plan.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	m.plans[plan.ID] = plan
	return plan, nil
}

func (m *Memory) GetPlan(ctx context.Context, id string) (model.PlanResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return model.PlanResult{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListPlans(ctx context.Context, limit int) ([]model.PlanResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.PlanResult, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) SaveScenario(ctx context.Context, snap *model.Snapshot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.scenarios[id] = snap
	return id, nil
}

func (m *Memory) GetScenario(ctx context.Context, id string) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scenarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }
