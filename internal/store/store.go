package store

import (
	"context"
	"errors"

	"pitroute/internal/model"
)

// ErrNotFound is returned for unknown plan or scenario ids.
var ErrNotFound = errors.New("store: not found")

// Store persists plan results and scenario snapshots so downstream
// consumers (export, visualization) can fetch them after the cycle runs.
type Store interface {
	// SavePlan assigns an id and timestamp and persists the result.
	SavePlan(ctx context.Context, plan model.PlanResult) (model.PlanResult, error)
	GetPlan(ctx context.Context, id string) (model.PlanResult, error)
	ListPlans(ctx context.Context, limit int) ([]model.PlanResult, error)

	SaveScenario(ctx context.Context, snap *model.Snapshot) (string, error)
	GetScenario(ctx context.Context, id string) (*model.Snapshot, error)

	Ping(ctx context.Context) error
}
