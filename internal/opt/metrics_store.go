package opt

import (
	"sync"

	"pitroute/internal/model"
)

// In-memory registry of solver diagnostics per plan, for the admin surface.

type runKey struct {
	PlanID string
	Solver string
}

var (
	runMu   sync.Mutex
	runByID = map[runKey]model.SolverRun{}
)

// RecordRun stores one solver's diagnostics for a plan.
func RecordRun(planID string, run model.SolverRun) {
	runMu.Lock()
	runByID[runKey{PlanID: planID, Solver: run.Solver}] = run
	runMu.Unlock()
}

// RunsFor returns diagnostics per solver for a plan.
func RunsFor(planID string) map[string]model.SolverRun {
	runMu.Lock()
	defer runMu.Unlock()
	out := map[string]model.SolverRun{}
	for k, v := range runByID {
		if k.PlanID == planID {
			out[k.Solver] = v
		}
	}
	return out
}
