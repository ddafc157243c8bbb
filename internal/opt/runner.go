package opt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pitroute/internal/config"
	"pitroute/internal/model"
	"pitroute/internal/travel"
)

// Solver names accepted in plan requests.
const (
	SolverGreedy = "greedy"
	SolverAnneal = "anneal"
	SolverBoth   = "both"
)

// Runner executes one planning cycle: both solvers against the same
// read-only snapshot, each scored by the shared evaluator so the results
// compare on one metric surface.
type Runner struct {
	cfg     config.Config
	sampler Sampler
}

// NewRunner wires the default annealing sampler. Pass nil to model a
// deployment without the optimizer dependency; the greedy path still runs.
func NewRunner(cfg config.Config, sampler Sampler) *Runner {
	return &Runner{cfg: cfg, sampler: sampler}
}

// Run plans the snapshot with the requested solver(s). For "both", a missing
// sampler degrades to the baseline-only result instead of failing the cycle;
// an explicit "anneal" request propagates the configuration error.
func (r *Runner) Run(ctx context.Context, req model.PlanRequest, snap *model.Snapshot) ([]model.PlanResult, error) {
	solver := req.Solver
	if solver == "" {
		solver = SolverBoth
	}
	switch solver {
	case SolverGreedy, SolverAnneal, SolverBoth:
	default:
		return nil, fmt.Errorf("opt: unknown solver %q", solver)
	}

	m, err := travel.NewMatrix(snap.Nodes, snap.Matrix)
	if err != nil {
		return nil, fmt.Errorf("opt: snapshot matrix: %w", err)
	}
	eval := NewEvaluator(r.cfg, m, snap.Pits)

	var results []model.PlanResult

	if solver == SolverGreedy || solver == SolverBoth {
		start := time.Now()
		router := NewGreedyRouter(r.cfg.Greedy, m)
		g := router.Plan(snap.Pits, snap.Trucks, NewServedSet())

		sequences := make(map[string][]model.NodeID, len(g.Routes))
		for k, rt := range g.Routes {
			sequences[k] = rt.Sequence
		}
		results = append(results, model.PlanResult{
			Solver:  SolverGreedy,
			Routes:  g.Routes,
			Metrics: eval.Evaluate(sequences),
			Run: model.SolverRun{
				Solver:    SolverGreedy,
				Seed:      req.Seed,
				ElapsedMS: time.Since(start).Milliseconds(),
			},
		})
	}

	if solver == SolverAnneal || solver == SolverBoth {
		start := time.Now()
		sampler := r.sampler
		if a, ok := sampler.(*Annealer); ok && req.Seed != 0 {
			seeded := *a
			seeded.Seed = req.Seed
			sampler = &seeded
		}
		as := NewAssignmentSolver(r.cfg.Anneal, sampler)
		assignments, energy, err := as.Solve(ctx, snap, m, req.Reads)
		switch {
		case errors.Is(err, ErrSamplerUnavailable) && solver == SolverBoth:
			// baseline result above stands on its own
		case err != nil:
			return results, err
		default:
			sequences := make(map[string][]model.NodeID, len(assignments))
			for k, a := range assignments {
				sequences[k] = a.Sequence
			}
			reads := req.Reads
			if reads <= 0 {
				reads = r.cfg.Anneal.Reads
			}
			results = append(results, model.PlanResult{
				Solver:      SolverAnneal,
				Assignments: assignments,
				Metrics:     eval.Evaluate(sequences),
				Run: model.SolverRun{
					Solver:     SolverAnneal,
					Seed:       req.Seed,
					Reads:      reads,
					BestEnergy: energy,
					ElapsedMS:  time.Since(start).Milliseconds(),
				},
			})
		}
	}

	return results, nil
}
