package opt

import (
	"context"
	"errors"
	"testing"

	"pitroute/internal/config"
	"pitroute/internal/model"
	"pitroute/internal/scenario"
	"pitroute/internal/travel"
)

func generatedSnapshot(t *testing.T, pits, trucks int, seed int64, closureFraction float64) *model.Snapshot {
	t.Helper()
	cfg := config.Default()
	snap, err := scenario.Generate(model.ScenarioSpec{
		Pits: pits, Trucks: trucks, Seed: seed, ClosureFraction: &closureFraction,
	}, cfg)
	if err != nil {
		t.Fatalf("generate scenario: %v", err)
	}
	return snap
}

func fastConfig() config.Config {
	cfg := config.Default()
	cfg.Anneal.Reads = 60
	cfg.Anneal.Sweeps = 60
	return cfg
}

func TestRunnerBothSolvers(t *testing.T) {
	cfg := fastConfig()
	snap := generatedSnapshot(t, 12, 3, 5, 0.05)
	r := NewRunner(cfg, NewAnnealer(cfg.Anneal.Sweeps, 5))

	results, err := r.Run(context.Background(), model.PlanRequest{Solver: SolverBoth, Seed: 5}, snap)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results: got %d, want 2", len(results))
	}
	if results[0].Solver != SolverGreedy || results[1].Solver != SolverAnneal {
		t.Fatalf("solver order: %s, %s", results[0].Solver, results[1].Solver)
	}
	if len(results[0].Routes) != len(snap.Trucks) {
		t.Fatalf("greedy routes: got %d, want %d", len(results[0].Routes), len(snap.Trucks))
	}
	if results[1].Run.Reads != cfg.Anneal.Reads {
		t.Fatalf("recorded reads: got %d, want %d", results[1].Run.Reads, cfg.Anneal.Reads)
	}
}

func TestRunnerUnknownSolver(t *testing.T) {
	r := NewRunner(fastConfig(), nil)
	snap := generatedSnapshot(t, 4, 1, 3, 0)
	if _, err := r.Run(context.Background(), model.PlanRequest{Solver: "tabu"}, snap); err == nil {
		t.Fatal("unknown solver must error")
	}
}

func TestRunnerNilSamplerFallsBackForBoth(t *testing.T) {
	r := NewRunner(fastConfig(), nil)
	snap := generatedSnapshot(t, 6, 2, 3, 0)

	results, err := r.Run(context.Background(), model.PlanRequest{Solver: SolverBoth}, snap)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].Solver != SolverGreedy {
		t.Fatalf("expected baseline-only fallback, got %+v", results)
	}

	// An explicit anneal request is a configuration error, not a fallback.
	_, err = r.Run(context.Background(), model.PlanRequest{Solver: SolverAnneal}, snap)
	if !errors.Is(err, ErrSamplerUnavailable) {
		t.Fatalf("want ErrSamplerUnavailable, got %v", err)
	}
}

// No produced sequence ever traverses a closed edge, and no truck carries
// more demand than its capacity.
func TestRunnerRespectsClosuresAndCapacity(t *testing.T) {
	cfg := fastConfig()
	snap := generatedSnapshot(t, 15, 3, 11, 0.15)
	m, err := travel.NewMatrix(snap.Nodes, snap.Matrix)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	demand := map[int]float64{}
	for _, p := range snap.Pits {
		demand[p.ID] = p.Demand
	}
	capacity := map[string]float64{}
	for _, tr := range snap.Trucks {
		capacity[tr.Key()] = tr.Capacity
	}

	r := NewRunner(cfg, NewAnnealer(cfg.Anneal.Sweeps, 11))
	results, err := r.Run(context.Background(), model.PlanRequest{Solver: SolverBoth, Seed: 11}, snap)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	checkSeq := func(solver, key string, seq []model.NodeID) {
		for i := 0; i+1 < len(seq); i++ {
			if c := m.Minutes(seq[i], seq[i+1]); travel.IsForbidden(c) {
				t.Fatalf("%s %s crosses closed edge %v->%v", solver, key, seq[i], seq[i+1])
			}
		}
	}
	for _, res := range results {
		for key, rt := range res.Routes {
			checkSeq(res.Solver, key, rt.Sequence)
			load := 0.0
			for _, id := range rt.ServedPits {
				load += demand[id]
			}
			if load > capacity[key] {
				t.Fatalf("greedy %s over capacity: %v > %v", key, load, capacity[key])
			}
		}
		for key, a := range res.Assignments {
			checkSeq(res.Solver, key, a.Sequence)
		}
		if res.Metrics.ServedTotal+res.Metrics.MissedTotal != len(snap.Pits) {
			t.Fatalf("%s coverage: %d+%d != %d", res.Solver,
				res.Metrics.ServedTotal, res.Metrics.MissedTotal, len(snap.Pits))
		}
	}
}

func TestRunRegistry(t *testing.T) {
	run := model.SolverRun{Solver: SolverGreedy, ElapsedMS: 4}
	RecordRun("plan-x", run)
	RecordRun("plan-x", model.SolverRun{Solver: SolverAnneal, Reads: 9})

	got := RunsFor("plan-x")
	if len(got) != 2 {
		t.Fatalf("runs: got %d, want 2", len(got))
	}
	if got[SolverGreedy].ElapsedMS != 4 || got[SolverAnneal].Reads != 9 {
		t.Fatalf("registry contents wrong: %+v", got)
	}
	if len(RunsFor("missing")) != 0 {
		t.Fatal("unknown plan must report no runs")
	}
}
