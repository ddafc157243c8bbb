package opt

import (
	"context"
	"fmt"
	"sort"

	"pitroute/internal/config"
	"pitroute/internal/model"
	"pitroute/internal/travel"
)

// AssignmentSolver is the combinatorial optimizer: it reduces the problem to
// a candidate set, builds the penalty-weighted QUBO, samples it, and decodes
// the winning read into per-truck assignment sets. Sequencing within an
// assignment is delegated to the nearest-neighbor sequencer.
type AssignmentSolver struct {
	cfg     config.Anneal
	sampler Sampler
}

func NewAssignmentSolver(cfg config.Anneal, sampler Sampler) *AssignmentSolver {
	return &AssignmentSolver{cfg: cfg, sampler: sampler}
}

// candidates picks the top-N pits by tier rank then priority, id as the
// final tie-break, bounding problem size before the QUBO blows up.
func (s *AssignmentSolver) candidates(pits []model.Pit) []model.Pit {
	out := append([]model.Pit(nil), pits...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier.Rank() != out[j].Tier.Rank() {
			return out[i].Tier.Rank() < out[j].Tier.Rank()
		}
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	if s.cfg.TopN > 0 && len(out) > s.cfg.TopN {
		out = out[:s.cfg.TopN]
	}
	return out
}

// Solve produces assignments atomically from a single sampler run. A missing
// sampler fails loudly with ErrSamplerUnavailable so callers can fall back
// to the baseline.
func (s *AssignmentSolver) Solve(ctx context.Context, snap *model.Snapshot, m *travel.Matrix, reads int) (map[string]model.Assignment, float64, error) {
	if s.sampler == nil {
		return nil, 0, ErrSamplerUnavailable
	}
	pits := s.candidates(snap.Pits)
	trucks := snap.Trucks
	if s.cfg.MaxTrucks > 0 && len(trucks) > s.cfg.MaxTrucks {
		trucks = trucks[:s.cfg.MaxTrucks]
	}
	if len(pits) == 0 || len(trucks) == 0 {
		return map[string]model.Assignment{}, 0, nil
	}
	if reads <= 0 {
		reads = s.cfg.Reads
	}

	q := BuildAssignmentModel(pits, trucks, m, s.cfg)
	sample, err := s.sampler.Sample(ctx, q, reads)
	if err != nil {
		return nil, 0, fmt.Errorf("opt: sample assignment model: %w", err)
	}

	nP := len(pits)
	out := make(map[string]model.Assignment, len(trucks))
	for t, truck := range trucks {
		assigned := []int{}
		for p := 0; p < nP; p++ {
			if sample.X[t*nP+p] {
				assigned = append(assigned, pits[p].ID)
			}
		}
		out[truck.Key()] = model.Assignment{
			AssignedPits: assigned,
			Sequence:     NearestNeighborSequence(assigned, m),
			Solver:       SolverAnneal,
		}
	}
	return out, sample.Energy, nil
}
