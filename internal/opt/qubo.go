package opt

import (
	"math"

	"pitroute/internal/config"
	"pitroute/internal/model"
	"pitroute/internal/travel"
)

// Model is a QUBO: binary variables with linear weights and pairwise
// quadratic couplings, plus a constant offset. Constraints live in the
// objective as squared-penalty terms, never as hard cuts.
type Model struct {
	linear []float64
	adj    []map[int]float64 // symmetric couplings, stored both directions
	offset float64
}

func NewModel(n int) *Model {
	m := &Model{linear: make([]float64, n), adj: make([]map[int]float64, n)}
	for i := range m.adj {
		m.adj[i] = map[int]float64{}
	}
	return m
}

func (m *Model) N() int { return len(m.linear) }

func (m *Model) AddLinear(i int, v float64) { m.linear[i] += v }

func (m *Model) AddQuadratic(i, j int, v float64) {
	if i == j {
		// x*x == x for binaries
		m.linear[i] += v
		return
	}
	m.adj[i][j] += v
	m.adj[j][i] += v
}

func (m *Model) AddOffset(v float64) { m.offset += v }

// Energy evaluates the objective for a full assignment.
func (m *Model) Energy(x []bool) float64 {
	e := m.offset
	for i, on := range x {
		if !on {
			continue
		}
		e += m.linear[i]
		for j, w := range m.adj[i] {
			if j > i && x[j] {
				e += w
			}
		}
	}
	return e
}

// FlipDelta returns the energy change from flipping variable i, used by the
// annealer's inner loop to avoid full re-evaluation.
func (m *Model) FlipDelta(x []bool, i int) float64 {
	local := m.linear[i]
	for j, w := range m.adj[i] {
		if x[j] {
			local += w
		}
	}
	if x[i] {
		return -local
	}
	return local
}

// tierWeights returns the unserved pull and the serve-reward multiplier for
// a tier; HIGH pits pull hardest toward s=1 and earn the largest reward.
func tierWeights(t model.Tier) (unserved, rewardMult float64) {
	switch t {
	case model.TierHigh:
		return 4000.0, 1.4
	case model.TierMedium:
		return 1200.0, 1.0
	default:
		return 300.0, 0.7
	}
}

// BuildAssignmentModel encodes truck-by-pit assignment over the candidate
// set. Variable order is truck-major: var(t,p) = t*len(pits)+p.
//
// Terms, all additive:
//   - serve reward      -W_priority * mult(tier) * priority
//   - lateness          W_late * max(0, travel - deadline)
//   - travel cost       W_travel * travel (true depot->pit matrix lookup;
//     a forbidden edge propagates its sentinel and prices the pit out)
//   - at-most-once      W_once * s*(s-1) per pit
//   - unserved pull     unserved(tier) * (1-s)^2 per pit
//   - capacity          W_cap * (load - capacity)^2 per truck
func BuildAssignmentModel(pits []model.Pit, trucks []model.Truck, m *travel.Matrix, cfg config.Anneal) *Model {
	nT := len(trucks)
	nP := len(pits)
	q := NewModel(nT * nP)
	v := func(t, p int) int { return t*nP + p }

	for p, pit := range pits {
		est := m.Minutes(model.Depot(), model.PitNode(pit.ID))
		unservedPen, mult := tierWeights(pit.Tier)
		late := math.Max(0, est-pit.DeadlineMinutes)
		for t := 0; t < nT; t++ {
			q.AddLinear(v(t, p), -cfg.WeightPriority*mult*pit.Priority)
			q.AddLinear(v(t, p), cfg.WeightLateness*late)
			q.AddLinear(v(t, p), cfg.WeightTravel*est)
		}

		// s*(s-1) expands to 2*sum over truck pairs for binaries, and
		// (1-s)^2 to pen - pen*s + pen*(cross terms).
		for a := 0; a < nT; a++ {
			for b := a + 1; b < nT; b++ {
				q.AddQuadratic(v(a, p), v(b, p), 2*cfg.WeightOnce)
				q.AddQuadratic(v(a, p), v(b, p), 2*unservedPen)
			}
		}
		q.AddOffset(unservedPen)
		for t := 0; t < nT; t++ {
			q.AddLinear(v(t, p), -unservedPen)
		}
	}

	for t, truck := range trucks {
		capacity := truck.Capacity
		q.AddOffset(cfg.WeightCapacity * capacity * capacity)
		for p, pit := range pits {
			d := pit.Demand
			q.AddLinear(v(t, p), cfg.WeightCapacity*(d*d-2*capacity*d))
			for p2 := p + 1; p2 < nP; p2++ {
				q.AddQuadratic(v(t, p), v(t, p2), 2*cfg.WeightCapacity*d*pits[p2].Demand)
			}
		}
	}
	return q
}
