package opt

import (
	"math"
	"math/rand"
	"testing"

	"pitroute/internal/config"
	"pitroute/internal/model"
)

func TestModelEnergyAndFlipDelta(t *testing.T) {
	m := NewModel(3)
	m.AddLinear(0, -2)
	m.AddLinear(1, 1)
	m.AddQuadratic(0, 1, 4)
	m.AddQuadratic(1, 2, -3)
	m.AddOffset(5)

	x := []bool{true, true, false}
	want := 5.0 + (-2) + 1 + 4
	if got := m.Energy(x); got != want {
		t.Fatalf("energy: got %v, want %v", got, want)
	}

	// FlipDelta must agree with evaluating the flipped state in full.
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 50; trial++ {
		for i := range x {
			x[i] = rng.Intn(2) == 1
		}
		i := rng.Intn(len(x))
		before := m.Energy(x)
		delta := m.FlipDelta(x, i)
		x[i] = !x[i]
		if after := m.Energy(x); math.Abs(after-(before+delta)) > 1e-9 {
			t.Fatalf("flip %d: delta %v but energy moved %v", i, delta, after-before)
		}
	}
}

func TestModelSelfQuadraticFoldsToLinear(t *testing.T) {
	m := NewModel(1)
	m.AddQuadratic(0, 0, 7)
	if got := m.Energy([]bool{true}); got != 7 {
		t.Fatalf("x*x should fold to linear: got %v", got)
	}
}

func TestAssignmentModelSingleVariable(t *testing.T) {
	cfg := config.Default().Anneal
	pit := model.Pit{ID: 1, Tier: model.TierMedium, Priority: 0.8, Demand: 2, DeadlineMinutes: 5}
	truck := model.Truck{ID: 1, Capacity: 10}
	m := testMatrix(t, []int{1}, [][]float64{{0, 20}, {20, 0}})

	q := BuildAssignmentModel([]model.Pit{pit}, []model.Truck{truck}, m, cfg)
	if q.N() != 1 {
		t.Fatalf("variables: got %d, want 1", q.N())
	}

	// Unassigned: the unserved pull plus the empty-truck capacity penalty.
	wantOff := 1200.0 + cfg.WeightCapacity*10*10
	if got := q.Energy([]bool{false}); math.Abs(got-wantOff) > 1e-9 {
		t.Fatalf("unassigned energy: got %v, want %v", got, wantOff)
	}

	// Assigned: reward, lateness (arrival 20 vs deadline 5), travel, the
	// unserved pull released, and (demand-capacity)^2 for the load of 2.
	want := wantOff +
		-cfg.WeightPriority*1.0*0.8 +
		cfg.WeightLateness*15 +
		cfg.WeightTravel*20 +
		-1200.0 +
		cfg.WeightCapacity*(2*2-2*10*2)
	if got := q.Energy([]bool{true}); math.Abs(got-want) > 1e-9 {
		t.Fatalf("assigned energy: got %v, want %v", got, want)
	}
}

// Assigning the same pit to two trucks must cost more than assigning it to
// either one alone.
func TestAssignmentModelAtMostOnce(t *testing.T) {
	cfg := config.Default().Anneal
	pit := model.Pit{ID: 1, Tier: model.TierHigh, Priority: 0.9, Demand: 3, DeadlineMinutes: 1440}
	trucks := []model.Truck{
		{ID: 1, Capacity: 20},
		{ID: 2, Capacity: 20},
	}
	m := testMatrix(t, []int{1}, [][]float64{{0, 10}, {10, 0}})
	q := BuildAssignmentModel([]model.Pit{pit}, trucks, m, cfg)

	one := q.Energy([]bool{true, false})
	other := q.Energy([]bool{false, true})
	both := q.Energy([]bool{true, true})
	if one != other {
		t.Fatalf("symmetric trucks should score equally: %v vs %v", one, other)
	}
	if both <= one {
		t.Fatalf("double assignment must cost more: both=%v single=%v", both, one)
	}
}

// With identical priority, travel and demand, serving the HIGH pit scores
// strictly better than serving the LOW one.
func TestAssignmentModelTierWeighting(t *testing.T) {
	cfg := config.Default().Anneal
	pits := []model.Pit{
		{ID: 1, Tier: model.TierHigh, Priority: 0.8, Demand: 3, DeadlineMinutes: 1440},
		{ID: 2, Tier: model.TierLow, Priority: 0.8, Demand: 3, DeadlineMinutes: 1440},
	}
	truck := model.Truck{ID: 1, Capacity: 3}
	m := testMatrix(t, []int{1, 2}, [][]float64{
		{0, 10, 10},
		{10, 0, 5},
		{10, 5, 0},
	})
	q := BuildAssignmentModel(pits, []model.Truck{truck}, m, cfg)

	highOnly := q.Energy([]bool{true, false})
	lowOnly := q.Energy([]bool{false, true})
	if highOnly >= lowOnly {
		t.Fatalf("HIGH pit must be preferred: high=%v low=%v", highOnly, lowOnly)
	}
}

// A closed depot approach propagates the sentinel cost into the objective
// and prices the pit out of any assignment.
func TestAssignmentModelForbiddenApproach(t *testing.T) {
	cfg := config.Default().Anneal
	pit := model.Pit{ID: 1, Tier: model.TierHigh, Priority: 0.99, Demand: 1, DeadlineMinutes: 1440}
	truck := model.Truck{ID: 1, Capacity: 10}
	m := testMatrix(t, []int{1}, [][]float64{{0, 1e6}, {10, 0}})
	q := BuildAssignmentModel([]model.Pit{pit}, []model.Truck{truck}, m, cfg)

	if q.Energy([]bool{true}) <= q.Energy([]bool{false}) {
		t.Fatal("assigning an unreachable pit must never lower energy")
	}
}
