package opt

import (
	"context"
	"testing"
)

func TestAnnealerFindsTrivialOptimum(t *testing.T) {
	m := NewModel(2)
	m.AddLinear(0, -1)
	m.AddLinear(1, 1)

	a := &Annealer{Sweeps: 50, Seed: 11, Workers: 2}
	s, err := a.Sample(context.Background(), m, 16)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if s.Energy != -1 {
		t.Fatalf("energy: got %v, want -1", s.Energy)
	}
	if !s.X[0] || s.X[1] {
		t.Fatalf("state: got %v, want [true false]", s.X)
	}
}

func TestAnnealerSeededDeterminism(t *testing.T) {
	m := NewModel(6)
	for i := 0; i < 6; i++ {
		m.AddLinear(i, float64(i)-2.5)
	}
	m.AddQuadratic(0, 3, 4)
	m.AddQuadratic(2, 5, -2)

	run := func() float64 {
		a := &Annealer{Sweeps: 80, Seed: 42, Workers: 3}
		s, err := a.Sample(context.Background(), m, 20)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		return s.Energy
	}
	if a, b := run(), run(); a != b {
		t.Fatalf("same seed gave different energies: %v vs %v", a, b)
	}
}

func TestAnnealerCancellation(t *testing.T) {
	m := NewModel(2)
	m.AddLinear(0, -1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewAnnealer(50, 1)
	// A cancelled context stops dispatching further reads; any reads that
	// already completed still yield a best-so-far sample.
	s, err := a.Sample(ctx, m, 100000)
	if err == nil && len(s.X) != m.N() {
		t.Fatalf("sample state has %d variables, want %d", len(s.X), m.N())
	}
}

func TestAnnealerEmptyModel(t *testing.T) {
	a := NewAnnealer(10, 1)
	if _, err := a.Sample(context.Background(), NewModel(0), 10); err == nil {
		t.Fatal("empty model must error")
	}
	if _, err := a.Sample(context.Background(), nil, 10); err == nil {
		t.Fatal("nil model must error")
	}
}
