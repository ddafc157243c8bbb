package opt

import (
	"reflect"
	"testing"

	"pitroute/internal/model"
	"pitroute/internal/travel"
)

func TestNearestNeighborSequenceOrder(t *testing.T) {
	m := testMatrix(t, []int{1, 2, 3}, [][]float64{
		{0, 30, 10, 20},
		{30, 0, 15, 5},
		{10, 15, 0, 25},
		{20, 5, 25, 0},
	})
	got := NearestNeighborSequence([]int{1, 2, 3}, m)
	// depot -> 2 (10) -> 1 (15) -> 3 (5) -> depot
	want := []model.NodeID{model.Depot(), model.PitNode(2), model.PitNode(1), model.PitNode(3), model.Depot()}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sequence: got %v, want %v", got, want)
	}
}

func TestNearestNeighborSkipsClosedPit(t *testing.T) {
	m := testMatrix(t, []int{1, 2}, [][]float64{
		{0, travel.ClosureCost, 10},
		{travel.ClosureCost, 0, travel.ClosureCost},
		{10, travel.ClosureCost, 0},
	})
	got := NearestNeighborSequence([]int{1, 2}, m)
	for _, n := range got {
		if !n.IsDepot && n.Pit == 1 {
			t.Fatalf("closed-off pit entered the sequence: %v", got)
		}
	}
	want := []model.NodeID{model.Depot(), model.PitNode(2), model.Depot()}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sequence: got %v, want %v", got, want)
	}
}

func TestNearestNeighborOmitsClosedReturn(t *testing.T) {
	m := testMatrix(t, []int{1}, [][]float64{
		{0, 10},
		{travel.ClosureCost, 0},
	})
	got := NearestNeighborSequence([]int{1}, m)
	want := []model.NodeID{model.Depot(), model.PitNode(1)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sequence: got %v, want %v", got, want)
	}
}

func TestNearestNeighborEmptyAssignment(t *testing.T) {
	m := testMatrix(t, []int{1}, [][]float64{{0, 10}, {10, 0}})
	got := NearestNeighborSequence(nil, m)
	want := []model.NodeID{model.Depot(), model.Depot()}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("empty assignment: got %v, want %v", got, want)
	}
}
