package opt

import (
	"sort"

	"pitroute/internal/model"
	"pitroute/internal/travel"
)

// NearestNeighborSequence turns an unordered pit assignment into an ordered
// route: starting at the depot, repeatedly append the nearest unvisited pit
// by travel cost. Greedy only; no 2-opt or other local search follows.
//
// Pits with no open edge from the current position are left out of the
// sequence entirely, so a closed-off pit surfaces as missed instead of a
// route crossing a forbidden edge. The closing depot leg is appended only
// when open, matching the baseline router's convention.
func NearestNeighborSequence(assigned []int, m *travel.Matrix) []model.NodeID {
	pits := append([]int(nil), assigned...)
	sort.Ints(pits)

	remaining := make(map[int]bool, len(pits))
	for _, id := range pits {
		if _, ok := m.Index(model.PitNode(id)); ok {
			remaining[id] = true
		}
	}

	seq := []model.NodeID{model.Depot()}
	curr := model.Depot()
	for len(remaining) > 0 {
		best := -1
		bestCost := 0.0
		for _, id := range pits {
			if !remaining[id] {
				continue
			}
			c := m.Minutes(curr, model.PitNode(id))
			if !EdgeFeasible(c) {
				continue
			}
			if best < 0 || c < bestCost || (c == bestCost && id < best) {
				best = id
				bestCost = c
			}
		}
		if best < 0 {
			break
		}
		curr = model.PitNode(best)
		seq = append(seq, curr)
		delete(remaining, best)
	}
	if EdgeFeasible(m.Minutes(curr, model.Depot())) {
		seq = append(seq, model.Depot())
	}
	return seq
}

// SequenceDistanceKM sums great-circle distances over consecutive pairs.
func SequenceDistanceKM(seq []model.NodeID, m *travel.Matrix) float64 {
	total := 0.0
	for i := 0; i+1 < len(seq); i++ {
		lat1, lon1, ok1 := m.Coord(seq[i])
		lat2, lon2, ok2 := m.Coord(seq[i+1])
		if !ok1 || !ok2 {
			continue
		}
		total += travel.HaversineKM(lat1, lon1, lat2, lon2)
	}
	return total
}
