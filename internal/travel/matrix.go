// Package travel implements the pairwise travel cost model: great-circle
// distance converted to minutes at a base speed, scaled by destination-zone
// congestion, with a reserved sentinel for closed edges.
package travel

import (
	"fmt"
	"math"
	"math/rand"

	"pitroute/internal/model"
)

const (
	// ForbiddenThreshold marks an edge closed. Sentinel values must never
	// enter arithmetic without an IsForbidden guard.
	ForbiddenThreshold = 1e5
	// ClosureCost is the sentinel written for injected closures.
	ClosureCost = 1e6

	earthRadiusKM = 6371.0
)

// ZoneCongestion multiplies base travel minutes by destination zone.
var ZoneCongestion = map[string]float64{
	"center": 1.5,
	"ring":   1.2,
	"outer":  1.0,
}

// IsForbidden reports whether a travel cost denotes a closed edge.
func IsForbidden(minutes float64) bool { return minutes >= ForbiddenThreshold }

// HaversineKM returns the great-circle distance between two coordinates.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := lat1 * math.Pi / 180
	p2 := lat2 * math.Pi / 180
	dphi := (lat2 - lat1) * math.Pi / 180
	dlmb := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dphi/2)*math.Sin(dphi/2) + math.Cos(p1)*math.Cos(p2)*math.Sin(dlmb/2)*math.Sin(dlmb/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}

// Matrix holds travel minutes between every ordered node pair, indexed by
// node position with the depot at index 0.
type Matrix struct {
	nodes   []model.Node
	minutes [][]float64
	index   map[model.NodeID]int
}

// NewMatrix wraps a precomputed minutes matrix aligned to nodes order.
func NewMatrix(nodes []model.Node, minutes [][]float64) (*Matrix, error) {
	n := len(nodes)
	if n == 0 {
		return nil, fmt.Errorf("travel: empty node list")
	}
	if !nodes[0].ID.IsDepot {
		return nil, fmt.Errorf("travel: node 0 must be the depot, got %s", nodes[0].ID)
	}
	if len(minutes) != n {
		return nil, fmt.Errorf("travel: matrix has %d rows, want %d", len(minutes), n)
	}
	idx := make(map[model.NodeID]int, n)
	for i, nd := range nodes {
		if _, dup := idx[nd.ID]; dup {
			return nil, fmt.Errorf("travel: duplicate node id %s", nd.ID)
		}
		idx[nd.ID] = i
	}
	for i, row := range minutes {
		if len(row) != n {
			return nil, fmt.Errorf("travel: matrix row %d has %d columns, want %d", i, len(row), n)
		}
		if row[i] != 0 {
			return nil, fmt.Errorf("travel: matrix diagonal must be zero at %d", i)
		}
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("travel: negative cost at (%d,%d)", i, j)
			}
		}
	}
	return &Matrix{nodes: nodes, minutes: minutes, index: idx}, nil
}

// Build computes the matrix from node coordinates: haversine distance at
// baseSpeedKMH, multiplied by the destination zone's congestion factor.
func Build(nodes []model.Node, baseSpeedKMH float64) (*Matrix, error) {
	if baseSpeedKMH <= 0 {
		return nil, fmt.Errorf("travel: base speed must be positive, got %v", baseSpeedKMH)
	}
	n := len(nodes)
	minutes := make([][]float64, n)
	for i := range minutes {
		minutes[i] = make([]float64, n)
		for j := range minutes[i] {
			if i == j {
				continue
			}
			km := HaversineKM(nodes[i].Lat, nodes[i].Lon, nodes[j].Lat, nodes[j].Lon)
			base := km / baseSpeedKMH * 60.0
			mult, ok := ZoneCongestion[nodes[j].Zone]
			if !ok {
				mult = 1.0
			}
			minutes[i][j] = base * mult
		}
	}
	return NewMatrix(nodes, minutes)
}

// InjectClosures marks a reproducible fraction of directed edges forbidden.
// Edge selection depends only on the rng seed and node order.
func (m *Matrix) InjectClosures(fraction float64, rng *rand.Rand) []model.ClosedEdge {
	n := len(m.nodes)
	total := n * (n - 1)
	if total == 0 || fraction <= 0 {
		return nil
	}
	k := int(float64(total) * fraction)
	if k < 1 {
		k = 1
	}
	type edge struct{ i, j int }
	candidates := make([]edge, 0, total)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				candidates = append(candidates, edge{i, j})
			}
		}
	}
	rng.Shuffle(len(candidates), func(a, b int) {
		candidates[a], candidates[b] = candidates[b], candidates[a]
	})
	closed := make([]model.ClosedEdge, 0, k)
	for _, e := range candidates[:k] {
		m.minutes[e.i][e.j] = ClosureCost
		closed = append(closed, model.ClosedEdge{From: m.nodes[e.i].ID, To: m.nodes[e.j].ID})
	}
	return closed
}

// Minutes returns the travel cost between two nodes. Unknown nodes come back
// as forbidden rather than panicking.
func (m *Matrix) Minutes(from, to model.NodeID) float64 {
	i, ok := m.index[from]
	if !ok {
		return ClosureCost
	}
	j, ok := m.index[to]
	if !ok {
		return ClosureCost
	}
	return m.minutes[i][j]
}

// Index returns a node's matrix position.
func (m *Matrix) Index(id model.NodeID) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// Nodes returns the node list in matrix order.
func (m *Matrix) Nodes() []model.Node { return m.nodes }

// Raw exposes the minutes grid for snapshot serialization.
func (m *Matrix) Raw() [][]float64 { return m.minutes }

// Coord returns a node's coordinates.
func (m *Matrix) Coord(id model.NodeID) (lat, lon float64, ok bool) {
	i, found := m.index[id]
	if !found {
		return 0, 0, false
	}
	return m.nodes[i].Lat, m.nodes[i].Lon, true
}
