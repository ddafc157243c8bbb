package opt

import (
	"pitroute/internal/config"
	"pitroute/internal/model"
	"pitroute/internal/travel"
)

// ServedSet is the explicit served-pit registry threaded through per-truck
// construction. Later trucks see earlier trucks' removals, which is why the
// greedy pass is inherently sequential across the fleet.
type ServedSet struct {
	served map[int]bool
}

func NewServedSet() *ServedSet { return &ServedSet{served: map[int]bool{}} }

func (s *ServedSet) Mark(pitID int)        { s.served[pitID] = true }
func (s *ServedSet) Served(pitID int) bool { return s.served[pitID] }

func (s *ServedSet) Count() int { return len(s.served) }

// GreedyResult is the baseline solver output: finalized routes plus the
// arrival times needed for lateness scoring.
type GreedyResult struct {
	Routes          map[string]model.RouteDetail
	ArrivalMinutes  map[int]float64
	TotalTravelMin  float64
	TotalServiceMin float64
}

// GreedyRouter builds routes truck by truck, always taking the feasible pit
// with the best priority-minus-travel score from the current position.
type GreedyRouter struct {
	cfg    config.Greedy
	matrix *travel.Matrix
}

func NewGreedyRouter(cfg config.Greedy, m *travel.Matrix) *GreedyRouter {
	return &GreedyRouter{cfg: cfg, matrix: m}
}

// Plan runs the constructive pass over the whole fleet in input order.
// A truck with zero feasible pits still yields a valid empty route; unserved
// pits are a metrics concern, never an error.
func (g *GreedyRouter) Plan(pits []model.Pit, trucks []model.Truck, served *ServedSet) GreedyResult {
	if served == nil {
		served = NewServedSet()
	}
	res := GreedyResult{
		Routes:         make(map[string]model.RouteDetail, len(trucks)),
		ArrivalMinutes: map[int]float64{},
	}
	for _, truck := range trucks {
		res.Routes[truck.Key()] = g.buildRoute(truck, pits, served, &res)
	}
	return res
}

// buildRoute drives one truck through select -> serve cycles until no
// feasible pit remains, then returns to the depot if that edge is open.
func (g *GreedyRouter) buildRoute(truck model.Truck, pits []model.Pit, served *ServedSet, res *GreedyResult) model.RouteDetail {
	remaining := truck.Capacity
	elapsed := 0.0
	curr := model.Depot()

	detail := model.RouteDetail{
		Sequence:     []model.NodeID{model.Depot()},
		ServedPits:   []int{},
		Capacity:     truck.Capacity,
		ShiftMinutes: truck.ShiftMinutes,
		VehicleClass: truck.Class,
	}

	for {
		bestIdx := -1
		bestScore := 0.0
		var bestTravel float64

		for i, pit := range pits {
			if served.Served(pit.ID) {
				continue
			}
			if !CapacityOK(remaining, pit.Demand) {
				continue
			}
			if !CanAccess(truck, pit) {
				continue
			}
			node := model.PitNode(pit.ID)
			if _, ok := g.matrix.Index(node); !ok {
				continue
			}
			tmin := g.matrix.Minutes(curr, node)
			back := g.matrix.Minutes(node, model.Depot())
			if !TimeFeasible(elapsed, tmin, pit.ServiceMinutes, back, truck.ShiftMinutes) {
				continue
			}

			score := pit.Priority - g.cfg.TravelBeta*tmin
			// Ties break on lowest pit id so runs are reproducible
			// regardless of input ordering quirks.
			if bestIdx < 0 || score > bestScore ||
				(score == bestScore && pit.ID < pits[bestIdx].ID) {
				bestIdx = i
				bestScore = score
				bestTravel = tmin
			}
		}

		if bestIdx < 0 {
			break
		}

		pit := pits[bestIdx]
		elapsed += bestTravel
		res.TotalTravelMin += bestTravel
		res.ArrivalMinutes[pit.ID] = elapsed

		elapsed += pit.ServiceMinutes
		res.TotalServiceMin += pit.ServiceMinutes
		remaining -= pit.Demand
		served.Mark(pit.ID)

		curr = model.PitNode(pit.ID)
		detail.Sequence = append(detail.Sequence, curr)
		detail.ServedPits = append(detail.ServedPits, pit.ID)
	}

	// Close the loop when the return edge is open; otherwise the route ends
	// at its last position and the return leg drops out of the accounting.
	back := g.matrix.Minutes(curr, model.Depot())
	if EdgeFeasible(back) {
		res.TotalTravelMin += back
		detail.Sequence = append(detail.Sequence, model.Depot())
	}
	return detail
}
