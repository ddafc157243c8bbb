package opt

import (
	"pitroute/internal/model"
	"pitroute/internal/travel"
)

// Feasibility predicates shared by both solvers. All are pure and never
// error: missing fields behave as their safe defaults so a single bad pit
// cannot abort a planning run.

// CanAccess is false only when an oversized truck meets a narrow-street pit.
func CanAccess(truck model.Truck, pit model.Pit) bool {
	return !(truck.Class == model.ClassLarge && pit.IsNarrow)
}

// CapacityOK reports whether the pit's demand fits the remaining capacity.
func CapacityOK(remainingCapacity, demand float64) bool {
	return demand <= remainingCapacity
}

// EdgeFeasible reports whether a travel cost denotes an open edge.
func EdgeFeasible(minutes float64) bool {
	return !travel.IsForbidden(minutes)
}

// TimeFeasible checks that serving the pit and returning to the depot fits
// in the remaining shift. An infeasible return edge counts as effectively
// infinite cost rather than silently passing; the boundary itself is
// accepted (<=, not <).
func TimeFeasible(elapsed, travelToPit, service, returnToDepot, shiftMinutes float64) bool {
	if !EdgeFeasible(travelToPit) {
		return false
	}
	ret := returnToDepot
	if !EdgeFeasible(ret) {
		ret = travel.ClosureCost
	}
	return elapsed+travelToPit+service+ret <= shiftMinutes
}
