package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Core domain types for one planning cycle. Pits, trucks, nodes and the
// travel matrix are a read-only snapshot; plans and metrics are derived.

// Tier is the coarse risk class assigned upstream by risk fusion.
type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// ParseTier normalizes a tier label, defaulting unknown values to LOW.
func ParseTier(s string) Tier {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return TierHigh
	case "MEDIUM":
		return TierMedium
	default:
		return TierLow
	}
}

// Rank orders tiers for candidate selection: HIGH sorts first.
func (t Tier) Rank() int {
	switch t {
	case TierHigh:
		return 0
	case TierMedium:
		return 1
	default:
		return 2
	}
}

// VehicleClass affects narrow-street eligibility: large trucks cannot
// enter narrow-access pits.
type VehicleClass string

const (
	ClassSmall  VehicleClass = "small"
	ClassMedium VehicleClass = "medium"
	ClassLarge  VehicleClass = "large"
)

// DepotSentinel is the JSON representation of the depot node id.
const DepotSentinel = "depot"

// NodeID identifies a stop: either the depot sentinel or a numeric pit id.
// On the wire it is "depot" or a bare integer, matching the snapshot files.
type NodeID struct {
	Pit     int
	IsDepot bool
}

func Depot() NodeID         { return NodeID{IsDepot: true} }
func PitNode(id int) NodeID { return NodeID{Pit: id} }

func (n NodeID) String() string {
	if n.IsDepot {
		return DepotSentinel
	}
	return fmt.Sprintf("%d", n.Pit)
}

func (n NodeID) MarshalJSON() ([]byte, error) {
	if n.IsDepot {
		return json.Marshal(DepotSentinel)
	}
	return json.Marshal(n.Pit)
}

func (n *NodeID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != DepotSentinel {
			return fmt.Errorf("node_id: unknown sentinel %q", s)
		}
		*n = Depot()
		return nil
	}
	var id int
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("node_id: expected %q or integer, got %s", DepotSentinel, string(b))
	}
	*n = PitNode(id)
	return nil
}

// Pit is one waste pit awaiting pickup. Read-only input to the optimizer.
type Pit struct {
	ID              int     `json:"pit_id"`
	Tier            Tier    `json:"tier"`
	Priority        float64 `json:"priority"`
	TTOHours        float64 `json:"tto_hours"`
	Demand          float64 `json:"demand"`
	ServiceMinutes  float64 `json:"service_minutes"`
	DeadlineMinutes float64 `json:"deadline_minutes"`
	IsNarrow        bool    `json:"is_narrow"`
	Zone            string  `json:"zone"`
}

// Truck is one fleet vehicle with a fixed capacity and shift length.
type Truck struct {
	ID           int          `json:"truck_id"`
	Capacity     float64      `json:"capacity"`
	ShiftMinutes float64      `json:"shift_minutes"`
	Class        VehicleClass `json:"vehicle_class"`
}

// Key returns the stable per-truck map key used in plan outputs.
func (t Truck) Key() string { return fmt.Sprintf("truck_%d", t.ID) }

// Node places a stop on the map. The depot appears exactly once, at matrix
// index 0 by convention.
type Node struct {
	ID   NodeID  `json:"node_id"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zone string  `json:"zone"`
}

// ClosedEdge records one forbidden directed edge for reporting.
type ClosedEdge struct {
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
}

// Snapshot is the full read-only input to one planning cycle. The matrix is
// square, aligned to Nodes order, with values at or above the forbidden
// threshold marking closed edges.
type Snapshot struct {
	Pits        []Pit        `json:"pits"`
	Trucks      []Truck      `json:"trucks"`
	Nodes       []Node       `json:"nodes"`
	Matrix      [][]float64  `json:"travel_minutes"`
	ClosedEdges []ClosedEdge `json:"closed_edges,omitempty"`
}

// RouteDetail is one truck's finalized route from the greedy baseline.
type RouteDetail struct {
	Sequence     []NodeID     `json:"sequence"`
	ServedPits   []int        `json:"served_pits"`
	Capacity     float64      `json:"capacity"`
	ShiftMinutes float64      `json:"shift_minutes"`
	VehicleClass VehicleClass `json:"vehicle_class"`
}

// Assignment is one truck's unordered pit set from the annealing optimizer,
// plus its sequenced form after nearest-neighbor expansion.
type Assignment struct {
	AssignedPits []int    `json:"assigned_pits"`
	Sequence     []NodeID `json:"sequence"`
	Solver       string   `json:"solver"`
}

// MetricsRecord summarizes one candidate solution. All fields are
// deterministic functions of the input sequences.
type MetricsRecord struct {
	ServedTotal  int `json:"served_total"`
	MissedTotal  int `json:"missed_total"`
	HighTotal    int `json:"high_total"`
	HighServed   int `json:"high_served"`
	HighMissed   int `json:"high_missed"`
	MediumTotal  int `json:"medium_total"`
	MediumServed int `json:"medium_served"`
	MediumMissed int `json:"medium_missed"`
	LowTotal     int `json:"low_total"`
	LowServed    int `json:"low_served"`
	LowMissed    int `json:"low_missed"`

	TotalDistanceKM float64            `json:"total_distance_km"`
	FuelLitersEst   float64            `json:"fuel_l_est"`
	CO2KgEst        float64            `json:"co2_kg_est"`
	DistanceByTruck map[string]float64 `json:"distance_by_truck_km"`
	StopsByTruck    map[string]int     `json:"stops_by_truck"`
	TotalTravelMin  float64            `json:"total_travel_min"`
	TotalServiceMin float64            `json:"total_service_min"`
	TotalPenalty    float64            `json:"total_penalty"`
}

// SolverRun captures search diagnostics for one solver invocation.
type SolverRun struct {
	Solver     string  `json:"solver"`
	Seed       int64   `json:"seed"`
	Reads      int     `json:"reads,omitempty"`
	BestEnergy float64 `json:"best_energy,omitempty"`
	ElapsedMS  int64   `json:"elapsed_ms"`
}

// PlanResult is one solver's full output for a snapshot.
type PlanResult struct {
	ID          string                 `json:"id"`
	Solver      string                 `json:"solver"`
	CreatedAt   string                 `json:"created_at"`
	Routes      map[string]RouteDetail `json:"routes,omitempty"`
	Assignments map[string]Assignment  `json:"assignments,omitempty"`
	Metrics     MetricsRecord          `json:"metrics"`
	Run         SolverRun              `json:"run"`
}

// ScenarioSpec asks the generator for a synthetic snapshot.
type ScenarioSpec struct {
	Pits            int      `json:"pits,omitempty"`
	Trucks          int      `json:"trucks,omitempty"`
	Seed            int64    `json:"seed,omitempty"`
	ClosureFraction *float64 `json:"closure_fraction,omitempty"`
}

// PlanRequest triggers one planning cycle. Exactly one of Snapshot or
// Scenario must be set; Solver is "greedy", "anneal" or "both" (default).
type PlanRequest struct {
	Solver   string        `json:"solver,omitempty"`
	Seed     int64         `json:"seed,omitempty"`
	Reads    int           `json:"reads,omitempty"`
	Snapshot *Snapshot     `json:"snapshot,omitempty"`
	Scenario *ScenarioSpec `json:"scenario,omitempty"`
}
