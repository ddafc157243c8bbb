// Package scenario generates seeded synthetic planning snapshots: pit
// placement, zone and access attributes, a fleet, and the travel matrix with
// injected closures. Output is reproducible for a given spec.
package scenario

import (
	"fmt"
	"math/rand"

	"pitroute/internal/config"
	"pitroute/internal/model"
	"pitroute/internal/travel"
)

// Zone layout: pits cluster in the congested center, thin out toward the
// outer ring. Order matters for deterministic weighted choice.
var (
	zones      = []string{"center", "ring", "outer"}
	zoneShare  = map[string]float64{"center": 0.45, "ring": 0.40, "outer": 0.15}
	narrowProb = map[string]float64{"center": 0.40, "ring": 0.15, "outer": 0.05}
)

// Tier thresholds mirror the upstream risk-fusion labeling.
const (
	highPriorityThreshold   = 0.75
	mediumPriorityThreshold = 0.45
	ttoCriticalHours        = 24.0
)

func weightedZone(rng *rand.Rand) string {
	r := rng.Float64()
	cum := 0.0
	for _, z := range zones {
		cum += zoneShare[z]
		if r <= cum {
			return z
		}
	}
	return zones[len(zones)-1]
}

func computeTier(priority, ttoHours float64) model.Tier {
	if ttoHours <= ttoCriticalHours || priority >= highPriorityThreshold {
		return model.TierHigh
	}
	if priority >= mediumPriorityThreshold {
		return model.TierMedium
	}
	return model.TierLow
}

// demandAndService returns capacity units and service minutes per tier.
func demandAndService(tier model.Tier) (float64, float64) {
	switch tier {
	case model.TierHigh:
		return 3, 18
	case model.TierMedium:
		return 2, 12
	default:
		return 1, 7
	}
}

// deadlineMinutes converts time-to-overflow into a shifted deadline with the
// configured safety margin. Non-critical pits get a full-day deadline.
func deadlineMinutes(ttoHours, safetyMargin float64) float64 {
	if ttoHours >= 900 {
		return 24 * 60
	}
	raw := ttoHours * 60
	if raw < 60 {
		raw = 60
	}
	if raw > 24*60 {
		raw = 24 * 60
	}
	d := raw - safetyMargin
	if d < 60 {
		d = 60
	}
	return d
}

// fleetTemplate cycles capacity/class combinations across truck ids.
var fleetTemplate = []struct {
	capacity float64
	class    model.VehicleClass
}{
	{18, model.ClassSmall},
	{22, model.ClassMedium},
	{26, model.ClassLarge},
	{22, model.ClassMedium},
}

// Generate builds a complete snapshot for one planning cycle.
func Generate(spec model.ScenarioSpec, cfg config.Config) (*model.Snapshot, error) {
	nPits := spec.Pits
	if nPits <= 0 {
		nPits = cfg.Scenario.Pits
	}
	nTrucks := spec.Trucks
	if nTrucks <= 0 {
		nTrucks = cfg.Scenario.Trucks
	}
	seed := spec.Seed
	if seed == 0 {
		seed = cfg.Scenario.DefaultSeed
	}
	closureFraction := cfg.Travel.ClosureFraction
	if spec.ClosureFraction != nil {
		closureFraction = *spec.ClosureFraction
	}
	if nPits < 1 {
		return nil, fmt.Errorf("scenario: need at least one pit")
	}

	rng := rand.New(rand.NewSource(seed))
	sc := cfg.Scenario

	depotLat := (sc.LatMin + sc.LatMax) / 2
	depotLon := (sc.LonMin + sc.LonMax) / 2
	nodes := []model.Node{{ID: model.Depot(), Lat: depotLat, Lon: depotLon, Zone: "center"}}

	pits := make([]model.Pit, 0, nPits)
	for i := 0; i < nPits; i++ {
		priority := rng.Float64()
		tto := 2 + rng.Float64()*118 // hours until projected overflow
		tier := computeTier(priority, tto)
		zone := weightedZone(rng)
		demand, service := demandAndService(tier)
		pit := model.Pit{
			ID:              1000 + i,
			Tier:            tier,
			Priority:        priority,
			TTOHours:        tto,
			Demand:          demand,
			ServiceMinutes:  service,
			DeadlineMinutes: deadlineMinutes(tto, sc.SafetyMarginMin),
			IsNarrow:        rng.Float64() < narrowProb[zone],
			Zone:            zone,
		}
		lat := sc.LatMin + rng.Float64()*(sc.LatMax-sc.LatMin)
		lon := sc.LonMin + rng.Float64()*(sc.LonMax-sc.LonMin)
		pits = append(pits, pit)
		nodes = append(nodes, model.Node{ID: model.PitNode(pit.ID), Lat: lat, Lon: lon, Zone: zone})
	}

	trucks := make([]model.Truck, 0, nTrucks)
	for i := 0; i < nTrucks; i++ {
		tpl := fleetTemplate[i%len(fleetTemplate)]
		trucks = append(trucks, model.Truck{
			ID:           i + 1,
			Capacity:     tpl.capacity,
			ShiftMinutes: sc.ShiftMinutes,
			Class:        tpl.class,
		})
	}

	m, err := travel.Build(nodes, cfg.Travel.BaseSpeedKMH)
	if err != nil {
		return nil, fmt.Errorf("scenario: build matrix: %w", err)
	}
	closed := m.InjectClosures(closureFraction, rng)

	return &model.Snapshot{
		Pits:        pits,
		Trucks:      trucks,
		Nodes:       nodes,
		Matrix:      m.Raw(),
		ClosedEdges: closed,
	}, nil
}
