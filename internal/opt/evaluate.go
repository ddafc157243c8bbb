package opt

import (
	"math"

	"pitroute/internal/config"
	"pitroute/internal/model"
	"pitroute/internal/travel"
)

// Evaluator computes comparable KPI records for any candidate solution,
// whichever solver produced it. It holds only read-only configuration, so
// repeated calls on the same sequences always yield identical output.
type Evaluator struct {
	cfg    config.Config
	matrix *travel.Matrix
	pits   map[int]model.Pit
}

func NewEvaluator(cfg config.Config, m *travel.Matrix, pits []model.Pit) *Evaluator {
	byID := make(map[int]model.Pit, len(pits))
	for _, p := range pits {
		byID[p.ID] = p
	}
	return &Evaluator{cfg: cfg, matrix: m, pits: byID}
}

func (e *Evaluator) penaltyPerMin(t model.Tier) float64 {
	switch t {
	case model.TierHigh:
		return e.cfg.Penalties.PerMinHigh
	case model.TierMedium:
		return e.cfg.Penalties.PerMinMedium
	default:
		return e.cfg.Penalties.PerMinLow
	}
}

func (e *Evaluator) unservedPenalty(t model.Tier) float64 {
	switch t {
	case model.TierHigh:
		return e.cfg.Penalties.UnservedHigh
	case model.TierMedium:
		return e.cfg.Penalties.UnservedMedium
	default:
		return e.cfg.Penalties.UnservedLow
	}
}

// Evaluate derives the full metrics record from a truck->sequence map.
// Arrival times are replayed from the sequences with the travel matrix, so
// lateness needs no solver-private state. Forbidden legs contribute nothing
// to travel accounting; well-formed solver output never contains them.
func (e *Evaluator) Evaluate(sequences map[string][]model.NodeID) model.MetricsRecord {
	rec := model.MetricsRecord{
		DistanceByTruck: map[string]float64{},
		StopsByTruck:    map[string]int{},
	}

	served := map[int]bool{}
	arrivals := map[int]float64{}

	for key, seq := range sequences {
		stops := 0
		elapsed := 0.0
		curr := model.Depot()
		for _, node := range seq {
			if node.IsDepot {
				leg := e.matrix.Minutes(curr, node)
				if EdgeFeasible(leg) {
					elapsed += leg
				}
				curr = node
				continue
			}
			stops++
			served[node.Pit] = true
			leg := e.matrix.Minutes(curr, node)
			if EdgeFeasible(leg) {
				elapsed += leg
				rec.TotalTravelMin += leg
			}
			arrivals[node.Pit] = elapsed
			if pit, ok := e.pits[node.Pit]; ok {
				elapsed += pit.ServiceMinutes
				rec.TotalServiceMin += pit.ServiceMinutes
			}
			curr = node
		}
		// Closing depot leg counts toward travel totals.
		if len(seq) > 1 && seq[len(seq)-1].IsDepot {
			leg := e.matrix.Minutes(seq[len(seq)-2], model.Depot())
			if EdgeFeasible(leg) {
				rec.TotalTravelMin += leg
			}
		}
		rec.StopsByTruck[key] = stops
		rec.DistanceByTruck[key] = SequenceDistanceKM(seq, e.matrix)
		rec.TotalDistanceKM += rec.DistanceByTruck[key]
	}

	for id, pit := range e.pits {
		hit := served[id]
		switch pit.Tier {
		case model.TierHigh:
			rec.HighTotal++
			if hit {
				rec.HighServed++
			} else {
				rec.HighMissed++
			}
		case model.TierMedium:
			rec.MediumTotal++
			if hit {
				rec.MediumServed++
			} else {
				rec.MediumMissed++
			}
		default:
			rec.LowTotal++
			if hit {
				rec.LowServed++
			} else {
				rec.LowMissed++
			}
		}
		if hit {
			rec.ServedTotal++
			late := math.Max(0, arrivals[id]-pit.DeadlineMinutes)
			rec.TotalPenalty += late * e.penaltyPerMin(pit.Tier)
		} else {
			rec.MissedTotal++
			rec.TotalPenalty += e.unservedPenalty(pit.Tier)
		}
	}

	rec.FuelLitersEst = rec.TotalDistanceKM * e.cfg.Emissions.FuelLPerKM
	rec.CO2KgEst = rec.FuelLitersEst * e.cfg.Emissions.CO2KgPerL
	return rec
}
