package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pitroute/internal/buildinfo"
	"pitroute/internal/inputs"
	"pitroute/internal/metrics"
	"pitroute/internal/model"
	"pitroute/internal/opt"
	"pitroute/internal/scenario"
	"pitroute/internal/store"
)

// PlansHandler runs a planning cycle (POST) or lists stored plans (GET).
func (s *Server) PlansHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createPlan(w, r)
	case http.MethodGet:
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		plans, err := s.Store.ListPlans(r.Context(), limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "list failed", err.Error(), r.URL.Path)
			return
		}
		if plans == nil {
			plans = []model.PlanResult{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
	default:
		writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
	}
}

func (s *Server) createPlan(w http.ResponseWriter, r *http.Request) {
	if !s.planLim.Allow() {
		writeProblem(w, http.StatusTooManyRequests, "rate limited", "planning runs are throttled; retry shortly", r.URL.Path)
		return
	}
	var req model.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body", err.Error(), r.URL.Path)
		return
	}
	if req.Snapshot != nil && req.Scenario != nil {
		writeProblem(w, http.StatusBadRequest, "ambiguous input", "set snapshot or scenario, not both", r.URL.Path)
		return
	}

	snap := req.Snapshot
	if snap == nil {
		spec := model.ScenarioSpec{}
		if req.Scenario != nil {
			spec = *req.Scenario
		}
		generated, err := scenario.Generate(spec, s.Cfg)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "scenario generation failed", err.Error(), r.URL.Path)
			return
		}
		snap = generated
	}

	s.Broker.Publish(PlanTopic, PlanEvent{Type: "plan.started", Data: map[string]any{
		"solver": req.Solver,
		"pits":   len(snap.Pits),
		"trucks": len(snap.Trucks),
	}})

	start := time.Now()
	results, err := s.Runner.Run(r.Context(), req, snap)
	if err != nil {
		s.Broker.Publish(PlanTopic, PlanEvent{Type: "plan.failed", Data: map[string]any{"error": err.Error()}})
		switch {
		case errors.Is(err, opt.ErrSamplerUnavailable):
			metrics.PlanRuns.WithLabelValues(opt.SolverAnneal, "unavailable").Inc()
			writeProblem(w, http.StatusServiceUnavailable, "optimizer unavailable", err.Error(), r.URL.Path)
		case inputs.IsDataError(err):
			writeProblem(w, http.StatusBadRequest, "invalid snapshot", err.Error(), r.URL.Path)
		default:
			metrics.PlanRuns.WithLabelValues(valueOr(req.Solver, opt.SolverBoth), "error").Inc()
			writeProblem(w, http.StatusBadRequest, "planning failed", err.Error(), r.URL.Path)
		}
		return
	}

	saved := make([]model.PlanResult, 0, len(results))
	for _, res := range results {
		plan, err := s.Store.SavePlan(r.Context(), res)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "save failed", err.Error(), r.URL.Path)
			return
		}
		opt.RecordRun(plan.ID, plan.Run)
		metrics.PlanRuns.WithLabelValues(plan.Solver, "ok").Inc()
		metrics.PlanDuration.WithLabelValues(plan.Solver).Observe(time.Since(start).Seconds())
		metrics.PlanUnservedPits.WithLabelValues(plan.Solver).Set(float64(plan.Metrics.MissedTotal))
		if plan.Solver == opt.SolverAnneal {
			metrics.PlanBestEnergy.Set(plan.Run.BestEnergy)
		}
		s.Broker.Publish(PlanTopic, PlanEvent{Type: "plan.completed", Data: map[string]any{
			"plan_id": plan.ID,
			"solver":  plan.Solver,
			"served":  plan.Metrics.ServedTotal,
			"missed":  plan.Metrics.MissedTotal,
		}})
		saved = append(saved, plan)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"plans": saved})
}

// PlanByIDHandler serves /v1/plans/{id} and /v1/plans/{id}/runs.
func (s *Server) PlanByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/v1/plans/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "missing plan id", "", r.URL.Path)
		return
	}
	switch sub {
	case "":
		plan, err := s.Store.GetPlan(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "plan not found", id, r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "lookup failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, plan)
	case "runs":
		writeJSON(w, http.StatusOK, map[string]any{"runs": opt.RunsFor(id)})
	default:
		writeProblem(w, http.StatusNotFound, "unknown resource", sub, r.URL.Path)
	}
}

// ScenariosHandler generates and stores a synthetic snapshot.
func (s *Server) ScenariosHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
		return
	}
	var spec model.ScenarioSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body", err.Error(), r.URL.Path)
		return
	}
	snap, err := scenario.Generate(spec, s.Cfg)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "scenario generation failed", err.Error(), r.URL.Path)
		return
	}
	id, err := s.Store.SaveScenario(r.Context(), snap)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "save failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "snapshot": snap})
}

// ScenarioByIDHandler serves /v1/scenarios/{id}.
func (s *Server) ScenarioByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/scenarios/")
	snap, err := s.Store.GetScenario(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "scenario not found", id, r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "lookup failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "store unavailable", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
