// Command planner runs one planning cycle from the command line: load a
// snapshot directory (or generate a seeded scenario), run the requested
// solver(s), print the metrics summary, and optionally write the results.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"pitroute/internal/config"
	"pitroute/internal/inputs"
	"pitroute/internal/model"
	"pitroute/internal/opt"
	"pitroute/internal/scenario"
)

func main() {
	var (
		inputDir   = flag.String("input", "", "snapshot directory (pits.csv, trucks.json, nodes.json, travel_minutes.json)")
		outDir     = flag.String("out", "", "directory to write plan JSON files")
		configPath = flag.String("config", os.Getenv("PITROUTE_CONFIG"), "YAML config overlay")
		solver     = flag.String("solver", opt.SolverBoth, "greedy, anneal or both")
		seed       = flag.Int64("seed", 0, "solver and scenario seed")
		reads      = flag.Int("reads", 0, "annealing read budget (0 = config default)")
		pits       = flag.Int("pits", 0, "generated scenario: pit count")
		trucks     = flag.Int("trucks", 0, "generated scenario: truck count")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var snap *model.Snapshot
	if *inputDir != "" {
		snap, err = inputs.LoadSnapshot(*inputDir)
		if err != nil {
			log.Fatalf("load snapshot: %v", err)
		}
	} else {
		snap, err = scenario.Generate(model.ScenarioSpec{Pits: *pits, Trucks: *trucks, Seed: *seed}, cfg)
		if err != nil {
			log.Fatalf("generate scenario: %v", err)
		}
	}

	sampler := opt.NewAnnealer(cfg.Anneal.Sweeps, *seed)
	runner := opt.NewRunner(cfg, sampler)

	req := model.PlanRequest{Solver: *solver, Seed: *seed, Reads: *reads}
	results, err := runner.Run(context.Background(), req, snap)
	if err != nil {
		log.Fatalf("plan: %v", err)
	}

	for _, res := range results {
		fmt.Printf("solver=%s served=%d missed=%d distance_km=%.2f penalty=%.1f elapsed=%dms\n",
			res.Solver, res.Metrics.ServedTotal, res.Metrics.MissedTotal,
			res.Metrics.TotalDistanceKM, res.Metrics.TotalPenalty, res.Run.ElapsedMS)
		if res.Solver == opt.SolverAnneal {
			fmt.Printf("  best_energy=%.2f reads=%d\n", res.Run.BestEnergy, res.Run.Reads)
		}
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			log.Fatalf("create output dir: %v", err)
		}
		stamp := time.Now().UTC().Format("20060102T150405")
		for _, res := range results {
			name := filepath.Join(*outDir, fmt.Sprintf("plan_%s_%s.json", res.Solver, stamp))
			b, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				log.Fatalf("encode plan: %v", err)
			}
			if err := os.WriteFile(name, b, 0o644); err != nil {
				log.Fatalf("write %s: %v", name, err)
			}
			fmt.Printf("wrote %s\n", name)
		}
	}
}
