// Package inputs loads and validates the planning snapshot artifacts
// produced upstream: the pit/priority table, the truck roster, the node list
// and the travel matrix. Structural problems surface as DataError naming the
// offending artifact; the loader never guesses ids or coordinates.
package inputs

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pitroute/internal/model"
	"pitroute/internal/travel"
)

// Default artifact names inside a snapshot directory.
const (
	PitsFile   = "pits.csv"
	TrucksFile = "trucks.json"
	NodesFile  = "nodes.json"
	MatrixFile = "travel_minutes.json"
)

// DataError is a load-time failure tied to a specific input artifact. It is
// fatal for the run, unlike feasibility exhaustion which is absorbed into
// metrics.
type DataError struct {
	Artifact string
	Reason   string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inputs: %s: %s: %v", e.Artifact, e.Reason, e.Err)
	}
	return fmt.Sprintf("inputs: %s: %s", e.Artifact, e.Reason)
}

func (e *DataError) Unwrap() error { return e.Err }

// IsDataError reports whether err stems from a malformed input artifact.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

func dataErr(artifact, reason string, err error) error {
	return &DataError{Artifact: artifact, Reason: reason, Err: err}
}

// pit table columns that must be present; the rest default safely.
var requiredPitColumns = []string{"pit_id", "tier", "priority"}

// LoadPits parses the pit/priority CSV. Missing optional fields fall back to
// safe defaults (zero demand, zero narrow flag, day-long deadline) so a thin
// upstream export still plans.
func LoadPits(path string) ([]model.Pit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dataErr(path, "open", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, dataErr(path, "parse csv", err)
	}
	if len(rows) == 0 {
		return nil, dataErr(path, "empty file", nil)
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, c := range requiredPitColumns {
		if _, ok := col[c]; !ok {
			return nil, dataErr(path, fmt.Sprintf("missing required column %q", c), nil)
		}
	}

	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	num := func(row []string, name string, def float64) float64 {
		s := get(row, name)
		if s == "" {
			return def
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return def
		}
		return v
	}

	pits := make([]model.Pit, 0, len(rows)-1)
	for ln, row := range rows[1:] {
		idStr := get(row, "pit_id")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, dataErr(path, fmt.Sprintf("row %d: bad pit_id %q", ln+2, idStr), nil)
		}
		prStr := get(row, "priority")
		pr, err := strconv.ParseFloat(prStr, 64)
		if err != nil {
			return nil, dataErr(path, fmt.Sprintf("row %d: bad priority %q", ln+2, prStr), nil)
		}
		pits = append(pits, model.Pit{
			ID:              id,
			Tier:            model.ParseTier(get(row, "tier")),
			Priority:        pr,
			TTOHours:        num(row, "tto_hours", 999),
			Demand:          num(row, "demand", 0),
			ServiceMinutes:  num(row, "service_minutes", 0),
			DeadlineMinutes: num(row, "deadline_minutes", 24*60),
			IsNarrow:        num(row, "is_narrow", 0) == 1,
			Zone:            get(row, "zone"),
		})
	}
	return pits, nil
}

// LoadTrucks parses the truck roster JSON.
func LoadTrucks(path string) ([]model.Truck, error) {
	var trucks []model.Truck
	if err := readJSON(path, &trucks); err != nil {
		return nil, err
	}
	if len(trucks) == 0 {
		return nil, dataErr(path, "empty truck roster", nil)
	}
	for i, t := range trucks {
		if t.ID == 0 {
			return nil, dataErr(path, fmt.Sprintf("truck %d: missing truck_id", i), nil)
		}
	}
	return trucks, nil
}

// LoadNodes parses the node list JSON and checks the depot convention:
// present exactly once, at index 0.
func LoadNodes(path string) ([]model.Node, error) {
	var nodes []model.Node
	if err := readJSON(path, &nodes); err != nil {
		return nil, err
	}
	depots := 0
	for _, n := range nodes {
		if n.ID.IsDepot {
			depots++
		}
	}
	if depots != 1 {
		return nil, dataErr(path, fmt.Sprintf("want exactly one depot node, got %d", depots), nil)
	}
	if !nodes[0].ID.IsDepot {
		return nil, dataErr(path, "depot must be the first node", nil)
	}
	return nodes, nil
}

// LoadMatrix parses the square travel-minutes matrix.
func LoadMatrix(path string, wantDim int) ([][]float64, error) {
	var m [][]float64
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	if len(m) != wantDim {
		return nil, dataErr(path, fmt.Sprintf("matrix has %d rows, node list has %d", len(m), wantDim), nil)
	}
	for i, row := range m {
		if len(row) != wantDim {
			return nil, dataErr(path, fmt.Sprintf("row %d has %d columns, want %d", i, len(row), wantDim), nil)
		}
	}
	return m, nil
}

// LoadSnapshot assembles a full snapshot from a directory of artifacts and
// validates matrix alignment via the travel package.
func LoadSnapshot(dir string) (*model.Snapshot, error) {
	pits, err := LoadPits(filepath.Join(dir, PitsFile))
	if err != nil {
		return nil, err
	}
	trucks, err := LoadTrucks(filepath.Join(dir, TrucksFile))
	if err != nil {
		return nil, err
	}
	nodes, err := LoadNodes(filepath.Join(dir, NodesFile))
	if err != nil {
		return nil, err
	}
	matrix, err := LoadMatrix(filepath.Join(dir, MatrixFile), len(nodes))
	if err != nil {
		return nil, err
	}
	if _, err := travel.NewMatrix(nodes, matrix); err != nil {
		return nil, dataErr(filepath.Join(dir, MatrixFile), "invalid matrix", err)
	}
	return &model.Snapshot{Pits: pits, Trucks: trucks, Nodes: nodes, Matrix: matrix}, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return dataErr(path, "open", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return dataErr(path, "parse json", err)
	}
	return nil
}
