package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"pitroute/internal/model"
)

// Postgres persists plans and scenarios as jsonb payloads keyed by id.
// Selected when DATABASE_URL is set.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// EnsureSchema creates the two tables if missing. Dev helper; production
// deployments run migrations out of band.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS plans (
			id UUID PRIMARY KEY,
			solver TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scenarios (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := p.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	return nil
}

func (p *Postgres) SavePlan(ctx context.Context, plan model.PlanResult) (model.PlanResult, error) {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	if plan.CreatedAt == "" {
		plan.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	payload, err := json.Marshal(plan)
	if err != nil {
		return model.PlanResult{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO plans (id, solver, created_at, payload) VALUES ($1,$2,$3,$4)`,
		plan.ID, plan.Solver, plan.CreatedAt, payload)
	if err != nil {
		return model.PlanResult{}, fmt.Errorf("store: save plan: %w", err)
	}
	return plan, nil
}

func (p *Postgres) GetPlan(ctx context.Context, id string) (model.PlanResult, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM plans WHERE id=$1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PlanResult{}, ErrNotFound
	}
	if err != nil {
		return model.PlanResult{}, err
	}
	var plan model.PlanResult
	if err := json.Unmarshal(payload, &plan); err != nil {
		return model.PlanResult{}, err
	}
	return plan, nil
}

func (p *Postgres) ListPlans(ctx context.Context, limit int) ([]model.PlanResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT payload FROM plans ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PlanResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var plan model.PlanResult
		if err := json.Unmarshal(payload, &plan); err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveScenario(ctx context.Context, snap *model.Snapshot) (string, error) {
	id := uuid.New().String()
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO scenarios (id, created_at, payload) VALUES ($1,$2,$3)`,
		id, time.Now().UTC(), payload)
	if err != nil {
		return "", fmt.Errorf("store: save scenario: %w", err)
	}
	return id, nil
}

func (p *Postgres) GetScenario(ctx context.Context, id string) (*model.Snapshot, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM scenarios WHERE id=$1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }
