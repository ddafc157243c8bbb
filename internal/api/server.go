package api

import (
	"context"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"pitroute/internal/config"
	"pitroute/internal/opt"
	"pitroute/internal/store"
)

type Server struct {
	Cfg     config.Config
	Store   store.Store
	Broker  EventBroker
	Runner  *opt.Runner
	planLim *rate.Limiter
}

// NewServer wires the service from the environment: in-memory store unless
// DATABASE_URL is set, in-process broker unless REDIS_URL is set, and the
// default simulated-annealing sampler.
func NewServer() (*Server, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	dsn := os.Getenv("DATABASE_URL")
	var s store.Store
	if strings.TrimSpace(dsn) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		if os.Getenv("DB_MIGRATE") != "false" {
			if err := sp.EnsureSchema(context.Background()); err != nil {
				return nil, err
			}
		}
		s = sp
	}

	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	sampler := opt.NewAnnealer(cfg.Anneal.Sweeps, time.Now().UnixNano())
	return NewServerWith(cfg, s, broker, opt.NewRunner(cfg, sampler)), nil
}

// NewServerWith assembles a server from explicit dependencies.
func NewServerWith(cfg config.Config, s store.Store, broker EventBroker, runner *opt.Runner) *Server {
	return &Server{
		Cfg:    cfg,
		Store:  s,
		Broker: broker,
		Runner: runner,
		// Planning runs are CPU-heavy; one per second with a small burst
		// keeps a misbehaving client from starving the box.
		planLim: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}
