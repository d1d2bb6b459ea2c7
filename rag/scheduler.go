package rag

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler periodically reindexes every loaded tenant.
type Scheduler struct {
	cron     *cron.Cron
	registry *Registry
	logger   zerolog.Logger
}

// NewScheduler accepts standard five-field cron expressions and descriptors
// such as "@every 10m".
func NewScheduler(registry *Registry, schedule string, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		registry: registry,
		logger:   logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.ReindexAll); err != nil {
		return nil, fmt.Errorf("invalid reindex schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and returns a context done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) ReindexAll() {
	for _, tenant := range s.registry.Tenants() {
		if _, err := s.registry.Reindex(context.Background(), tenant); err != nil {
			s.logger.Warn().Err(err).Str("tenant_id", tenant).Msg("scheduled reindex failed")
		}
	}
}
