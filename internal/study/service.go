package study

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Agrid-Dev/twozone/internal/thermal"
)

// Service owns the current options and the latest report computed from them.
// Readers never observe a report that disagrees with Options().
type Service struct {
	ID string

	update sync.Mutex // serializes recomputation

	mu     sync.RWMutex
	params thermal.Params
	opts   Options
	report *Report

	log *slog.Logger
}

// NewService computes the initial report before returning.
func NewService(ctx context.Context, id string, p thermal.Params, opts Options, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	r, err := Compare(ctx, p, opts, log)
	if err != nil {
		return nil, err
	}
	return &Service{ID: id, params: p, opts: opts, report: r, log: log}, nil
}

func (s *Service) Report() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

func (s *Service) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o := s.opts
	o.Cases = append([]thermal.Case(nil), s.opts.Cases...)
	return o
}

func (s *Service) Params() thermal.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

func (s *Service) SetNoise(ctx context.Context, on bool) error {
	return s.apply(ctx, func(o *Options) { o.Noise.Enabled = on })
}

func (s *Service) SetSeed(ctx context.Context, seed uint64) error {
	return s.apply(ctx, func(o *Options) { o.Noise.Seed = seed })
}

// Rerun recomputes with unchanged options; only run ids and timestamps differ.
func (s *Service) Rerun(ctx context.Context) error {
	return s.apply(ctx, func(*Options) {})
}

func (s *Service) apply(ctx context.Context, mutate func(*Options)) error {
	s.update.Lock()
	defer s.update.Unlock()

	opts := s.Options()
	mutate(&opts)

	r, err := Compare(ctx, s.Params(), opts, s.log)
	if err != nil {
		s.log.Warn("recompute failed", "device_id", s.ID, "err", err)
		return err
	}

	s.mu.Lock()
	s.opts = opts
	s.report = r
	s.mu.Unlock()

	s.log.Info("report updated",
		"device_id", s.ID,
		"report_id", r.ID.String(),
		"noise", opts.Noise.Enabled,
		"seed", opts.Noise.Seed,
	)
	return nil
}
