package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Agrid-Dev/twozone/internal/thermal"
)

var (
	ErrNoCases        = errors.New("at least one case is required")
	ErrDuplicateCase  = errors.New("case selected twice")
	ErrCaseNotInStudy = errors.New("case not part of this study")
)

type NoiseOptions struct {
	Enabled bool
	StdDev  float64
	Seed    uint64
}

// Options select what a comparison runs and how it is reduced.
type Options struct {
	Cases  []thermal.Case
	Noise  NoiseOptions
	Window int
}

// DefaultOptions runs both cases with the reference sensor noise.
func DefaultOptions() Options {
	return Options{
		Cases:  thermal.Cases(),
		Noise:  NoiseOptions{Enabled: true, StdDev: thermal.DefaultNoiseStdDev, Seed: 1},
		Window: thermal.DefaultWindow,
	}
}

func (o Options) Validate() error {
	if len(o.Cases) == 0 {
		return ErrNoCases
	}
	seen := make(map[thermal.Case]bool, len(o.Cases))
	for _, c := range o.Cases {
		if !c.Valid() {
			return fmt.Errorf("%w: %v", thermal.ErrInvalidCase, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: %s", ErrDuplicateCase, c)
		}
		seen[c] = true
	}
	if o.Noise.StdDev < 0 {
		return thermal.ErrNegativeNoiseStdDev
	}
	if o.Window <= 0 {
		return thermal.ErrInvalidWindow
	}
	return nil
}

// Report is the read-only outcome of one comparison.
type Report struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Params    thermal.Params
	Options   Options

	Runs      map[thermal.Case]*thermal.Run
	Summaries map[thermal.Case]thermal.Summary
}

func (r *Report) Summary(c thermal.Case) (thermal.Summary, error) {
	s, ok := r.Summaries[c]
	if !ok {
		return thermal.Summary{}, fmt.Errorf("%w: %s", ErrCaseNotInStudy, c)
	}
	return s, nil
}

func (r *Report) Run(c thermal.Case) (*thermal.Run, error) {
	run, ok := r.Runs[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotInStudy, c)
	}
	return run, nil
}

// Improvement is how much cooler the monitored zone ends up with forced
// exchange than with passive diffusion. ok is false unless both cases ran.
func (r *Report) Improvement() (delta float64, ok bool) {
	passive, okP := r.Summaries[thermal.CasePassive]
	forced, okF := r.Summaries[thermal.CaseForced]
	if !okP || !okF {
		return 0, false
	}
	return passive.Zone2 - forced.Zone2, true
}

// Compare simulates every selected case. Cases share only the read-only
// params and run concurrently.
func Compare(ctx context.Context, p thermal.Params, opts Options, log *slog.Logger) (*Report, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if n := p.Steps(); opts.Window > n {
		return nil, &thermal.ConfigError{Field: "reducer.window", Err: thermal.ErrInvalidWindow}
	}

	report := &Report{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Params:    p,
		Options:   opts,
		Runs:      make(map[thermal.Case]*thermal.Run, len(opts.Cases)),
		Summaries: make(map[thermal.Case]thermal.Summary, len(opts.Cases)),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range opts.Cases {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			run, summary, err := runCase(p, c, opts)
			if err != nil {
				return fmt.Errorf("%s case: %w", c, err)
			}
			mu.Lock()
			report.Runs[c] = run
			report.Summaries[c] = summary
			mu.Unlock()
			log.Info("case simulated",
				"case", c.String(),
				"run_id", run.ID.String(),
				"steps", run.Len(),
				"zone1_steady", summary.Zone1,
				"zone2_steady", summary.Zone2,
				"noise", run.NoiseApplied,
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func runCase(p thermal.Params, c thermal.Case, opts Options) (*thermal.Run, thermal.Summary, error) {
	run, err := thermal.Simulate(p, c)
	if err != nil {
		return nil, thermal.Summary{}, err
	}
	if opts.Noise.Enabled {
		inj, err := thermal.NewNoiseInjector(opts.Noise.StdDev, thermal.NewSeededSource(opts.Noise.Seed, c))
		if err != nil {
			return nil, thermal.Summary{}, err
		}
		if err := run.ApplyNoise(inj); err != nil {
			return nil, thermal.Summary{}, err
		}
	}
	summary, err := thermal.Summarize(run, opts.Window)
	if err != nil {
		return nil, thermal.Summary{}, err
	}
	return run, summary, nil
}
