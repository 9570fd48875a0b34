package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/medboot/internal/config"
	"github.com/agbru/medboot/internal/logging"
)

// Capability is the answer to "is a worker pool of this size available?".
type Capability struct {
	// Available is true when a pool of at least two workers can be used.
	Available bool
	// Workers is the resolved pool size.
	Workers int
}

// Prober decides whether a worker pool can be used for a requested size.
type Prober interface {
	Probe(threads int) Capability
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(threads int) Capability

// Probe calls f(threads).
func (f ProberFunc) Probe(threads int) Capability { return f(threads) }

// SystemProber resolves pool sizes against the CPUs the process may use.
type SystemProber struct{}

// Probe resolves config.Unbounded to AvailableCPUs. Zero disables the pool
// and a single worker is no better than the sequential loop.
func (SystemProber) Probe(threads int) Capability {
	workers := threads
	if threads == config.Unbounded {
		workers = AvailableCPUs()
	}
	if workers < 0 {
		workers = 0
	}
	return Capability{Available: workers >= 2, Workers: workers}
}

// Plan is the execution mode chosen for a run.
type Plan struct {
	// Mode is config.ModeSequential or config.ModeParallel.
	Mode config.ExecMode
	// Workers is 1 for sequential plans.
	Workers int
}

// Task runs iteration i.
type Task func(ctx context.Context, i int) error

// Dispatcher runs a fixed number of independent tasks.
type Dispatcher struct {
	prober Prober
	logger logging.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithProber replaces the SystemProber.
func WithProber(p Prober) Option {
	return func(d *Dispatcher) { d.prober = p }
}

// WithLogger sets the logger used for the mode decision.
func WithLogger(l logging.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher returns a Dispatcher using the SystemProber.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{prober: SystemProber{}, logger: logging.NewNopLogger()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Plan picks the execution mode once for a run. ModeAuto follows the probe;
// the forced modes ignore it, with a forced parallel plan using at least two
// workers.
func (d *Dispatcher) Plan(mode config.ExecMode, threads int) Plan {
	capability := d.prober.Probe(threads)
	var plan Plan
	switch mode {
	case config.ModeSequential:
		plan = Plan{Mode: config.ModeSequential, Workers: 1}
	case config.ModeParallel:
		plan = Plan{Mode: config.ModeParallel, Workers: max(capability.Workers, 2)}
	default:
		if capability.Available {
			plan = Plan{Mode: config.ModeParallel, Workers: capability.Workers}
		} else {
			plan = Plan{Mode: config.ModeSequential, Workers: 1}
		}
	}
	d.logger.Debug("dispatch mode selected",
		logging.String("requested", string(mode)),
		logging.String("mode", string(plan.Mode)),
		logging.Int("workers", plan.Workers),
		logging.Bool("pool_available", capability.Available),
	)
	return plan
}

// Run calls task exactly once for every i in [0, n) according to plan, and
// returns the first task error. Tasks must not share mutable state; under a
// parallel plan they run in any order. Once ctx is done no further tasks are
// started and the context error is returned.
func (d *Dispatcher) Run(ctx context.Context, plan Plan, n int, task Task) error {
	if plan.Mode == config.ModeParallel && plan.Workers > 1 {
		return runParallel(ctx, plan.Workers, n, task)
	}
	return runSequential(ctx, n, task)
}

func runSequential(ctx context.Context, n int, task Task) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

func runParallel(ctx context.Context, workers, n int, task Task) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return task(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
