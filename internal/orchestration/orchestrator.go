package orchestration

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/medboot/internal/bootstrap"
	"github.com/agbru/medboot/internal/config"
	apperrors "github.com/agbru/medboot/internal/errors"
	"github.com/agbru/medboot/internal/logging"
	"github.com/agbru/medboot/internal/metrics"
	"github.com/agbru/medboot/internal/model"
	"github.com/agbru/medboot/internal/parallel"
	"github.com/agbru/medboot/internal/pathest"
)

const tracerName = "github.com/agbru/medboot/internal/orchestration"

// Result is the outcome of a bootstrap run.
type Result struct {
	// Coefficients holds one record per path, fitted on the unresampled data.
	Coefficients []model.Coefficients
	// Distributions holds NIter rows per field and path; row i is iteration i.
	Distributions *model.Distributions
	// Model is the normalised input.
	Model *model.Model
	// Plan is the execution mode that ran the iterations.
	Plan parallel.Plan
	// Seed is the resolved resampling seed; rerunning with it reproduces
	// the distributions in either execution mode.
	Seed uint64
	// Failed counts iterations recorded as NaN under config.FailNaN.
	Failed int
	// FirstFailure is the first such iteration error, if any.
	FirstFailure error
	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// runner carries the injectable collaborators of a run.
type runner struct {
	estimator pathest.Estimator
	logger    logging.Logger
	metrics   *metrics.Metrics
	prober    parallel.Prober
	reporter  ProgressReporter
	out       io.Writer
	observer  bootstrap.IndexObserver
	now       func() time.Time
}

// Option configures a run.
type Option func(*runner)

// WithEstimator replaces the regression estimator.
func WithEstimator(e pathest.Estimator) Option {
	return func(r *runner) { r.estimator = e }
}

// WithLogger sets the run logger.
func WithLogger(l logging.Logger) Option {
	return func(r *runner) { r.logger = l }
}

// WithMetrics records the run in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *runner) { r.metrics = m }
}

// WithProber replaces the worker pool capability probe.
func WithProber(p parallel.Prober) Option {
	return func(r *runner) { r.prober = p }
}

// WithProgress streams progress updates to reporter, which writes to out.
func WithProgress(reporter ProgressReporter, out io.Writer) Option {
	return func(r *runner) {
		r.reporter = reporter
		r.out = out
	}
}

// WithIndexObserver receives the indices drawn by every iteration.
func WithIndexObserver(o bootstrap.IndexObserver) Option {
	return func(r *runner) { r.observer = o }
}

// EstimateMediation estimates the mediation path coefficients of raw and
// their bootstrap distributions.
//
// The point estimate is exactly one estimator call on the normalised,
// unresampled data. Each of opts.NIter iterations then resamples X, Y, M and
// W together and re-estimates; iteration i always lands in row i. Options are
// validated first (ConfigError), then the input shapes (ShapeMismatchError,
// ValidationError). A failed iteration aborts the run with an
// EstimationError unless opts.OnFailure is config.FailNaN.
func EstimateMediation(ctx context.Context, raw model.RawInput, opts config.Options, options ...Option) (*Result, error) {
	r := &runner{
		logger:   logging.NewNopLogger(),
		prober:   parallel.SystemProber{},
		reporter: NullProgressReporter{},
		out:      io.Discard,
		now:      time.Now,
	}
	for _, o := range options {
		o(r)
	}
	return r.run(ctx, raw, opts)
}

func (r *runner) run(ctx context.Context, raw model.RawInput, opts config.Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m, err := model.Normalize(raw)
	if err != nil {
		return nil, apperrors.WrapError(err, "normalize input")
	}

	est := r.estimator
	if est == nil {
		if est, err = pathest.New(m.Shape, opts.RegType); err != nil {
			return nil, err
		}
	}

	start := r.now()
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(start.UnixNano())
	}

	dispatcher := parallel.NewDispatcher(parallel.WithProber(r.prober), parallel.WithLogger(r.logger))
	plan := dispatcher.Plan(opts.Mode, opts.Threads)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "EstimateMediation", trace.WithAttributes(
		attribute.Int("medboot.niter", opts.NIter),
		attribute.Int("medboot.paths", m.NPaths),
		attribute.Int("medboot.observations", m.N),
		attribute.String("medboot.reg_type", string(opts.RegType)),
		attribute.String("medboot.mode", string(plan.Mode)),
		attribute.Int("medboot.workers", plan.Workers),
	))
	defer span.End()

	r.logger.Info("bootstrap started",
		logging.Int("niter", opts.NIter),
		logging.Int("paths", m.NPaths),
		logging.Int("observations", m.N),
		logging.String("reg_type", string(opts.RegType)),
		logging.String("mode", string(plan.Mode)),
		logging.Int("workers", plan.Workers),
		logging.Uint64("seed", seed),
	)

	res, err := r.bootstrap(ctx, m, est, opts, dispatcher, plan, seed)
	elapsed := r.now().Sub(start)
	r.metrics.ObserveRun(string(plan.Mode), err, elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("bootstrap aborted", err, logging.Duration("elapsed", elapsed))
		return nil, err
	}
	res.Duration = elapsed
	span.SetAttributes(attribute.Int("medboot.failed", res.Failed))

	fields := []logging.Field{logging.Duration("elapsed", elapsed), logging.Int("failed", res.Failed)}
	if res.FirstFailure != nil {
		fields = append(fields, logging.Err(res.FirstFailure))
	}
	r.logger.Info("bootstrap finished", fields...)
	return res, nil
}

// bootstrap fits the point estimate and runs the resampling iterations.
func (r *runner) bootstrap(ctx context.Context, m *model.Model, est pathest.Estimator, opts config.Options, dispatcher *parallel.Dispatcher, plan parallel.Plan, seed uint64) (*Result, error) {
	point, err := est.Estimate(m.Data)
	if err == nil {
		err = m.Check(point)
	}
	if err != nil {
		return nil, apperrors.EstimationError{Iteration: apperrors.PointEstimate, Cause: err}
	}

	dist := model.NewDistributions(m.Shape, opts.NIter)
	var samplerOpts []bootstrap.SamplerOption
	if r.observer != nil {
		samplerOpts = append(samplerOpts, bootstrap.WithIndexObserver(r.observer))
	}
	sampler := bootstrap.NewSampler(m, est, opts, seed, samplerOpts...)

	tracker := newProgressTracker(opts.NIter)
	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go r.reporter.DisplayProgress(&displayWg, tracker.ch, r.out)

	var failed atomic.Int64
	var firstFailure parallel.ErrorCollector
	runErr := dispatcher.Run(ctx, plan, opts.NIter, func(_ context.Context, i int) error {
		coeffs, err := sampler.Draw(i)
		if err == nil {
			err = dist.Record(i, coeffs)
		}
		if err != nil {
			estErr := apperrors.EstimationError{Iteration: i, Cause: err}
			r.metrics.IterationFailed()
			if opts.OnFailure != config.FailNaN {
				return estErr
			}
			dist.MarkMissing(i)
			failed.Add(1)
			firstFailure.SetError(estErr)
			r.logger.Warn("iteration recorded as NaN", logging.Int("iteration", i), logging.Err(err))
		}
		r.metrics.IterationDone()
		tracker.step()
		return nil
	})

	tracker.finish()
	displayWg.Wait()

	if runErr != nil {
		return nil, runErr
	}
	return &Result{
		Coefficients:  point,
		Distributions: dist,
		Model:         m,
		Plan:          plan,
		Seed:          seed,
		Failed:        int(failed.Load()),
		FirstFailure:  firstFailure.Err(),
	}, nil
}
