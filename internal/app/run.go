package app

import (
	"context"
	"io"

	"github.com/agbru/medboot/internal/cli"
	apperrors "github.com/agbru/medboot/internal/errors"
	"github.com/agbru/medboot/internal/logging"
	"github.com/agbru/medboot/internal/metrics"
	"github.com/agbru/medboot/internal/orchestration"
)

// runEstimate simulates the dataset, runs the bootstrap and prints the
// results.
func (a *Application) runEstimate(ctx context.Context, out io.Writer, logger logging.Logger, m *metrics.Metrics) int {
	raw := a.Source(a.Config.Data)
	opts := a.Config.Options
	presenter := a.presenter()

	presenter.PrintRunHeader(out, a.Config.Data.Observations, a.Config.Data.Stages, opts.NIter, string(opts.RegType))

	var progressReporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		progressReporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	res, err := orchestration.EstimateMediation(ctx, raw, opts,
		orchestration.WithLogger(logger),
		orchestration.WithMetrics(m),
		orchestration.WithProgress(progressReporter, progressOut),
	)
	if err != nil {
		return cli.HandleError(err, a.ErrWriter)
	}
	presenter.Present(res, out)
	return apperrors.ExitSuccess
}
