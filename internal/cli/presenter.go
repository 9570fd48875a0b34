package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	apperrors "github.com/agbru/medboot/internal/errors"
	"github.com/agbru/medboot/internal/format"
	"github.com/agbru/medboot/internal/model"
	"github.com/agbru/medboot/internal/orchestration"
	"github.com/agbru/medboot/internal/ui"
)

// resultHeaders are the columns of the per-path table.
var resultHeaders = []string{"Coefficient", "Estimate", "Boot mean", "Boot SD", "Valid"}

// ResultPresenter prints bootstrap results.
type ResultPresenter struct {
	// Quiet suppresses the run header and footer.
	Quiet bool
}

// PrintRunHeader prints the execution configuration before a run.
func (p ResultPresenter) PrintRunHeader(out io.Writer, n, paths, niter int, reg string) {
	if p.Quiet {
		return
	}
	st := ui.GetCurrentTheme().Styles()
	fmt.Fprintf(out, "%s\n", st.Heading.Render("--- Bootstrap configuration ---"))
	fmt.Fprintf(out, "Observations: %s, paths: %d, iterations: %s, regression: %s\n",
		st.Value.Render(format.FormatCount(n)), paths,
		st.Value.Render(format.FormatCount(niter)), st.Value.Render(reg))
}

// Present prints one table per path followed by a run summary.
func (p ResultPresenter) Present(res *orchestration.Result, out io.Writer) {
	st := ui.GetCurrentTheme().Styles()
	shape := res.Model.Shape
	for path := range res.Coefficients {
		label := fmt.Sprintf("Path %d (%d mediator(s))", path, shape.NMediators[path])
		if shape.Moderated(path) {
			label += fmt.Sprintf(", moderated by %d", shape.NModerators[path])
		}
		fmt.Fprintf(out, "\n%s\n", st.Heading.Render(label))
		fmt.Fprintln(out, PathTable(res, path, st))
	}
	if p.Quiet {
		return
	}
	fmt.Fprintf(out, "\nMode: %s (%d workers), seed: %s, duration: %s\n",
		res.Plan.Mode, res.Plan.Workers,
		st.Dim.Render(strconv.FormatUint(res.Seed, 10)),
		st.Dim.Render(format.FormatExecutionDuration(res.Duration)))
	if res.Failed > 0 {
		fmt.Fprintf(out, "%s\n", st.Warning.Render(fmt.Sprintf(
			"%d iteration(s) recorded as NaN; first failure: %v", res.Failed, res.FirstFailure)))
	} else {
		fmt.Fprintf(out, "%s\n", st.Success.Render("Status: Success"))
	}
}

// PathTable renders the coefficients of one path with their bootstrap
// spread.
func PathTable(res *orchestration.Result, path int, st ui.Styles) *table.Table {
	shape := res.Model.Shape
	coeffs := res.Coefficients[path]
	dist := res.Distributions.Path(path)

	var rows [][]string
	for _, f := range shownFields(shape, path) {
		point := coeffs.Get(f)
		for j, v := range point {
			s := Summarize(dist.Column(f, j))
			rows = append(rows, []string{
				coefficientLabel(f, j, len(point)),
				format.FormatCoefficient(v),
				format.FormatCoefficient(s.Mean),
				format.FormatCoefficient(s.SD),
				fmt.Sprintf("%d/%d", s.Valid, s.Total),
			})
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.Dim).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return cell.Inherit(st.Heading)
			case col == 0:
				return cell.Inherit(st.Label)
			default:
				return cell.Align(lipgloss.Right)
			}
		}).
		Headers(resultHeaders...).
		Rows(rows...)
}

// coefficientLabel names column j of field f, e.g. "ab[1]"; single-column
// fields are unindexed.
func coefficientLabel(f model.Field, j, width int) string {
	if width == 1 {
		return f.String()
	}
	return fmt.Sprintf("%s[%d]", f, j)
}

// HandleError prints err and returns its exit code.
func HandleError(err error, out io.Writer) int {
	st := ui.GetCurrentTheme().Styles()
	switch {
	case apperrors.IsContextError(err):
		fmt.Fprintf(out, "%s\n", st.Warning.Render(fmt.Sprintf("Run canceled: %v", err)))
	default:
		fmt.Fprintf(out, "%s\n", st.Error.Render(fmt.Sprintf("Error: %v", err)))
	}
	return apperrors.ExitCode(err)
}
