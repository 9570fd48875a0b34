// Package orchestration runs a complete mediation bootstrap: it normalises the
// input, fits the point estimate, dispatches the resampling iterations and
// collects their coefficients into iteration-indexed distributions.
// Progress is reported through the ProgressReporter interface so the engine
// carries no presentation concerns.
package orchestration
