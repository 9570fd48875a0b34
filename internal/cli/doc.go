// Package cli renders the command-line surface of medboot: a spinner-based
// progress reporter for bootstrap runs and the per-path result presenter.
package cli
