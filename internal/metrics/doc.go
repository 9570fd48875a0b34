// Package metrics exposes bootstrap run metrics through a private Prometheus
// registry, together with runtime memory snapshots taken around a run.
package metrics
