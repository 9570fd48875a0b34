// Package parallel dispatches independent bootstrap iterations either over a
// bounded worker pool or in a sequential loop. The choice is made once per
// run from an explicit capability probe; an unavailable pool is a normal
// outcome, not an error.
package parallel
