// Package format renders durations, counts and progress bars for terminal
// output. It has no dependencies on the rest of the module.
package format
