// Package logging provides the structured logging interface used by the
// bootstrap engine. Library packages depend on the Logger interface only; the
// binary decides whether records go to zerolog or a standard library logger.
package logging
