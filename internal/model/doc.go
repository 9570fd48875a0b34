// Package model defines the canonical multi-path mediation model, the
// per-path coefficient records produced by the path estimator, and the
// iteration-indexed distributions the bootstrap accumulates them into.
//
// A Model is built once by Normalize and is read-only afterwards; every
// bootstrap iteration and worker shares it.
package model
