// Package topology defines the deployment graph snapshot: the closed
// set of deployable node kinds, the relationship edge kinds, and an
// immutable graph that holds them.
//
// This is part of the Functional Core - all functions are pure with no I/O.
// A Graph is built once (by an ingestion boundary or directly in code)
// and is read-only afterwards; validation and translation never mutate
// it and allocate their own working state.
package topology
