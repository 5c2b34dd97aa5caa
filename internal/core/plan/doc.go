// Package plan validates deployment topologies and compiles them into
// deployment specifications.
//
// This is part of the Functional Core - all functions are pure with no I/O.
//
// # Functions
//
//   - Validation: Gate a topology behind six structural checks (Validate)
//   - Ordering: Compute a dependency-respecting startup sequence (DeploymentOrder)
//   - Translation: Lower a validated topology into a NixDeploymentSpec (Translator.Translate)
//
// # Usage
//
// The imperative shell (internal/shell/api) ingests a topology, then
// uses these pure functions to produce a plan:
//
//	limits := plan.DefaultLimits()
//	if err := plan.Validate(graph, limits); err != nil { ... }
//	order, err := plan.DeploymentOrder(graph)
//	spec, err := plan.NewTranslator(limits).Translate(graph)
package plan
