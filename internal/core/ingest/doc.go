// Package ingest contains pure functions for decoding external
// topology descriptions into graph snapshots.
//
// This is the single decode boundary of the system: topology manifests
// (YAML or JSON) and Docker Compose documents are parsed here into the
// typed node and edge variants of internal/core/topology. Past this
// boundary no deserialization happens; an unknown node or edge kind is
// an explicit parse error, never a silent skip.
package ingest
