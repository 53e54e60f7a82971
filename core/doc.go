// Package core provides the foundational domain types and interfaces used by
// DocFlow. It defines the core abstractions for:
//
//   - Sessions (the per-pipeline record: transcript, requirement spec,
//     enrichment artifacts, synthesis result, retry accounting)
//   - Phases (the pipeline state machine and its legal transition table)
//   - Capability providers (engagement, enrichment and synthesis contracts)
//   - Pluggable stores for session persistence
//
// The package intentionally keeps implementation concerns (file persistence,
// controller orchestration, concrete providers) out of scope, exposing small
// interfaces to enable custom backends and extensions. All exported
// identifiers include concise documentation to aid discoverability and
// external consumption.
package core
