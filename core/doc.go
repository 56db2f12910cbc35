// Package core provides the foundational domain types and interfaces used by
// agentfanout. It defines the core abstractions for:
//
//   - Targets (remote agent identities configured at start-up)
//   - Callers (the opaque request/response operation against a remote agent)
//   - CallResults and ReportSets (normalized, ordered outcomes of a fan-out)
//
// The package intentionally keeps transport concerns (hosted service clients,
// direct provider SDKs) and orchestration strategy out of scope, exposing
// small interfaces so that backends and fakes can be swapped freely.
package core
