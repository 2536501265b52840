// Package services defines shared utilities consumed by the scene queue
// manager and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, operation names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures as
//     validation, persistence, or transport problems.
//
// Use these helpers when wiring new integrations so operational behaviour
// (error handling, observability) stays uniform across the tool.
package services
