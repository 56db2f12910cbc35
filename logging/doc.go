// Package logging provides a minimal logging interface and adapters for agentfanout.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the fan-out core, the hosted service client and the CLI use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - FanoutLogger with contextual cloning and call/fan-out helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	f := fanout.New(caller, func(o *fanout.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
