// Package fanout sends one input to several remote targets and collects a
// uniform, ordered report.
//
// A FanOut wraps a core.Caller (the remote request/response operation) and
// offers three strategies:
//
//   - FanOutConcurrent dispatches every call at once through a Dispatcher
//   - FanOutSequential calls targets one at a time in declaration order
//   - Orchestrate tries the concurrent strategy and falls back to the
//     sequential one when concurrency is unavailable
//
// Individual call failures never abort a run. They are turned into error
// results so that the report always holds exactly one result per target, in
// the order the targets were declared.
//
// Usage:
//
//	f := fanout.New(caller, func(o *fanout.Options) {
//		o.MaxConcurrency = 4
//		o.Logger = logger
//	})
//	report := f.Orchestrate(ctx, targets, "Tell me a story")
//	fmt.Print(fanout.FormatReport(report))
package fanout
