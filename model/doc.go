// Package model defines the backend abstraction used to answer a call to a
// target and the concrete helpers around it.
//
// Core goals:
//   - Present every backend as a core.Caller so the fan-out stays vendor neutral
//   - Keep request/response shapes minimal (one input string, one output text)
//   - Facilitate lightweight mocking for tests and dry runs (MockModel)
//
// Direct provider backends (openai, anthropic) live in sub-packages and call a
// model named by Target.Model with Target.Instructions as system prompt. The
// hosted agent backend lives in package foundry.
package model
