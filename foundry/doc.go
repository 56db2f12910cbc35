// Package foundry is a thin client for an Azure AI Foundry project.
//
// It covers the operations needed to provision and drive hosted agents:
// creating prompt and workflow agent versions, listing deployed agents,
// opening conversations and requesting responses from a named agent. All
// requests go through the official openai-go client; an azcore
// TokenCredential supplies bearer tokens.
//
// AgentCaller adapts the client to core.Caller so that hosted agents can be
// used as fan-out targets. Every call opens its own conversation.
package foundry
