// Package workflow builds the declarative YAML of a hosted workflow agent
// that fans a conversation out to several agents and optionally lets a
// coordinator evaluate their answers.
//
// The package only produces and inspects workflow documents; execution is
// done by the hosted service.
package workflow
