// Package config loads the agentfanout configuration.
//
// Configuration comes from, in increasing precedence: built-in defaults that
// describe the storytelling deployment, an optional YAML file (with ${VAR} and
// ${VAR:-default} expansion) and well-known environment variables. A .env
// file can be loaded first; it never overrides variables that are already set.
package config
