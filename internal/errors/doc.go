// Package errors provides structured, actionable errors for the vtree CLI
// and its outer surfaces: config loading, the wire protocol, snapshot
// storage and the commands themselves. The reconciler core does not use it;
// it panics on programmer error and has no failure modes of its own.
//
// # Error Codes
//
// Each error has a unique code that maps to a category, a short message, an
// optional explanation and an optional hint:
//   - E1xx: config
//   - E2xx: protocol
//   - E3xx: snapshots
//   - E4xx: CLI
//
// # Usage
//
//	err := errors.New(errors.ConfigParse).
//	    WithLocation("vtree.yaml", 4).
//	    Wrap(yamlErr)
//
//	errors.PrintError(err)
package errors
