// Package types holds the capability interfaces shared by the rxbridge
// packages: structured logging and metrics collection.
//
// The interfaces live in their own package so that the root package, the
// internal implementations and the transport adapters (natsbus, wsstream)
// can all depend on them without import cycles.
package types
