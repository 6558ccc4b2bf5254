// Package domain contains the canonical workflow model: nodes, edges,
// run telemetry, and the structural equality/clone routines the rest of
// the library builds on.
//
// The model is rendering-agnostic. The visualization layer consumes the
// renderable projection produced by pkg/bridge, never these types directly.
package domain
