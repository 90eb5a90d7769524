// Package engine owns the runtime state of one simulation run and advances
// it with fixed-step Euler integration.
//
// An Engine is constructed from a validated model config, builds its stock,
// auxiliary and flow registries, compiles every formula once, and then steps
// through simulated time. Each step snapshots the pre-step state into the
// output time series, resolves the auxiliary set, evaluates flow rates
// (clamped non-negative), integrates the stocks (clamped non-negative) and
// advances the clock by dt. The loop within one run is strictly sequential;
// step n+1's scope is built from step n's outputs. Concurrency lives one
// level up, in the runner package, which gives every scenario its own Engine
// and never shares one between goroutines.
//
// The engine never logs and never writes files; its only outputs are the
// Result value and typed errors.
package engine
