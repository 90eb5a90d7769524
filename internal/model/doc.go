// Package model provides the Go struct representation of a stock-flow
// simulation model. Its core purpose is to create a strongly-typed,
// in-memory model of an externally supplied configuration.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - Config: The root container for one simulation model. It aggregates the
//     stock, parameter, auxiliary and flow definitions together with the flow
//     connections and the simulation time settings.
//
//   - Stock / Auxiliary / Flow definitions: pure data. The runtime entities
//     that carry mutable state live in the engine package; this package only
//     describes the model.
//
//   - Connection: a directed link between a flow and a stock. Direction is
//     carried here, never by the sign of a flow rate.
//
// Why a separate model package?
//
// Configurations originate from an untrusted upstream generator. Decoding
// them into a predictable structure first lets us perform static checks on
// the overall shape of the model (unique names, connection references,
// direction tokens, time settings) before any formula is ever evaluated.
// The engine consumes a validated Config and nothing else, so every
// structural error is caught early with a descriptive ConfigError rather
// than surfacing mid-simulation.
package model
