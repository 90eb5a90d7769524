package engine

import "github.com/vk/stockflow/internal/eval"

// Stock is an accumulated quantity. It refers to its connected flows by
// name only; the flow objects live in the engine's flow registry.
type Stock struct {
	Name     string
	Unit     string
	Value    float64
	Inflows  []string
	Outflows []string
}

// Flow is a rate of change. Rate holds the last value computed for it,
// carried into the next step's evaluation scope and the output series.
type Flow struct {
	Name    string
	Formula string
	Unit    string
	Rate    float64

	expr *eval.Expr
}

// Auxiliary is a derived variable recomputed from its formula every step.
type Auxiliary struct {
	Name    string
	Formula string
	Unit    string
	Value   float64

	expr *eval.Expr
}
