package engine

import "fmt"

// SimulationError reports a formula failure during a run. The run aborts at
// the failing step; the partial time series accumulated so far is discarded.
type SimulationError struct {
	Kind    string // "auxiliary" or "flow"
	Name    string
	Formula string
	Step    int
	Time    float64
	Err     error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s %q (formula %q) failed at step %d, t=%g: %v",
		e.Kind, e.Name, e.Formula, e.Step, e.Time, e.Err)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}
