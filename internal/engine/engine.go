package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/vk/stockflow/internal/eval"
	"github.com/vk/stockflow/internal/model"
	"github.com/vk/stockflow/internal/resolve"
)

// State tracks an engine through its lifecycle. Engines are single-use:
// one construction, one run, then discarded.
type State int

const (
	StateInitialized State = iota
	StateStepping
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateStepping:
		return "stepping"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// stepEpsilon absorbs float division noise in the step count so that
// end_time/dt pairs like 0.3/0.1 still yield floor(end/dt)+1 rows.
const stepEpsilon = 1e-9

// StepCount returns the number of rows a run records: one per step from
// t=0 through t=end_time inclusive.
func StepCount(endTime, dt float64) int {
	return int(math.Floor(endTime/dt+stepEpsilon)) + 1
}

// Engine holds one scenario's runtime state. It is not safe for concurrent
// use; each scenario builds its own.
type Engine struct {
	dt      float64
	endTime float64
	time    float64
	state   State

	stocks []*Stock
	auxes  []*Auxiliary
	flows  []*Flow

	flowIndex map[string]*Flow
	params    map[string]model.Parameter
	units     map[string]string

	resolver *resolve.Resolver
}

// New validates the config, builds the entity registries, wires flow
// connections and compiles every formula. It fails fast: a structural
// problem surfaces as a *model.ConfigError and a malformed formula as a
// *SimulationError with Step -1, both fatal to this scenario only.
func New(cfg model.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		dt:        cfg.Settings.DT.Value,
		endTime:   cfg.Settings.EndTime.Value,
		state:     StateInitialized,
		flowIndex: make(map[string]*Flow, len(cfg.Flows)),
		params:    cfg.Parameters,
		units:     cfg.Units(),
	}

	stockIndex := make(map[string]*Stock, len(cfg.Stocks))
	for _, def := range cfg.Stocks {
		s := &Stock{Name: def.Name, Unit: def.Unit, Value: def.InitialValue}
		e.stocks = append(e.stocks, s)
		stockIndex[def.Name] = s
	}

	for _, def := range cfg.Auxiliaries {
		expr, err := eval.Parse(def.Formula)
		if err != nil {
			return nil, &SimulationError{Kind: "auxiliary", Name: def.Name, Formula: def.Formula, Step: -1, Err: err}
		}
		e.auxes = append(e.auxes, &Auxiliary{Name: def.Name, Formula: def.Formula, Unit: def.Unit, expr: expr})
	}

	for _, def := range cfg.Flows {
		expr, err := eval.Parse(def.Formula)
		if err != nil {
			return nil, &SimulationError{Kind: "flow", Name: def.Name, Formula: def.Formula, Step: -1, Err: err}
		}
		f := &Flow{Name: def.Name, Formula: def.Formula, Unit: def.Unit, expr: expr}
		e.flows = append(e.flows, f)
		e.flowIndex[def.Name] = f
	}

	// Validate guarantees every connection references a defined flow and stock.
	for _, conn := range cfg.Connections {
		s := stockIndex[conn.Stock]
		if conn.Direction == model.DirectionInflow {
			s.Inflows = append(s.Inflows, conn.Flow)
		} else {
			s.Outflows = append(s.Outflows, conn.Flow)
		}
	}

	vars := make([]resolve.Variable, len(e.auxes))
	for i, a := range e.auxes {
		vars[i] = resolve.Variable{Name: a.Name, Expr: a.expr}
	}
	e.resolver = resolve.New(vars, resolve.DefaultPasses)

	return e, nil
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Units returns the name-to-unit mapping for every entity and parameter.
func (e *Engine) Units() map[string]string {
	return e.units
}

// Run integrates the model from t=0 through end_time inclusive and returns
// the recorded time series. The cancellation signal is checked between
// steps so a long-running scenario can be aborted without blocking others.
// On any evaluation failure the run aborts, the partial series is discarded
// and the returned error names the entity, formula, step and time at fault.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.state != StateInitialized {
		return nil, fmt.Errorf("engine already ran (state %s)", e.state)
	}
	e.state = StateStepping

	steps := StepCount(e.endTime, e.dt)
	result := &Result{
		Columns: e.columns(),
		Rows:    make([][]float64, 0, steps),
		Units:   e.units,
	}

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			e.state = StateFailed
			return nil, fmt.Errorf("run canceled at step %d, t=%g: %w", i, e.time, err)
		}
		e.time = float64(i) * e.dt

		// Rows are recorded before this step's updates apply, so each row
		// reflects the state at the start of the interval [t, t+dt).
		result.Rows = append(result.Rows, e.snapshot())

		if err := e.step(i); err != nil {
			e.state = StateFailed
			return nil, err
		}
	}

	e.state = StateCompleted
	return result, nil
}

// step resolves auxiliaries, evaluates flow rates and integrates stocks for
// the step at index i.
func (e *Engine) step(i int) error {
	scope := e.buildScope()

	if err := e.resolver.Resolve(scope); err != nil {
		var verr *resolve.VariableError
		if errors.As(err, &verr) {
			return &SimulationError{
				Kind:    "auxiliary",
				Name:    verr.Name,
				Formula: e.auxFormula(verr.Name),
				Step:    i,
				Time:    e.time,
				Err:     verr.Err,
			}
		}
		return fmt.Errorf("step %d, t=%g: %w", i, e.time, err)
	}
	for _, a := range e.auxes {
		if v, ok := scope.Number(a.Name); ok {
			a.Value = v
		}
	}

	// Flows all see the same scope: previous-step rates, not each other's
	// fresh ones. Direction is carried by the connection, so rates clamp
	// to zero rather than going negative.
	for _, f := range e.flows {
		v, err := f.expr.Evaluate(scope)
		if err != nil {
			return &SimulationError{Kind: "flow", Name: f.Name, Formula: f.Formula, Step: i, Time: e.time, Err: err}
		}
		f.Rate = math.Max(0, v)
	}

	for _, s := range e.stocks {
		net := 0.0
		for _, name := range s.Inflows {
			net += e.flowIndex[name].Rate
		}
		for _, name := range s.Outflows {
			net -= e.flowIndex[name].Rate
		}
		s.Value = math.Max(0, s.Value+net*e.dt)
	}

	return nil
}

// buildScope binds current stock values, the auxiliary and flow values
// carried from the previous step, full parameter structures and the current
// time.
func (e *Engine) buildScope() *eval.Scope {
	scope := eval.NewScope()
	for _, s := range e.stocks {
		scope.SetNumber(s.Name, s.Value)
	}
	for _, a := range e.auxes {
		scope.SetNumber(a.Name, a.Value)
	}
	for _, f := range e.flows {
		scope.SetNumber(f.Name, f.Rate)
	}
	for name, p := range e.params {
		scope.SetParameter(name, p.Value, p.Unit)
	}
	scope.SetNumber(model.ReservedTimeName, e.time)
	return scope
}

func (e *Engine) columns() []string {
	cols := make([]string, 0, 1+len(e.stocks)+len(e.auxes)+len(e.flows))
	cols = append(cols, model.ReservedTimeName)
	for _, s := range e.stocks {
		cols = append(cols, s.Name)
	}
	for _, a := range e.auxes {
		cols = append(cols, a.Name)
	}
	for _, f := range e.flows {
		cols = append(cols, f.Name)
	}
	return cols
}

func (e *Engine) snapshot() []float64 {
	row := make([]float64, 0, 1+len(e.stocks)+len(e.auxes)+len(e.flows))
	row = append(row, e.time)
	for _, s := range e.stocks {
		row = append(row, s.Value)
	}
	for _, a := range e.auxes {
		row = append(row, a.Value)
	}
	for _, f := range e.flows {
		row = append(row, f.Rate)
	}
	return row
}

func (e *Engine) auxFormula(name string) string {
	for _, a := range e.auxes {
		if a.Name == name {
			return a.Formula
		}
	}
	return ""
}
