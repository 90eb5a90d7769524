// Package resolve stabilizes the values of mutually referencing auxiliary
// variables within one simulation step.
//
// Auxiliaries may reference each other in any order with no guarantee of an
// acyclic dependency graph. The resolver extracts each formula's references
// (via the same parser used for evaluation), builds an explicit dependency
// graph, and evaluates acyclic sets once in topological order. When a cycle
// is detected it falls back to bounded iterative relaxation in declaration
// order, writing each new value back into the scope immediately so later
// formulas in the same pass see it. A cyclic set that has not stabilized
// after the pass budget fails with NotConvergedError rather than silently
// keeping stale values.
package resolve

import (
	"fmt"
	"math"
	"strings"

	"github.com/vk/stockflow/internal/depgraph"
	"github.com/vk/stockflow/internal/eval"
)

// DefaultPasses is the relaxation budget for cyclic dependency sets. It
// covers reference chains of depth up to its value.
const DefaultPasses = 5

// convergenceTol bounds the per-pass relative change below which a cyclic
// set counts as stabilized.
const convergenceTol = 1e-9

// Variable pairs an auxiliary's name with its compiled formula.
type Variable struct {
	Name string
	Expr *eval.Expr
}

// VariableError reports which variable's formula failed during resolution.
type VariableError struct {
	Name string
	Err  error
}

func (e *VariableError) Error() string {
	return fmt.Sprintf("auxiliary %q: %v", e.Name, e.Err)
}

func (e *VariableError) Unwrap() error {
	return e.Err
}

// NotConvergedError reports a cyclic dependency set that did not stabilize
// within the pass budget.
type NotConvergedError struct {
	Names  []string
	Passes int
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("auxiliaries did not converge after %d passes: %s",
		e.Passes, strings.Join(e.Names, ", "))
}

// Resolver evaluates a fixed set of variables against a scope once per step.
// It is built once per simulation run and is not safe for concurrent use;
// each scenario owns its own.
type Resolver struct {
	vars   []Variable
	order  []int // evaluation order as indexes into vars; nil when cyclic
	cyclic bool
	passes int
}

// New builds a resolver for the given variables, in declaration order.
// passes is the relaxation budget for cyclic sets; DefaultPasses when <= 0.
func New(vars []Variable, passes int) *Resolver {
	if passes <= 0 {
		passes = DefaultPasses
	}
	r := &Resolver{vars: vars, passes: passes}

	index := make(map[string]int, len(vars))
	g := depgraph.New()
	for i, v := range vars {
		index[v.Name] = i
		g.AddNode(v.Name)
	}
	for _, v := range vars {
		for _, ref := range v.Expr.References() {
			if ref == v.Name {
				// A self-reference means "my value from the previous
				// pass"; only relaxation can honor that.
				r.cyclic = true
				continue
			}
			if _, ok := index[ref]; ok {
				// AddEdge cannot fail here: both endpoints were added above.
				_ = g.AddEdge(ref, v.Name)
			}
		}
	}

	if !r.cyclic {
		names, err := g.TopologicalOrder()
		if err != nil {
			r.cyclic = true
		} else {
			r.order = make([]int, len(names))
			for i, name := range names {
				r.order[i] = index[name]
			}
		}
	}

	return r
}

// Cyclic reports whether the variable set contains a dependency cycle and
// therefore resolves by bounded relaxation instead of a single ordered pass.
func (r *Resolver) Cyclic() bool {
	return r.cyclic
}

// Resolve computes every variable's value against the scope and writes the
// results back into it. For an acyclic set the result is a fixed point:
// resolving an already-resolved scope changes nothing.
func (r *Resolver) Resolve(scope *eval.Scope) error {
	if !r.cyclic {
		for _, idx := range r.order {
			v := r.vars[idx]
			val, err := v.Expr.Evaluate(scope)
			if err != nil {
				return &VariableError{Name: v.Name, Err: err}
			}
			scope.SetNumber(v.Name, val)
		}
		return nil
	}
	return r.relax(scope)
}

// relax runs r.passes declaration-order sweeps plus one verification sweep,
// stopping early once a full sweep leaves every value unchanged within
// tolerance. Instability surviving the verification sweep is an error.
func (r *Resolver) relax(scope *eval.Scope) error {
	for pass := 0; pass <= r.passes; pass++ {
		var unstable []string
		for _, v := range r.vars {
			val, err := v.Expr.Evaluate(scope)
			if err != nil {
				return &VariableError{Name: v.Name, Err: err}
			}
			if prev, ok := scope.Number(v.Name); !ok || !withinTol(prev, val) {
				unstable = append(unstable, v.Name)
			}
			scope.SetNumber(v.Name, val)
		}
		if len(unstable) == 0 {
			return nil
		}
		if pass == r.passes {
			return &NotConvergedError{Names: unstable, Passes: r.passes}
		}
	}
	return nil
}

func withinTol(prev, next float64) bool {
	return math.Abs(next-prev) <= convergenceTol*math.Max(1, math.Abs(next))
}
