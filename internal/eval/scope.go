package eval

import "github.com/zclconf/go-cty/cty"

// Scope is the name-to-value mapping a formula is evaluated against. Plain
// entities (stocks, auxiliaries, flows, time) are numbers; parameters are
// objects carrying value and unit attributes so formulas can say NAME.value,
// matching the contract the upstream generator writes formulas for.
type Scope struct {
	vars map[string]cty.Value
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]cty.Value)}
}

// SetNumber binds name to a plain numeric value.
func (s *Scope) SetNumber(name string, v float64) {
	s.vars[name] = cty.NumberFloatVal(v)
}

// SetParameter binds name to a {value, unit} object.
func (s *Scope) SetParameter(name string, value float64, unit string) {
	s.vars[name] = cty.ObjectVal(map[string]cty.Value{
		"value": cty.NumberFloatVal(value),
		"unit":  cty.StringVal(unit),
	})
}

// Has reports whether name is bound in the scope.
func (s *Scope) Has(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// Number returns the numeric value bound to name. The second return is false
// when the name is unbound or bound to a non-numeric value.
func (s *Scope) Number(name string) (float64, bool) {
	v, ok := s.vars[name]
	if !ok || v.Type() != cty.Number {
		return 0, false
	}
	f, _ := v.AsBigFloat().Float64()
	return f, true
}
