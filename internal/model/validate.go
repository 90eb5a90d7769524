package model

import "fmt"

// ConfigError reports a structural problem in a model configuration. It is
// raised at engine construction and is fatal to that scenario only.
type ConfigError struct {
	Entity string // "stock", "parameter", "auxiliary", "flow", "connection", "settings"
	Name   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid model config: %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid model config: %s %q: %s", e.Entity, e.Name, e.Reason)
}

// Validate performs the structural checks the engine relies on: globally
// unique names, positive dt, non-negative end time and initial stock values,
// and connections that reference defined flows and stocks with a valid
// direction token. It does not judge domain plausibility.
func (c Config) Validate() error {
	seen := make(map[string]string) // name -> entity kind

	claim := func(kind, name string) *ConfigError {
		if name == "" {
			return &ConfigError{Entity: kind, Reason: "empty name"}
		}
		if name == ReservedTimeName {
			return &ConfigError{Entity: kind, Name: name, Reason: "name is reserved for the simulation clock"}
		}
		if prev, ok := seen[name]; ok {
			return &ConfigError{Entity: kind, Name: name, Reason: fmt.Sprintf("name already used by a %s", prev)}
		}
		seen[name] = kind
		return nil
	}

	for _, s := range c.Stocks {
		if err := claim("stock", s.Name); err != nil {
			return err
		}
		if s.InitialValue < 0 {
			return &ConfigError{Entity: "stock", Name: s.Name, Reason: "initial value must not be negative"}
		}
	}
	for name := range c.Parameters {
		if err := claim("parameter", name); err != nil {
			return err
		}
	}
	for _, a := range c.Auxiliaries {
		if err := claim("auxiliary", a.Name); err != nil {
			return err
		}
	}
	for _, f := range c.Flows {
		if err := claim("flow", f.Name); err != nil {
			return err
		}
	}

	for _, conn := range c.Connections {
		if kind := seen[conn.Flow]; kind != "flow" {
			return &ConfigError{Entity: "connection", Name: conn.Flow, Reason: "references an undefined flow"}
		}
		if kind := seen[conn.Stock]; kind != "stock" {
			return &ConfigError{Entity: "connection", Name: conn.Stock, Reason: "references an undefined stock"}
		}
		if conn.Direction != DirectionInflow && conn.Direction != DirectionOutflow {
			return &ConfigError{
				Entity: "connection",
				Name:   conn.Flow,
				Reason: fmt.Sprintf("direction must be %q or %q, got %q", DirectionInflow, DirectionOutflow, conn.Direction),
			}
		}
	}

	if c.Settings.DT.Value <= 0 {
		return &ConfigError{Entity: "settings", Name: "dt", Reason: "must be greater than zero"}
	}
	if c.Settings.EndTime.Value < 0 {
		return &ConfigError{Entity: "settings", Name: "end_time", Reason: "must not be negative"}
	}

	return nil
}
