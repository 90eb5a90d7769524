package model

// Direction tokens for flow connections.
const (
	DirectionInflow  = "inflow"
	DirectionOutflow = "outflow"
)

// ReservedTimeName is injected into every evaluation scope as the current
// simulation time. No entity or parameter may claim it.
const ReservedTimeName = "time"

// StockDef describes an accumulated quantity and its starting level.
type StockDef struct {
	Name         string  `json:"name" yaml:"name"`
	InitialValue float64 `json:"initial_value" yaml:"initial_value"`
	Unit         string  `json:"unit" yaml:"unit"`
}

// Parameter is a named constant available to formulas as NAME.value.
type Parameter struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  string  `json:"unit" yaml:"unit"`
}

// AuxDef describes a derived variable computed from a formula each step.
type AuxDef struct {
	Name    string `json:"name" yaml:"name"`
	Formula string `json:"formula" yaml:"formula"`
	Unit    string `json:"unit" yaml:"unit"`
}

// FlowDef describes a rate of change computed from a formula each step.
type FlowDef struct {
	Name    string `json:"name" yaml:"name"`
	Formula string `json:"formula" yaml:"formula"`
	Unit    string `json:"unit" yaml:"unit"`
}

// Connection attaches a flow to a stock as either an inflow or an outflow.
type Connection struct {
	Flow      string `json:"flow_name" yaml:"flow_name"`
	Stock     string `json:"stock_name" yaml:"stock_name"`
	Direction string `json:"direction" yaml:"direction"`
}

// ValueUnit pairs a numeric value with its unit of measurement.
type ValueUnit struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  string  `json:"unit" yaml:"unit"`
}

// Settings holds the time parameters of one simulation run.
type Settings struct {
	EndTime ValueUnit `json:"end_time" yaml:"end_time"`
	DT      ValueUnit `json:"dt" yaml:"dt"`
}

// Config is the declarative specification of one simulation model. Slice
// fields preserve declaration order, which also fixes the column order of
// the produced time series.
type Config struct {
	Stocks             []StockDef           `json:"stocks" yaml:"stocks"`
	Parameters         map[string]Parameter `json:"parameters" yaml:"parameters"`
	Auxiliaries        []AuxDef             `json:"auxiliaries" yaml:"auxiliaries"`
	Flows              []FlowDef            `json:"flows" yaml:"flows"`
	Connections        []Connection         `json:"flow_connections" yaml:"flow_connections"`
	Settings           Settings             `json:"simulation_settings" yaml:"simulation_settings"`
	ProblemDescription string               `json:"problem_description,omitempty" yaml:"problem_description,omitempty"`
}

// Clone returns a deep copy. Scenario variants derive from a shared base
// config, so each one must own its parameter map outright.
func (c Config) Clone() Config {
	out := c
	out.Stocks = append([]StockDef(nil), c.Stocks...)
	out.Auxiliaries = append([]AuxDef(nil), c.Auxiliaries...)
	out.Flows = append([]FlowDef(nil), c.Flows...)
	out.Connections = append([]Connection(nil), c.Connections...)
	out.Parameters = make(map[string]Parameter, len(c.Parameters))
	for name, p := range c.Parameters {
		out.Parameters[name] = p
	}
	return out
}

// Units returns the name-to-unit mapping for every stock, auxiliary, flow and
// parameter in the model. This static mapping is part of the output contract
// handed to downstream consumers alongside the time series.
func (c Config) Units() map[string]string {
	units := make(map[string]string)
	for _, s := range c.Stocks {
		units[s.Name] = s.Unit
	}
	for _, a := range c.Auxiliaries {
		units[a.Name] = a.Unit
	}
	for _, f := range c.Flows {
		units[f.Name] = f.Unit
	}
	for name, p := range c.Parameters {
		units[name] = p.Unit
	}
	return units
}
