// Package hclmodel loads simulation models written by hand in HCL and
// translates them into the same model.Config the JSON contract produces.
// One model may be split across several .hcl files in a directory; blocks
// are merged in stable file order.
package hclmodel

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/stockflow/internal/fsutil"
	"github.com/vk/stockflow/internal/model"
	"github.com/vk/stockflow/internal/variation"
)

// Bundle is the result of loading a model path: the base configuration plus
// any scenario variants declared alongside it.
type Bundle struct {
	Base      model.Config
	Scenarios []variation.Variation
}

// fileRoot describes the top-level blocks a model file may contain.
type fileRoot struct {
	Stocks      []*stockBlock     `hcl:"stock,block"`
	Parameters  []*parameterBlock `hcl:"parameter,block"`
	Auxiliaries []*auxiliaryBlock `hcl:"auxiliary,block"`
	Flows       []*flowBlock      `hcl:"flow,block"`
	Connections []*connBlock      `hcl:"connection,block"`
	Simulation  *simulationBlock  `hcl:"simulation,block"`
	Scenarios   []*scenarioBlock  `hcl:"scenario,block"`
}

type stockBlock struct {
	Name    string  `hcl:"name,label"`
	Initial float64 `hcl:"initial"`
	Unit    string  `hcl:"unit"`
}

type parameterBlock struct {
	Name  string  `hcl:"name,label"`
	Value float64 `hcl:"value"`
	Unit  string  `hcl:"unit,optional"`
}

type auxiliaryBlock struct {
	Name    string `hcl:"name,label"`
	Formula string `hcl:"formula"`
	Unit    string `hcl:"unit"`
}

type flowBlock struct {
	Name    string `hcl:"name,label"`
	Formula string `hcl:"formula"`
	Unit    string `hcl:"unit"`
}

type connBlock struct {
	Flow      string `hcl:"flow"`
	Stock     string `hcl:"stock"`
	Direction string `hcl:"direction"`
}

type valueUnitBlock struct {
	Value float64 `hcl:"value"`
	Unit  string  `hcl:"unit"`
}

type simulationBlock struct {
	EndTime *valueUnitBlock `hcl:"end_time,block"`
	DT      *valueUnitBlock `hcl:"dt,block"`
}

type scenarioBlock struct {
	Label      string            `hcl:"name,label"`
	Parameters []*parameterBlock `hcl:"parameter,block"`
}

// Load reads a single .hcl file or a directory of them and translates the
// merged blocks into a Bundle. The resulting config is decoded only, not
// validated; the engine validates on construction.
func Load(path string) (*Bundle, error) {
	files, err := discover(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl model files found under %s", path)
	}

	parser := hclparse.NewParser()
	bundle := &Bundle{}
	bundle.Base.Parameters = make(map[string]model.Parameter)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing model file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("decoding model file %s: %w", file, diags)
		}

		if err := merge(bundle, &root, file); err != nil {
			return nil, err
		}
	}

	return bundle, nil
}

func discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("model path: %w", err)
	}
	if info.IsDir() {
		return fsutil.FindFilesByExtension(path, ".hcl")
	}
	return []string{path}, nil
}

func merge(bundle *Bundle, root *fileRoot, file string) error {
	for _, s := range root.Stocks {
		bundle.Base.Stocks = append(bundle.Base.Stocks, model.StockDef{
			Name: s.Name, InitialValue: s.Initial, Unit: s.Unit,
		})
	}
	for _, p := range root.Parameters {
		if _, ok := bundle.Base.Parameters[p.Name]; ok {
			return fmt.Errorf("%s: parameter %q declared more than once", file, p.Name)
		}
		bundle.Base.Parameters[p.Name] = model.Parameter{Value: p.Value, Unit: p.Unit}
	}
	for _, a := range root.Auxiliaries {
		bundle.Base.Auxiliaries = append(bundle.Base.Auxiliaries, model.AuxDef{
			Name: a.Name, Formula: a.Formula, Unit: a.Unit,
		})
	}
	for _, f := range root.Flows {
		bundle.Base.Flows = append(bundle.Base.Flows, model.FlowDef{
			Name: f.Name, Formula: f.Formula, Unit: f.Unit,
		})
	}
	for _, c := range root.Connections {
		bundle.Base.Connections = append(bundle.Base.Connections, model.Connection{
			Flow: c.Flow, Stock: c.Stock, Direction: c.Direction,
		})
	}

	if root.Simulation != nil {
		if bundle.Base.Settings.DT.Value != 0 || bundle.Base.Settings.EndTime.Value != 0 {
			return fmt.Errorf("%s: duplicate simulation block", file)
		}
		if root.Simulation.EndTime == nil || root.Simulation.DT == nil {
			return fmt.Errorf("%s: simulation block needs both end_time and dt", file)
		}
		bundle.Base.Settings = model.Settings{
			EndTime: model.ValueUnit(*root.Simulation.EndTime),
			DT:      model.ValueUnit(*root.Simulation.DT),
		}
	}

	for _, sc := range root.Scenarios {
		v := variation.Variation{
			ScenarioDescription: sc.Label,
			Parameters:          make(map[string]model.Parameter, len(sc.Parameters)),
		}
		for _, p := range sc.Parameters {
			v.Parameters[p.Name] = model.Parameter{Value: p.Value, Unit: p.Unit}
		}
		bundle.Scenarios = append(bundle.Scenarios, v)
	}

	return nil
}
