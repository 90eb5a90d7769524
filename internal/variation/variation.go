// Package variation handles parameter-variation documents: the scenario
// definitions an upstream generator derives from a base model.
//
// A document lists named variations, each carrying replacement values for
// some or all of the base model's parameters. Documents arrive as YAML or
// JSON (YAML being a superset, one parser covers both). Validation is
// strict: a variation may only touch parameters the base model defines, and
// units are fixed by the base model. A variation that fails validation is a
// collaborator error and is surfaced to the runner as a scenario that never
// reaches the engine.
package variation

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vk/stockflow/internal/model"
)

// Variation is one named set of parameter replacements.
type Variation struct {
	ScenarioDescription string                     `yaml:"scenario_description" json:"scenario_description"`
	Parameters          map[string]model.Parameter `yaml:"parameters" json:"parameters"`
}

// Document is the top-level shape of a variations file.
type Document struct {
	Variations []Variation `yaml:"variations" json:"variations"`
}

// Parse decodes a variations document from YAML or JSON bytes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding variations document: %w", err)
	}
	for i, v := range doc.Variations {
		if v.ScenarioDescription == "" {
			return nil, fmt.Errorf("variation %d: missing scenario_description", i)
		}
	}
	return &doc, nil
}

// Apply derives a scenario config from the base by replacing parameter
// values. The base is deep-copied, never mutated. Parameters the variation
// does not mention keep their base values; parameters the base does not
// define, or whose unit the variation tries to change, are errors.
func Apply(base model.Config, v Variation) (model.Config, error) {
	cfg := base.Clone()
	for name, p := range v.Parameters {
		baseParam, ok := cfg.Parameters[name]
		if !ok {
			return model.Config{}, fmt.Errorf("variation %q: parameter %q not defined in base model", v.ScenarioDescription, name)
		}
		if p.Unit != "" && p.Unit != baseParam.Unit {
			return model.Config{}, fmt.Errorf("variation %q: parameter %q: unit %q does not match base unit %q",
				v.ScenarioDescription, name, p.Unit, baseParam.Unit)
		}
		baseParam.Value = p.Value
		cfg.Parameters[name] = baseParam
	}
	return cfg, nil
}
