// Package diagram renders a model configuration as a Mermaid graph for
// quick visual inspection. Rendering is the caller's concern; this package
// only produces the fenced Mermaid source text.
package diagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/stockflow/internal/eval"
	"github.com/vk/stockflow/internal/model"
)

// Mermaid returns a Mermaid graph of the model: stocks, auxiliaries,
// parameters and flows as styled nodes, flow connections as animated edges,
// and formula references as dashed influence edges.
func Mermaid(cfg model.Config) string {
	var b strings.Builder
	b.WriteString("```mermaid\n")
	b.WriteString("graph LR\n")

	for _, s := range cfg.Stocks {
		fmt.Fprintf(&b, "  %s[\"STOCK: %s (%s)\"]\n", s.Name, s.Name, s.Unit)
		fmt.Fprintf(&b, "  class %s stockNode\n", s.Name)
	}
	for _, a := range cfg.Auxiliaries {
		fmt.Fprintf(&b, "  %s>\"AUX: %s (%s)\"]\n", a.Name, a.Name, a.Unit)
		fmt.Fprintf(&b, "  class %s auxNode\n", a.Name)
	}
	for _, f := range cfg.Flows {
		fmt.Fprintf(&b, "  %s[[\"FLOW: %s (%s)\"]]\n", f.Name, f.Name, f.Unit)
		fmt.Fprintf(&b, "  class %s flowNode\n", f.Name)
	}
	paramNames := sortedParamNames(cfg)
	for _, name := range paramNames {
		fmt.Fprintf(&b, "  %s[(\"PARAM: %s (%s)\")]\n", name, name, cfg.Parameters[name].Unit)
		fmt.Fprintf(&b, "  class %s paramNode\n", name)
	}

	for i, conn := range cfg.Connections {
		edge := i + 1
		if conn.Direction == model.DirectionInflow {
			fmt.Fprintf(&b, "  %s e%d@==>|\"inflow\"| %s:::animated\n", conn.Flow, edge, conn.Stock)
		} else {
			fmt.Fprintf(&b, "  %s e%d@==>|\"outflow\"| %s:::animated\n", conn.Stock, edge, conn.Flow)
		}
		fmt.Fprintf(&b, "  e%d@{ animate: true }\n", edge)
	}

	writeInfluenceEdges(&b, cfg)

	b.WriteString("  classDef stockNode fill:#FFD700,stroke:#B8860B,stroke-width:4px,color:#000,font-weight:bold\n")
	b.WriteString("  classDef flowNode fill:#87CEEB,stroke:#4682B4,stroke-width:2px,color:#000\n")
	b.WriteString("  classDef auxNode fill:#B0E57C,stroke:#228B22,stroke-width:2px,color:#000\n")
	b.WriteString("  classDef paramNode fill:#E0E0E0,stroke:#888,stroke-width:1px,color:#666\n")
	b.WriteString("  classDef animated stroke-dasharray: 5 5\n")
	b.WriteString("```\n")
	return b.String()
}

// writeInfluenceEdges draws a dashed edge from every name a formula
// references to the auxiliary or flow carrying that formula. References come
// from the evaluator's parser; a formula it cannot parse simply contributes
// no edges here (it will fail properly at engine construction).
func writeInfluenceEdges(b *strings.Builder, cfg model.Config) {
	kinds := make(map[string]string)
	for _, s := range cfg.Stocks {
		kinds[s.Name] = "stock"
	}
	for _, a := range cfg.Auxiliaries {
		kinds[a.Name] = "auxiliary"
	}
	for _, f := range cfg.Flows {
		kinds[f.Name] = "flow"
	}
	for name := range cfg.Parameters {
		kinds[name] = "parameter"
	}

	emit := func(target, formula string) {
		expr, err := eval.Parse(formula)
		if err != nil {
			return
		}
		for _, ref := range expr.References() {
			switch kinds[ref] {
			case "stock":
				fmt.Fprintf(b, "  %s --- %s\n", ref, target)
			case "parameter", "auxiliary", "flow":
				fmt.Fprintf(b, "  %s -.-> %s\n", ref, target)
			}
		}
	}

	for _, a := range cfg.Auxiliaries {
		emit(a.Name, a.Formula)
	}
	for _, f := range cfg.Flows {
		emit(f.Name, f.Formula)
	}
}

func sortedParamNames(cfg model.Config) []string {
	names := make([]string, 0, len(cfg.Parameters))
	for name := range cfg.Parameters {
		names = append(names, name)
	}
	// Map iteration order is random; the diagram should not be.
	sort.Strings(names)
	return names
}
