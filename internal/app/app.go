// Package app wires the loader, scenario runner and result presentation
// into one application. Simulation results stay in memory and are written
// to the output writer; the app performs no other persistence.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/stockflow/internal/hclmodel"
	"github.com/vk/stockflow/internal/model"
	"github.com/vk/stockflow/internal/runner"
	"github.com/vk/stockflow/internal/variation"
)

// BaseScenarioLabel names the unmodified base configuration in every batch.
const BaseScenarioLabel = "base case"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logW   io.Writer
	logger *slog.Logger
}

// New constructs an App with its own isolated logger. Logs go to logW;
// result tables go to outW, so piping output stays clean.
func New(outW, logW io.Writer, cfg *Config) *App {
	return &App{
		outW:   outW,
		logW:   logW,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, logW),
	}
}

// loadScenarios assembles the ordered scenario batch: the base case first,
// then scenario blocks from the model files, then variations from the
// variations document. A variation that fails validation still occupies its
// slot, carrying the error, so the batch result count equals the request
// count.
func (a *App) loadScenarios(cfg *Config) (model.Config, []runner.Scenario, error) {
	base, fileScenarios, err := loadModel(cfg.ModelPath)
	if err != nil {
		return model.Config{}, nil, err
	}

	scenarios := []runner.Scenario{{Label: BaseScenarioLabel, Config: base}}
	appendVariation := func(v variation.Variation) {
		derived, err := variation.Apply(base, v)
		if err != nil {
			scenarios = append(scenarios, runner.Scenario{Label: v.ScenarioDescription, Err: err})
			return
		}
		scenarios = append(scenarios, runner.Scenario{Label: v.ScenarioDescription, Config: derived})
	}

	for _, v := range fileScenarios {
		appendVariation(v)
	}

	if cfg.VariationsPath != "" {
		data, err := os.ReadFile(cfg.VariationsPath)
		if err != nil {
			return model.Config{}, nil, fmt.Errorf("reading variations: %w", err)
		}
		doc, err := variation.Parse(data)
		if err != nil {
			return model.Config{}, nil, err
		}
		for _, v := range doc.Variations {
			appendVariation(v)
		}
	}

	a.logger.Debug("Scenario batch assembled.", "count", len(scenarios))
	return base, scenarios, nil
}

// loadModel picks the loader by extension: .json for upstream-generated
// configs, .hcl (or a directory of them) for hand-written models.
func loadModel(path string) (model.Config, []variation.Variation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Config{}, nil, fmt.Errorf("model path: %w", err)
	}

	if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return model.Config{}, nil, fmt.Errorf("reading model config: %w", err)
		}
		cfg, err := model.ParseJSON(data)
		if err != nil {
			return model.Config{}, nil, err
		}
		return cfg, nil, nil
	}

	bundle, err := hclmodel.Load(path)
	if err != nil {
		return model.Config{}, nil, err
	}
	return bundle.Base, bundle.Scenarios, nil
}
