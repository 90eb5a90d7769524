package app

import (
	"context"
	"fmt"

	"github.com/vk/stockflow/internal/ctxlog"
	"github.com/vk/stockflow/internal/diagram"
	"github.com/vk/stockflow/internal/runner"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	base, scenarios, err := a.loadScenarios(cfg)
	if err != nil {
		return fmt.Errorf("failed to load scenario batch: %w", err)
	}

	if cfg.ShowDiagram {
		fmt.Fprintln(a.outW, diagram.Mermaid(base))
	}

	a.logger.Info("Running scenarios.", "count", len(scenarios), "workers", cfg.WorkerCount)
	results := runner.Run(ctx, scenarios, cfg.WorkerCount)
	a.logger.Info("All scenarios finished.")

	a.writeResults(results, cfg.TableRows)

	failed := 0
	for _, res := range results {
		if res.Status == runner.StatusFailure {
			failed++
		}
	}
	if failed == len(results) && len(results) > 0 {
		return fmt.Errorf("all %d scenarios failed", failed)
	}

	a.logger.Debug("App.Run method finished.", "failed", failed)
	return nil
}
