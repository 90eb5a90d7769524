// Package runner executes a batch of independent scenario variants
// concurrently on a bounded worker pool.
//
// Scenarios are embarrassingly parallel: no stock, flow or auxiliary object
// is ever touched by more than one worker, and the only shared structure is
// the pre-sized result slice, where each worker writes exclusively to its
// scenario's input-order index. The runner is the single point that catches
// per-scenario failures and converts them into failure records, so one bad
// formula never aborts or delays its siblings. There are no retries: formula
// and configuration errors are deterministic, so a retry would reproduce the
// identical failure.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/vk/stockflow/internal/ctxlog"
	"github.com/vk/stockflow/internal/engine"
	"github.com/vk/stockflow/internal/model"
)

// Status is the outcome of one scenario run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Scenario is one parameter-variant instance of a model submitted for
// execution. A non-nil Err marks a scenario whose config never materialized
// upstream (a malformed variation document, for example); it is reported as
// a failure without ever reaching the engine.
type Scenario struct {
	Label  string
	Config model.Config
	Err    error
}

// Result is one scenario's outcome. Exactly one of Series and Err is set.
type Result struct {
	Label  string
	Status Status
	Series *engine.Result
	Err    error
}

// Run executes every scenario to completion and returns one result per
// scenario, in input order. workers bounds the pool size; values <= 0 use
// the machine's parallelism. The context cancels in-flight runs between
// integration steps.
func Run(ctx context.Context, scenarios []Scenario, workers int) []Result {
	results := make([]Result, len(scenarios))
	if len(scenarios) == 0 {
		return results
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(scenarios) {
		workers = len(scenarios)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting scenario pool.", "scenarios", len(scenarios), "workers", workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = runOne(ctx, scenarios[idx])
			}
		}()
	}

	for i := range scenarios {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	logger.Debug("Scenario pool finished.")
	return results
}

// runOne executes a single scenario, converting every failure mode,
// panics included, into a failure record so siblings are unaffected.
func runOne(ctx context.Context, sc Scenario) (result Result) {
	logger := ctxlog.FromContext(ctx).With("scenario", sc.Label)
	result = Result{Label: sc.Label}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Scenario panicked.", "panic", r)
			result.Status = StatusFailure
			result.Series = nil
			result.Err = fmt.Errorf("scenario %q panicked: %v", sc.Label, r)
		}
	}()

	if sc.Err != nil {
		logger.Warn("Scenario rejected before execution.", "error", sc.Err)
		result.Status = StatusFailure
		result.Err = sc.Err
		return result
	}

	eng, err := engine.New(sc.Config)
	if err != nil {
		logger.Warn("Scenario failed at construction.", "error", err)
		result.Status = StatusFailure
		result.Err = err
		return result
	}

	series, err := eng.Run(ctx)
	if err != nil {
		logger.Warn("Scenario failed during simulation.", "error", err)
		result.Status = StatusFailure
		result.Err = err
		return result
	}

	logger.Info("Scenario completed.", "rows", len(series.Rows))
	result.Status = StatusSuccess
	result.Series = series
	return result
}
