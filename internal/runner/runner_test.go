package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stockflow/internal/engine"
	"github.com/vk/stockflow/internal/model"
)

func scenarioConfig(inflowFormula string) model.Config {
	return model.Config{
		Stocks: []model.StockDef{
			{Name: "Capital", InitialValue: 100, Unit: "USD"},
		},
		Flows: []model.FlowDef{
			{Name: "Inflow", Formula: inflowFormula, Unit: "USD/day"},
		},
		Connections: []model.Connection{
			{Flow: "Inflow", Stock: "Capital", Direction: model.DirectionInflow},
		},
		Settings: model.Settings{
			EndTime: model.ValueUnit{Value: 3, Unit: "days"},
			DT:      model.ValueUnit{Value: 1, Unit: "days"},
		},
	}
}

func TestRunPreservesInputOrder(t *testing.T) {
	var scenarios []Scenario
	for i := 0; i < 20; i++ {
		scenarios = append(scenarios, Scenario{
			Label:  fmt.Sprintf("scenario %d", i),
			Config: scenarioConfig(fmt.Sprintf("%d", i)),
		})
	}

	results := Run(context.Background(), scenarios, 4)
	require.Len(t, results, len(scenarios))

	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("scenario %d", i), res.Label)
		require.Equal(t, StatusSuccess, res.Status)

		// inflow rate i for 3 steps on top of the initial 100
		capital, ok := res.Series.Column("Capital")
		require.True(t, ok)
		assert.Equal(t, 100+float64(i)*3, capital[len(capital)-1])
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	scenarios := []Scenario{
		{Label: "good", Config: scenarioConfig("10")},
		{Label: "bad formula", Config: scenarioConfig("Capital * Missing")},
		{Label: "also good", Config: scenarioConfig("5")},
	}

	results := Run(context.Background(), scenarios, 2)
	require.Len(t, results, 3)

	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusSuccess, results[2].Status)

	require.Equal(t, StatusFailure, results[1].Status)
	assert.Nil(t, results[1].Series)
	var simErr *engine.SimulationError
	assert.ErrorAs(t, results[1].Err, &simErr)
}

func TestRunReportsConstructionFailures(t *testing.T) {
	cfg := scenarioConfig("10")
	cfg.Settings.DT.Value = 0

	results := Run(context.Background(), []Scenario{{Label: "broken config", Config: cfg}}, 1)
	require.Len(t, results, 1)

	assert.Equal(t, StatusFailure, results[0].Status)
	var cfgErr *model.ConfigError
	assert.ErrorAs(t, results[0].Err, &cfgErr)
}

func TestRunReportsUpstreamRejections(t *testing.T) {
	rejected := errors.New("unknown parameter \"RATE\"")
	scenarios := []Scenario{
		{Label: "rejected", Err: rejected},
		{Label: "fine", Config: scenarioConfig("1")},
	}

	results := Run(context.Background(), scenarios, 2)
	require.Len(t, results, 2)

	assert.Equal(t, StatusFailure, results[0].Status)
	assert.ErrorIs(t, results[0].Err, rejected)
	assert.Equal(t, StatusSuccess, results[1].Status)
}

// gateContext blocks every Err call until `need` callers are inside it at
// the same time, then lets them all through. The engine polls Err before
// each step, so a batch only gets past the gate if that many scenarios are
// genuinely in flight at once. The timer opens the gate anyway after the
// deadline so a failing run finishes instead of hanging; TimedOut records
// that the required concurrency was never reached.
type gateContext struct {
	context.Context
	mu       sync.Mutex
	cond     *sync.Cond
	waiting  int
	need     int
	opened   bool
	timedOut bool
}

func newGateContext(need int, deadline time.Duration) *gateContext {
	g := &gateContext{Context: context.Background(), need: need}
	g.cond = sync.NewCond(&g.mu)
	time.AfterFunc(deadline, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if !g.opened {
			g.timedOut = true
			g.opened = true
			g.cond.Broadcast()
		}
	})
	return g
}

func (g *gateContext) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.opened {
		return nil
	}
	g.waiting++
	if g.waiting >= g.need {
		g.opened = true
		g.cond.Broadcast()
		return nil
	}
	for !g.opened {
		g.cond.Wait()
	}
	return nil
}

func (g *gateContext) TimedOut() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timedOut
}

func TestRunExecutesScenariosConcurrently(t *testing.T) {
	const n = 4
	gate := newGateContext(n, 5*time.Second)

	var scenarios []Scenario
	for i := 0; i < n; i++ {
		scenarios = append(scenarios, Scenario{
			Label:  fmt.Sprintf("scenario %d", i),
			Config: scenarioConfig("1"),
		})
	}

	results := Run(gate, scenarios, n)

	assert.False(t, gate.TimedOut(), "expected all %d scenarios in flight at once", n)
	require.Len(t, results, n)
	for _, res := range results {
		assert.Equal(t, StatusSuccess, res.Status)
	}
}

func TestRunWithMoreWorkersThanScenarios(t *testing.T) {
	results := Run(context.Background(), []Scenario{{Label: "only", Config: scenarioConfig("1")}}, 16)
	require.Len(t, results, 1)
	assert.Equal(t, StatusSuccess, results[0].Status)
}

func TestRunDefaultsWorkerCount(t *testing.T) {
	scenarios := []Scenario{
		{Label: "a", Config: scenarioConfig("1")},
		{Label: "b", Config: scenarioConfig("2")},
	}
	results := Run(context.Background(), scenarios, 0)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, StatusSuccess, res.Status)
	}
}

func TestRunEmptyBatch(t *testing.T) {
	assert.Empty(t, Run(context.Background(), nil, 4))
}
