// Package harness runs the FundMe unit and staging check suites against a
// deployed contract and records their results.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gateway-fm/fundme/internal/gasreport"
	"github.com/gateway-fm/fundme/internal/metrics"
	"github.com/gateway-fm/fundme/internal/network"
	"github.com/gateway-fm/fundme/internal/storage"
)

// Options configures Run.
type Options struct {
	Suite   Suite
	Profile *network.Profile
	Fixture Fixture
	// Filter keeps only checks whose name contains it.
	Filter string

	// Runs and GasSamples are optional.
	Runs       storage.RunStore
	GasSamples storage.GasStore
	Gas        *gasreport.Collector
	Metrics    *metrics.PrometheusMetrics
	Logger     *slog.Logger
}

// Summary is the outcome of a run.
type Summary struct {
	RunID    string
	Suite    string
	Network  string
	Status   storage.RunStatus
	Passed   int
	Failed   int
	Skipped  int
	Results  []storage.CheckResult
	Duration time.Duration
}

// OK reports whether no check failed.
func (s *Summary) OK() bool {
	return s.Failed == 0
}

// Run executes every check of the suite against a fresh Env from the
// fixture. The returned error covers bookkeeping failures only; failed
// checks are reported in the Summary.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Profile == nil {
		return nil, fmt.Errorf("network profile is required")
	}
	if opts.Fixture == nil {
		return nil, fmt.Errorf("fixture is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	started := time.Now().UTC()
	run := &storage.Run{
		ID:        uuid.NewString(),
		Suite:     opts.Suite.Name,
		Network:   opts.Profile.Name,
		ChainID:   opts.Profile.ChainID,
		StartedAt: started,
		Status:    storage.RunStatusRunning,
	}
	if opts.Runs != nil {
		if err := opts.Runs.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}
	logger.Info("Running suite",
		slog.String("suite", opts.Suite.Name),
		slog.String("network", opts.Profile.Name),
		slog.String("run_id", run.ID),
	)

	skipReason := ""
	if opts.Suite.Development != opts.Profile.Development {
		kind := "public"
		if opts.Suite.Development {
			kind = "development"
		}
		skipReason = fmt.Sprintf("%s suite only runs on %s networks", opts.Suite.Name, kind)
	}

	for _, c := range opts.Suite.Checks {
		if opts.Filter != "" && !strings.Contains(c.Name, opts.Filter) {
			continue
		}
		var result storage.CheckResult
		if skipReason != "" {
			result = storage.CheckResult{Name: c.Name, Skipped: true, Error: skipReason}
		} else {
			result = runCheck(ctx, opts.Fixture, c)
		}

		switch {
		case result.Skipped:
			run.Skipped++
			logger.Debug("skipped", slog.String("check", c.Name))
		case result.Passed:
			run.Passed++
			logger.Info("passed", slog.String("check", c.Name), slog.Int64("duration_ms", result.DurationMs))
		default:
			run.Failed++
			logger.Error("failed", slog.String("check", c.Name), slog.String("error", result.Error))
		}
		opts.Metrics.RecordCheck(opts.Suite.Name, result.Passed, result.Skipped)
		run.Results = append(run.Results, result)

		if err := ctx.Err(); err != nil {
			run.ErrorMessage = err.Error()
			break
		}
	}

	completed := time.Now().UTC()
	run.CompletedAt = &completed
	switch {
	case run.ErrorMessage != "":
		run.Status = storage.RunStatusError
	case run.Failed > 0:
		run.Status = storage.RunStatusFailed
	default:
		run.Status = storage.RunStatusPassed
	}

	if opts.Runs != nil {
		if err := opts.Runs.CompleteRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to complete run: %w", err)
		}
	}
	if opts.GasSamples != nil && opts.Gas != nil {
		if err := opts.GasSamples.BulkInsertGasSamples(ctx, run.ID, opts.Gas.Samples()); err != nil {
			return nil, fmt.Errorf("failed to record gas samples: %w", err)
		}
	}

	summary := &Summary{
		RunID:    run.ID,
		Suite:    run.Suite,
		Network:  run.Network,
		Status:   run.Status,
		Passed:   run.Passed,
		Failed:   run.Failed,
		Skipped:  run.Skipped,
		Results:  run.Results,
		Duration: completed.Sub(started),
	}
	logger.Info("Suite finished",
		slog.String("suite", summary.Suite),
		slog.String("status", string(summary.Status)),
		slog.Int("passed", summary.Passed),
		slog.Int("failed", summary.Failed),
		slog.Int("skipped", summary.Skipped),
		slog.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func runCheck(ctx context.Context, fx Fixture, c Check) storage.CheckResult {
	start := time.Now()
	result := storage.CheckResult{Name: c.Name}

	env, err := fx.Setup(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("fixture: %v", err)
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}
	defer env.Close()

	t := newT(c.Name)
	t.run(func() { c.Run(ctx, t, env) })

	result.DurationMs = time.Since(start).Milliseconds()
	switch {
	case t.Skipped():
		result.Skipped = true
		result.Error = t.skip
	case t.Failed():
		result.Error = t.err().Error()
	default:
		result.Passed = true
	}
	return result
}
