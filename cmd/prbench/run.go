package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"prbench/internal/client"
	"prbench/internal/config"
	"prbench/internal/report"
	"prbench/internal/runner"
	"prbench/internal/sequence"
)

// runIterativeMode drives single-item round trips, one per input value,
// until the iteration count is reached or the sequence runs out. The
// summary prints whatever completed, early stops included.
func runIterativeMode(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	runID := uuid.NewString()
	cli := client.New(cfg.Host, cfg.Port, cfg.Policy, cfg.Timeout, logger)
	logger.Info("starting run",
		zap.String("run_id", runID),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("policy", cfg.Policy),
		zap.Int("iterations", cfg.Iterations))

	var agg report.Aggregator
	current := cfg.StartData
	width := len(cfg.StartData)
	start := time.Now()

	for i := 1; i <= cfg.Iterations; i++ {
		result, err := runIterationSafely(ctx, cli, current)
		if err != nil {
			// Per-iteration failures are absorbed; the loop moves on.
			if cfg.Verbose {
				logger.Error("error in iteration", zap.Int("iteration", i), zap.Error(err), zap.Stack("stack"))
			} else {
				logger.Error("error in iteration", zap.Int("iteration", i), zap.Error(err))
			}
		} else {
			agg.Add(result)
			if cfg.ShowProgress {
				logger.Info(fmt.Sprintf("#%03d data=%s time=%.4fs protect_status=%d reveal_status=%d match=%v",
					i, current, result.Elapsed.Seconds(),
					result.ProtectResponse.StatusCode, result.RevealResponse.StatusCode, result.Match()))
			}
			if cfg.ShowBodies {
				printIterationBodies(cfg.Policy, result)
			}
		}

		next, err := sequence.Increment(current)
		if err != nil {
			if errors.Is(err, sequence.ErrNotNumeric) {
				logger.Error("data is not numeric; stopping iterations", zap.String("data", current))
			} else {
				logger.Error("unexpected error advancing sequence", zap.Error(err))
			}
			break
		}
		if len(next) != width {
			// The sequence outgrew the starting width; the fixed-width
			// invariant ends the run rather than silently resizing.
			logger.Info("sequence width exhausted; stopping iterations",
				zap.String("data", current), zap.Int("width", width))
			break
		}
		current = next
	}

	agg.PrintSummary(logger, runID, time.Since(start))
	return nil
}

// runIterationSafely shields the loop from programming errors in the
// normalizer: a panic becomes an error for this iteration only.
func runIterationSafely(ctx context.Context, api runner.API, data string) (result runner.IterationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("iteration failed: %v", r)
		}
	}()
	return runner.RunIteration(ctx, api, data), nil
}

// runBulkMode materializes the input sequence up front, then drives batches
// through the bulk endpoints.
func runBulkMode(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	runID := uuid.NewString()
	cli := client.New(cfg.Host, cfg.Port, cfg.Policy, cfg.Timeout, logger)
	logger.Info("starting bulk run",
		zap.String("run_id", runID),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("policy", cfg.Policy),
		zap.Int("iterations", cfg.Iterations),
		zap.Int("batch_size", cfg.BatchSize))

	inputs := buildInputs(cfg.StartData, cfg.Iterations, logger)

	var agg report.BulkAggregator
	start := time.Now()
	results := runner.RunBulk(ctx, cli, inputs, cfg.BatchSize)
	wallClock := time.Since(start)
	agg.AddAll(results)

	if cfg.ShowBodies {
		for idx, batch := range results {
			printBatchBodies(idx+1, batch)
		}
	}

	agg.PrintSummary(logger, runID, wallClock)
	return nil
}

// buildInputs collects up to n successive values starting at start. A
// non-numeric value or width overflow ends the sequence early; whatever was
// collected still runs.
func buildInputs(start string, n int, logger *zap.Logger) []string {
	inputs := make([]string, 0, n)
	current := start
	width := len(start)
	for i := 0; i < n; i++ {
		inputs = append(inputs, current)
		next, err := sequence.Increment(current)
		if err != nil {
			logger.Warn("sequence ended early", zap.String("data", current), zap.Error(err))
			break
		}
		if len(next) != width {
			logger.Warn("sequence width exhausted", zap.String("data", current), zap.Int("width", width))
			break
		}
		current = next
	}
	return inputs
}

// printIterationBodies pretty-prints the request payloads and response
// bodies of one round trip to stdout.
func printIterationBodies(policy string, r runner.IterationResult) {
	fmt.Println("sent protect payload:")
	fmt.Println(prettyJSON(map[string]any{"protection_policy_name": policy, "data": r.Data}))
	fmt.Println("received protect body:")
	fmt.Println(prettyJSON(r.ProtectResponse.Body))
	fmt.Println("sent reveal payload:")
	fmt.Println(prettyJSON(map[string]any{"protection_policy_name": policy, "protected_data": r.Token}))
	fmt.Println("received reveal body:")
	fmt.Println(prettyJSON(r.RevealResponse.Body))
}

// printBatchBodies pretty-prints a per-batch JSON block to stdout. The
// block carries the vendor-style count fields; when the server's body
// already holds status or counts those win over the synthesized values.
func printBatchBodies(idx int, b runner.BulkResult) {
	out := map[string]any{
		"batch":   idx,
		"protect": batchSideObject(b.ProtectResponse, len(b.Inputs), b.Tokens, "protected_data_array", "protected_data"),
		"reveal":  batchSideObject(b.RevealResponse, len(b.Inputs), b.Restored, "data_array", "data"),
		"time_s":  b.Elapsed.Seconds(),
	}
	fmt.Println(prettyJSON(out))
}

// batchSideObject synthesizes the display object for one side (protect or
// reveal) of a batch.
func batchSideObject(resp client.Response, inputCount int, values []string, arrayKey, itemKey string) map[string]any {
	status := "Error"
	if resp.IsSuccess() {
		status = "Success"
	}
	errorCount := inputCount - len(values)
	if errorCount < 0 {
		errorCount = 0
	}

	obj := map[string]any{
		"status":        status,
		"total_count":   inputCount,
		"success_count": len(values),
		"error_count":   errorCount,
	}
	// Counts the server actually returned take precedence.
	if body := resp.BodyMap(); body != nil {
		for _, key := range []string{"status", "total_count", "success_count", "error_count"} {
			if v, present := body[key]; present {
				obj[key] = v
			}
		}
	}

	arr := make([]map[string]any, 0, len(values))
	for _, v := range values {
		arr = append(arr, map[string]any{itemKey: v})
	}
	obj[arrayKey] = arr
	return obj
}

func prettyJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
