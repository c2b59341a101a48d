// Package report accumulates run results into summary statistics and prints
// them. Summaries are always printed, including after an early stop, so the
// report reflects exactly what was attempted.
package report

import (
	"time"

	"go.uber.org/zap"

	"prbench/internal/runner"
)

// Aggregator collects single-item iteration results.
type Aggregator struct {
	results []runner.IterationResult
}

// Add records one iteration result.
func (a *Aggregator) Add(r runner.IterationResult) {
	a.results = append(a.results, r)
}

// Attempted returns the number of iterations recorded.
func (a *Aggregator) Attempted() int {
	return len(a.results)
}

// Successful returns the number of iterations where both calls were 2xx.
func (a *Aggregator) Successful() int {
	n := 0
	for _, r := range a.results {
		if r.Success() {
			n++
		}
	}
	return n
}

// Matched returns the number of iterations where the revealed value equaled
// the input.
func (a *Aggregator) Matched() int {
	n := 0
	for _, r := range a.results {
		if r.Match() {
			n++
		}
	}
	return n
}

// AverageElapsed returns the arithmetic mean of per-iteration elapsed time,
// zero when nothing was recorded.
func (a *Aggregator) AverageElapsed() time.Duration {
	if len(a.results) == 0 {
		return 0
	}
	var sum time.Duration
	for _, r := range a.results {
		sum += r.Elapsed
	}
	return sum / time.Duration(len(a.results))
}

// PrintSummary logs the iterative-mode summary. total is the wall-clock
// duration of the whole loop, measured by the caller.
func (a *Aggregator) PrintSummary(logger *zap.Logger, runID string, total time.Duration) {
	logger.Info("summary",
		zap.String("run_id", runID),
		zap.Int("iterations_attempted", a.Attempted()),
		zap.Int("successful_both_2xx", a.Successful()),
		zap.Int("revealed_matched_input", a.Matched()),
		zap.Duration("total_time", total),
		zap.Duration("avg_iteration_time", a.AverageElapsed()),
	)
}

// BulkAggregator collects per-batch results.
type BulkAggregator struct {
	results []runner.BulkResult
}

// Add records one batch result.
func (a *BulkAggregator) Add(b runner.BulkResult) {
	a.results = append(a.results, b)
}

// AddAll records a slice of batch results.
func (a *BulkAggregator) AddAll(batches []runner.BulkResult) {
	a.results = append(a.results, batches...)
}

// Batches returns the number of batches recorded.
func (a *BulkAggregator) Batches() int {
	return len(a.results)
}

// Items returns the total number of input items across all batches.
func (a *BulkAggregator) Items() int {
	n := 0
	for _, b := range a.results {
		n += len(b.Inputs)
	}
	return n
}

// Matched returns the total positional match count across all batches.
func (a *BulkAggregator) Matched() int {
	n := 0
	for _, b := range a.results {
		n += b.Matches()
	}
	return n
}

// SummedBatchTime returns the sum of individual batch durations. This is
// distinct from the wall-clock total the caller measures around the whole
// run; per-item averages are based on this sum, mirroring how iterative
// mode averages per-iteration times.
func (a *BulkAggregator) SummedBatchTime() time.Duration {
	var sum time.Duration
	for _, b := range a.results {
		sum += b.Elapsed
	}
	return sum
}

// AverageBatchTime returns SummedBatchTime divided by the batch count.
func (a *BulkAggregator) AverageBatchTime() time.Duration {
	if len(a.results) == 0 {
		return 0
	}
	return a.SummedBatchTime() / time.Duration(len(a.results))
}

// AveragePerItemTime returns SummedBatchTime divided by the total item
// count.
func (a *BulkAggregator) AveragePerItemTime() time.Duration {
	items := a.Items()
	if items == 0 {
		return 0
	}
	return a.SummedBatchTime() / time.Duration(items)
}

// PrintSummary logs the bulk-mode summary. wallClock is batch-launch-to-
// finish time measured by the caller; it is reported separately from the
// summed batch durations.
func (a *BulkAggregator) PrintSummary(logger *zap.Logger, runID string, wallClock time.Duration) {
	logger.Info("bulk run summary",
		zap.String("run_id", runID),
		zap.Int("batches_processed", a.Batches()),
		zap.Int("items_processed", a.Items()),
		zap.Int("revealed_matched_input", a.Matched()),
		zap.Duration("wall_clock_time", wallClock),
		zap.Duration("summed_batch_time", a.SummedBatchTime()),
		zap.Duration("avg_batch_time", a.AverageBatchTime()),
		zap.Duration("avg_per_item_time", a.AveragePerItemTime()),
	)
}
