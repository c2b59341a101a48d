// Package runner drives protect/reveal round trips and records what
// happened. One IterationResult per single-item round trip, one BulkResult
// per batch. HTTP failures are captured inside the responses, never raised,
// so every attempted round trip shows up in the final report.
package runner

import (
	"context"
	"time"

	"prbench/internal/client"
	"prbench/internal/extract"
)

// DefaultBatchSize is used when the caller passes a non-positive batch size.
const DefaultBatchSize = 25

// API is the slice of the transport client the runners need. Tests
// substitute a fake backend here.
type API interface {
	Protect(ctx context.Context, data string) client.Response
	Reveal(ctx context.Context, token string) client.Response
	ProtectBulk(ctx context.Context, items []string) client.Response
	RevealBulk(ctx context.Context, tokens []string, opts ...client.RevealBulkOption) client.Response
}

// IterationResult records one single-item protect→reveal round trip.
type IterationResult struct {
	Data            string
	ProtectResponse client.Response
	RevealResponse  client.Response
	Token           string
	TokenFound      bool
	Restored        string
	RestoredFound   bool
	Elapsed         time.Duration
}

// Match reports whether the revealed value came back equal to the input.
// Absent restored value counts as no match.
func (r IterationResult) Match() bool {
	return r.RestoredFound && r.Restored == r.Data
}

// Success reports whether both calls returned 2xx.
func (r IterationResult) Success() bool {
	return r.ProtectResponse.IsSuccess() && r.RevealResponse.IsSuccess()
}

// RunIteration performs protect then reveal for one value, measuring wall
// clock across both calls. Reveal always fires, with an empty protected
// value when no token could be extracted, so the reveal endpoint's error
// handling gets exercised instead of skipped.
func RunIteration(ctx context.Context, api API, data string) IterationResult {
	start := time.Now()

	protectResp := api.Protect(ctx, data)
	token, tokenFound := extract.Token(protectResp.Body)

	revealResp := api.Reveal(ctx, token)
	restored, restoredFound := extract.Restored(revealResp.Body)

	return IterationResult{
		Data:            data,
		ProtectResponse: protectResp,
		RevealResponse:  revealResp,
		Token:           token,
		TokenFound:      tokenFound,
		Restored:        restored,
		RestoredFound:   restoredFound,
		Elapsed:         time.Since(start),
	}
}

// BulkResult records one batch's protect→reveal round trip.
type BulkResult struct {
	Inputs          []string
	ProtectResponse client.Response
	RevealResponse  client.Response
	Tokens          []string
	Restored        []string
	Elapsed         time.Duration
}

// Matches counts positional matches between inputs and restored values,
// truncated to the shorter of the two.
func (b BulkResult) Matches() int {
	n := len(b.Inputs)
	if len(b.Restored) < n {
		n = len(b.Restored)
	}
	matches := 0
	for i := 0; i < n; i++ {
		if b.Inputs[i] == b.Restored[i] {
			matches++
		}
	}
	return matches
}

// RunBatch performs one bulk protect→reveal round trip for a single batch.
// Reveal fires with however many tokens were extracted; positional
// correspondence is best effort.
func RunBatch(ctx context.Context, api API, inputs []string) BulkResult {
	start := time.Now()

	protectResp := api.ProtectBulk(ctx, inputs)
	tokens := extract.BulkTokens(protectResp.Body)

	revealResp := api.RevealBulk(ctx, tokens)
	restored := extract.BulkRestored(revealResp.Body)

	return BulkResult{
		Inputs:          inputs,
		ProtectResponse: protectResp,
		RevealResponse:  revealResp,
		Tokens:          tokens,
		Restored:        restored,
		Elapsed:         time.Since(start),
	}
}

// RunBulk partitions inputs into contiguous batches of at most batchSize
// (the final batch may be shorter) and runs them sequentially. Every batch
// appears in the result list: failures live inside the batch's responses.
func RunBulk(ctx context.Context, api API, inputs []string, batchSize int) []BulkResult {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	results := make([]BulkResult, 0, (len(inputs)+batchSize-1)/batchSize)
	for start := 0; start < len(inputs); start += batchSize {
		end := start + batchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		results = append(results, RunBatch(ctx, api, inputs[start:end]))
	}
	return results
}
