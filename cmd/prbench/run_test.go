package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prbench/internal/client"
	"prbench/internal/config"
	"prbench/internal/runner"
)

func TestBuildInputs(t *testing.T) {
	logger := zap.NewNop()

	t.Run("sequential values", func(t *testing.T) {
		got := buildInputs("001", 4, logger)
		want := []string{"001", "002", "003", "004"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("buildInputs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("non-numeric start still yields one input", func(t *testing.T) {
		got := buildInputs("abc", 10, logger)
		assert.Equal(t, []string{"abc"}, got)
	})

	t.Run("width overflow ends the sequence", func(t *testing.T) {
		got := buildInputs("98", 5, logger)
		assert.Equal(t, []string{"98", "99"}, got)
	})
}

func TestBatchSideObject(t *testing.T) {
	t.Run("synthesized counts", func(t *testing.T) {
		resp := client.Response{StatusCode: 200, Body: map[string]any{}}
		obj := batchSideObject(resp, 3, []string{"tok1", "tok2"}, "protected_data_array", "protected_data")

		assert.Equal(t, "Success", obj["status"])
		assert.Equal(t, 3, obj["total_count"])
		assert.Equal(t, 2, obj["success_count"])
		assert.Equal(t, 1, obj["error_count"])
		assert.Equal(t, []map[string]any{
			{"protected_data": "tok1"},
			{"protected_data": "tok2"},
		}, obj["protected_data_array"])
	})

	t.Run("server counts win", func(t *testing.T) {
		resp := client.Response{StatusCode: 200, Body: map[string]any{
			"status":        "Partial",
			"success_count": float64(1),
			"error_count":   float64(2),
		}}
		obj := batchSideObject(resp, 3, []string{"a"}, "data_array", "data")

		assert.Equal(t, "Partial", obj["status"])
		assert.Equal(t, float64(1), obj["success_count"])
		assert.Equal(t, float64(2), obj["error_count"])
	})

	t.Run("failed side", func(t *testing.T) {
		resp := client.Response{StatusCode: 500, Body: "boom"}
		obj := batchSideObject(resp, 2, nil, "data_array", "data")

		assert.Equal(t, "Error", obj["status"])
		assert.Equal(t, 0, obj["success_count"])
		assert.Equal(t, 2, obj["error_count"])
	})
}

func TestRunIterationSafely_RecoversPanic(t *testing.T) {
	api := panickyAPI{}
	_, err := runIterationSafely(context.Background(), api, "001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iteration failed")
}

type panickyAPI struct{}

func (panickyAPI) Protect(ctx context.Context, data string) client.Response {
	panic("broken backend stub")
}

func (panickyAPI) Reveal(ctx context.Context, token string) client.Response {
	return client.Response{}
}

func (panickyAPI) ProtectBulk(ctx context.Context, items []string) client.Response {
	return client.Response{}
}

func (panickyAPI) RevealBulk(ctx context.Context, tokens []string, opts ...client.RevealBulkOption) client.Response {
	return client.Response{}
}

// fakeBackend serves /v1/protect and /v1/reveal with a reversible mapping
// so full runs can be exercised end to end.
func fakeBackend(t *testing.T) (string, int) {
	t.Helper()
	tokens := map[string]string{}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/protect", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		data, _ := payload["data"].(string)
		tok := "tok-" + data
		tokens[tok] = data
		json.NewEncoder(w).Encode(map[string]any{"protected_data": tok})
	})
	mux.HandleFunc("/v1/reveal", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		tok, _ := payload["protected_data"].(string)
		orig, ok := tokens[tok]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"error": "unknown token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": orig})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return u.Hostname(), port
}

func TestRunIterativeMode_EndToEnd(t *testing.T) {
	host, port := fakeBackend(t)

	cfg := config.Default()
	cfg.Host = host
	cfg.Port = port
	cfg.StartData = "0001"
	cfg.Iterations = 3
	cfg.Timeout = 5 * time.Second

	err := runIterativeMode(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
}

func TestRunIterativeMode_UnreachableHostStillSummarizes(t *testing.T) {
	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1 // nothing listens here
	cfg.StartData = "0001"
	cfg.Iterations = 2
	cfg.Timeout = time.Second

	// Transport failures are absorbed into responses; the run completes.
	err := runIterativeMode(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
}

func TestRunBulk_AgainstFakeBulkBackend(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/protectbulk", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		items, _ := payload["data"].([]any)
		arr := make([]map[string]any, 0, len(items))
		for _, it := range items {
			arr = append(arr, map[string]any{"protected_data": "tok-" + it.(string)})
		}
		json.NewEncoder(w).Encode(map[string]any{"protected_data_array": arr})
	})
	mux.HandleFunc("/v1/revealbulk", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		toks, _ := payload["protected_data"].([]any)
		arr := make([]map[string]any, 0, len(toks))
		for _, tok := range toks {
			arr = append(arr, map[string]any{"data": tok.(string)[len("tok-"):]})
		}
		json.NewEncoder(w).Encode(map[string]any{"data_array": arr})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cli := client.New(u.Hostname(), port, "P03", 5*time.Second, nil)
	results := runner.RunBulk(context.Background(), cli, []string{"001", "002", "003"}, 2)

	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Matches())
	assert.Equal(t, 1, results[1].Matches())
	assert.Equal(t, []string{"tok-003"}, results[1].Tokens)
	assert.Equal(t, []string{"003"}, results[1].Restored)
}
