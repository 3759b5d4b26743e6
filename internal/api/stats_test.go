package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seantiz/linebench/internal/model"
)

func TestGetStatsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if stats.Total != 0 {
		t.Errorf("total = %d, want 0", stats.Total)
	}
	if stats.Pending != 6 {
		t.Errorf("pending = %d, want 6", stats.Pending)
	}
	if stats.AvgRealMS != 0 {
		t.Errorf("avg_real_ms = %f, want 0", stats.AvgRealMS)
	}
}

func TestGetStatsPopulated(t *testing.T) {
	srv, results := newTestServer(t)
	results.set(&model.Run{
		ID: model.NewID(),
		Results: []model.BenchmarkResult{
			{Strategy: model.StrategySequential, Status: model.StatusCompleted, Elapsed: 300 * time.Millisecond, Lines: 100},
			{Strategy: model.StrategyThreads, Status: model.StatusFailed, Elapsed: 5 * time.Millisecond, Lines: 40},
			{Strategy: model.StrategyFibers, Status: model.StatusCompleted, Elapsed: 100 * time.Millisecond, Lines: 100},
		},
	})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.Pending != 3 {
		t.Errorf("pending = %d, want 3", stats.Pending)
	}
	if stats.ByStatus[model.StatusCompleted] != 2 {
		t.Errorf("completed = %d, want 2", stats.ByStatus[model.StatusCompleted])
	}
	if stats.ByStatus[model.StatusFailed] != 1 {
		t.Errorf("failed = %d, want 1", stats.ByStatus[model.StatusFailed])
	}
	if stats.Lines != 240 {
		t.Errorf("lines = %d, want 240", stats.Lines)
	}
	if stats.Fastest != model.StrategyFibers {
		t.Errorf("fastest = %q, want %q", stats.Fastest, model.StrategyFibers)
	}
	if stats.Slowest != model.StrategySequential {
		t.Errorf("slowest = %q, want %q", stats.Slowest, model.StrategySequential)
	}
	if stats.AvgRealMS != 200 {
		t.Errorf("avg_real_ms = %f, want 200", stats.AvgRealMS)
	}
}

func TestComputeStatsIgnoresFailedForTiming(t *testing.T) {
	stats := computeStats(2, &model.Run{
		Results: []model.BenchmarkResult{
			{Strategy: "a", Status: model.StatusFailed, Elapsed: time.Millisecond},
			{Strategy: "b", Status: model.StatusSkipped},
		},
	})

	if stats.Fastest != "" || stats.Slowest != "" {
		t.Errorf("fastest/slowest = %q/%q, want empty", stats.Fastest, stats.Slowest)
	}
	if stats.Pending != 0 {
		t.Errorf("pending = %d, want 0", stats.Pending)
	}
}
