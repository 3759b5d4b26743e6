package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/seantiz/linebench/internal/model"
)

func TestRunCollectorBeforeRun(t *testing.T) {
	c := &runCollector{registered: func() int { return 3 }, results: &fakeResults{}}

	want := `
# HELP linebench_run_strategies Strategies of the current run by status.
# TYPE linebench_run_strategies gauge
linebench_run_strategies{status="completed"} 0
linebench_run_strategies{status="failed"} 0
linebench_run_strategies{status="pending"} 3
linebench_run_strategies{status="skipped"} 0
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want)); err != nil {
		t.Fatal(err)
	}
}

func TestRunCollectorExportsResults(t *testing.T) {
	results := &fakeResults{}
	results.set(&model.Run{
		ID: model.NewID(),
		Results: []model.BenchmarkResult{
			{Strategy: model.StrategySequential, Status: model.StatusCompleted, Elapsed: 1500 * time.Millisecond, User: time.Second, System: 250 * time.Millisecond, Lines: 10},
			{Strategy: model.StrategyThreads, Status: model.StatusFailed, Lines: 4, Error: "boom"},
			{Strategy: model.StrategyIsolates, Status: model.StatusSkipped},
		},
	})
	c := &runCollector{registered: func() int { return 4 }, results: results}

	want := `
# HELP linebench_run_result_lines Lines emitted by every finished strategy of the current run.
# TYPE linebench_run_result_lines gauge
linebench_run_result_lines{strategy="sequential"} 10
linebench_run_result_lines{strategy="threads"} 4
# HELP linebench_run_result_seconds Timings of every completed strategy of the current run.
# TYPE linebench_run_result_seconds gauge
linebench_run_result_seconds{clock="real",strategy="sequential"} 1.5
linebench_run_result_seconds{clock="system",strategy="sequential"} 0.25
linebench_run_result_seconds{clock="user",strategy="sequential"} 1
# HELP linebench_run_strategies Strategies of the current run by status.
# TYPE linebench_run_strategies gauge
linebench_run_strategies{status="completed"} 1
linebench_run_strategies{status="failed"} 1
linebench_run_strategies{status="pending"} 1
linebench_run_strategies{status="skipped"} 1
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want)); err != nil {
		t.Fatal(err)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, results := newTestServer(t)
	results.set(&model.Run{
		ID: model.NewID(),
		Results: []model.BenchmarkResult{
			{Strategy: model.StrategySequential, Status: model.StatusCompleted, Elapsed: 1500 * time.Millisecond, Lines: 10},
		},
	})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	text := string(body)

	for _, want := range []string{
		`linebench_run_strategies{status="completed"} 1`,
		`linebench_run_result_seconds{clock="real",strategy="sequential"} 1.5`,
		`linebench_run_result_lines{strategy="sequential"} 10`,
		// Process-wide metrics are served alongside the run state.
		"linebench_pool_busy_workers",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
