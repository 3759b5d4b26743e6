package api

import (
	"net/http"

	"github.com/seantiz/linebench/internal/model"
)

// statsResponse is the JSON response for GET /v1/stats.
type statsResponse struct {
	RunID    string         `json:"run_id,omitempty"`
	Total    int            `json:"total"`
	Pending  int            `json:"pending"`
	ByStatus map[string]int `json:"by_status"`
	Lines    int64          `json:"lines"`
	Fastest  string         `json:"fastest,omitempty"`
	Slowest  string         `json:"slowest,omitempty"`
	// AvgRealMS is the mean wall-clock time of completed strategies.
	AvgRealMS float64 `json:"avg_real_ms"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, computeStats(s.registry.Len(), s.results.Current()))
}

// computeStats summarises run against the number of registered strategies.
func computeStats(registered int, run *model.Run) statsResponse {
	resp := statsResponse{
		Pending:  registered,
		ByStatus: map[string]int{},
	}
	if run == nil {
		return resp
	}

	resp.RunID = run.ID
	resp.Total = len(run.Results)
	resp.Pending = max(registered-len(run.Results), 0)

	var fastest, slowest *model.BenchmarkResult
	var sumMS float64
	completed := 0
	for i := range run.Results {
		r := &run.Results[i]
		resp.ByStatus[r.Status]++
		resp.Lines += r.Lines
		if !r.Succeeded() {
			continue
		}
		completed++
		sumMS += float64(r.Elapsed.Microseconds()) / 1000
		if fastest == nil || r.Elapsed < fastest.Elapsed {
			fastest = r
		}
		if slowest == nil || r.Elapsed > slowest.Elapsed {
			slowest = r
		}
	}
	if completed > 0 {
		resp.AvgRealMS = sumMS / float64(completed)
		resp.Fastest = fastest.Strategy
		resp.Slowest = slowest.Strategy
	}
	return resp
}
