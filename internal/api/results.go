package api

import "net/http"

func (s *Server) handleGetResults(w http.ResponseWriter, _ *http.Request) {
	run := s.results.Current()
	if run == nil {
		s.writeError(w, http.StatusNotFound, "no benchmark run yet")
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}
