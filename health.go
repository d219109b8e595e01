package transittracker

import (
	"encoding/json"
	"net/http"
)

type healthResponse struct {
	Status     string `json:"status"`
	KnownStops int    `json:"knownStops"`
	KnownLines int    `json:"knownLines"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{
		Status:     "ok",
		KnownStops: s.cache.StopCount(),
		KnownLines: len(s.cache.Lines()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}
