package transittracker

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/theoremus-urban-solutions/transit-tracker/feeds"
)

var (
	predictionsSummary = prometheus.NewSummary(prometheus.SummaryOpts{
		Name:        "req_predictions",
		Help:        "Latency of the predictions endpoint",
		ConstLabels: prometheus.Labels{"endpoint_type": "predictions"},
	})
	vehiclesSummary = prometheus.NewSummary(prometheus.SummaryOpts{
		Name:        "req_vehicles",
		Help:        "Latency of the vehicle positions endpoint",
		ConstLabels: prometheus.Labels{"endpoint_type": "vehicles"},
	})
	weatherSummary = prometheus.NewSummary(prometheus.SummaryOpts{
		Name:        "req_weather",
		Help:        "Latency of the weather endpoint",
		ConstLabels: prometheus.Labels{"endpoint_type": "weather"},
	})
	linesSummary = prometheus.NewSummary(prometheus.SummaryOpts{
		Name:        "req_lines",
		Help:        "Latency of the line metadata endpoint",
		ConstLabels: prometheus.Labels{"endpoint_type": "lines"},
	})
	patternSummary = prometheus.NewSummary(prometheus.SummaryOpts{
		Name:        "req_pattern",
		Help:        "Latency of the pattern geometry endpoint",
		ConstLabels: prometheus.Labels{"endpoint_type": "pattern"},
	})
)

func init() {
	prometheus.MustRegister(predictionsSummary, vehiclesSummary, weatherSummary, linesSummary, patternSummary)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError always carries an explicit JSON body; a failed fetch is never
// an empty-but-successful response.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, feeds.ErrSchemaNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, feeds.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, feeds.ErrUpstreamUnavailable),
		errors.Is(err, feeds.ErrPredictionsUnavailable),
		errors.Is(err, feeds.ErrMalformedPayload):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

type predictionsResponse struct {
	Inbound  feeds.StopPredictions `json:"inbound"`
	Outbound feeds.StopPredictions `json:"outbound"`
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	reqStart := time.Now()
	defer func() { predictionsSummary.Observe(time.Since(reqStart).Seconds()) }()
	w.Header().Set("Content-Type", "application/json")

	inbound := r.URL.Query().Get("inbound")
	outbound := r.URL.Query().Get("outbound")
	if inbound == "" || outbound == "" {
		writeError(w, http.StatusBadRequest, "inbound and outbound stop ids are required")
		return
	}

	set, err := s.predictions.FetchPredictions(r.Context(), inbound, outbound)
	if err != nil {
		log.Printf("predictions fetch failed: %v", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	resp := predictionsResponse{Inbound: set.Inbound, Outbound: set.Outbound}
	if resp.Inbound.StopName == "" {
		if stop, ok := s.cache.Lookup(inbound); ok {
			resp.Inbound.StopName = stop.Name
		}
	}
	if resp.Outbound.StopName == "" {
		if stop, ok := s.cache.Lookup(outbound); ok {
			resp.Outbound.StopName = stop.Name
		}
	}
	_ = json.NewEncoder(w).Encode(resp)
}

type vehiclesResponse struct {
	Vehicles []feeds.Vehicle `json:"vehicles"`
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	reqStart := time.Now()
	defer func() { vehiclesSummary.Observe(time.Since(reqStart).Seconds()) }()
	w.Header().Set("Content-Type", "application/json")

	vehicles, err := s.vehicles.FetchVehiclePositions(r.Context())
	if err != nil {
		log.Printf("vehicles fetch failed: %v", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = json.NewEncoder(w).Encode(vehiclesResponse{Vehicles: vehicles})
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	reqStart := time.Now()
	defer func() { weatherSummary.Observe(time.Since(reqStart).Seconds()) }()
	w.Header().Set("Content-Type", "application/json")

	report, err := s.weather.FetchWeather(r.Context())
	if err != nil {
		log.Printf("weather fetch failed: %v", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = json.NewEncoder(w).Encode(report)
}

func (s *Server) handleLines(w http.ResponseWriter, r *http.Request) {
	reqStart := time.Now()
	defer func() { linesSummary.Observe(time.Since(reqStart).Seconds()) }()
	w.Header().Set("Content-Type", "application/json")

	lines, err := s.agency.FetchLines(r.Context())
	if err != nil {
		log.Printf("lines fetch failed: %v", err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = json.NewEncoder(w).Encode(lines)
}

func (s *Server) handlePattern(w http.ResponseWriter, r *http.Request) {
	reqStart := time.Now()
	defer func() { patternSummary.Observe(time.Since(reqStart).Seconds()) }()
	w.Header().Set("Content-Type", "application/json")

	line := r.URL.Query().Get("line")
	if line == "" {
		writeError(w, http.StatusBadRequest, "line is required")
		return
	}
	pattern, err := s.agency.FetchPattern(r.Context(), line)
	if err != nil {
		log.Printf("pattern fetch failed for line %s: %v", line, err)
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = json.NewEncoder(w).Encode(pattern)
}
