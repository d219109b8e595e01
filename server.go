package transittracker

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theoremus-urban-solutions/transit-tracker/dashboard"
	"github.com/theoremus-urban-solutions/transit-tracker/feeds"
	"github.com/theoremus-urban-solutions/transit-tracker/routes"
)

// Server hosts the gateway HTTP API and the dashboard websocket endpoint.
type Server struct {
	cache       *routes.Cache
	vehicles    *feeds.VehicleGateway
	predictions *feeds.PredictionsClient
	weather     *feeds.WeatherClient
	agency      *feeds.AgencyClient
	hub         *dashboard.Hub

	httpServer *http.Server
}

// NewServer wires the HTTP layer around the gateways. Rate limiting, CSP and
// HTTPS redirection live in front of this process, not in it.
func NewServer(
	port int,
	cache *routes.Cache,
	vehicles *feeds.VehicleGateway,
	predictions *feeds.PredictionsClient,
	weather *feeds.WeatherClient,
	agency *feeds.AgencyClient,
	hub *dashboard.Hub,
) *Server {
	s := &Server{
		cache:       cache,
		vehicles:    vehicles,
		predictions: predictions,
		weather:     weather,
		agency:      agency,
		hub:         hub,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/predictions", s.handlePredictions)
	mux.HandleFunc("/api/vehicles", s.handleVehicles)
	mux.HandleFunc("/api/weather", s.handleWeather)
	mux.HandleFunc("/api/lines", s.handleLines)
	mux.HandleFunc("/api/pattern", s.handlePattern)
	mux.Handle("/metrics", promhttp.Handler())
	if hub != nil {
		mux.HandleFunc("/ws", hub.HandleWebSocket)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", s.httpServer.Addr)
}

// HandleGracefulShutdown blocks until a termination signal arrives, then
// drains the HTTP server.
func (s *Server) HandleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	} else {
		log.Printf("server shut down successfully")
	}
}

// Handler exposes the configured mux for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }
