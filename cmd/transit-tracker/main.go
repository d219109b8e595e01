package main

import (
	"context"
	"flag"
	"log"
	"time"

	tracker "github.com/theoremus-urban-solutions/transit-tracker"
	"github.com/theoremus-urban-solutions/transit-tracker/config"
	"github.com/theoremus-urban-solutions/transit-tracker/dashboard"
	"github.com/theoremus-urban-solutions/transit-tracker/feeds"
	"github.com/theoremus-urban-solutions/transit-tracker/routes"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (default: search config.yml)")
	flag.Parse()

	tracker.InitLogging()
	if err := config.Load(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Config

	cache, err := routes.Load(cfg.Routes.StaticPath)
	if err != nil {
		log.Fatalf("failed to load static stop/route dataset: %v", err)
	}
	log.Printf("static dataset loaded: %d lines, %d stops", len(cache.Lines()), cache.StopCount())

	for _, stopID := range []string{cfg.Dashboard.InboundStopID, cfg.Dashboard.OutboundStopID} {
		if _, ok := cache.Lookup(stopID); !ok {
			log.Fatalf("configured default stop %q not in static dataset", stopID)
		}
	}

	agencyTimeout := time.Duration(cfg.Agency.TimeoutMS) * time.Millisecond
	weatherTimeout := time.Duration(cfg.Weather.TimeoutMS) * time.Millisecond

	vehicles := feeds.NewVehicleGateway(cfg.Agency.VehiclePositionsURL, agencyTimeout)
	vehicles.LoadSchema(cfg.Agency.Lines)
	predictions := feeds.NewPredictionsClient(cfg.Agency.StopMonitoringURL, agencyTimeout)
	weather := feeds.NewWeatherClient(cfg.Weather.CurrentURL, cfg.Weather.ForecastURL, weatherTimeout)
	agency := feeds.NewAgencyClient(cfg.Agency.LinesURL, cfg.Agency.PatternURL, agencyTimeout)

	ctx, cancel := context.WithCancel(context.Background())

	// The hub's callbacks run off the controller goroutine, so everything
	// they touch goes through the controller's command queue.
	var controller *dashboard.Controller
	hub := dashboard.NewHub(
		func() []dashboard.RegionUpdate { return controller.Snapshot(ctx) },
		func(msg dashboard.ClientMessage) { dispatch(controller, msg) },
	)

	state := dashboard.NewState(cfg.Dashboard.InboundStopID, cfg.Dashboard.OutboundStopID, cfg.Dashboard.EnabledLines)
	controller = dashboard.NewController(
		predictions, vehicles, weather, cache, hub,
		dashboard.Intervals{
			Predictions: time.Duration(cfg.Dashboard.PredictionsIntervalS) * time.Second,
			Weather:     time.Duration(cfg.Dashboard.WeatherIntervalS) * time.Second,
			Vehicles:    time.Duration(cfg.Dashboard.VehiclesIntervalS) * time.Second,
			Clock:       time.Duration(cfg.Dashboard.ClockIntervalS) * time.Second,
		},
		state,
	)

	go controller.Run(ctx)

	server := tracker.NewServer(cfg.Server.Port, cache, vehicles, predictions, weather, agency, hub)
	server.Start()
	server.HandleGracefulShutdown()
	cancel()
}

func dispatch(controller *dashboard.Controller, msg dashboard.ClientMessage) {
	dir := dashboard.Outbound
	if msg.Direction == string(dashboard.Inbound) {
		dir = dashboard.Inbound
	}
	switch msg.Action {
	case "openSelection":
		controller.Enqueue(func(c *dashboard.Controller) { c.OpenSelection(dir) })
	case "setInput":
		stopID := msg.StopID
		controller.Enqueue(func(c *dashboard.Controller) { c.SetSelectionInput(dir, stopID) })
	case "validate":
		controller.Enqueue(func(c *dashboard.Controller) { c.ValidateSelection(dir) })
	case "save":
		controller.Enqueue(func(c *dashboard.Controller) { c.SaveSelection(dir) })
	case "cancel":
		controller.Enqueue(func(c *dashboard.Controller) { c.CancelSelection(dir) })
	case "toggleLine":
		line, enabled := msg.Line, msg.Enabled
		controller.Enqueue(func(c *dashboard.Controller) { c.SetLineEnabled(line, enabled) })
	case "openPopup":
		id := msg.VehicleID
		controller.Enqueue(func(c *dashboard.Controller) { c.OpenMarkerPopup(id) })
	default:
		log.Printf("unknown client action %q", msg.Action)
	}
}
