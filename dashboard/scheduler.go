package dashboard

import (
	"context"
	"log"
	"time"

	"github.com/theoremus-urban-solutions/transit-tracker/feeds"
	"github.com/theoremus-urban-solutions/transit-tracker/routes"
)

// PredictionsFetcher is the predictions gateway as seen by the sync loop.
type PredictionsFetcher interface {
	FetchPredictions(ctx context.Context, inboundStopID, outboundStopID string) (*feeds.PredictionSet, error)
}

// VehiclesFetcher is the vehicle-positions gateway as seen by the sync loop.
type VehiclesFetcher interface {
	FetchVehiclePositions(ctx context.Context) ([]feeds.Vehicle, error)
}

// WeatherFetcher is the weather gateway as seen by the sync loop.
type WeatherFetcher interface {
	FetchWeather(ctx context.Context) (*feeds.WeatherReport, error)
}

// Broadcaster receives every region update for delivery to clients.
type Broadcaster interface {
	Broadcast(RegionUpdate)
}

// Intervals holds the four independent polling cadences.
type Intervals struct {
	Predictions time.Duration
	Weather     time.Duration
	Vehicles    time.Duration
	Clock       time.Duration
}

// Command runs on the controller goroutine between poll ticks.
type Command func(c *Controller)

// predictionsResult carries one predictions fetch back onto the loop
// goroutine together with its issue sequence number.
type predictionsResult struct {
	seq int64
	set *feeds.PredictionSet
	err error
}

type weatherResult struct {
	report *feeds.WeatherReport
	err    error
}

type vehiclesResult struct {
	vehicles []feeds.Vehicle
	err      error
}

// predictionsView is the predictions region payload.
type predictionsView struct {
	Inbound  feeds.StopPredictions `json:"inbound"`
	Outbound feeds.StopPredictions `json:"outbound"`
}

// vehiclesView is the vehicles region payload.
type vehiclesView struct {
	Markers []Marker `json:"markers"`
	Changes Changes  `json:"changes"`
}

// Controller owns the application state and runs the cooperative sync loop:
// four independently timed tasks on a single goroutine. Every network fetch
// runs off-loop and delivers its result back over a channel, so a slow
// upstream suspends only its own task while the others keep their cadence.
// Predictions additionally run through a sequence check so an out-of-cycle
// refetch supersedes an in-flight one instead of racing it.
type Controller struct {
	predictions PredictionsFetcher
	vehicles    VehiclesFetcher
	weather     WeatherFetcher
	cache       *routes.Cache
	hub         Broadcaster
	intervals   Intervals

	state        *State
	inboundSel   *Selection
	outboundSel  *Selection
	lastVehicles []feeds.Vehicle

	commands    chan Command
	predResults chan predictionsResult
	weaResults  chan weatherResult
	vehResults  chan vehiclesResult
	predSeq     int64

	runCtx context.Context
	now    func() time.Time
}

// NewController wires the sync loop. The initial selection comes from
// configured defaults; both stop ids must exist in the cache.
func NewController(
	predictions PredictionsFetcher,
	vehicles VehiclesFetcher,
	weather WeatherFetcher,
	cache *routes.Cache,
	hub Broadcaster,
	intervals Intervals,
	state *State,
) *Controller {
	return &Controller{
		predictions: predictions,
		vehicles:    vehicles,
		weather:     weather,
		cache:       cache,
		hub:         hub,
		intervals:   intervals,
		state:       state,
		inboundSel:  NewSelection(Inbound, cache),
		outboundSel: NewSelection(Outbound, cache),
		commands:    make(chan Command, 16),
		predResults: make(chan predictionsResult, 4),
		weaResults:  make(chan weatherResult, 2),
		vehResults:  make(chan vehiclesResult, 2),
		runCtx:      context.Background(),
		now:         time.Now,
	}
}

// State exposes the controller-owned application state. Read it only from
// the controller goroutine (tests, commands).
func (c *Controller) State() *State { return c.state }

// Enqueue schedules a command onto the controller goroutine.
func (c *Controller) Enqueue(cmd Command) {
	c.commands <- cmd
}

// Snapshot evaluates the current region updates on the loop goroutine.
// Returns nil once ctx is cancelled, so a caller arriving after shutdown
// does not block on a loop that will never answer.
func (c *Controller) Snapshot(ctx context.Context) []RegionUpdate {
	reply := make(chan []RegionUpdate, 1)
	cmd := func(c *Controller) { reply <- c.state.Snapshot() }
	select {
	case c.commands <- cmd:
	case <-ctx.Done():
		return nil
	}
	select {
	case updates := <-reply:
		return updates
	case <-ctx.Done():
		return nil
	}
}

// Run executes the sync loop until ctx is cancelled. Every task runs once
// immediately, then on its own cadence.
func (c *Controller) Run(ctx context.Context) {
	c.runCtx = ctx

	c.startPredictionsFetch()
	c.startWeatherFetch()
	c.startVehiclesFetch()
	c.refreshClock()

	predTicker := time.NewTicker(c.intervals.Predictions)
	weatherTicker := time.NewTicker(c.intervals.Weather)
	vehiclesTicker := time.NewTicker(c.intervals.Vehicles)
	clockTicker := time.NewTicker(c.intervals.Clock)
	defer predTicker.Stop()
	defer weatherTicker.Stop()
	defer vehiclesTicker.Stop()
	defer clockTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-predTicker.C:
			c.startPredictionsFetch()
		case res := <-c.predResults:
			c.applyPredictions(res)
		case <-weatherTicker.C:
			c.startWeatherFetch()
		case res := <-c.weaResults:
			c.applyWeather(res)
		case <-vehiclesTicker.C:
			c.startVehiclesFetch()
		case res := <-c.vehResults:
			c.applyVehicles(res)
		case <-clockTicker.C:
			c.refreshClock()
		case cmd := <-c.commands:
			cmd(c)
		}
	}
}

// startPredictionsFetch issues a new sequenced predictions fetch. The fetch
// itself runs off-loop; the result is applied on the loop goroutine and only
// if no later fetch has been issued since.
func (c *Controller) startPredictionsFetch() {
	c.predSeq++
	seq := c.predSeq
	inbound := c.state.Selection.InboundStopID
	outbound := c.state.Selection.OutboundStopID
	ctx := c.runCtx
	go func() {
		set, err := c.predictions.FetchPredictions(ctx, inbound, outbound)
		select {
		case c.predResults <- predictionsResult{seq: seq, set: set, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) applyPredictions(res predictionsResult) {
	if res.seq != c.predSeq {
		log.Printf("predictions result %d superseded by %d, dropped", res.seq, c.predSeq)
		return
	}
	if res.err != nil {
		log.Printf("predictions fetch failed: %v", res.err)
		c.publish(RegionUpdate{Region: RegionPredictions, Error: "arrival predictions unavailable"})
		return
	}
	view := predictionsView{Inbound: res.set.Inbound, Outbound: res.set.Outbound}
	if view.Inbound.StopName == "" {
		if stop, ok := c.cache.Lookup(view.Inbound.StopID); ok {
			view.Inbound.StopName = stop.Name
		}
	}
	if view.Outbound.StopName == "" {
		if stop, ok := c.cache.Lookup(view.Outbound.StopID); ok {
			view.Outbound.StopName = stop.Name
		}
	}
	c.publish(RegionUpdate{Region: RegionPredictions, Data: view})
}

// startWeatherFetch runs the weather round trip off-loop; the result is
// applied on the loop goroutine.
func (c *Controller) startWeatherFetch() {
	ctx := c.runCtx
	go func() {
		report, err := c.weather.FetchWeather(ctx)
		select {
		case c.weaResults <- weatherResult{report: report, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) applyWeather(res weatherResult) {
	if res.err != nil {
		log.Printf("weather fetch failed: %v", res.err)
		c.publish(RegionUpdate{Region: RegionWeather, Error: "weather unavailable"})
		return
	}
	c.publish(RegionUpdate{Region: RegionWeather, Data: res.report})
}

// startVehiclesFetch runs the vehicle-positions round trip off-loop; the
// result is applied on the loop goroutine.
func (c *Controller) startVehiclesFetch() {
	ctx := c.runCtx
	go func() {
		vehicles, err := c.vehicles.FetchVehiclePositions(ctx)
		select {
		case c.vehResults <- vehiclesResult{vehicles: vehicles, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) applyVehicles(res vehiclesResult) {
	if res.err != nil {
		log.Printf("vehicles fetch failed: %v", res.err)
		// Freshness over continuity: drop the displayed markers too.
		c.lastVehicles = nil
		c.state.Markers = NewMarkerSet()
		c.publish(RegionUpdate{Region: RegionVehicles, Error: "vehicle positions unavailable"})
		return
	}
	c.lastVehicles = res.vehicles
	c.reconcileMarkers()
}

func (c *Controller) reconcileMarkers() {
	changes := c.state.Markers.Reconcile(c.lastVehicles, c.state.Selection.EnabledLines)
	c.publish(RegionUpdate{
		Region: RegionVehicles,
		Data:   vehiclesView{Markers: c.state.Markers.Markers(), Changes: changes},
	})
}

func (c *Controller) refreshClock() {
	c.publish(RegionUpdate{Region: RegionClock, Data: c.now().Format("15:04:05")})
}

func (c *Controller) publish(u RegionUpdate) {
	c.state.Regions[u.Region] = u
	if c.hub != nil {
		c.hub.Broadcast(u)
	}
}

// selection returns the flow instance for one direction.
func (c *Controller) selection(dir Direction) *Selection {
	if dir == Inbound {
		return c.inboundSel
	}
	return c.outboundSel
}

// OpenSelection enters the stop-change modal for a direction, pre-filled
// with the committed stop id. Loop-goroutine only.
func (c *Controller) OpenSelection(dir Direction) {
	committed := c.state.Selection.OutboundStopID
	if dir == Inbound {
		committed = c.state.Selection.InboundStopID
	}
	c.selection(dir).Open(committed)
	c.publishSelection()
}

// SetSelectionInput replaces the modal edit buffer. Loop-goroutine only.
func (c *Controller) SetSelectionInput(dir Direction, stopID string) {
	c.selection(dir).SetInput(stopID)
	c.publishSelection()
}

// ValidateSelection validates the entered stop id. Loop-goroutine only.
func (c *Controller) ValidateSelection(dir Direction) {
	_ = c.selection(dir).Validate()
	c.publishSelection()
}

// SaveSelection commits a validated stop id, closes the modal and triggers
// an immediate out-of-cycle predictions refetch. Loop-goroutine only.
func (c *Controller) SaveSelection(dir Direction) {
	stop, ok := c.selection(dir).Save()
	if !ok {
		return
	}
	if dir == Inbound {
		c.state.Selection.InboundStopID = stop.ID
	} else {
		c.state.Selection.OutboundStopID = stop.ID
	}
	c.publishSelection()
	c.startPredictionsFetch()
}

// CancelSelection discards the in-progress edit. Loop-goroutine only.
func (c *Controller) CancelSelection(dir Direction) {
	c.selection(dir).Cancel()
	c.publishSelection()
}

// SetLineEnabled toggles one line in the filter. Unknown lines are rejected,
// keeping the enabled set a subset of the known line set. Loop-goroutine only.
func (c *Controller) SetLineEnabled(line string, enabled bool) {
	if enabled && !c.cache.HasLine(line) {
		log.Printf("ignoring unknown line %q", line)
		return
	}
	if enabled {
		c.state.Selection.EnabledLines[line] = struct{}{}
	} else {
		delete(c.state.Selection.EnabledLines, line)
	}
	c.publishSelection()
	c.reconcileMarkers()
}

// OpenMarkerPopup opens the detail popup on a displayed marker.
// Loop-goroutine only.
func (c *Controller) OpenMarkerPopup(vehicleID string) {
	if c.state.Markers.OpenPopup(vehicleID) {
		c.publish(RegionUpdate{
			Region: RegionVehicles,
			Data:   vehiclesView{Markers: c.state.Markers.Markers()},
		})
	}
}

// selectionView is the selection region payload.
type selectionView struct {
	InboundStopID  string   `json:"inboundStopId"`
	OutboundStopID string   `json:"outboundStopId"`
	EnabledLines   []string `json:"enabledLines"`
	InboundPhase   string   `json:"inboundPhase"`
	OutboundPhase  string   `json:"outboundPhase"`
	InboundMsg     string   `json:"inboundMessage,omitempty"`
	OutboundMsg    string   `json:"outboundMessage,omitempty"`
}

func (c *Controller) publishSelection() {
	c.publish(RegionUpdate{Region: RegionSelection, Data: selectionView{
		InboundStopID:  c.state.Selection.InboundStopID,
		OutboundStopID: c.state.Selection.OutboundStopID,
		EnabledLines:   c.state.Selection.EnabledLineList(),
		InboundPhase:   c.inboundSel.Phase().String(),
		OutboundPhase:  c.outboundSel.Phase().String(),
		InboundMsg:     c.inboundSel.Message(),
		OutboundMsg:    c.outboundSel.Message(),
	}})
}
