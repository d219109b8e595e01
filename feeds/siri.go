package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"
)

// Prediction is one upcoming arrival at a stop.
type Prediction struct {
	Minutes     int    `json:"minutes"`
	Destination string `json:"destination"`
	AtStop      bool   `json:"atStop"`
}

// StopPredictions holds the normalized predictions for one stop.
type StopPredictions struct {
	StopID      string       `json:"stopId"`
	StopName    string       `json:"stopName"`
	Predictions []Prediction `json:"predictions"`
}

// PredictionSet pairs the inbound and outbound stop predictions. The two
// directions are rendered as one unit, so they succeed or fail together.
type PredictionSet struct {
	Inbound  StopPredictions `json:"inbound"`
	Outbound StopPredictions `json:"outbound"`
}

// PredictionsClient fetches and normalizes the SIRI StopMonitoring feed.
type PredictionsClient struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewPredictionsClient creates a client for the StopMonitoring endpoint.
// The stop id is appended as the "stopCode" query parameter.
func NewPredictionsClient(baseURL string, timeout time.Duration) *PredictionsClient {
	return &PredictionsClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// FetchPredictions fetches both stops concurrently and returns the combined
// set. If either upstream call fails the whole operation fails with
// ErrPredictionsUnavailable; no partial single-direction result is returned.
func (c *PredictionsClient) FetchPredictions(ctx context.Context, inboundStopID, outboundStopID string) (*PredictionSet, error) {
	type legResult struct {
		inbound bool
		preds   StopPredictions
		err     error
	}
	results := make(chan legResult, 2)

	fetchLeg := func(stopID string, inbound bool) {
		preds, err := c.fetchStop(ctx, stopID)
		results <- legResult{inbound: inbound, preds: preds, err: err}
	}
	go fetchLeg(inboundStopID, true)
	go fetchLeg(outboundStopID, false)

	var set PredictionSet
	for i := 0; i < 2; i++ {
		res := <-results
		if res.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPredictionsUnavailable, res.err)
		}
		if res.inbound {
			set.Inbound = res.preds
		} else {
			set.Outbound = res.preds
		}
	}
	return &set, nil
}

func (c *PredictionsClient) fetchStop(ctx context.Context, stopID string) (StopPredictions, error) {
	out := StopPredictions{StopID: stopID, Predictions: []Prediction{}}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	q := u.Query()
	q.Set("stopCode", stopID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("%w: HTTP %d from stop monitoring feed", ErrUpstreamUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	var env siriEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if env.ServiceDelivery == nil || env.ServiceDelivery.StopMonitoringDelivery == nil {
		return out, fmt.Errorf("%w: missing ServiceDelivery.StopMonitoringDelivery", ErrMalformedPayload)
	}

	now := c.now()
	for _, visit := range env.ServiceDelivery.StopMonitoringDelivery.MonitoredStopVisit {
		p, ok := normalizeVisit(visit, now)
		if !ok {
			continue // record-level recovery: skip and move on
		}
		if out.StopName == "" && visit.MonitoredVehicleJourney.MonitoredCall != nil {
			out.StopName = visit.MonitoredVehicleJourney.MonitoredCall.StopPointName
		}
		out.Predictions = append(out.Predictions, p)
	}
	sort.SliceStable(out.Predictions, func(i, j int) bool {
		return out.Predictions[i].Minutes < out.Predictions[j].Minutes
	})
	return out, nil
}

// normalizeVisit converts one monitored stop visit into a Prediction.
// Visits without a usable expected arrival, and visits already in the past,
// are dropped.
func normalizeVisit(visit siriStopVisit, now time.Time) (Prediction, bool) {
	mvj := visit.MonitoredVehicleJourney
	if mvj == nil || mvj.MonitoredCall == nil {
		return Prediction{}, false
	}
	call := mvj.MonitoredCall
	if call.ExpectedArrivalTime == "" {
		return Prediction{}, false
	}
	arrival, err := time.Parse(time.RFC3339, call.ExpectedArrivalTime)
	if err != nil {
		return Prediction{}, false
	}
	minutes := minutesUntil(now, arrival)
	if minutes < 0 {
		return Prediction{}, false
	}
	dest := mvj.DestinationName
	if dest == "" {
		dest = call.DestinationDisplay
	}
	return Prediction{
		Minutes:     minutes,
		Destination: dest,
		AtStop:      call.VehicleAtStop.Bool(),
	}, true
}

// minutesUntil rounds the remaining time to the nearest whole minute, half
// away from zero. 89 seconds away reads as 1 minute, 91 seconds as 2.
func minutesUntil(now, arrival time.Time) int {
	seconds := arrival.Sub(now).Round(time.Second).Seconds()
	return int(math.Round(seconds / 60.0))
}
