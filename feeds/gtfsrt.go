package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Vehicle is one normalized in-service vehicle from the positions feed.
// The set is fully replaced on every fetch; nothing persists across polls.
type Vehicle struct {
	ID             string  `json:"trainId"` // routeID + vehicleID, unique per poll
	RouteID        string  `json:"routeId"`
	Direction      string  `json:"direction"` // inbound|outbound
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	CurrentStatus  int32   `json:"currentStatus"`
	ReadableStatus string  `json:"readableStatus"`
	StopID         string  `json:"stopId,omitempty"`
	Timestamp      uint64  `json:"timestamp"` // upstream epoch, passed through exactly
}

// Readable labels for the GTFS-RT VehicleStopStatus enum.
const (
	StatusIncoming  = "Incoming"
	StatusStopped   = "Stopped"
	StatusInTransit = "In Transit"
	StatusUnknown   = "Unknown"
)

const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
)

// feedSchema is the decode schema for the binary feed: the protobuf message
// prototype plus the fixed line set the gateway filters on. Loaded once at
// startup and read-only afterwards.
type feedSchema struct {
	prototype *gtfsrtpb.FeedMessage
	lines     map[string]struct{}
}

// VehicleGateway fetches and decodes the GTFS-Realtime vehicle-positions feed.
// Each call performs one fresh upstream round trip; there is no caching and
// no internal retry.
type VehicleGateway struct {
	url        string
	httpClient *http.Client

	mu     sync.RWMutex
	schema *feedSchema
}

// NewVehicleGateway creates a gateway for the given feed URL. The gateway is
// not usable until LoadSchema has run; fetches before that fail with
// ErrSchemaNotLoaded.
func NewVehicleGateway(url string, timeout time.Duration) *VehicleGateway {
	return &VehicleGateway{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LoadSchema initializes the decode schema with the fixed set of tracked
// lines. Safe to call once at startup; concurrent fetches arriving before it
// completes receive ErrSchemaNotLoaded rather than crashing.
func (g *VehicleGateway) LoadSchema(lines []string) {
	s := &feedSchema{
		prototype: &gtfsrtpb.FeedMessage{},
		lines:     make(map[string]struct{}, len(lines)),
	}
	for _, l := range lines {
		s.lines[l] = struct{}{}
	}
	g.mu.Lock()
	g.schema = s
	g.mu.Unlock()
}

// FetchVehiclePositions fetches the feed, decodes it and returns the
// normalized vehicles for tracked lines only.
func (g *VehicleGateway) FetchVehiclePositions(ctx context.Context) ([]Vehicle, error) {
	g.mu.RLock()
	schema := g.schema
	g.mu.RUnlock()
	if schema == nil {
		return nil, ErrSchemaNotLoaded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d from vehicle positions feed", ErrUpstreamUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	fm := proto.Clone(schema.prototype).(*gtfsrtpb.FeedMessage)
	if err := proto.Unmarshal(body, fm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	vehicles := make([]Vehicle, 0, len(fm.Entity))
	for _, e := range fm.Entity {
		if e == nil || e.Vehicle == nil {
			continue
		}
		vp := e.Vehicle
		if vp.Trip == nil || vp.Trip.RouteId == nil || vp.Position == nil {
			continue
		}
		routeID := *vp.Trip.RouteId
		if _, tracked := schema.lines[routeID]; !tracked {
			continue
		}
		var vehicleID string
		if vp.Vehicle != nil && vp.Vehicle.Id != nil {
			vehicleID = *vp.Vehicle.Id
		}
		if vehicleID == "" {
			continue
		}
		v := Vehicle{
			ID:        routeID + vehicleID,
			RouteID:   routeID,
			Direction: DirectionOutbound,
			Latitude:  float64(vp.Position.GetLatitude()),
			Longitude: float64(vp.Position.GetLongitude()),
		}
		if vp.Trip.DirectionId != nil && *vp.Trip.DirectionId == 1 {
			v.Direction = DirectionInbound
		}
		if vp.CurrentStatus != nil {
			v.CurrentStatus = int32(*vp.CurrentStatus)
		} else {
			v.CurrentStatus = -1
		}
		v.ReadableStatus = readableStatus(v.CurrentStatus)
		if vp.StopId != nil {
			v.StopID = *vp.StopId
		}
		// The upstream timestamp is a 64-bit integer; it passes through
		// untouched, never via floating point.
		if vp.Timestamp != nil {
			v.Timestamp = *vp.Timestamp
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

func readableStatus(code int32) string {
	switch code {
	case 0:
		return StatusIncoming
	case 1:
		return StatusStopped
	case 2:
		return StatusInTransit
	default:
		return StatusUnknown
	}
}
