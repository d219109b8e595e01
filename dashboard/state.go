package dashboard

import "sort"

// Region identifies one independently refreshed area of the display.
type Region string

const (
	RegionPredictions Region = "predictions"
	RegionWeather     Region = "weather"
	RegionVehicles    Region = "vehicles"
	RegionClock       Region = "clock"
	RegionSelection   Region = "selection"
)

// RegionUpdate is one message into a display region: either fresh data or an
// explicit error placeholder. Stale data is never re-displayed as fresh.
type RegionUpdate struct {
	Region Region `json:"region"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SelectionState is the user's committed stop choices and line filter.
type SelectionState struct {
	InboundStopID  string              `json:"inboundStopId"`
	OutboundStopID string              `json:"outboundStopId"`
	EnabledLines   map[string]struct{} `json:"-"`
}

// EnabledLineList returns the enabled lines as a slice for serialization.
func (s *SelectionState) EnabledLineList() []string {
	lines := make([]string, 0, len(s.EnabledLines))
	for l := range s.EnabledLines {
		lines = append(lines, l)
	}
	sort.Strings(lines)
	return lines
}

// State is the single application-state value owned by the Controller.
// It is mutated only on the controller goroutine.
type State struct {
	Selection SelectionState
	Regions   map[Region]RegionUpdate
	Markers   *MarkerSet
}

// NewState builds the initial state from configured defaults.
func NewState(inboundStopID, outboundStopID string, enabledLines []string) *State {
	sel := SelectionState{
		InboundStopID:  inboundStopID,
		OutboundStopID: outboundStopID,
		EnabledLines:   make(map[string]struct{}, len(enabledLines)),
	}
	for _, l := range enabledLines {
		sel.EnabledLines[l] = struct{}{}
	}
	return &State{
		Selection: sel,
		Regions:   make(map[Region]RegionUpdate),
		Markers:   NewMarkerSet(),
	}
}

// Snapshot returns the current region updates for a newly connected client.
func (s *State) Snapshot() []RegionUpdate {
	updates := make([]RegionUpdate, 0, len(s.Regions))
	for _, u := range s.Regions {
		updates = append(updates, u)
	}
	return updates
}
