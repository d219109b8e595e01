package dashboard

import (
	"sort"

	"github.com/theoremus-urban-solutions/transit-tracker/feeds"
)

// Marker is one displayed vehicle on the map.
type Marker struct {
	VehicleID string  `json:"vehicleId"`
	Line      string  `json:"line"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    string  `json:"status"`
	Timestamp uint64  `json:"timestamp"`
	PopupOpen bool    `json:"popupOpen"`
}

// Changes lists the marker ids affected by one reconciliation pass.
type Changes struct {
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
	Removed []string `json:"removed"`
}

// MarkerSet is the current displayed marker set, keyed by stable vehicle id.
type MarkerSet struct {
	markers map[string]*Marker
}

// NewMarkerSet creates an empty marker set.
func NewMarkerSet() *MarkerSet {
	return &MarkerSet{markers: map[string]*Marker{}}
}

// Reconcile diffs the latest vehicle set against the displayed markers.
// Vehicles on disabled lines are treated as absent. Markers that survive an
// update keep their popup open; removed markers discard theirs.
func (m *MarkerSet) Reconcile(vehicles []feeds.Vehicle, enabledLines map[string]struct{}) Changes {
	var ch Changes
	seen := make(map[string]struct{}, len(vehicles))

	for _, v := range vehicles {
		if _, enabled := enabledLines[v.RouteID]; !enabled {
			continue
		}
		seen[v.ID] = struct{}{}
		if existing, ok := m.markers[v.ID]; ok {
			existing.Line = v.RouteID
			existing.Latitude = v.Latitude
			existing.Longitude = v.Longitude
			existing.Status = v.ReadableStatus
			existing.Timestamp = v.Timestamp
			ch.Updated = append(ch.Updated, v.ID)
			continue
		}
		m.markers[v.ID] = &Marker{
			VehicleID: v.ID,
			Line:      v.RouteID,
			Latitude:  v.Latitude,
			Longitude: v.Longitude,
			Status:    v.ReadableStatus,
			Timestamp: v.Timestamp,
		}
		ch.Added = append(ch.Added, v.ID)
	}

	for id := range m.markers {
		if _, ok := seen[id]; !ok {
			delete(m.markers, id)
			ch.Removed = append(ch.Removed, id)
		}
	}

	sort.Strings(ch.Added)
	sort.Strings(ch.Updated)
	sort.Strings(ch.Removed)
	return ch
}

// OpenPopup marks a displayed marker's popup as open.
func (m *MarkerSet) OpenPopup(vehicleID string) bool {
	mk, ok := m.markers[vehicleID]
	if !ok {
		return false
	}
	mk.PopupOpen = true
	return true
}

// Marker returns the displayed marker for a vehicle id, if present.
func (m *MarkerSet) Marker(vehicleID string) (Marker, bool) {
	mk, ok := m.markers[vehicleID]
	if !ok {
		return Marker{}, false
	}
	return *mk, true
}

// Markers returns the displayed markers sorted by vehicle id.
func (m *MarkerSet) Markers() []Marker {
	out := make([]Marker, 0, len(m.markers))
	for _, mk := range m.markers {
		out = append(out, *mk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out
}

// Len returns the number of displayed markers.
func (m *MarkerSet) Len() int { return len(m.markers) }
