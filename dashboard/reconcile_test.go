package dashboard

import (
	"testing"

	"github.com/theoremus-urban-solutions/transit-tracker/feeds"
)

func enabled(lines ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		m[l] = struct{}{}
	}
	return m
}

func vehicle(id, route string, lat, lon float64) feeds.Vehicle {
	return feeds.Vehicle{
		ID:             id,
		RouteID:        route,
		Latitude:       lat,
		Longitude:      lon,
		ReadableStatus: feeds.StatusInTransit,
		Timestamp:      1700000100,
	}
}

func TestReconcile_FiltersDisabledLines(t *testing.T) {
	m := NewMarkerSet()
	ch := m.Reconcile([]feeds.Vehicle{
		vehicle("K2006", "K", 37.74, -122.46),
		vehicle("L1408", "L", 37.74, -122.48),
	}, enabled("K"))

	if len(ch.Added) != 1 || ch.Added[0] != "K2006" {
		t.Fatalf("expected only K2006 added, got %+v", ch)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 marker, got %d", m.Len())
	}
	if _, ok := m.Marker("L1408"); ok {
		t.Error("disabled-line vehicle must not be displayed")
	}
}

func TestReconcile_DiffsByVehicleID(t *testing.T) {
	m := NewMarkerSet()
	m.Reconcile([]feeds.Vehicle{
		vehicle("K2006", "K", 37.74, -122.46),
		vehicle("K2010", "K", 37.73, -122.45),
	}, enabled("K"))

	ch := m.Reconcile([]feeds.Vehicle{
		vehicle("K2006", "K", 37.75, -122.47), // moved
		vehicle("K2042", "K", 37.72, -122.44), // new
	}, enabled("K"))

	if len(ch.Updated) != 1 || ch.Updated[0] != "K2006" {
		t.Errorf("updated = %v, want [K2006]", ch.Updated)
	}
	if len(ch.Added) != 1 || ch.Added[0] != "K2042" {
		t.Errorf("added = %v, want [K2042]", ch.Added)
	}
	if len(ch.Removed) != 1 || ch.Removed[0] != "K2010" {
		t.Errorf("removed = %v, want [K2010]", ch.Removed)
	}

	mk, ok := m.Marker("K2006")
	if !ok {
		t.Fatal("surviving marker missing")
	}
	if mk.Latitude != 37.75 {
		t.Errorf("surviving marker not updated: %+v", mk)
	}
}

func TestReconcile_PopupSurvivesUpdateNotRemoval(t *testing.T) {
	m := NewMarkerSet()
	m.Reconcile([]feeds.Vehicle{vehicle("K2006", "K", 37.74, -122.46)}, enabled("K"))
	if !m.OpenPopup("K2006") {
		t.Fatal("failed to open popup")
	}

	m.Reconcile([]feeds.Vehicle{vehicle("K2006", "K", 37.75, -122.47)}, enabled("K"))
	mk, _ := m.Marker("K2006")
	if !mk.PopupOpen {
		t.Error("popup must survive a position update")
	}

	m.Reconcile(nil, enabled("K"))
	if _, ok := m.Marker("K2006"); ok {
		t.Error("marker must be removed when its vehicle disappears")
	}

	// Vehicle reappearing gets a fresh marker: the popup does not come back.
	m.Reconcile([]feeds.Vehicle{vehicle("K2006", "K", 37.74, -122.46)}, enabled("K"))
	mk, _ = m.Marker("K2006")
	if mk.PopupOpen {
		t.Error("a re-added marker must start with its popup closed")
	}
}

func TestReconcile_EmptyEnabledSetClearsAll(t *testing.T) {
	m := NewMarkerSet()
	m.Reconcile([]feeds.Vehicle{vehicle("K2006", "K", 37.74, -122.46)}, enabled("K"))

	ch := m.Reconcile([]feeds.Vehicle{vehicle("K2006", "K", 37.74, -122.46)}, enabled())
	if len(ch.Removed) != 1 || m.Len() != 0 {
		t.Fatalf("expected all markers removed with empty line filter, got %+v, len=%d", ch, m.Len())
	}
}
