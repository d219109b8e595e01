package dashboard

import (
	"errors"
	"testing"

	"github.com/theoremus-urban-solutions/transit-tracker/feeds"
	"github.com/theoremus-urban-solutions/transit-tracker/routes"
)

const selectionDataset = `{
  "routes": [
    {
      "line": "K",
      "color": "#529bb0",
      "pattern": [[-122.4663, 37.7407]],
      "stops": [
        {"id": "15779", "name": "West Portal Station", "lat": 37.7407, "long": -122.4663},
        {"id": "16093", "name": "Ocean Ave & Lee Ave", "lat": 37.7243, "long": -122.4543}
      ]
    }
  ]
}`

func selectionCache(t *testing.T) *routes.Cache {
	t.Helper()
	c, err := routes.Parse([]byte(selectionDataset))
	if err != nil {
		t.Fatalf("failed to parse dataset: %v", err)
	}
	return c
}

func TestSelection_HappyPath(t *testing.T) {
	s := NewSelection(Inbound, selectionCache(t))
	if s.Phase() != PhaseIdle {
		t.Fatalf("initial phase = %v, want idle", s.Phase())
	}

	s.Open("16093")
	if s.Phase() != PhaseModalOpen {
		t.Fatalf("phase after open = %v, want modalOpen", s.Phase())
	}
	if s.Input() != "16093" {
		t.Errorf("modal must pre-fill the committed stop id, got %q", s.Input())
	}

	s.SetInput("15779")
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if s.Phase() != PhaseValid || !s.SaveEnabled() {
		t.Fatalf("phase after valid lookup = %v, saveEnabled = %v", s.Phase(), s.SaveEnabled())
	}

	stop, ok := s.Save()
	if !ok {
		t.Fatal("save from valid state must commit")
	}
	if stop.ID != "15779" || stop.Name != "West Portal Station" {
		t.Errorf("committed stop = %+v", stop)
	}
	if s.Phase() != PhaseIdle {
		t.Errorf("save must close the modal, phase = %v", s.Phase())
	}
}

func TestSelection_InvalidStop(t *testing.T) {
	s := NewSelection(Outbound, selectionCache(t))
	s.Open("15779")
	s.SetInput("99999")

	err := s.Validate()
	if !errors.Is(err, feeds.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if s.Phase() != PhaseInvalid || s.SaveEnabled() {
		t.Fatalf("phase = %v, saveEnabled = %v; save must stay disabled", s.Phase(), s.SaveEnabled())
	}

	if _, ok := s.Save(); ok {
		t.Error("save from invalid state must not commit")
	}

	// Editing again clears the verdict.
	s.SetInput("15779")
	if s.Phase() != PhaseModalOpen || s.Message() != "" {
		t.Errorf("new input must clear validation state, phase = %v msg = %q", s.Phase(), s.Message())
	}
}

func TestSelection_CancelDiscardsFromAnyState(t *testing.T) {
	phases := []func(s *Selection){
		func(s *Selection) {},                                        // modalOpen
		func(s *Selection) { _ = s.Validate() },                      // valid (input pre-filled valid)
		func(s *Selection) { s.SetInput("nope"); _ = s.Validate() },  // invalid
	}
	for i, prep := range phases {
		s := NewSelection(Inbound, selectionCache(t))
		s.Open("15779")
		prep(s)
		s.Cancel()
		if s.Phase() != PhaseIdle {
			t.Errorf("case %d: cancel must return to idle, got %v", i, s.Phase())
		}
		if s.Input() != "" || s.Message() != "" {
			t.Errorf("case %d: cancel must discard the edit", i)
		}
	}
}

func TestSelection_DirectionsAreIndependent(t *testing.T) {
	cache := selectionCache(t)
	in := NewSelection(Inbound, cache)
	out := NewSelection(Outbound, cache)

	in.Open("15779")
	if out.Phase() != PhaseIdle {
		t.Error("opening one direction must not affect the other")
	}
	out.Open("16093")
	in.Cancel()
	if out.Phase() != PhaseModalOpen || out.Input() != "16093" {
		t.Error("cancelling inbound must not disturb the outbound flow")
	}
}
