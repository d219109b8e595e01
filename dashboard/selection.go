package dashboard

import (
	"fmt"

	"github.com/theoremus-urban-solutions/transit-tracker/feeds"
	"github.com/theoremus-urban-solutions/transit-tracker/routes"
)

// Direction distinguishes the two stop-selection flows.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Phase is the stop-selection modal lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseModalOpen
	PhaseValidating
	PhaseValid
	PhaseInvalid
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseModalOpen:
		return "modalOpen"
	case PhaseValidating:
		return "validating"
	case PhaseValid:
		return "valid"
	case PhaseInvalid:
		return "invalid"
	}
	return "unknown"
}

// Selection is the stop-change modal workflow for one direction. The inbound
// and outbound flows are independent instances of the same machine.
type Selection struct {
	direction Direction
	cache     *routes.Cache

	phase     Phase
	input     string
	candidate routes.Stop
	message   string
}

// NewSelection creates an idle selection flow for one direction.
func NewSelection(direction Direction, cache *routes.Cache) *Selection {
	return &Selection{direction: direction, cache: cache, phase: PhaseIdle}
}

// Phase returns the current phase.
func (s *Selection) Phase() Phase { return s.phase }

// Direction returns the direction this flow edits.
func (s *Selection) Direction() Direction { return s.direction }

// Input returns the current edit-buffer contents.
func (s *Selection) Input() string { return s.input }

// Message returns the current validation message, empty when none.
func (s *Selection) Message() string { return s.message }

// Open enters the modal, pre-filling the edit buffer with the committed stop
// id for this direction and clearing prior validation messaging.
func (s *Selection) Open(committedStopID string) {
	s.phase = PhaseModalOpen
	s.input = committedStopID
	s.candidate = routes.Stop{}
	s.message = ""
}

// SetInput replaces the edit buffer. Any earlier validation verdict no
// longer applies to the new input.
func (s *Selection) SetInput(stopID string) {
	if s.phase == PhaseIdle {
		return
	}
	s.input = stopID
	s.phase = PhaseModalOpen
	s.candidate = routes.Stop{}
	s.message = ""
}

// Validate looks the entered id up in the stop cache. Existence is the only
// check performed; on success the flow holds the stop's display details.
func (s *Selection) Validate() error {
	if s.phase == PhaseIdle {
		return fmt.Errorf("no selection in progress")
	}
	s.phase = PhaseValidating
	stop, ok := s.cache.Lookup(s.input)
	if !ok {
		s.phase = PhaseInvalid
		s.candidate = routes.Stop{}
		s.message = fmt.Sprintf("stop %q not found", s.input)
		return fmt.Errorf("%w: %s", feeds.ErrValidationFailed, s.input)
	}
	s.phase = PhaseValid
	s.candidate = stop
	s.message = fmt.Sprintf("%s (line %s)", stop.Name, stop.Line)
	return nil
}

// SaveEnabled reports whether a save action is currently allowed.
func (s *Selection) SaveEnabled() bool { return s.phase == PhaseValid }

// Save commits the validated stop and returns it, closing the modal. Only a
// validated flow can save; anything else is a no-op.
func (s *Selection) Save() (routes.Stop, bool) {
	if s.phase != PhaseValid {
		return routes.Stop{}, false
	}
	stop := s.candidate
	s.reset()
	return stop, true
}

// Cancel discards the in-progress edit from any state without committing.
func (s *Selection) Cancel() {
	s.reset()
}

func (s *Selection) reset() {
	s.phase = PhaseIdle
	s.input = ""
	s.candidate = routes.Stop{}
	s.message = ""
}
