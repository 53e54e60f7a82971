package core

import "fmt"

// Phase identifies a stage of the document pipeline. The zero value is not a
// valid phase; new sessions start in PhaseEngagement.
type Phase string

const (
	// PhaseEngagement is the conversational requirement-gathering stage.
	PhaseEngagement Phase = "engagement"
	// PhaseInformationGathering is the data enrichment stage.
	PhaseInformationGathering Phase = "information_gathering"
	// PhaseSynthesis is the document generation stage.
	PhaseSynthesis Phase = "synthesis"
	// PhaseComplete marks a successfully finished pipeline. Terminal.
	PhaseComplete Phase = "complete"
	// PhaseFailed marks a pipeline abandoned after exhausting its retry
	// budget. Terminal.
	PhaseFailed Phase = "failed"
)

// phaseTransitions is the authoritative transition table: each phase maps to
// the set of phases it may legally move to. Terminal phases map to the empty
// set. Engagement lists itself because a processed message that does not
// complete the requirement gathering leaves the session in engagement.
var phaseTransitions = map[Phase]map[Phase]struct{}{
	PhaseEngagement: {
		PhaseEngagement:           {},
		PhaseInformationGathering: {},
		PhaseFailed:               {},
	},
	PhaseInformationGathering: {
		PhaseSynthesis: {},
		PhaseFailed:    {},
	},
	PhaseSynthesis: {
		PhaseComplete: {},
		PhaseFailed:   {},
	},
	PhaseComplete: {},
	PhaseFailed:   {},
}

// Valid reports whether p is one of the defined pipeline phases.
func (p Phase) Valid() bool {
	_, ok := phaseTransitions[p]
	return ok
}

// Terminal reports whether the phase admits no further transitions.
func (p Phase) Terminal() bool {
	next, ok := phaseTransitions[p]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the transition p -> next is legal.
func (p Phase) CanTransitionTo(next Phase) bool {
	allowed, ok := phaseTransitions[p]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

// ValidatePhase returns an error if p is not a defined phase.
func ValidatePhase(p Phase) error {
	if !p.Valid() {
		return fmt.Errorf("invalid phase: %q", p)
	}
	return nil
}

// ValidateTransition returns an error unless from -> to is a legal move in
// the pipeline state machine.
func ValidateTransition(from, to Phase) error {
	if err := ValidatePhase(from); err != nil {
		return err
	}
	if err := ValidatePhase(to); err != nil {
		return err
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("invalid phase transition: %s -> %s", from, to)
	}
	return nil
}
