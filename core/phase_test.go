package core

import "testing"

func TestPhase_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Phase
		ok       bool
	}{
		{PhaseEngagement, PhaseEngagement, true},
		{PhaseEngagement, PhaseInformationGathering, true},
		{PhaseEngagement, PhaseFailed, true},
		{PhaseEngagement, PhaseSynthesis, false},
		{PhaseEngagement, PhaseComplete, false},
		{PhaseInformationGathering, PhaseSynthesis, true},
		{PhaseInformationGathering, PhaseFailed, true},
		{PhaseInformationGathering, PhaseEngagement, false},
		{PhaseSynthesis, PhaseComplete, true},
		{PhaseSynthesis, PhaseFailed, true},
		{PhaseSynthesis, PhaseInformationGathering, false},
		{PhaseComplete, PhaseEngagement, false},
		{PhaseComplete, PhaseFailed, false},
		{PhaseFailed, PhaseEngagement, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestPhase_Terminal(t *testing.T) {
	for _, p := range []Phase{PhaseEngagement, PhaseInformationGathering, PhaseSynthesis} {
		if p.Terminal() {
			t.Errorf("%s should not be terminal", p)
		}
	}
	for _, p := range []Phase{PhaseComplete, PhaseFailed} {
		if !p.Terminal() {
			t.Errorf("%s should be terminal", p)
		}
	}
	if Phase("bogus").Terminal() {
		t.Error("unknown phase should not report terminal")
	}
}

func TestValidateTransition(t *testing.T) {
	if err := ValidateTransition(PhaseEngagement, PhaseInformationGathering); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateTransition(PhaseComplete, PhaseSynthesis); err == nil {
		t.Error("expected error leaving a terminal phase")
	}
	if err := ValidateTransition(Phase("bogus"), PhaseFailed); err == nil {
		t.Error("expected error for unknown phase")
	}
}
