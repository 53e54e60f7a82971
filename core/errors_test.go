package core

import (
	"errors"
	"testing"
)

func TestAdapterError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &AdapterError{Capability: "enrichment", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("AdapterError should unwrap to its cause")
	}
	if err.Error() != "enrichment adapter error: boom" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestPreconditionError_Message(t *testing.T) {
	err := &PreconditionError{Phase: PhaseInformationGathering, Reason: "requirement spec missing"}
	want := "precondition for phase information_gathering not met: requirement spec missing"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestPersistenceError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &PersistenceError{Op: "put", SessionID: "s1", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("PersistenceError should unwrap to its cause")
	}
}

func TestRetryExhaustedError_Message(t *testing.T) {
	err := &RetryExhaustedError{Phase: PhaseSynthesis, Attempts: 3}
	if err.Error() != "phase synthesis failed after 3 attempts" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
