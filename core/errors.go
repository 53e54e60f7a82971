package core

import "fmt"

// PreconditionError reports a phase entered without the output of its
// predecessor, e.g. information gathering without a requirement spec. It is
// terminal for the invocation that raised it: the coordinator records and
// counts it once and does not re-attempt in process.
type PreconditionError struct {
	Phase  Phase
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition for phase %s not met: %s", e.Phase, e.Reason)
}

// AdapterError wraps a failure returned by a capability provider. Providers
// evolve independently and fail in arbitrary ways; the controller converts
// every such failure into an AdapterError at the handler boundary and records
// it on the session instead of propagating it to callers.
type AdapterError struct {
	Capability string
	Err        error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s adapter error: %v", e.Capability, e.Err)
}

// Unwrap returns the underlying provider error.
func (e *AdapterError) Unwrap() error { return e.Err }

// PersistenceError reports a failed session record read or write. Write
// failures are logged and absorbed (the cached record stays authoritative);
// an unreadable durable record surfaces as an operation error.
type PersistenceError struct {
	Op        string
	SessionID string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session %s: %s failed: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying storage error.
func (e *PersistenceError) Unwrap() error { return e.Err }

// RetryExhaustedError marks a session that consumed the retry budget for its
// current phase. Raising it moves the session to PhaseFailed.
type RetryExhaustedError struct {
	Phase    Phase
	Attempts int
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("phase %s failed after %d attempts", e.Phase, e.Attempts)
}
