package callflow

// CallContext is the entire mutable state of one call.
//
// Call control invokes the flow through independent stateless webhooks,
// so nothing is kept in process memory between steps: the transport layer
// reconstructs this value from each callback's addressing parameters
// (path segments and the parent_sid query) on every invocation.
type CallContext struct {
	// SID is the provider identifier of the inbound call. Callbacks that
	// execute on a dialed party carry it as parent_sid, because the
	// dialed leg has a SID of its own.
	SID string

	// Seed keys the escalation roster; Index is the current attempt.
	// Both are zero outside the escalation machine.
	Seed  int64
	Index int
}
