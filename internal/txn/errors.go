package txn

// Error is a simple-string error returned by the transaction engine. It is
// kept independent of the cmd package's CommandError so internal/txn has no
// dependency on internal/cmd (the dependency runs the other way: cmd.Command
// bindings call into txn.Engine).
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

var (
	// ErrNestedMulti is returned by Begin when the client already has an
	// open transaction.
	ErrNestedMulti = &Error{"ERR MULTI calls can not be nested"}

	// ErrNoMultiDiscard is returned by Discard outside a transaction.
	ErrNoMultiDiscard = &Error{"ERR DISCARD without MULTI"}

	// ErrNoMultiExec is returned by Commit outside a transaction.
	ErrNoMultiExec = &Error{"ERR EXEC without MULTI"}

	// ErrWatchInsideMulti is returned when WATCH is issued while IN_MULTI.
	ErrWatchInsideMulti = &Error{"ERR WATCH inside MULTI is not allowed"}

	// ErrExecAborted is Commit's reply when DIRTY_EXEC was set by a
	// queue-time failure.
	ErrExecAborted = &Error{"EXECABORT Transaction discarded because of previous errors."}

	// ErrReadOnlyReplica is Commit's reply when the queued block contains a
	// write command but this instance is now a read-only replica.
	ErrReadOnlyReplica = &Error{"ERR Transaction contains write commands but instance is now a read-only slave. EXEC aborted."}
)

// inconsistentWatchError is the panic value for a violation of the WatchRegistry's
// bidirectional invariant (a client recorded on one side of the index with
// no reciprocal entry on the other). Spec §7 requires this not be silently
// repaired.
type inconsistentWatchError struct{ detail string }

func (e inconsistentWatchError) Error() string {
	return "txn: watch registry inconsistency: " + e.detail
}
