// Package txn implements the optimistic transaction engine: per-client
// command queueing under MULTI, the WATCH/UNWATCH check-and-set registry,
// and the EXEC replay algorithm. It is the hard part of the command path
// named "TransactionState" and "WatchRegistry" in the specification this
// codebase follows; everything else (argument parsing, the keyspace, the
// dispatcher proper) is a collaborator passed in through Hooks.
package txn

import (
	"sync"

	"keystone/internal/resp"
)

// CommandFlags classifies a registered command for the purposes of
// cmd_flags_union and the read-only-replica EXEC check.
type CommandFlags uint8

const (
	FlagReadOnly CommandFlags = 1 << iota
	FlagWrite
	FlagAdmin
)

// QueuedCommand is one command buffered between MULTI and EXEC. It holds
// its own copy of the argv slice; the queue element's copy is what
// propagation machinery sees once Commit has run it, so a command that
// rewrites its own argv (e.g. SPOP rewriting itself as SREM) is replayed
// faithfully in the propagation stream.
type QueuedCommand struct {
	Name string
	Argv []resp.Value
}

// ClientState is the per-client slice of TransactionState named in the
// spec: the flag bitset (IN_MULTI / DIRTY_CAS / DIRTY_EXEC) plus the queued
// command buffer and the union of flags of everything queued so far.
type ClientState struct {
	InMulti    bool
	DirtyCAS   bool
	DirtyExec  bool
	Queue      []QueuedCommand
	FlagsUnion CommandFlags
}

func newClientState() *ClientState {
	return &ClientState{Queue: make([]QueuedCommand, 0, 4)}
}

func (s *ClientState) reset() {
	s.InMulti = false
	s.DirtyCAS = false
	s.DirtyExec = false
	s.Queue = s.Queue[:0]
	s.FlagsUnion = 0
}

// Hooks are the engine's external collaborators — the dispatcher, the
// replication/AOF propagation path, and the monitor broadcaster. All non-goals
// of this package; Engine only calls into them at the points the spec names.
type Hooks struct {
	// Lookup returns the flags of a registered command, or ok=false if
	// name is not a known command (used to flag DIRTY_EXEC at queue time
	// and to compute cmd_flags_union).
	Lookup func(name string) (flags CommandFlags, ok bool)

	// Call executes one command for client against its current database
	// and returns the reply. This is the dispatcher's `call`; it is never
	// invoked by anything in this package except Commit's replay loop.
	Call func(client string, db int, name string, argv []resp.Value) (resp.Value, error)

	// ReadOnlyReplicaActive reports whether this instance is currently a
	// non-loading read-only replica with a connected master (spec.md
	// §4.1 step 4, minus the "client is not the master-feed client" part,
	// which Commit's isMasterLink parameter covers).
	ReadOnlyReplicaActive func() bool

	// PropagateMulti forwards a synthetic MULTI to the AOF/replication
	// path, the first time a write command is about to run inside EXEC.
	PropagateMulti func(db int)

	// PropagateExec forwards the matching synthetic EXEC once the block
	// finishes, only called if PropagateMulti was. flippedToReplica is
	// true if this instance became a replica mid-block, in which case
	// the caller must also append the literal terminator bytes to the
	// replication backlog (spec.md §9).
	PropagateExec func(db int, flippedToReplica bool)

	// RoleFlippedToReplica is polled once at the end of a propagated
	// block to detect a master-to-replica transition during EXEC.
	RoleFlippedToReplica func() bool

	// NotifyMonitor is called once per EXEC, after the block has run, so
	// monitors observe MULTI, EXEC, then the queued commands in that
	// order (spec.md §4.1 step 11).
	NotifyMonitor func(client string, db int, queue []QueuedCommand)
}

// Engine owns the per-client transaction states and the watch registry.
// There is one Engine per server; every client is identified by a stable
// opaque string (the connection id).
type Engine struct {
	mu      sync.Mutex
	clients map[string]*ClientState
	watch   *WatchRegistry
	hooks   Hooks
}

func NewEngine(hooks Hooks) *Engine {
	return &Engine{
		clients: make(map[string]*ClientState),
		watch:   NewWatchRegistry(),
		hooks:   hooks,
	}
}

func (e *Engine) stateLocked(client string) *ClientState {
	s, ok := e.clients[client]
	if !ok {
		s = newClientState()
		e.clients[client] = s
	}
	return s
}

// IsInMulti reports whether client currently has an open transaction.
func (e *Engine) IsInMulti(client string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.clients[client]
	return ok && s.InMulti
}

// Begin implements MULTI. Flags other than IN_MULTI (in particular
// DIRTY_CAS from a prior WATCH) are left untouched across the MULTI
// boundary, per spec.
func (e *Engine) Begin(client string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stateLocked(client)
	if s.InMulti {
		return ErrNestedMulti
	}
	s.InMulti = true
	return nil
}

// Enqueue implements the dispatcher's queueing path for a command arriving
// while IN_MULTI. name/argv are copied into the queue; argv is not retained
// past this call by the caller. Does nothing if the client is not
// IN_MULTI (programmer error — the caller should have checked first).
func (e *Engine) Enqueue(client, name string, argv []resp.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stateLocked(client)
	if !s.InMulti {
		return
	}
	cp := make([]resp.Value, len(argv))
	copy(cp, argv)
	s.Queue = append(s.Queue, QueuedCommand{Name: name, Argv: cp})
	if flags, ok := e.hooks.Lookup(name); ok {
		s.FlagsUnion |= flags
	}
}

// FlagError idempotently sets DIRTY_EXEC if client is IN_MULTI. Called by
// the dispatcher when a command is rejected at parse/lookup/arity time
// while queueing (spec.md §4.1).
func (e *Engine) FlagError(client string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.clients[client]
	if ok && s.InMulti {
		s.DirtyExec = true
	}
}

// Discard implements DISCARD: releases the queue, clears IN_MULTI |
// DIRTY_CAS | DIRTY_EXEC, and unwatches all keys for the client.
func (e *Engine) Discard(client string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.clients[client]
	if !ok || !s.InMulti {
		return ErrNoMultiDiscard
	}
	s.reset()
	e.watch.unwatchAllLocked(client)
	return nil
}

// Watch implements WATCH for one key: rejects if the client is IN_MULTI,
// otherwise registers the watch.
func (e *Engine) Watch(client string, db int, key string) error {
	e.mu.Lock()
	s, ok := e.clients[client]
	if ok && s.InMulti {
		e.mu.Unlock()
		return ErrWatchInsideMulti
	}
	e.mu.Unlock()
	e.watch.Watch(client, db, key)
	return nil
}

// UnwatchAll implements UNWATCH: unconditionally unwatches all keys and
// clears DIRTY_CAS only. DIRTY_EXEC is deliberately left untouched — a
// queueing-time error is not forgiven by UNWATCH (spec.md §4.4, §9).
func (e *Engine) UnwatchAll(client string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.watch.unwatchAllLocked(client)
	if s, ok := e.clients[client]; ok {
		s.DirtyCAS = false
	}
}

// Reset implements the RESET command's transaction cleanup: equivalent to
// DISCARD that never errors when there is nothing to discard, plus
// UNWATCH's DIRTY_CAS clear and (unlike UNWATCH) a DIRTY_EXEC clear too —
// RESET is a full return to a freshly-connected client's state.
func (e *Engine) Reset(client string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.watch.unwatchAllLocked(client)
	if s, ok := e.clients[client]; ok {
		s.reset()
	}
}

// Close releases all state held for client (DISCARD + unwatch_all),
// equivalent to what a client disconnecting mid-transaction triggers
// (spec.md §5).
func (e *Engine) Close(client string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.watch.unwatchAllLocked(client)
	delete(e.clients, client)
}

// Touch implements the WatchRegistry hook the keyspace calls on every
// mutation, before replying to the writer. db with no watched keys at all
// is the fast path and returns immediately without touching the client map.
func (e *Engine) Touch(db int, key string) {
	if !e.watch.HasWatches(db) {
		return
	}
	watchers := e.watch.Watchers(db, key)
	if len(watchers) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range watchers {
		if s, ok := e.clients[c]; ok {
			s.DirtyCAS = true
		}
	}
}

// TouchOnFlush implements the FLUSHDB/FLUSHALL hook: every client watching
// a key in db (or every db, when all is true) is marked dirty if that key
// existed in the keyspace just before the flush. exists is evaluated
// against the pre-flush database so a watch on a key that was never there
// is unaffected, per spec.md §4.2.
func (e *Engine) TouchOnFlush(db int, all bool, exists func(db int, key string) bool) {
	clients := e.watch.Clients()
	if len(clients) == 0 {
		return
	}
	for _, c := range clients {
		for _, wk := range e.watch.WatchedKeys(c) {
			if !all && wk.DB != db {
				continue
			}
			if !exists(wk.DB, wk.Key) {
				continue
			}
			e.mu.Lock()
			if s, ok := e.clients[c]; ok {
				s.DirtyCAS = true
			}
			e.mu.Unlock()
		}
	}
}

// Commit implements EXEC. db is the client's current database; isMasterLink
// identifies the pseudo-client receiving the master's replication stream,
// which is exempt from the read-only-replica write check.
func (e *Engine) Commit(client string, db int, isMasterLink bool) (resp.Value, error) {
	e.mu.Lock()
	s, ok := e.clients[client]
	if !ok || !s.InMulti {
		e.mu.Unlock()
		return resp.Value{}, ErrNoMultiExec
	}

	if s.DirtyExec {
		s.reset()
		e.watch.unwatchAllLocked(client)
		e.mu.Unlock()
		e.notifyMonitor(client, db, nil)
		return resp.Value{}, ErrExecAborted
	}

	if s.DirtyCAS {
		s.reset()
		e.watch.unwatchAllLocked(client)
		e.mu.Unlock()
		e.notifyMonitor(client, db, nil)
		return resp.Value{Type: resp.BulkString, IsNull: true}, nil
	}

	if !isMasterLink && s.FlagsUnion&FlagWrite != 0 && e.hooks.ReadOnlyReplicaActive != nil && e.hooks.ReadOnlyReplicaActive() {
		s.reset()
		e.watch.unwatchAllLocked(client)
		e.mu.Unlock()
		e.notifyMonitor(client, db, nil)
		return resp.Value{}, ErrReadOnlyReplica
	}

	// Unwatch immediately: nothing further can affect this commit, and
	// doing it now avoids invalidation work against keys this commit is
	// about to mutate anyway.
	e.watch.unwatchAllLocked(client)

	queue := s.Queue
	s.Queue = nil
	e.mu.Unlock()

	results := make([]resp.Value, len(queue))
	multiPropagated := false
	for i, q := range queue {
		flags, _ := e.hooks.Lookup(q.Name)
		if !multiPropagated && flags&(FlagReadOnly|FlagAdmin) == 0 {
			if e.hooks.PropagateMulti != nil {
				e.hooks.PropagateMulti(db)
			}
			multiPropagated = true
		}

		reply, err := e.hooks.Call(client, db, q.Name, q.Argv)
		if err != nil {
			results[i] = resp.Value{Type: resp.Error, Str: err.Error()}
		} else {
			results[i] = reply
		}
	}

	if multiPropagated {
		flipped := false
		if e.hooks.RoleFlippedToReplica != nil {
			flipped = e.hooks.RoleFlippedToReplica()
		}
		if e.hooks.PropagateExec != nil {
			e.hooks.PropagateExec(db, flipped)
		}
	}

	e.mu.Lock()
	if s2, ok := e.clients[client]; ok {
		s2.reset()
	}
	e.mu.Unlock()

	e.notifyMonitor(client, db, queue)

	return resp.Value{Type: resp.Array, Array: results}, nil
}

func (e *Engine) notifyMonitor(client string, db int, queue []QueuedCommand) {
	if e.hooks.NotifyMonitor != nil {
		e.hooks.NotifyMonitor(client, db, queue)
	}
}
