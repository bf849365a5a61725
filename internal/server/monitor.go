package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"keystone/internal/logger"
	"keystone/internal/txn"
)

// monitorHub broadcasts every executed command to clients that have issued
// MONITOR, the way redis-server's debug-listening clients observe the
// server-wide command stream. Nothing in the teacher implements MONITOR at
// all; this is the minimal collaborator the transaction engine's EXEC
// algorithm needs to call into (spec.md §4.1 step 11).
type monitorHub struct {
	mu        sync.Mutex
	listeners map[string]*Client
}

func newMonitorHub() *monitorHub {
	return &monitorHub{listeners: make(map[string]*Client)}
}

// Add registers client as a monitor. Commands it issues itself are still
// observed like any other client's.
func (h *monitorHub) Add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners[client.connID] = client
}

// Remove unregisters a monitor, called on connection close.
func (h *monitorHub) Remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.listeners, connID)
}

// NotifyCommand broadcasts one ordinary (non-transaction) command.
func (h *monitorHub) NotifyCommand(connID, addr, command string, args []string) {
	h.broadcast(formatMonitorLine(addr, command, args))
}

// NotifyExec implements the txn.Hooks.NotifyMonitor contract: broadcasts
// MULTI, then EXEC, then every queued command, in that order, so monitors
// see the transaction the way the client experienced it.
func (h *monitorHub) NotifyExec(client string, db int, queue []txn.QueuedCommand) {
	if len(h.listenersSnapshot()) == 0 {
		return
	}
	h.broadcast(formatMonitorLine(client, "MULTI", nil))
	h.broadcast(formatMonitorLine(client, "EXEC", nil))
	for _, q := range queue {
		argStrings := make([]string, len(q.Argv))
		for i, a := range q.Argv {
			argStrings[i] = a.Str
		}
		h.broadcast(formatMonitorLine(client, q.Name, argStrings))
	}
}

func (h *monitorHub) listenersSnapshot() []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Client, 0, len(h.listeners))
	for _, c := range h.listeners {
		out = append(out, c)
	}
	return out
}

func (h *monitorHub) broadcast(line string) {
	for _, c := range h.listenersSnapshot() {
		if err := c.writeRawAndFlush([]byte("+" + line + "\r\n")); err != nil {
			logger.Debugf("monitor broadcast to %s failed: %v", c.connID, err)
		}
	}
}

func formatMonitorLine(addr, command string, args []string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%.6f [0 %s] \"%s\"", float64(time.Now().UnixNano())/1e9, addr, command))
	for _, a := range args {
		b.WriteString(fmt.Sprintf(" %q", a))
	}
	return b.String()
}
