// Package slowlog implements the fixed-capacity, FIFO slow-command log
// (spec.md §4.3): admission gated by a microsecond threshold, truncation
// of oversized argv, and GET/LEN/RESET/HELP inspection.
package slowlog

import (
	"fmt"
	"time"

	"keystone/internal/resp"
)

func nowUnix() int64 { return time.Now().Unix() }

// Constants are part of the wire contract for log consumers, not just
// implementation defaults (spec.md §4.3).
const (
	MaxArgc   = 32
	MaxString = 128
)

// Entry is one recorded slow command. Argv holds already-truncated,
// deep-copied argument strings — never the original value objects, so an
// asynchronous keyspace flush cannot free bytes a reader of the log still
// holds.
type Entry struct {
	ID         int64
	Timestamp  int64 // seconds since epoch
	DurationUs int64
	Argv       []string
	PeerID     string
	ClientName string
}

// Config is read fresh on every admission check, never cached, per
// spec.md's "read on each slow-log admission, not cached".
type Config struct {
	LogSlowerThan int64 // microseconds; negative disables admission
	MaxLen        int
}

// Log is a fixed-capacity FIFO of slow command entries.
type Log struct {
	cfg     func() Config
	entries []Entry
	nextID  int64
}

// New builds a Log whose admission threshold and capacity are read from
// cfg on every push, so a live CONFIG SET takes effect without restart.
func New(cfg func() Config) *Log {
	return &Log{cfg: cfg}
}

// PushIfNeeded admits argv as a new entry if durationUs meets the
// currently configured threshold, then trims from the tail until the log
// is within max_len. A disabled threshold (negative) is a no-op.
func (l *Log) PushIfNeeded(argv []resp.Value, durationUs int64, peerID, clientName string) {
	cfg := l.cfg()
	if cfg.LogSlowerThan < 0 {
		return
	}
	if durationUs < cfg.LogSlowerThan {
		return
	}

	l.nextID++
	e := Entry{
		ID:         l.nextID,
		Timestamp:  nowUnix(),
		DurationUs: durationUs,
		Argv:       truncateArgv(argv),
		PeerID:     peerID,
		ClientName: clientName,
	}

	l.entries = append([]Entry{e}, l.entries...)
	maxLen := cfg.MaxLen
	if maxLen < 0 {
		maxLen = 0
	}
	if len(l.entries) > maxLen {
		l.entries = l.entries[:maxLen]
	}
}

// Get returns the count newest entries, capped to however many entries
// actually exist. A negative count (SLOWLOG GET -1) returns all of them.
// Callers implementing the default-10-when-omitted rule do so themselves,
// since "omitted" and "explicitly 0" are different requests.
func (l *Log) Get(count int) []Entry {
	if count < 0 || count > len(l.entries) {
		count = len(l.entries)
	}
	out := make([]Entry, count)
	copy(out, l.entries[:count])
	return out
}

// Len returns the current entry count.
func (l *Log) Len() int { return len(l.entries) }

// Reset clears the log. The monotonic id counter is NOT reset, so ids
// stay strictly increasing across a RESET (spec.md §8 property: "ids
// differ by 1, newest has the larger id" must hold across resets too).
func (l *Log) Reset() { l.entries = nil }

func truncateArgv(argv []resp.Value) []string {
	strs := make([]string, 0, len(argv))
	for _, v := range argv {
		strs = append(strs, v.Str)
	}

	if len(strs) > MaxArgc {
		more := len(strs) - MaxArgc + 1
		strs = strs[:MaxArgc-1]
		strs = append(strs, fmt.Sprintf("... (%d more arguments)", more))
	}

	for i, s := range strs {
		if len(s) > MaxString {
			more := len(s) - MaxString
			strs[i] = fmt.Sprintf("%s... (%d more bytes)", s[:MaxString], more)
		}
	}
	return strs
}

// HelpText is the static SLOWLOG HELP reply, modeled on the original
// server's slowlogCommand help subcommand array.
var HelpText = []string{
	"SLOWLOG <subcommand> [<arg> [value] [opt] ...]. Subcommands are:",
	"GET [<count>]",
	"    Return top <count> entries from the slowlog (default: 10, -1 means all).",
	"LEN",
	"    Return the length of the slowlog.",
	"RESET",
	"    Reset the slowlog.",
	"HELP",
	"    Print this help.",
}
