package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"keystone/internal/resp"
	"keystone/internal/slowlog"
)

// RegisterSlowlogCommands registers the SLOWLOG command, backed by log.
func RegisterSlowlogCommands(registry *Registry, log *slowlog.Log) {
	registry.Register(&Command{
		Name:    "SLOWLOG",
		Arity:   -1,
		Handler: SlowlogHandler(log),
		Admin:   true,
	})
}

// SlowlogHandler handles SLOWLOG GET|LEN|RESET|HELP, a thin binding over
// internal/slowlog.Log (spec.md §4.4).
func SlowlogHandler(log *slowlog.Log) Handler {
	return func(args []resp.Value) (resp.Value, error) {
		if len(args) == 0 {
			return resp.Value{}, &CommandError{"ERR wrong number of arguments for 'slowlog' command"}
		}

		switch strings.ToUpper(args[0].Str) {
		case "GET":
			count := 10
			if len(args) >= 2 {
				n, err := strconv.Atoi(args[1].Str)
				if err != nil {
					return resp.Value{}, &CommandError{"ERR value is not an integer or out of range"}
				}
				count = n
			}
			entries := log.Get(count)
			out := make([]resp.Value, len(entries))
			for i, e := range entries {
				argv := make([]resp.Value, len(e.Argv))
				for j, a := range e.Argv {
					argv[j] = resp.Value{Type: resp.BulkString, Str: a}
				}
				out[i] = resp.Value{Type: resp.Array, Array: []resp.Value{
					{Type: resp.Integer, Int: e.ID},
					{Type: resp.Integer, Int: e.Timestamp},
					{Type: resp.Integer, Int: e.DurationUs},
					{Type: resp.Array, Array: argv},
					{Type: resp.BulkString, Str: e.PeerID},
					{Type: resp.BulkString, Str: e.ClientName},
				}}
			}
			return resp.Value{Type: resp.Array, Array: out}, nil

		case "LEN":
			return resp.Value{Type: resp.Integer, Int: int64(log.Len())}, nil

		case "RESET":
			log.Reset()
			return resp.Value{Type: resp.SimpleString, Str: "OK"}, nil

		case "HELP":
			out := make([]resp.Value, len(slowlog.HelpText))
			for i, l := range slowlog.HelpText {
				out[i] = resp.Value{Type: resp.BulkString, Str: l}
			}
			return resp.Value{Type: resp.Array, Array: out}, nil

		default:
			return resp.Value{}, &CommandError{fmt.Sprintf("ERR Unknown SLOWLOG subcommand or wrong number of arguments for '%s'", args[0].Str)}
		}
	}
}
