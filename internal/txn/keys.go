package txn

import "keystone/internal/resp"

// KeysTouchedBy maps a command name and its argv to the keys it writes, for
// the central Touch call-site in server.dispatch. The default assumes the
// first argument is the key, which covers the overwhelming majority of
// write commands (SET, LPUSH, HSET, SADD, ZADD, ...); the exceptions below
// are the commands whose key positions actually differ.
func KeysTouchedBy(name string, argv []resp.Value) []string {
	if len(argv) == 0 {
		return nil
	}

	switch name {
	case "DEL", "UNLINK", "EXISTS":
		keys := make([]string, 0, len(argv))
		for _, v := range argv {
			keys = append(keys, v.Str)
		}
		return keys

	case "MSET", "MSETNX":
		keys := make([]string, 0, len(argv)/2+1)
		for i := 0; i < len(argv); i += 2 {
			keys = append(keys, argv[i].Str)
		}
		return keys

	case "RENAME", "RENAMENX", "COPY":
		if len(argv) < 2 {
			return []string{argv[0].Str}
		}
		return []string{argv[0].Str, argv[1].Str}

	default:
		return []string{argv[0].Str}
	}
}
