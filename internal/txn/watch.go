package txn

import "sync"

// WatchedKey identifies a single watched key within a single database.
// Equality is (db identity, key equality) — see spec.md §3.
type WatchedKey struct {
	DB  int
	Key string
}

// WatchRegistry is the bidirectional index between clients and the keys
// they watch: a reverse index per database (key -> ordered list of watching
// clients) and a forward index per client (ordered list of watched keys).
// Insertion order is preserved on both sides for deterministic iteration.
//
// WatchRegistry only knows about client identifiers; it has no notion of
// dirty flags or transaction state. Engine owns that and uses Watchers /
// WatchedKeys to decide which clients to mark dirty.
type WatchRegistry struct {
	mu       sync.Mutex
	byKey    map[int]map[string][]string // db -> key -> client ids (insertion order)
	byClient map[string][]WatchedKey     // client id -> watched keys (insertion order)
}

func NewWatchRegistry() *WatchRegistry {
	return &WatchRegistry{
		byKey:    make(map[int]map[string][]string),
		byClient: make(map[string][]WatchedKey),
	}
}

// Watch records client as watching db/key. No-op if already watching.
func (r *WatchRegistry) Watch(client string, db int, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, wk := range r.byClient[client] {
		if wk.DB == db && wk.Key == key {
			return
		}
	}

	r.byClient[client] = append(r.byClient[client], WatchedKey{DB: db, Key: key})

	dbKeys := r.byKey[db]
	if dbKeys == nil {
		dbKeys = make(map[string][]string)
		r.byKey[db] = dbKeys
	}
	dbKeys[key] = append(dbKeys[key], client)
}

// UnwatchAll removes every key the client is watching, eagerly reclaiming
// any key-mapping entry left with no watchers.
func (r *WatchRegistry) UnwatchAll(client string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unwatchAllLocked(client)
}

func (r *WatchRegistry) unwatchAllLocked(client string) {
	watched := r.byClient[client]
	if len(watched) == 0 {
		delete(r.byClient, client)
		return
	}

	for _, wk := range watched {
		dbKeys, ok := r.byKey[wk.DB]
		if !ok {
			panic(inconsistentWatchError{"client watches db with no key map: " + wk.Key})
		}
		watchers, ok := dbKeys[wk.Key]
		if !ok {
			panic(inconsistentWatchError{"client watches key with no watcher list: " + wk.Key})
		}
		idx := -1
		for i, c := range watchers {
			if c == client {
				idx = i
				break
			}
		}
		if idx < 0 {
			panic(inconsistentWatchError{"client missing from its own watcher list: " + wk.Key})
		}
		watchers = append(watchers[:idx], watchers[idx+1:]...)
		if len(watchers) == 0 {
			delete(dbKeys, wk.Key)
			if len(dbKeys) == 0 {
				delete(r.byKey, wk.DB)
			}
		} else {
			dbKeys[wk.Key] = watchers
		}
	}

	delete(r.byClient, client)
}

// Watchers returns the ordered client ids watching db/key, or nil.
func (r *WatchRegistry) Watchers(db int, key string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	dbKeys, ok := r.byKey[db]
	if !ok {
		return nil
	}
	w := dbKeys[key]
	if len(w) == 0 {
		return nil
	}
	out := make([]string, len(w))
	copy(out, w)
	return out
}

// HasWatches reports whether any key is currently watched in db. Used as
// touch's fast path: most writes happen with nobody watching.
func (r *WatchRegistry) HasWatches(db int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey[db]) > 0
}

// WatchedKeys returns client's current watch list, in watch order.
func (r *WatchRegistry) WatchedKeys(client string) []WatchedKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	wks := r.byClient[client]
	if len(wks) == 0 {
		return nil
	}
	out := make([]WatchedKey, len(wks))
	copy(out, wks)
	return out
}

// Clients returns every client id that currently watches at least one key.
// Used by touch_on_flush, which must visit every client's watch list rather
// than a single key's watcher list.
func (r *WatchRegistry) Clients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.byClient))
	for c, wks := range r.byClient {
		if len(wks) > 0 {
			out = append(out, c)
		}
	}
	return out
}
