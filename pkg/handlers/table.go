package handlers

import (
    "sync"
    "time"

    "twinlink/pkg/operation"
)

type tableEntry struct {
    kind    operation.Kind
    created time.Time
}

// Table is the correlation table pairing an outstanding request id with the
// operation kind that issued it. Insert and Take may run from different
// link callbacks concurrently; every operation is a single critical
// section, so no caller observes a half-updated entry.
type Table struct {
    mu      sync.Mutex
    entries map[string]tableEntry
    nowFn   func() time.Time
}

func NewTable() *Table {
    return &Table{entries: make(map[string]tableEntry), nowFn: time.Now}
}

// Insert records id -> kind. At most one live entry exists per id; callers
// never reuse an id while its entry is live, so a plain overwrite is fine.
func (t *Table) Insert(id string, kind operation.Kind) {
    t.mu.Lock()
    t.entries[id] = tableEntry{kind: kind, created: t.nowFn()}
    t.mu.Unlock()
}

// Take looks up and removes the entry for id. A response id matches exactly
// once; a second Take behaves as not-found.
func (t *Table) Take(id string) (operation.Kind, bool) {
    t.mu.Lock()
    defer t.mu.Unlock()
    e, ok := t.entries[id]
    if !ok {
        return operation.KindUnknown, false
    }
    delete(t.entries, id)
    return e.kind, true
}

// Len returns the number of outstanding entries.
func (t *Table) Len() int {
    t.mu.Lock()
    defer t.mu.Unlock()
    return len(t.entries)
}

// Sweep drops entries older than maxAge and returns how many were removed.
// The server may never answer a request; callers that care run this
// periodically to bound the leak.
func (t *Table) Sweep(maxAge time.Duration) int {
    t.mu.Lock()
    defer t.mu.Unlock()
    cutoff := t.nowFn().Add(-maxAge)
    n := 0
    for id, e := range t.entries {
        if e.created.Before(cutoff) {
            delete(t.entries, id)
            n++
        }
    }
    return n
}
