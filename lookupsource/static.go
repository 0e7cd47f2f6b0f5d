// Package lookupsource provides in-memory LookupSource implementations
// used by this module's own tests and as a starting point for real
// sources. No concrete production transport (HTTP, SQL, Redis) is wired
// here: concrete lookup sources are a deployment concern, and a real
// deployment supplies its own rowflow.LookupSource.
package lookupsource

import (
	"context"
	"sort"
	"sync"

	"github.com/flowbase/rowflow"
)

// Static is an in-memory LookupSource keyed by a string form of the lookup
// key, holding a fixed table of field name -> Value per key. Multiple rows
// per key are supported so Join can exercise real one-to-many fan-out.
type Static struct {
	mu    sync.RWMutex
	table map[string][]map[string]rowflow.Value
	batch int
}

// NewStatic returns an empty Static source with the given batch size (0
// defaults to rowflow.DefaultBatchSize).
func NewStatic(batchSize int) *Static {
	if batchSize <= 0 {
		batchSize = rowflow.DefaultBatchSize
	}
	return &Static{table: make(map[string][]map[string]rowflow.Value), batch: batchSize}
}

// Put adds one row of fields under key, appending to any existing rows for
// that key (supporting one-to-many join semantics).
func (s *Static) Put(key string, fields map[string]rowflow.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[key] = append(s.table[key], fields)
}

func (s *Static) rowsFor(key rowflow.Value, fields []string) [][]rowflow.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.table[key.String()]
	out := make([][]rowflow.Value, 0, len(rows))
	for _, row := range rows {
		vals := make([]rowflow.Value, len(fields))
		for i, f := range fields {
			if v, ok := row[f]; ok {
				vals[i] = v
			} else {
				vals[i] = rowflow.Null
			}
		}
		out = append(out, vals)
	}
	return out
}

// Lookup returns the first matching row, or a row of Nulls if key is
// unknown.
func (s *Static) Lookup(ctx context.Context, key rowflow.Value, fields []string) ([]rowflow.Value, error) {
	rows := s.rowsFor(key, fields)
	if len(rows) == 0 {
		out := make([]rowflow.Value, len(fields))
		for i := range out {
			out[i] = rowflow.Null
		}
		return out, nil
	}
	return rows[0], nil
}

// Join returns every row matching key (possibly empty), supporting
// left-inner/left-outer join semantics at the stage level.
func (s *Static) Join(ctx context.Context, key rowflow.Value, fields []string) ([][]rowflow.Value, error) {
	return s.rowsFor(key, fields), nil
}

// BatchSize returns the configured concurrency.
func (s *Static) BatchSize() int { return s.batch }

// Dump renders the source's keys only, never its values, so a diagnostic
// dump cannot leak data.
func (s *Static) Dump() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.table))
	for k := range s.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return map[string]any{"type": "static", "keys": keys}
}

var _ rowflow.LookupSource = (*Static)(nil)
