package rowflow

import "context"

// DefaultBatchSize is the lookup concurrency fallback when a LookupSource
// does not override BatchSize (batching disabled by default).
const DefaultBatchSize = 1

// LookupSource is an external enrichment provider keyed by a single Value,
// returning one or more field rows. Join defaults to wrapping Lookup's
// single row; sources that can genuinely fan out to multiple matches (a
// join, not just a keyed get) override Join directly.
type LookupSource interface {
	// Lookup returns exactly one row of values, one per requested field, in
	// fields order. Fields not found are Null.
	Lookup(ctx context.Context, key Value, fields []string) ([]Value, error)
	// Join returns zero or more matching rows, one per match, each holding
	// one value per requested field. The default behavior (via
	// DefaultJoin) wraps Lookup's single row.
	Join(ctx context.Context, key Value, fields []string) ([][]Value, error)
	// BatchSize bounds how many keys this source will resolve concurrently
	// from a single upstream batch.
	BatchSize() int
	// Dump renders a diagnostic description of this source's configuration
	// (never secrets).
	Dump() map[string]any
}

// DefaultJoin implements the trait-default behavior for LookupSource
// implementations that have no native multi-row join: it wraps Lookup's
// single result row.
func DefaultJoin(ctx context.Context, src LookupSource, key Value, fields []string) ([][]Value, error) {
	row, err := src.Lookup(ctx, key, fields)
	if err != nil {
		return nil, err
	}
	return [][]Value{row}, nil
}
