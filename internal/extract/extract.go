// Package extract produces table descriptors from a schema source.
//
// Three backends are provided: a DDL text scanner for SQL schema files,
// and live introspectors for PostgreSQL and MySQL that read
// information_schema. All backends lower-case table names so graph
// lookups are exact-match; column names are kept verbatim.
package extract

import (
	"context"

	"github.com/MaxwellKnight/csvg/internal/table"
)

// Extractor turns a schema source into an ordered list of table
// descriptors. Each descriptor is independently valid; referenced tables
// need not exist in the result (the graph builder skips dangling foreign
// keys).
type Extractor interface {
	Extract(ctx context.Context) ([]*table.Descriptor, error)
}
