package engine

import (
	"database/sql"

	"db-sync/internal/dialect"
	"db-sync/internal/schema"
)

// DefaultBatchSize bounds transaction size and memory during bulk copy:
// one commit per this many rows.
const DefaultBatchSize = 100

// Context carries everything one migration run needs: both engine handles
// with their dialects, the canonical schema registry, and the allow-list
// of legacy tables. It is passed explicitly into every component; the
// engine keeps no package-level state. Source and target may point at the
// same database for in-place reconciliation.
type Context struct {
	Source        *sql.DB
	SourceDialect dialect.Dialect
	SourceSchema  string

	Target        *sql.DB
	TargetDialect dialect.Dialect
	TargetSchema  string

	Registry *schema.Registry

	// LegacyTables names tables that carry data but have no canonical
	// model; they are copied by column intersection.
	LegacyTables []string

	BatchSize int
}
