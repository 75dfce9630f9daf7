package dialect

import (
	"database/sql"

	"db-sync/internal/schema"
)

// Dialect abstracts database-specific operations: introspection of a live
// database, the DDL vocabulary used to heal it, and the DML used to copy
// rows into it.
type Dialect interface {
	Name() string

	// Introspection
	Tables(db *sql.DB, schemaName string) ([]string, error)
	TableExists(db *sql.DB, schemaName, table string) (bool, error)
	Columns(db *sql.DB, schemaName, table string) (map[string]schema.Column, error)

	// DDL vocabulary
	TypeSQL(t schema.LogicalType) string
	CreateTableSQL(t *schema.Table) string
	AddColumnSQL(table string, col schema.Column) string

	// DML
	InsertSQL(table string, cols []string) string
	UpsertSQL(table string, cols []string, keys []string) string
	Placeholder(index int) string // Returns ?, $1, @p1, :1, etc.
	QuoteIdent(name string) string

	// Helpers
	SchemaName(input string) string
}
