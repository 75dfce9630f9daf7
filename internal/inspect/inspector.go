package inspect

import (
	"database/sql"
	"fmt"
	"log"

	"db-sync/internal/dialect"
	"db-sync/internal/schema"
)

// Inspector reads the actual structure of a live database through the
// engine's dialect. It never mutates anything.
type Inspector struct {
	DB      *sql.DB
	Dialect dialect.Dialect
	Schema  string
}

func New(db *sql.DB, d dialect.Dialect, schemaName string) *Inspector {
	return &Inspector{DB: db, Dialect: d, Schema: d.SchemaName(schemaName)}
}

// Tables lists the tables physically present in the database.
func (i *Inspector) Tables() ([]string, error) {
	tables, err := i.Dialect.Tables(i.DB, i.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate tables: %w", err)
	}
	return tables, nil
}

func (i *Inspector) TableExists(name string) (bool, error) {
	return i.Dialect.TableExists(i.DB, i.Schema, name)
}

// Columns returns the live column set of one table, keyed by column name.
func (i *Inspector) Columns(table string) (map[string]schema.Column, error) {
	return i.Dialect.Columns(i.DB, i.Schema, table)
}

// ColumnsForAll introspects every named table. A table that cannot be
// introspected is logged and skipped; it never blocks the others.
func (i *Inspector) ColumnsForAll(tables []string) map[string]map[string]schema.Column {
	out := make(map[string]map[string]schema.Column, len(tables))
	for _, t := range tables {
		cols, err := i.Columns(t)
		if err != nil {
			log.Printf("[WARN] skipping table %s: %v", t, err)
			continue
		}
		out[t] = cols
	}
	return out
}
