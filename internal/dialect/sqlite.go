package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"db-sync/internal/schema"
)

// SqliteDialect covers the file-based engine. SQLite has no schema concept
// worth speaking of; the schemaName argument is ignored throughout.
type SqliteDialect struct{}

func (d *SqliteDialect) Name() string { return "sqlite3" }

func (d *SqliteDialect) Tables(db *sql.DB, schemaName string) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (d *SqliteDialect) TableExists(db *sql.DB, schemaName, table string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return n > 0, nil
}

func (d *SqliteDialect) Columns(db *sql.DB, schemaName, table string) (map[string]schema.Column, error) {
	// PRAGMA table_info does not accept bound parameters.
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", d.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]schema.Column)
	for rows.Next() {
		var (
			cid     int
			name    string
			rawType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &rawType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", table, err)
		}
		col := schema.Column{
			Name:       name,
			Type:       schema.NormalizeType(rawType),
			RawType:    rawType,
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk > 0,
		}
		if dflt.Valid {
			col.Default = strings.Trim(dflt.String, "'")
		}
		cols[name] = col
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	return cols, nil
}

func (d *SqliteDialect) TypeSQL(t schema.LogicalType) string {
	switch t {
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeTimestamp:
		return "BIGINT"
	case schema.TypeFloat:
		return "REAL"
	case schema.TypeDateTime:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func (d *SqliteDialect) CreateTableSQL(t *schema.Table) string {
	return CreateTableSQL(d, t, true)
}

func (d *SqliteDialect) AddColumnSQL(table string, col schema.Column) string {
	return AddColumnSQL(d, table, col)
}

func (d *SqliteDialect) InsertSQL(table string, cols []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(table), strings.Join(QuoteAll(d, cols), ", "), vals)
}

// UpsertSQL scopes the conflict clause to the key columns, so a re-run
// skips rows that already arrived while every other constraint still fails
// loudly. INSERT OR IGNORE would swallow NOT NULL violations too.
func (d *SqliteDialect) UpsertSQL(table string, cols []string, keys []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	if len(keys) == 0 {
		return fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
			d.QuoteIdent(table), strings.Join(QuoteAll(d, cols), ", "), vals)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		d.QuoteIdent(table), strings.Join(QuoteAll(d, cols), ", "), vals,
		strings.Join(QuoteAll(d, keys), ", "))
}

func (d *SqliteDialect) Placeholder(index int) string { return "?" }

func (d *SqliteDialect) QuoteIdent(name string) string { return quoteDouble(name) }

func (d *SqliteDialect) SchemaName(input string) string { return "" }
