package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"db-sync/internal/schema"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Tables(db *sql.DB, schemaName string) ([]string, error) {
	rows, err := db.Query(`SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name`, d.SchemaName(schemaName))
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

func (d *PostgresDialect) TableExists(db *sql.DB, schemaName, table string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2`, d.SchemaName(schemaName), table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return n > 0, nil
}

func (d *PostgresDialect) Columns(db *sql.DB, schemaName, table string) (map[string]schema.Column, error) {
	// udt_name gives the concrete spelling (int4, int8, ...) where data_type
	// would report a verbose standard name.
	rows, err := db.Query(`SELECT
		c.column_name,
		c.udt_name,
		c.is_nullable,
		(SELECT 'PRI' FROM information_schema.table_constraints tc
		 JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name
		 WHERE tc.constraint_type = 'PRIMARY KEY'
		 AND kcu.table_schema = c.table_schema AND kcu.table_name = c.table_name AND kcu.column_name = c.column_name LIMIT 1),
		c.column_default
	FROM information_schema.columns c
	WHERE c.table_schema = $1 AND c.table_name = $2
	ORDER BY c.ordinal_position`, d.SchemaName(schemaName), table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]schema.Column)
	for rows.Next() {
		var name, rawType, isNull string
		var colKey, dflt sql.NullString
		if err := rows.Scan(&name, &rawType, &isNull, &colKey, &dflt); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", table, err)
		}
		col := schema.Column{
			Name:       name,
			Type:       schema.NormalizeType(rawType),
			RawType:    rawType,
			Nullable:   isNull == "YES",
			PrimaryKey: colKey.String == "PRI",
		}
		if dflt.Valid {
			col.Default = dflt.String
		}
		cols[name] = col
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s does not exist in schema %s", table, d.SchemaName(schemaName))
	}
	return cols, nil
}

func (d *PostgresDialect) TypeSQL(t schema.LogicalType) string {
	switch t {
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeTimestamp:
		return "BIGINT"
	case schema.TypeFloat:
		return "DOUBLE PRECISION"
	case schema.TypeDateTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (d *PostgresDialect) CreateTableSQL(t *schema.Table) string {
	return CreateTableSQL(d, t, true)
}

func (d *PostgresDialect) AddColumnSQL(table string, col schema.Column) string {
	return AddColumnSQL(d, table, col)
}

func (d *PostgresDialect) InsertSQL(table string, cols []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(table), strings.Join(QuoteAll(d, cols), ", "), vals)
}

// UpsertSQL targets the primary key when one is known so re-runs skip rows
// that already arrived; without a key it still suppresses duplicate-key
// failures from constraint collisions.
func (d *PostgresDialect) UpsertSQL(table string, cols []string, keys []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	conflict := "ON CONFLICT DO NOTHING"
	if len(keys) > 0 {
		conflict = fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(QuoteAll(d, keys), ", "))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) %s",
		d.QuoteIdent(table), strings.Join(QuoteAll(d, cols), ", "), vals, conflict)
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (d *PostgresDialect) QuoteIdent(name string) string { return quoteDouble(name) }

func (d *PostgresDialect) SchemaName(input string) string {
	if input == "" {
		return "public"
	}
	return input
}
