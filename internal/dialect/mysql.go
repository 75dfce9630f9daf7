package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"db-sync/internal/schema"
)

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) Tables(db *sql.DB, schemaName string) ([]string, error) {
	rows, err := db.Query(`SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`, schemaName)
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

func (d *MysqlDialect) TableExists(db *sql.DB, schemaName, table string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`, schemaName, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return n > 0, nil
}

func (d *MysqlDialect) Columns(db *sql.DB, schemaName, table string) (map[string]schema.Column, error) {
	rows, err := db.Query(`SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_KEY, COLUMN_DEFAULT
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`, schemaName, table)
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
			PrimaryKey: strings.Contains(colKey.String, "PRI"),
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
		return nil, fmt.Errorf("table %s does not exist in schema %s", table, schemaName)
	}
	return cols, nil
}

func (d *MysqlDialect) TypeSQL(t schema.LogicalType) string {
	switch t {
	case schema.TypeInteger:
		return "INT"
	case schema.TypeTimestamp:
		return "BIGINT"
	case schema.TypeFloat:
		return "DOUBLE"
	case schema.TypeDateTime:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func (d *MysqlDialect) CreateTableSQL(t *schema.Table) string {
	return CreateTableSQL(d, t, true)
}

func (d *MysqlDialect) AddColumnSQL(table string, col schema.Column) string {
	return AddColumnSQL(d, table, col)
}

func (d *MysqlDialect) InsertSQL(table string, cols []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(table), strings.Join(QuoteAll(d, cols), ", "), vals)
}

// UpsertSQL skips duplicate keys via a self-assigning ON DUPLICATE KEY
// UPDATE. INSERT IGNORE would also downgrade NOT NULL violations to
// warnings and insert mangled rows.
func (d *MysqlDialect) UpsertSQL(table string, cols []string, keys []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	if len(keys) == 0 {
		return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (%s)",
			d.QuoteIdent(table), strings.Join(QuoteAll(d, cols), ", "), vals)
	}
	k := d.QuoteIdent(keys[0])
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s = %s",
		d.QuoteIdent(table), strings.Join(QuoteAll(d, cols), ", "), vals, k, k)
}

func (d *MysqlDialect) Placeholder(index int) string { return "?" }

func (d *MysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *MysqlDialect) SchemaName(input string) string { return input }
