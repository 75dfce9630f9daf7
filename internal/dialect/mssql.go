package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"db-sync/internal/schema"
)

type MSSQLDialect struct{}

func (d *MSSQLDialect) Name() string { return "sqlserver" }

func (d *MSSQLDialect) Tables(db *sql.DB, schemaName string) ([]string, error) {
	rows, err := db.Query(`SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`, d.SchemaName(schemaName))
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

func (d *MSSQLDialect) TableExists(db *sql.DB, schemaName, table string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2`, d.SchemaName(schemaName), table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return n > 0, nil
}

func (d *MSSQLDialect) Columns(db *sql.DB, schemaName, table string) (map[string]schema.Column, error) {
	rows, err := db.Query(`SELECT
		c.COLUMN_NAME,
		c.DATA_TYPE,
		c.IS_NULLABLE,
		CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 'PRI' ELSE '' END,
		c.COLUMN_DEFAULT
	FROM INFORMATION_SCHEMA.COLUMNS c
	LEFT JOIN (
		SELECT kcu.TABLE_NAME, kcu.COLUMN_NAME
		FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
			ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
		WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND tc.TABLE_SCHEMA = @p1
	) pk ON c.TABLE_NAME = pk.TABLE_NAME AND c.COLUMN_NAME = pk.COLUMN_NAME
	WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
	ORDER BY c.ORDINAL_POSITION`, d.SchemaName(schemaName), table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]schema.Column)
	for rows.Next() {
		var name, rawType, isNull, colKey string
		var dflt sql.NullString
		if err := rows.Scan(&name, &rawType, &isNull, &colKey, &dflt); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", table, err)
		}
		col := schema.Column{
			Name:       name,
			Type:       schema.NormalizeType(rawType),
			RawType:    rawType,
			Nullable:   isNull == "YES",
			PrimaryKey: colKey == "PRI",
		}
		if dflt.Valid {
			col.Default = strings.Trim(dflt.String, "()'")
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

func (d *MSSQLDialect) TypeSQL(t schema.LogicalType) string {
	switch t {
	case schema.TypeInteger:
		return "INT"
	case schema.TypeTimestamp:
		return "BIGINT"
	case schema.TypeFloat:
		return "FLOAT"
	case schema.TypeDateTime:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

// CreateTableSQL emits plain CREATE TABLE; T-SQL has no IF NOT EXISTS
// clause, so the reconciler treats an "already exists" error as success.
func (d *MSSQLDialect) CreateTableSQL(t *schema.Table) string {
	return CreateTableSQL(d, t, false)
}

// AddColumnSQL diverges from the shared builder: T-SQL spells the
// alteration ADD, not ADD COLUMN.
func (d *MSSQLDialect) AddColumnSQL(table string, col schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", d.QuoteIdent(table), ColumnDef(d, col, false))
}

func (d *MSSQLDialect) InsertSQL(table string, cols []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(table), strings.Join(QuoteAll(d, cols), ", "), vals)
}

// UpsertSQL guards the insert with a keyed existence check. Named @pN
// parameters let the key columns reuse the same bound values as the insert
// list, so callers pass one flat row slice either way.
func (d *MSSQLDialect) UpsertSQL(table string, cols []string, keys []string) string {
	insert := d.InsertSQL(table, cols)
	if len(keys) == 0 {
		return insert
	}
	conds := make([]string, 0, len(keys))
	for _, k := range keys {
		for i, c := range cols {
			if strings.EqualFold(c, k) {
				conds = append(conds, fmt.Sprintf("%s = %s", d.QuoteIdent(k), d.Placeholder(i)))
				break
			}
		}
	}
	return fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM %s WHERE %s) %s",
		d.QuoteIdent(table), strings.Join(conds, " AND "), insert)
}

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}

func (d *MSSQLDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (d *MSSQLDialect) SchemaName(input string) string {
	if input == "" {
		return "dbo"
	}
	return input
}
