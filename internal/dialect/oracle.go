package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"db-sync/internal/schema"
)

// OracleDialect operates on the current user's tables (USER_TABLES); the
// schemaName argument is ignored. Identifiers are left unquoted so Oracle's
// case-insensitive resolution applies.
type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) Tables(db *sql.DB, schemaName string) ([]string, error) {
	rows, err := db.Query(`SELECT TABLE_NAME FROM USER_TABLES ORDER BY TABLE_NAME`)
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

func (d *OracleDialect) TableExists(db *sql.DB, schemaName, table string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM USER_TABLES WHERE TABLE_NAME = UPPER(:1)`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return n > 0, nil
}

func (d *OracleDialect) Columns(db *sql.DB, schemaName, table string) (map[string]schema.Column, error) {
	// NUMBER needs the scale/precision split: NUMBER with a scale is a
	// decimal, a wide NUMBER is a big integer, anything else a plain one.
	rows, err := db.Query(`SELECT
		t.COLUMN_NAME,
		CASE
			WHEN t.DATA_TYPE = 'NUMBER' AND COALESCE(t.DATA_SCALE, 0) > 0 THEN 'DECIMAL'
			WHEN t.DATA_TYPE = 'NUMBER' AND COALESCE(t.DATA_PRECISION, 10) > 10 THEN 'BIGINT'
			WHEN t.DATA_TYPE = 'NUMBER' THEN 'INTEGER'
			ELSE t.DATA_TYPE
		END,
		t.NULLABLE,
		CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 'PRI' ELSE '' END,
		t.DATA_DEFAULT
	FROM USER_TAB_COLUMNS t
	LEFT JOIN (
		SELECT cc.TABLE_NAME, cc.COLUMN_NAME
		FROM USER_CONSTRAINTS c
		JOIN USER_CONS_COLUMNS cc ON c.CONSTRAINT_NAME = cc.CONSTRAINT_NAME
		WHERE c.CONSTRAINT_TYPE = 'P'
	) pk ON pk.TABLE_NAME = t.TABLE_NAME AND pk.COLUMN_NAME = t.COLUMN_NAME
	WHERE t.TABLE_NAME = UPPER(:1)
	ORDER BY t.COLUMN_ID`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]schema.Column)
	for rows.Next() {
		var name, rawType, nullable, colKey string
		var dflt sql.NullString
		if err := rows.Scan(&name, &rawType, &nullable, &colKey, &dflt); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", table, err)
		}
		col := schema.Column{
			Name:       name,
			Type:       schema.NormalizeType(rawType),
			RawType:    rawType,
			Nullable:   nullable == "Y",
			PrimaryKey: colKey == "PRI",
		}
		if dflt.Valid && strings.TrimSpace(dflt.String) != "" {
			col.Default = strings.Trim(strings.TrimSpace(dflt.String), "'")
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

func (d *OracleDialect) TypeSQL(t schema.LogicalType) string {
	switch t {
	case schema.TypeInteger:
		return "NUMBER(10)"
	case schema.TypeTimestamp:
		return "NUMBER(19)"
	case schema.TypeFloat:
		return "BINARY_DOUBLE"
	case schema.TypeDateTime:
		return "DATE"
	default:
		return "VARCHAR2(4000)"
	}
}

// CreateTableSQL emits plain CREATE TABLE; ORA-00955 from a concurrent or
// earlier run is treated as success by the reconciler.
func (d *OracleDialect) CreateTableSQL(t *schema.Table) string {
	return CreateTableSQL(d, t, false)
}

// Oracle spells the alteration ADD, not ADD COLUMN.
func (d *OracleDialect) AddColumnSQL(table string, col schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", d.QuoteIdent(table), ColumnDef(d, col, false))
}

func (d *OracleDialect) InsertSQL(table string, cols []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(table), strings.Join(cols, ", "), vals)
}

// UpsertSQL uses MERGE against DUAL when a key is known; the source row is
// bound once and referenced by alias, so callers pass one flat row slice.
func (d *OracleDialect) UpsertSQL(table string, cols []string, keys []string) string {
	if len(keys) == 0 {
		return d.InsertSQL(table, cols)
	}
	srcCols := make([]string, len(cols))
	insertVals := make([]string, len(cols))
	for i, c := range cols {
		srcCols[i] = fmt.Sprintf("%s AS %s", d.Placeholder(i), c)
		insertVals[i] = "s." + c
	}
	conds := make([]string, len(keys))
	for i, k := range keys {
		conds[i] = fmt.Sprintf("t.%s = s.%s", k, k)
	}
	return fmt.Sprintf(
		"MERGE INTO %s t USING (SELECT %s FROM DUAL) s ON (%s) WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)",
		d.QuoteIdent(table),
		strings.Join(srcCols, ", "),
		strings.Join(conds, " AND "),
		strings.Join(cols, ", "),
		strings.Join(insertVals, ", "),
	)
}

func (d *OracleDialect) Placeholder(index int) string {
	return fmt.Sprintf(":%d", index+1)
}

func (d *OracleDialect) QuoteIdent(name string) string { return name }

func (d *OracleDialect) SchemaName(input string) string { return input }
