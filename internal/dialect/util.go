package dialect

import (
	"fmt"
	"strings"

	"db-sync/internal/schema"
)

// GeneratePlaceholders is a helper function to create a slice of placeholder strings.
// It takes the number of placeholders needed and a function that returns the placeholder for a given index.
// It returns a comma-separated string of the generated placeholders.
func GeneratePlaceholders(count int, placeholderFunc func(int) string) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = placeholderFunc(i)
	}
	return strings.Join(placeholders, ", ")
}

// QuoteAll quotes every identifier with the dialect's quoting rule.
func QuoteAll(d Dialect, names []string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteIdent(n)
	}
	return quoted
}

// DefaultLiteral renders a canonical default value as a SQL literal.
func DefaultLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ColumnDef renders one column definition for CREATE TABLE / ALTER TABLE.
// inlinePK controls whether a single-column primary key is declared on the
// column itself (engines with composite keys get a table-level clause).
func ColumnDef(d Dialect, col schema.Column, inlinePK bool) string {
	var b strings.Builder
	b.WriteString(d.QuoteIdent(col.Name))
	b.WriteString(" ")
	b.WriteString(d.TypeSQL(col.Type))
	if col.PrimaryKey && inlinePK {
		b.WriteString(" PRIMARY KEY")
	}
	if !col.Nullable && !col.PrimaryKey {
		b.WriteString(" NOT NULL")
	}
	if col.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(DefaultLiteral(col.Default))
	}
	return b.String()
}

// CreateTableSQL builds a CREATE TABLE statement from a canonical table
// spec. Single-column primary keys are declared inline; composite keys get
// a table-level PRIMARY KEY clause.
func CreateTableSQL(d Dialect, t *schema.Table, ifNotExists bool) string {
	pk := t.PrimaryKey()
	inlinePK := len(pk) == 1

	defs := make([]string, 0, len(t.Columns)+1)
	for _, col := range t.Columns {
		defs = append(defs, ColumnDef(d, col, inlinePK))
	}
	if len(pk) > 1 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(QuoteAll(d, pk), ", ")))
	}

	clause := "CREATE TABLE"
	if ifNotExists {
		clause = "CREATE TABLE IF NOT EXISTS"
	}
	return fmt.Sprintf("%s %s (%s)", clause, d.QuoteIdent(t.Name), strings.Join(defs, ", "))
}

// AddColumnSQL builds the additive alteration for one missing column.
func AddColumnSQL(d Dialect, table string, col schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.QuoteIdent(table), ColumnDef(d, col, false))
}

// CountSQL builds the row-count query used by the verification pass.
func CountSQL(d Dialect, table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QuoteIdent(table))
}

// quoteDouble is the ANSI identifier quoting shared by several dialects.
func quoteDouble(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
