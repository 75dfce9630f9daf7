package schema

import "strings"

// LogicalType is an engine-independent type family. Cross-engine
// compatibility is decided on these, never on raw type spellings.
type LogicalType string

const (
	TypeInteger   LogicalType = "integer"
	TypeTimestamp LogicalType = "timestamp" // stored as 64-bit unix time, not a native date column
	TypeFloat     LogicalType = "float"
	TypeText      LogicalType = "text"
	TypeDateTime  LogicalType = "datetime"
)

type Column struct {
	Name       string
	Type       LogicalType
	RawType    string // engine spelling as declared or introspected
	Nullable   bool
	PrimaryKey bool
	Default    interface{} // optional scalar
}

type Table struct {
	Name    string
	Columns []Column
}

// Column returns the column with the given name, matched case-insensitively.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKey returns the names of all primary-key columns in declaration order.
func (t *Table) PrimaryKey() []string {
	var keys []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

// TypeMismatch reports a column whose live type family differs from the
// canonical one. Reported only, never auto-corrected.
type TypeMismatch struct {
	Column    string
	Expected  LogicalType
	Actual    LogicalType
	ActualRaw string
}

type NullableMismatch struct {
	Column   string
	Expected bool
	Actual   bool
}

// TableDiff is the transient drift report for one table. A nil diff means
// zero drift. It is consumed once by the reconciler and by logs, never
// persisted.
type TableDiff struct {
	Table              string
	MissingTable       bool
	MissingColumns     []Column
	ExtraColumns       []string
	TypeMismatches     []TypeMismatch
	NullableMismatches []NullableMismatch
}

func (d *TableDiff) Empty() bool {
	return d == nil ||
		(!d.MissingTable &&
			len(d.MissingColumns) == 0 &&
			len(d.ExtraColumns) == 0 &&
			len(d.TypeMismatches) == 0 &&
			len(d.NullableMismatches) == 0)
}
