package schema

import "strings"

// typeSpellings maps normalized engine spellings to logical types. Spellings
// are matched after lowercasing and stripping any length/precision suffix,
// so "VARCHAR(255)" and "varchar" land on the same entry.
var typeSpellings = map[string]LogicalType{
	// Integer family
	"int":       TypeInteger,
	"integer":   TypeInteger,
	"int2":      TypeInteger,
	"int4":      TypeInteger,
	"int32":     TypeInteger,
	"tinyint":   TypeInteger,
	"smallint":  TypeInteger,
	"mediumint": TypeInteger,
	"serial":    TypeInteger,
	"bool":      TypeInteger,
	"boolean":   TypeInteger,
	"bit":       TypeInteger,

	// Timestamp / big-integer family (unix time stored numerically)
	"bigint":          TypeTimestamp,
	"int8":            TypeTimestamp,
	"int64":           TypeTimestamp,
	"bigserial":       TypeTimestamp,
	"timestamp":       TypeTimestamp,
	"unsigned big int": TypeTimestamp,

	// Floating-point family
	"float":            TypeFloat,
	"float4":           TypeFloat,
	"float8":           TypeFloat,
	"double":           TypeFloat,
	"double precision": TypeFloat,
	"real":             TypeFloat,
	"decimal":          TypeFloat,
	"numeric":          TypeFloat,
	"number":           TypeFloat,
	"money":            TypeFloat,
	"binary_double":    TypeFloat,

	// String/Text family
	"char":              TypeText,
	"nchar":             TypeText,
	"varchar":           TypeText,
	"nvarchar":          TypeText,
	"varchar2":          TypeText,
	"nvarchar2":         TypeText,
	"character":         TypeText,
	"character varying": TypeText,
	"bpchar":            TypeText,
	"text":              TypeText,
	"tinytext":          TypeText,
	"mediumtext":        TypeText,
	"longtext":          TypeText,
	"ntext":             TypeText,
	"clob":              TypeText,
	"nclob":             TypeText,
	"json":              TypeText,
	"jsonb":             TypeText,
	"uuid":              TypeText,
	"blob":              TypeText,
	"bytea":             TypeText,
	"varbinary":         TypeText,

	// Native date/time columns
	"date":                        TypeDateTime,
	"datetime":                    TypeDateTime,
	"datetime2":                   TypeDateTime,
	"smalldatetime":               TypeDateTime,
	"timestamptz":                 TypeDateTime,
	"timestamp with time zone":    TypeDateTime,
	"timestamp without time zone": TypeDateTime,
	"time":                        TypeDateTime,
}

// NormalizeType maps a raw engine type spelling to its logical family.
// Unknown spellings fall back to Text, which is always safe to carry.
func NormalizeType(raw string) LogicalType {
	t := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if lt, ok := typeSpellings[t]; ok {
		return lt
	}
	return TypeText
}

type family int

const (
	famInteger family = iota
	famFloat
	famText
	famTimestamp
	famDateTime
)

func familyOf(t LogicalType) family {
	switch t {
	case TypeInteger:
		return famInteger
	case TypeFloat:
		return famFloat
	case TypeTimestamp:
		return famTimestamp
	case TypeDateTime:
		return famDateTime
	default:
		return famText
	}
}

// timestampCompatible holds the families that may legally share a column
// with a unix-time value. Timestamps live in numeric columns here, so the
// numeric families are interchangeable with the timestamp family.
var timestampCompatible = map[family]bool{
	famInteger:   true,
	famFloat:     true,
	famTimestamp: true,
}

// Compatible reports whether two logical types may occupy the same column
// without data loss. It is symmetric.
func Compatible(a, b LogicalType) bool {
	fa, fb := familyOf(a), familyOf(b)
	if fa == fb {
		return true
	}
	return timestampCompatible[fa] && timestampCompatible[fb]
}
