package schema

import "strings"

// Compare diffs the canonical column set of one table against the columns
// actually present in a live database. Actual columns are keyed by name as
// returned by introspection; matching is case-insensitive.
//
// Primary-key columns are exempt from the nullability check, because a
// primary key's nullability is engine-defined and carries no signal.
//
// A nil result means zero drift.
func Compare(tableName string, canonical []Column, actual map[string]Column) *TableDiff {
	diff := &TableDiff{Table: tableName}

	actualByName := make(map[string]Column, len(actual))
	for name, col := range actual {
		actualByName[strings.ToLower(name)] = col
	}

	canonicalNames := make(map[string]bool, len(canonical))
	for _, want := range canonical {
		key := strings.ToLower(want.Name)
		canonicalNames[key] = true

		have, ok := actualByName[key]
		if !ok {
			diff.MissingColumns = append(diff.MissingColumns, want)
			continue
		}

		if !Compatible(want.Type, have.Type) {
			diff.TypeMismatches = append(diff.TypeMismatches, TypeMismatch{
				Column:    want.Name,
				Expected:  want.Type,
				Actual:    have.Type,
				ActualRaw: have.RawType,
			})
		}

		if !want.PrimaryKey && want.Nullable != have.Nullable {
			diff.NullableMismatches = append(diff.NullableMismatches, NullableMismatch{
				Column:   want.Name,
				Expected: want.Nullable,
				Actual:   have.Nullable,
			})
		}
	}

	for name, col := range actual {
		if !canonicalNames[strings.ToLower(name)] {
			diff.ExtraColumns = append(diff.ExtraColumns, col.Name)
		}
	}

	if diff.Empty() {
		return nil
	}
	return diff
}
