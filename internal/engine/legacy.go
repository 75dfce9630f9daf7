package engine

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"db-sync/internal/schema"
)

// migrateLegacy copies a table that has no canonical model. The source's
// live structure is the only contract: the target table is created to
// mirror it when absent, and rows move over the column intersection.
func (m *Migrator) migrateLegacy(name string) TableResult {
	res := TableResult{Table: name}

	srcCols, err := m.src.Columns(name)
	if err != nil {
		return skipped(res, err)
	}

	tgtCols, err := m.tgt.Columns(name)
	if err != nil {
		if err = m.createMirror(name, srcCols); err != nil {
			return skipped(res, err)
		}
		if tgtCols, err = m.tgt.Columns(name); err != nil {
			return skipped(res, err)
		}
	}

	var cols []string
	var specs []schema.Column
	for cname, spec := range tgtCols {
		if src, ok := lookupFold(srcCols, cname); ok {
			cols = append(cols, src.Name)
			specs = append(specs, spec)
		}
	}
	if len(cols) == 0 {
		return skipped(res, fmt.Errorf("no columns in common with target"))
	}
	sortColumns(cols, specs)

	var keys []string
	for _, c := range srcCols {
		if c.PrimaryKey {
			keys = append(keys, c.Name)
		}
	}
	keys = keysWithin(keys, cols)

	var stmt string
	if len(keys) > 0 {
		stmt = m.ctx.TargetDialect.UpsertSQL(name, cols, keys)
	} else {
		log.Printf("[WARN] legacy table %s has no primary key; migration is not idempotent on rerun", name)
		stmt = m.ctx.TargetDialect.InsertSQL(name, cols)
	}

	m.copyRows(name, cols, specs, stmt, &res)
	return res
}

// createMirror builds the target table from the source's live structure,
// mapped through logical types. An "already exists" race is a success.
func (m *Migrator) createMirror(name string, srcCols map[string]schema.Column) error {
	table := &schema.Table{Name: name}
	for _, c := range srcCols {
		table.Columns = append(table.Columns, c)
	}
	sort.Slice(table.Columns, func(i, j int) bool {
		return table.Columns[i].Name < table.Columns[j].Name
	})

	stmt := m.ctx.TargetDialect.CreateTableSQL(table)
	log.Printf("[DDL] %s", stmt)
	if _, err := m.ctx.Target.Exec(stmt); err != nil {
		if isAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("failed to create legacy table %s: %w", name, err)
	}
	return nil
}

func lookupFold(cols map[string]schema.Column, name string) (schema.Column, bool) {
	if c, ok := cols[name]; ok {
		return c, true
	}
	for k, c := range cols {
		if strings.EqualFold(k, name) {
			return c, true
		}
	}
	return schema.Column{}, false
}

// sortColumns orders cols (and specs in lockstep) by name so generated
// statements are stable across runs.
func sortColumns(cols []string, specs []schema.Column) {
	idx := make([]int, len(cols))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return cols[idx[a]] < cols[idx[b]] })
	c2 := make([]string, len(cols))
	s2 := make([]schema.Column, len(specs))
	for i, j := range idx {
		c2[i] = cols[j]
		s2[i] = specs[j]
	}
	copy(cols, c2)
	copy(specs, s2)
}

// isAlreadyExists recognises the per-engine flavours of "object exists".
func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, probe := range []string{
		"already exists",
		"error 1050",
		"ora-00955",
		"there is already an object",
	} {
		if strings.Contains(msg, probe) {
			return true
		}
	}
	return false
}
