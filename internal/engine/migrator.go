package engine

import (
	"fmt"
	"log"
	"strings"

	"db-sync/internal/convert"
	"db-sync/internal/dialect"
	"db-sync/internal/inspect"
	"db-sync/internal/reconcile"
	"db-sync/internal/schema"
)

// Migrator drives one end-to-end run: heal the target schema, enumerate
// source tables, copy canonical then legacy tables, verify row counts.
// Tables migrate one at a time and rows in source order; the unit that
// must complete or be retried is a single row write, never a whole table.
type Migrator struct {
	ctx Context

	src *inspect.Inspector
	tgt *inspect.Inspector

	phase Phase

	// OnRow, when set, is called once per successfully written row.
	OnRow func()
}

func New(ctx Context) *Migrator {
	if ctx.BatchSize <= 0 {
		ctx.BatchSize = DefaultBatchSize
	}
	return &Migrator{
		ctx:   ctx,
		src:   inspect.New(ctx.Source, ctx.SourceDialect, ctx.SourceSchema),
		tgt:   inspect.New(ctx.Target, ctx.TargetDialect, ctx.TargetSchema),
		phase: PhaseInit,
	}
}

func (m *Migrator) Phase() Phase { return m.phase }

// Run executes the full migration. The returned error is non-nil only for
// the fatal class: an unreachable source or target. Everything else is
// absorbed into the report and the run completes.
func (m *Migrator) Run() (*Report, error) {
	if err := m.ctx.Source.Ping(); err != nil {
		m.phase = PhaseFailed
		return nil, fmt.Errorf("source database unreachable: %w", err)
	}
	if err := m.ctx.Target.Ping(); err != nil {
		m.phase = PhaseFailed
		return nil, fmt.Errorf("target database unreachable: %w", err)
	}

	report := &Report{}

	// DDL reconciliation always completes before any row moves.
	rec := reconcile.New(m.ctx.Target, m.ctx.TargetDialect, m.ctx.TargetSchema, m.ctx.Registry)
	rec.Run(true)
	m.phase = PhaseSchemaEnsured

	sourceTables, err := m.src.Tables()
	if err != nil {
		log.Printf("[WARN] failed to enumerate source tables: %v", err)
	}
	present := make(map[string]string, len(sourceTables))
	for _, t := range sourceTables {
		present[strings.ToLower(t)] = t
	}
	m.phase = PhaseSourceTablesDetected

	for _, table := range m.ctx.Registry.Tables() {
		if _, ok := present[strings.ToLower(table.Name)]; !ok {
			log.Printf("[INFO] table %s not present in source, nothing to migrate", table.Name)
			continue
		}
		report.Tables = append(report.Tables, m.migrateCanonical(&table))
	}
	m.phase = PhaseCanonicalTablesMigrated

	for _, name := range m.ctx.LegacyTables {
		if _, ok := m.ctx.Registry.Lookup(name); ok {
			continue // has a model, already handled above
		}
		srcName, ok := present[strings.ToLower(name)]
		if !ok {
			continue
		}
		report.Tables = append(report.Tables, m.migrateLegacy(srcName))
	}
	m.phase = PhaseLegacyTablesMigrated

	m.verify(report)
	m.phase = PhaseVerified

	m.phase = PhaseDone
	return report, nil
}

func (m *Migrator) migrateCanonical(table *schema.Table) TableResult {
	res := TableResult{Table: table.Name, Canonical: true}

	srcCols, err := m.src.Columns(table.Name)
	if err != nil {
		return skipped(res, err)
	}

	// Read only what both sides know: canonical columns the source
	// actually has. Columns added by reconciliation that the source
	// lacks fill from their canonical defaults.
	var cols []string
	var specs []schema.Column
	for _, c := range table.Columns {
		if _, ok := lookupFold(srcCols, c.Name); !ok {
			continue
		}
		cols = append(cols, c.Name)
		specs = append(specs, c)
	}
	if len(cols) == 0 {
		return skipped(res, fmt.Errorf("no canonical columns present in source"))
	}

	keys := keysWithin(table.PrimaryKey(), cols)
	var stmt string
	if len(keys) > 0 {
		stmt = m.ctx.TargetDialect.UpsertSQL(table.Name, cols, keys)
	} else {
		// Blind insert: re-running after a partial failure can duplicate
		// rows for this table.
		log.Printf("[WARN] table %s has no primary key; migration is not idempotent on rerun", table.Name)
		stmt = m.ctx.TargetDialect.InsertSQL(table.Name, cols)
	}

	m.copyRows(table.Name, cols, specs, stmt, &res)
	return res
}

// copyRows streams the source rows and writes them to the target, one
// transaction per batch. A scan, conversion or insert failure skips only
// that row.
func (m *Migrator) copyRows(table string, cols []string, specs []schema.Column, stmt string, res *TableResult) {
	query := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(dialect.QuoteAll(m.ctx.SourceDialect, cols), ", "),
		m.ctx.SourceDialect.QuoteIdent(table))
	rows, err := m.ctx.Source.Query(query)
	if err != nil {
		*res = skipped(*res, fmt.Errorf("failed to read source rows: %w", err))
		return
	}
	defer rows.Close()

	tx, err := m.ctx.Target.Begin()
	if err != nil {
		*res = skipped(*res, fmt.Errorf("failed to begin target transaction: %w", err))
		return
	}

	inBatch := 0
	index := -1
	for rows.Next() {
		index++

		raw := make([]interface{}, len(specs))
		ptrs := make([]interface{}, len(specs))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			log.Printf("[DEBUG] %s row %d: scan failed: %v", table, index, err)
			res.fail(index, err)
			continue
		}

		vals := make([]interface{}, len(specs))
		for i, spec := range specs {
			vals[i] = convert.Value(raw[i], spec.Type)
		}

		if _, err := tx.Exec(stmt, vals...); err != nil {
			log.Printf("[DEBUG] %s row %d: insert failed: %v (row: %v)", table, index, err, vals)
			res.fail(index, err)
			continue
		}
		res.Succeeded++
		if m.OnRow != nil {
			m.OnRow()
		}

		inBatch++
		if inBatch >= m.ctx.BatchSize {
			if err := tx.Commit(); err != nil {
				log.Printf("[WARN] %s: batch commit failed: %v", table, err)
			}
			if tx, err = m.ctx.Target.Begin(); err != nil {
				*res = skipped(*res, fmt.Errorf("failed to begin target transaction: %w", err))
				return
			}
			inBatch = 0
		}
	}
	if err := rows.Err(); err != nil {
		log.Printf("[WARN] %s: source row iteration ended early: %v", table, err)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[WARN] %s: final commit failed: %v", table, err)
	}

	if res.Failed > 0 {
		log.Printf("[WARN] table %s: %d rows migrated, %d rows skipped", table, res.Succeeded, res.Failed)
	} else {
		log.Printf("[INFO] table %s: %d rows migrated", table, res.Succeeded)
	}
}

// verify compares COUNT(*) between source and target for every table the
// run attempted. It runs exactly once, after all tables, and a mismatch is
// a warning only.
func (m *Migrator) verify(report *Report) {
	for _, t := range report.Tables {
		row := VerificationRow{
			Table:       t.Table,
			SourceCount: m.count(m.src, t.Table),
			TargetCount: m.count(m.tgt, t.Table),
		}
		if !row.Match() {
			log.Printf("[WARN] verification: %s source=%d target=%d", row.Table, row.SourceCount, row.TargetCount)
		}
		report.Verification = append(report.Verification, row)
	}
}

func (m *Migrator) count(ins *inspect.Inspector, table string) int64 {
	var n int64
	if err := ins.DB.QueryRow(dialect.CountSQL(ins.Dialect, table)).Scan(&n); err != nil {
		log.Printf("[WARN] failed to count %s: %v", table, err)
		return -1
	}
	return n
}

func skipped(res TableResult, err error) TableResult {
	log.Printf("[WARN] skipping table %s: %v", res.Table, err)
	res.Skipped = true
	res.SkipReason = err.Error()
	return res
}

func keysWithin(keys, cols []string) []string {
	var out []string
	for _, k := range keys {
		for _, c := range cols {
			if strings.EqualFold(k, c) {
				out = append(out, k)
				break
			}
		}
	}
	return out
}
