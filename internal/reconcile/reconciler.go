package reconcile

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"db-sync/internal/dialect"
	"db-sync/internal/inspect"
	"db-sync/internal/schema"
)

// Reconciler heals drift between a live database and the canonical schema.
// It is strictly additive: it creates missing tables and adds missing
// columns, and it never drops, re-types or narrows anything that exists.
// Type and nullability mismatches are reported only, because altering a
// populated column in place risks destructive truncation.
type Reconciler struct {
	DB       *sql.DB
	Dialect  dialect.Dialect
	Schema   string
	Registry *schema.Registry

	inspector *inspect.Inspector
}

func New(db *sql.DB, d dialect.Dialect, schemaName string, reg *schema.Registry) *Reconciler {
	return &Reconciler{
		DB:        db,
		Dialect:   d,
		Schema:    d.SchemaName(schemaName),
		Registry:  reg,
		inspector: inspect.New(db, d, schemaName),
	}
}

// Run compares every canonical table against the live database and returns
// the tables that drift, keyed by table name. With autoFix set it also
// creates missing tables and adds missing columns; mismatched types and
// nullability are logged and left alone either way. A table that fails to
// introspect or heal is logged and skipped, never blocking the others.
func (r *Reconciler) Run(autoFix bool) map[string]*schema.TableDiff {
	drifted := make(map[string]*schema.TableDiff)

	for _, table := range r.Registry.Tables() {
		diff, err := r.reconcileTable(&table, autoFix)
		if err != nil {
			log.Printf("[WARN] skipping table %s: %v", table.Name, err)
			continue
		}
		if !diff.Empty() {
			drifted[table.Name] = diff
		}
	}
	return drifted
}

func (r *Reconciler) reconcileTable(table *schema.Table, autoFix bool) (*schema.TableDiff, error) {
	exists, err := r.inspector.TableExists(table.Name)
	if err != nil {
		return nil, err
	}

	if !exists {
		diff := &schema.TableDiff{
			Table:          table.Name,
			MissingTable:   true,
			MissingColumns: table.Columns,
		}
		if autoFix {
			if err := r.createTable(table); err != nil {
				return nil, err
			}
			log.Printf("[DDL] created table %s", table.Name)
		}
		return diff, nil
	}

	actual, err := r.inspector.Columns(table.Name)
	if err != nil {
		return nil, err
	}

	diff := schema.Compare(table.Name, table.Columns, actual)
	if diff == nil {
		return nil, nil
	}
	r.report(diff)

	if autoFix {
		for _, col := range diff.MissingColumns {
			// Each addition stands alone; one failed column must not
			// block the rest.
			if err := r.addColumn(table.Name, col); err != nil {
				log.Printf("[WARN] failed to add column %s.%s: %v", table.Name, col.Name, err)
				continue
			}
			log.Printf("[DDL] added column %s.%s (%s)", table.Name, col.Name, col.Type)
		}
	}
	return diff, nil
}

// createTable is idempotent: a table or index that already exists, created
// by a concurrent run or an earlier partial one, counts as success.
func (r *Reconciler) createTable(table *schema.Table) error {
	if _, err := r.DB.Exec(r.Dialect.CreateTableSQL(table)); err != nil {
		if isAlreadyExists(err) {
			log.Printf("[DDL] table %s already exists, continuing", table.Name)
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", table.Name, err)
	}
	return nil
}

func (r *Reconciler) addColumn(table string, col schema.Column) error {
	// A NOT NULL addition needs a value for existing rows; derive one from
	// the canonical type when the declaration carries no default.
	if !col.Nullable && col.Default == nil {
		col.Default = zeroDefault(col.Type)
	}
	if _, err := r.DB.Exec(r.Dialect.AddColumnSQL(table, col)); err != nil {
		if isAlreadyExists(err) {
			return nil
		}
		return err
	}
	return nil
}

func (r *Reconciler) report(diff *schema.TableDiff) {
	for _, m := range diff.TypeMismatches {
		log.Printf("[WARN] %s.%s: type drift, expected %s but live column is %s (%s); not altering, in-place re-typing risks data loss",
			diff.Table, m.Column, m.Expected, m.Actual, m.ActualRaw)
	}
	for _, m := range diff.NullableMismatches {
		log.Printf("[WARN] %s.%s: nullability drift, expected nullable=%t but live column is nullable=%t; not altering",
			diff.Table, m.Column, m.Expected, m.Actual)
	}
	for _, c := range diff.ExtraColumns {
		log.Printf("[INFO] %s.%s: legacy column not in canonical schema, retained", diff.Table, c)
	}
}

func zeroDefault(t schema.LogicalType) interface{} {
	switch t {
	case schema.TypeInteger, schema.TypeTimestamp:
		return 0
	case schema.TypeFloat:
		return 0.0
	default:
		return ""
	}
}

// isAlreadyExists matches the "already exists" conditions of the supported
// engines: sqlite/mysql/postgres message text, MySQL error 1050, Oracle
// ORA-00955, SQL Server 2714.
func isAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "duplicate column") ||
		strings.Contains(msg, "error 1050") ||
		strings.Contains(msg, "ora-00955") ||
		strings.Contains(msg, "there is already an object")
}
