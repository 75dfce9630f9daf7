package reconcile_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"db-sync/internal/dialect"
	"db-sync/internal/reconcile"
	"db-sync/internal/schema"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.RegistryFromConfig([]schema.TableConfig{
		{
			Name: "users",
			Columns: []schema.ColumnConfig{
				{Name: "id", Type: "integer", PrimaryKey: true},
				{Name: "created_at", Type: "timestamp"},
				{Name: "name", Type: "text", Nullable: true},
				{Name: "new_field", Type: "integer"},
			},
		},
	})
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return reg
}

func newReconciler(db *sql.DB, reg *schema.Registry) *reconcile.Reconciler {
	return reconcile.New(db, dialect.GetDialect("sqlite3"), "", reg)
}

func TestRunCreatesMissingTable(t *testing.T) {
	db := openTestDB(t)
	reg := testRegistry(t)

	diffs := newReconciler(db, reg).Run(true)

	diff, ok := diffs["users"]
	if !ok {
		t.Fatal("Expected a diff entry for the created table")
	}
	if !diff.MissingTable {
		t.Error("Expected MissingTable=true on first run")
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		t.Fatalf("Expected users to be queryable after healing: %v", err)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	reg := testRegistry(t)

	newReconciler(db, reg).Run(true)
	diffs := newReconciler(db, reg).Run(true)

	if len(diffs) != 0 {
		t.Errorf("Expected zero drift on second run, got %d tables", len(diffs))
	}
}

func TestRunAddsMissingColumnAndRetainsExtra(t *testing.T) {
	db := openTestDB(t)
	reg := testRegistry(t)

	// An old deployment: no new_field yet, plus a column the models never
	// heard of.
	if _, err := db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		created_at BIGINT NOT NULL,
		name TEXT,
		old_flag INTEGER
	)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO users (id, created_at, name, old_flag) VALUES (1, 1700000000, 'ada', 7)`); err != nil {
		t.Fatal(err)
	}

	diffs := newReconciler(db, reg).Run(true)

	diff, ok := diffs["users"]
	if !ok {
		t.Fatal("Expected users to drift")
	}
	if len(diff.MissingColumns) != 1 || diff.MissingColumns[0].Name != "new_field" {
		t.Fatalf("Expected new_field reported missing, got %+v", diff.MissingColumns)
	}
	if len(diff.ExtraColumns) != 1 || diff.ExtraColumns[0] != "old_flag" {
		t.Errorf("Expected old_flag reported extra, got %v", diff.ExtraColumns)
	}

	// The existing row must survive with its legacy data intact and the new
	// NOT NULL column backfilled from the derived default.
	var oldFlag, newField int
	if err := db.QueryRow(`SELECT old_flag, new_field FROM users WHERE id = 1`).Scan(&oldFlag, &newField); err != nil {
		t.Fatalf("Expected both columns present after healing: %v", err)
	}
	if oldFlag != 7 {
		t.Errorf("Expected legacy data retained, got old_flag=%d", oldFlag)
	}
	if newField != 0 {
		t.Errorf("Expected new_field backfilled with 0, got %d", newField)
	}

	// Second run: healed, only the retained extra column still reports.
	diffs = newReconciler(db, reg).Run(true)
	if diff, ok := diffs["users"]; ok {
		if len(diff.MissingColumns) != 0 {
			t.Errorf("Expected no missing columns after healing, got %+v", diff.MissingColumns)
		}
	}
}

func TestRunReportsMismatchWithoutAltering(t *testing.T) {
	db := openTestDB(t)
	reg := testRegistry(t)

	// name declared with an incompatible live type.
	if _, err := db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		created_at BIGINT NOT NULL,
		name INTEGER,
		new_field INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		t.Fatal(err)
	}

	diffs := newReconciler(db, reg).Run(true)

	diff, ok := diffs["users"]
	if !ok {
		t.Fatal("Expected users to drift on the type mismatch")
	}
	if len(diff.TypeMismatches) != 1 || diff.TypeMismatches[0].Column != "name" {
		t.Fatalf("Expected a type mismatch on name, got %+v", diff.TypeMismatches)
	}

	// The live column must be left exactly as it was.
	cols, err := dialect.GetDialect("sqlite3").Columns(db, "", "users")
	if err != nil {
		t.Fatal(err)
	}
	if cols["name"].Type != schema.TypeInteger {
		t.Errorf("Expected the mismatched column untouched, got %+v", cols["name"])
	}
}

func TestRunWithoutAutoFixChangesNothing(t *testing.T) {
	db := openTestDB(t)
	reg := testRegistry(t)

	diffs := newReconciler(db, reg).Run(false)

	if diff, ok := diffs["users"]; !ok || !diff.MissingTable {
		t.Fatalf("Expected the missing table reported, got %+v", diffs)
	}

	exists, err := dialect.GetDialect("sqlite3").TableExists(db, "", "users")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("Expected no table created in check-only mode")
	}
}
