package inspect_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"db-sync/internal/dialect"
	"db-sync/internal/inspect"
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

func TestColumnsForAllSkipsBrokenTables(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec(`CREATE TABLE ok_table (id INTEGER PRIMARY KEY, note TEXT)`); err != nil {
		t.Fatal(err)
	}

	ins := inspect.New(db, dialect.GetDialect("sqlite3"), "")
	out := ins.ColumnsForAll([]string{"ok_table", "missing_table"})

	if len(out) != 1 {
		t.Fatalf("Expected exactly the introspectable table, got %d entries", len(out))
	}
	cols, ok := out["ok_table"]
	if !ok {
		t.Fatal("Expected ok_table in the result")
	}
	if cols["note"].Type != schema.TypeText {
		t.Errorf("Unexpected note column: %+v", cols["note"])
	}
}

func TestTablesAndTableExists(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec(`CREATE TABLE b (id INTEGER)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE a (id INTEGER)`); err != nil {
		t.Fatal(err)
	}

	ins := inspect.New(db, dialect.GetDialect("sqlite3"), "")

	tables, err := ins.Tables()
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 2 || tables[0] != "a" || tables[1] != "b" {
		t.Errorf("Expected [a b], got %v", tables)
	}

	exists, err := ins.TableExists("a")
	if err != nil || !exists {
		t.Errorf("Expected a to exist, got exists=%v err=%v", exists, err)
	}
	exists, err = ins.TableExists("zzz")
	if err != nil || exists {
		t.Errorf("Expected zzz to not exist, got exists=%v err=%v", exists, err)
	}
}
