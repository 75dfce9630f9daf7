package dialect_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"db-sync/internal/dialect"
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

func usersTable() *schema.Table {
	return &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
			{Name: "created_at", Type: schema.TypeTimestamp, Default: 0},
			{Name: "name", Type: schema.TypeText, Nullable: true},
		},
	}
}

func TestSqliteCreateAndIntrospect(t *testing.T) {
	db := openTestDB(t)
	d := dialect.GetDialect("sqlite3")

	if _, err := db.Exec(d.CreateTableSQL(usersTable())); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	exists, err := d.TableExists(db, "", "users")
	if err != nil || !exists {
		t.Fatalf("Expected users to exist, got exists=%v err=%v", exists, err)
	}

	tables, err := d.Tables(db, "")
	if err != nil {
		t.Fatalf("failed to list tables: %v", err)
	}
	if len(tables) != 1 || tables[0] != "users" {
		t.Errorf("Expected [users], got %v", tables)
	}

	cols, err := d.Columns(db, "", "users")
	if err != nil {
		t.Fatalf("failed to introspect columns: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("Expected 3 columns, got %d", len(cols))
	}

	id := cols["id"]
	if !id.PrimaryKey || id.Type != schema.TypeInteger {
		t.Errorf("Unexpected id column: %+v", id)
	}
	created := cols["created_at"]
	if created.Type != schema.TypeTimestamp || created.Nullable {
		t.Errorf("Unexpected created_at column: %+v", created)
	}
	name := cols["name"]
	if name.Type != schema.TypeText || !name.Nullable {
		t.Errorf("Unexpected name column: %+v", name)
	}
}

func TestSqliteColumnsOfMissingTable(t *testing.T) {
	db := openTestDB(t)
	d := dialect.GetDialect("sqlite3")

	if _, err := d.Columns(db, "", "nope"); err == nil {
		t.Error("Expected an error for a missing table")
	}
}

func TestSqliteAddColumn(t *testing.T) {
	db := openTestDB(t)
	d := dialect.GetDialect("sqlite3")

	if _, err := db.Exec(d.CreateTableSQL(usersTable())); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	add := schema.Column{Name: "score", Type: schema.TypeFloat, Nullable: false, Default: 0}
	if _, err := db.Exec(d.AddColumnSQL("users", add)); err != nil {
		t.Fatalf("failed to add column: %v", err)
	}

	cols, err := d.Columns(db, "", "users")
	if err != nil {
		t.Fatalf("failed to introspect: %v", err)
	}
	score, ok := cols["score"]
	if !ok {
		t.Fatal("Expected score column after ALTER")
	}
	if score.Type != schema.TypeFloat || score.Nullable {
		t.Errorf("Unexpected score column: %+v", score)
	}
}

func TestSqliteUpsertSkipsExistingKey(t *testing.T) {
	db := openTestDB(t)
	d := dialect.GetDialect("sqlite3")

	if _, err := db.Exec(d.CreateTableSQL(usersTable())); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	cols := []string{"id", "created_at", "name"}
	stmt := d.UpsertSQL("users", cols, []string{"id"})

	if _, err := db.Exec(stmt, 1, 1700000000, "first"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := db.Exec(stmt, 1, 1700000001, "second"); err != nil {
		t.Fatalf("second insert should be ignored, not fail: %v", err)
	}

	var n int
	var name string
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Expected 1 row after duplicate upsert, got %d", n)
	}
	if err := db.QueryRow(`SELECT name FROM users WHERE id = 1`).Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "first" {
		t.Errorf("Expected the original row to win, got %q", name)
	}
}
