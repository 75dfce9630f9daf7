package dialect_test

import (
	"strings"
	"testing"

	"db-sync/internal/dialect"
	"db-sync/internal/schema"
)

func TestGetDialect(t *testing.T) {
	cases := map[string]string{
		"sqlite3":   "sqlite3",
		"sqlite":    "sqlite3",
		"postgres":  "postgres",
		"sqlserver": "sqlserver",
		"mssql":     "sqlserver",
		"oracle":    "oracle",
		"mysql":     "mysql",
		"anything":  "mysql",
	}
	for driver, want := range cases {
		if got := dialect.GetDialect(driver).Name(); got != want {
			t.Errorf("GetDialect(%q): expected %s, got %s", driver, want, got)
		}
	}
}

func TestInsertSQLPlaceholders(t *testing.T) {
	cols := []string{"id", "name"}
	cases := map[string]string{
		"mysql":     "INSERT INTO `users` (`id`, `name`) VALUES (?, ?)",
		"postgres":  `INSERT INTO "users" ("id", "name") VALUES ($1, $2)`,
		"sqlite3":   `INSERT INTO "users" ("id", "name") VALUES (?, ?)`,
		"sqlserver": "INSERT INTO [users] ([id], [name]) VALUES (@p1, @p2)",
		"oracle":    "INSERT INTO users (id, name) VALUES (:1, :2)",
	}
	for driver, want := range cases {
		if got := dialect.GetDialect(driver).InsertSQL("users", cols); got != want {
			t.Errorf("%s: expected %q, got %q", driver, want, got)
		}
	}
}

func TestUpsertSQLShapes(t *testing.T) {
	cols := []string{"id", "name"}
	keys := []string{"id"}

	cases := map[string][]string{
		"mysql":     {"ON DUPLICATE KEY UPDATE `id` = `id`"},
		"postgres":  {`ON CONFLICT ("id") DO NOTHING`},
		"sqlite3":   {`ON CONFLICT ("id") DO NOTHING`},
		"sqlserver": {"IF NOT EXISTS", "[id] = @p1"},
		"oracle":    {"MERGE INTO", "FROM DUAL", "WHEN NOT MATCHED"},
	}
	for driver, probes := range cases {
		got := dialect.GetDialect(driver).UpsertSQL("users", cols, keys)
		for _, probe := range probes {
			if !strings.Contains(got, probe) {
				t.Errorf("%s: expected %q in %q", driver, probe, got)
			}
		}
	}
}

func TestUpsertSQLWithoutKeysFallsBackSafely(t *testing.T) {
	cols := []string{"a", "b"}
	// Engines whose keyed guard needs a key must degrade to a plain insert,
	// not emit broken SQL.
	for _, driver := range []string{"sqlserver", "oracle"} {
		d := dialect.GetDialect(driver)
		if got, want := d.UpsertSQL("t", cols, nil), d.InsertSQL("t", cols); got != want {
			t.Errorf("%s: expected plain insert %q, got %q", driver, want, got)
		}
	}
	// Postgres keeps a bare conflict clause.
	got := dialect.GetDialect("postgres").UpsertSQL("t", cols, nil)
	if !strings.Contains(got, "ON CONFLICT DO NOTHING") {
		t.Errorf("Expected bare ON CONFLICT DO NOTHING, got %q", got)
	}
}

func TestAddColumnSQLSpelling(t *testing.T) {
	col := schema.Column{Name: "flag", Type: schema.TypeInteger, Nullable: false, Default: 0}

	got := dialect.GetDialect("mysql").AddColumnSQL("users", col)
	if got != "ALTER TABLE `users` ADD COLUMN `flag` INT NOT NULL DEFAULT 0" {
		t.Errorf("Unexpected mysql ALTER: %q", got)
	}

	// T-SQL and Oracle spell it ADD, without COLUMN.
	for _, driver := range []string{"sqlserver", "oracle"} {
		got := dialect.GetDialect(driver).AddColumnSQL("users", col)
		if strings.Contains(got, "ADD COLUMN") {
			t.Errorf("%s: expected ADD without COLUMN keyword, got %q", driver, got)
		}
	}
}

func TestCreateTableSQLCompositeKey(t *testing.T) {
	table := &schema.Table{
		Name: "events",
		Columns: []schema.Column{
			{Name: "source", Type: schema.TypeText, PrimaryKey: true},
			{Name: "seq", Type: schema.TypeTimestamp, PrimaryKey: true},
			{Name: "payload", Type: schema.TypeText, Nullable: true},
		},
	}
	got := dialect.GetDialect("postgres").CreateTableSQL(table)
	if !strings.Contains(got, `PRIMARY KEY ("source", "seq")`) {
		t.Errorf("Expected a table-level composite key clause, got %q", got)
	}
	if strings.Count(got, "PRIMARY KEY") != 1 {
		t.Errorf("Composite key must not also be declared inline: %q", got)
	}
}
