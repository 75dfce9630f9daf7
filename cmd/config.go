package cmd

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"db-sync/internal/dialect"
	"db-sync/internal/schema"

	"github.com/spf13/viper"
)

// Endpoint is one side of a migration: a driver, a DSN and the schema
// (namespace) introspection should look in.
type Endpoint struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
}

func sourceEndpoint() (Endpoint, error) { return endpoint("source") }
func targetEndpoint() (Endpoint, error) { return endpoint("target") }

func endpoint(key string) (Endpoint, error) {
	var ep Endpoint
	if err := viper.UnmarshalKey(key, &ep); err != nil {
		return ep, fmt.Errorf("failed to parse %s config: %w", key, err)
	}
	if ep.DSN == "" {
		return ep, fmt.Errorf("%s.dsn is required (via flag or config)", key)
	}
	if ep.Driver == "" {
		ep.Driver = detectDriver(ep.DSN)
	}
	return ep, nil
}

// detectDriver guesses the driver from DSN shape when none is configured.
func detectDriver(dsn string) string {
	low := strings.ToLower(dsn)
	switch {
	case strings.Contains(low, "postgres") || strings.Contains(low, "sslmode"):
		return "postgres"
	case strings.HasPrefix(low, "sqlserver://"):
		return "sqlserver"
	case strings.HasPrefix(low, "oracle://"):
		return "oracle"
	case strings.HasSuffix(low, ".db") || strings.HasSuffix(low, ".sqlite") ||
		strings.Contains(low, ".sqlite?") || strings.HasPrefix(low, "file:"):
		return "sqlite3"
	default:
		return "mysql"
	}
}

// openEndpoint connects, pings and resolves the working schema name.
func openEndpoint(ep Endpoint) (*sql.DB, dialect.Dialect, string, error) {
	db, err := sql.Open(ep.Driver, ep.DSN)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, "", fmt.Errorf("failed to connect to db: %w", err)
	}

	d := dialect.GetDialect(ep.Driver)

	schemaName := ep.Schema
	if schemaName == "" && ep.Driver == "mysql" {
		if err := db.QueryRow("SELECT DATABASE()").Scan(&schemaName); err != nil {
			db.Close()
			return nil, nil, "", fmt.Errorf("failed to get database name: %w", err)
		}
		if schemaName == "" {
			db.Close()
			return nil, nil, "", fmt.Errorf("no database selected in DSN")
		}
	}
	schemaName = d.SchemaName(schemaName)

	return db, d, schemaName, nil
}

// loadRegistry builds the canonical table models from the config file.
func loadRegistry() (*schema.Registry, error) {
	var configs []schema.TableConfig
	if err := viper.UnmarshalKey("tables", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse tables config: %w", err)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("no tables defined in config (key: tables)")
	}
	return schema.RegistryFromConfig(configs)
}

func legacyTables() []string {
	return viper.GetStringSlice("settings.legacy_tables")
}

// filterTables narrows the registry and the legacy allow-list to the
// requested names. An empty request keeps everything.
func filterTables(reg *schema.Registry, legacy []string, requested []string) (*schema.Registry, []string, error) {
	if len(requested) == 0 {
		return reg, legacy, nil
	}
	req := make(map[string]bool, len(requested))
	for _, t := range requested {
		req[strings.ToLower(t)] = true
	}

	var kept []schema.Table
	for _, t := range reg.Tables() {
		if req[strings.ToLower(t.Name)] {
			kept = append(kept, t)
		}
	}
	var keptLegacy []string
	for _, t := range legacy {
		if req[strings.ToLower(t)] {
			keptLegacy = append(keptLegacy, t)
		}
	}
	if len(kept)+len(keptLegacy) == 0 {
		return nil, nil, fmt.Errorf("no matching tables found for inputs: %v", requested)
	}
	return schema.NewRegistry(kept), keptLegacy, nil
}

// confirm asks before a destructive-adjacent step unless --yes was given.
func confirm(prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
