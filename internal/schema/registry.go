package schema

import (
	"fmt"
	"strings"
)

// Registry is the canonical schema: the table set the current application
// version expects. It is supplied by the embedding application (or loaded
// from config by the CLI) and never mutated by the engine.
type Registry struct {
	tables []Table
	byName map[string]*Table
}

func NewRegistry(tables []Table) *Registry {
	r := &Registry{byName: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		r.tables = append(r.tables, t)
		r.byName[strings.ToLower(t.Name)] = &r.tables[len(r.tables)-1]
	}
	return r
}

// Tables returns the canonical tables in declaration order.
func (r *Registry) Tables() []Table {
	if r == nil {
		return nil
	}
	return r.tables
}

func (r *Registry) Lookup(name string) (*Table, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.byName[strings.ToLower(name)]
	return t, ok
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tables)
}

// TableConfig and ColumnConfig are the config-file shape of a canonical
// table declaration, unmarshalled by viper.
type TableConfig struct {
	Name    string         `mapstructure:"name"`
	Columns []ColumnConfig `mapstructure:"columns"`
}

type ColumnConfig struct {
	Name       string      `mapstructure:"name"`
	Type       string      `mapstructure:"type"`
	Nullable   bool        `mapstructure:"nullable"`
	PrimaryKey bool        `mapstructure:"pk"`
	Default    interface{} `mapstructure:"default"`
}

var configTypes = map[string]LogicalType{
	"integer":   TypeInteger,
	"int":       TypeInteger,
	"timestamp": TypeTimestamp,
	"bigint":    TypeTimestamp,
	"float":     TypeFloat,
	"double":    TypeFloat,
	"text":      TypeText,
	"string":    TypeText,
	"datetime":  TypeDateTime,
}

// RegistryFromConfig builds a Registry from config-file declarations.
func RegistryFromConfig(configs []TableConfig) (*Registry, error) {
	var tables []Table
	for _, tc := range configs {
		if tc.Name == "" {
			return nil, fmt.Errorf("table declaration without a name")
		}
		if len(tc.Columns) == 0 {
			return nil, fmt.Errorf("table %s declares no columns", tc.Name)
		}
		t := Table{Name: tc.Name}
		for _, cc := range tc.Columns {
			lt, ok := configTypes[strings.ToLower(cc.Type)]
			if !ok {
				return nil, fmt.Errorf("table %s column %s: unknown type %q", tc.Name, cc.Name, cc.Type)
			}
			t.Columns = append(t.Columns, Column{
				Name:       cc.Name,
				Type:       lt,
				Nullable:   cc.Nullable,
				PrimaryKey: cc.PrimaryKey,
				Default:    cc.Default,
			})
		}
		tables = append(tables, t)
	}
	return NewRegistry(tables), nil
}
