package schema_test

import (
	"testing"

	"db-sync/internal/schema"
)

func TestNormalizeType(t *testing.T) {
	cases := map[string]schema.LogicalType{
		"INT":              schema.TypeInteger,
		"int(11)":          schema.TypeInteger,
		"tinyint(1)":       schema.TypeInteger,
		"serial":           schema.TypeInteger,
		"BIGINT":           schema.TypeTimestamp,
		"int8":             schema.TypeTimestamp,
		"timestamp":        schema.TypeTimestamp,
		"double precision": schema.TypeFloat,
		"NUMERIC(10,2)":    schema.TypeFloat,
		"number(10,2)":     schema.TypeFloat,
		"VARCHAR(255)":     schema.TypeText,
		"nvarchar(max)":    schema.TypeText,
		"clob":             schema.TypeText,
		"datetime":         schema.TypeDateTime,
		"timestamptz":      schema.TypeDateTime,
	}
	for raw, want := range cases {
		if got := schema.NormalizeType(raw); got != want {
			t.Errorf("NormalizeType(%q): expected %s, got %s", raw, want, got)
		}
	}
}

func TestNormalizeTypeUnknownFallsBackToText(t *testing.T) {
	if got := schema.NormalizeType("geography"); got != schema.TypeText {
		t.Errorf("Expected unknown type to normalize to Text, got %s", got)
	}
}

func TestCompatible(t *testing.T) {
	// Timestamps live in BIGINT columns, so the numeric family cluster is
	// mutually compatible.
	compatible := [][2]schema.LogicalType{
		{schema.TypeInteger, schema.TypeInteger},
		{schema.TypeInteger, schema.TypeTimestamp},
		{schema.TypeInteger, schema.TypeFloat},
		{schema.TypeFloat, schema.TypeTimestamp},
		{schema.TypeText, schema.TypeText},
		{schema.TypeDateTime, schema.TypeDateTime},
	}
	incompatible := [][2]schema.LogicalType{
		{schema.TypeInteger, schema.TypeText},
		{schema.TypeFloat, schema.TypeText},
		{schema.TypeTimestamp, schema.TypeText},
		{schema.TypeDateTime, schema.TypeInteger},
		{schema.TypeDateTime, schema.TypeText},
	}

	for _, pair := range compatible {
		if !schema.Compatible(pair[0], pair[1]) {
			t.Errorf("Expected %s and %s to be compatible", pair[0], pair[1])
		}
	}
	for _, pair := range incompatible {
		if schema.Compatible(pair[0], pair[1]) {
			t.Errorf("Expected %s and %s to be incompatible", pair[0], pair[1])
		}
	}
}

func TestCompatibleIsSymmetric(t *testing.T) {
	all := []schema.LogicalType{
		schema.TypeInteger, schema.TypeTimestamp, schema.TypeFloat,
		schema.TypeText, schema.TypeDateTime,
	}
	for _, a := range all {
		for _, b := range all {
			if schema.Compatible(a, b) != schema.Compatible(b, a) {
				t.Errorf("Compatible(%s, %s) != Compatible(%s, %s)", a, b, b, a)
			}
		}
	}
}
