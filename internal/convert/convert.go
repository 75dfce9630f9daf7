package convert

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"db-sync/internal/schema"
)

// Value coerces a raw value read from a source row into the representation
// the target column's logical type expects. It never fails: NULL stays
// NULL, numeric parses fall back to zero values, and timestamps fall back
// to the current wall clock so no "zero epoch" artifacts reach the target.
// A value of a shape the rules don't cover is passed through unchanged.
func Value(v interface{}, t schema.LogicalType) interface{} {
	if v == nil {
		return nil
	}

	switch t {
	case schema.TypeInteger:
		return toInteger(v)
	case schema.TypeTimestamp:
		return toTimestamp(v)
	case schema.TypeFloat:
		return toFloat(v)
	case schema.TypeText:
		return toText(v)
	default:
		// Native date/time and opaque values pass through; the driver
		// already hands us something the target engine accepts.
		return v
	}
}

func toText(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func toInteger(v interface{}) interface{} {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case uint64:
		return int64(val)
	case float64:
		return int64(val)
	case float32:
		return int64(val)
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case []byte:
		return parseInteger(string(val))
	case string:
		return parseInteger(val)
	default:
		log.Printf("[DEBUG] cannot coerce %T to integer, passing through", v)
		return v
	}
}

// parseInteger truncates fractional input via a float parse rather than
// rejecting it; empty or unparseable input collapses to 0.
func parseInteger(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	log.Printf("[DEBUG] unparseable integer %q, using 0", s)
	return 0
}

func toFloat(v interface{}) interface{} {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case []byte:
		return parseFloat(string(val))
	case string:
		return parseFloat(val)
	default:
		log.Printf("[DEBUG] cannot coerce %T to float, passing through", v)
		return v
	}
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0.0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	log.Printf("[DEBUG] unparseable float %q, using 0.0", s)
	return 0.0
}

// toTimestamp parses unix time out of whatever the source stored. An
// unparseable or empty value yields the current wall clock, a safe default
// that avoids zero-epoch rows downstream.
func toTimestamp(v interface{}) interface{} {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case uint64:
		return int64(val)
	case float64:
		return int64(val)
	case float32:
		return int64(val)
	case time.Time:
		return val.Unix()
	case []byte:
		return parseTimestamp(string(val))
	case string:
		return parseTimestamp(val)
	default:
		log.Printf("[DEBUG] cannot coerce %T to timestamp, using current time", v)
		return time.Now().Unix()
	}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) int64 {
	s = strings.TrimSpace(s)
	if s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
		for _, layout := range timestampLayouts {
			if at, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return at.Unix()
			}
		}
	}
	log.Printf("[DEBUG] unparseable timestamp %q, using current time", s)
	return time.Now().Unix()
}
