package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Helper Functions
// ============================================================================

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getIntFromRecord(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return int(i)
	}
	if i, ok := val.(int); ok {
		return i
	}
	return 0
}

func getBoolFromRecord(record *neo4j.Record, key string) bool {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return false
	}
	b, _ := val.(bool)
	return b
}

func getStringSliceFromRecord(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return []string{}
	}
	return toStringSlice(val)
}

func getMapFromRecord(record *neo4j.Record, key string) map[string]any {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return map[string]any{}
	}
	if m, ok := val.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func toStringSlice(val any) []string {
	switch v := val.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	}
	return []string{}
}

func getStringFromMap(m map[string]any, key, defaultValue string) string {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

func getIntFromMap(m map[string]any, key string, defaultValue int) int {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return defaultValue
}

func getOptionalIntFromMap(m map[string]any, key string) *int {
	if _, ok := m[key]; !ok || m[key] == nil {
		return nil
	}
	v := getIntFromMap(m, key, 0)
	return &v
}

func getStringSliceFromMap(m map[string]any, key string) []string {
	val, ok := m[key]
	if !ok || val == nil {
		return nil
	}
	return toStringSlice(val)
}

// getTimeFromMap reads a Neo4j datetime, which the driver decodes as time.Time
func getTimeFromMap(m map[string]any, key string) time.Time {
	val, ok := m[key]
	if !ok || val == nil {
		return time.Time{}
	}
	switch v := val.(type) {
	case time.Time:
		return v.UTC()
	case neo4j.LocalDateTime:
		return v.Time().UTC()
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
