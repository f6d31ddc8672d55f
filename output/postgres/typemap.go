package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/relex/etl-sink-agent/base"
)

// columnType maps a declared property to a PostgreSQL column type
//
// Properties without a concrete declared type and properties of mixed concrete types land in
// JSONB, preserving whatever the upstream producer sends
func columnType(prop base.PropertySchema) string {
	switch prop.FirstConcreteType() {
	case "integer":
		return "BIGINT"
	case "number":
		return "DOUBLE PRECISION"
	case "boolean":
		return "BOOLEAN"
	case "string":
		if prop.Format == "date-time" {
			return "TIMESTAMP WITH TIME ZONE"
		}
		return "TEXT"
	case "object", "array":
		return "JSONB"
	default:
		return "JSONB"
	}
}

// columnValue converts a decoded record value into a driver argument for its column
//
// Objects and arrays are re-serialized to feed JSONB columns; scalars pass through
func columnValue(prop base.PropertySchema, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	switch typed := value.(type) {
	case map[string]interface{}, []interface{}:
		serialized, err := json.Marshal(typed)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize value for JSONB column: %w", err)
		}
		return string(serialized), nil
	default:
		if columnType(prop) == "JSONB" {
			serialized, err := json.Marshal(typed)
			if err != nil {
				return nil, fmt.Errorf("failed to serialize value for JSONB column: %w", err)
			}
			return string(serialized), nil
		}
		return typed, nil
	}
}
