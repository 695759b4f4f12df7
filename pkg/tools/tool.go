// Package tools defines the interface every exposed tool implements and
// shared helpers for building tool schemas.
package tools

import (
	"context"
	"encoding/json"
)

// Tool is a single callable operation exposed over the tool protocol.
type Tool interface {
	// Name returns the wire name of the tool.
	Name() string

	// Description returns the human-readable description shown to callers.
	Description() string

	// Schema returns the JSON schema describing the tool's arguments.
	Schema() map[string]interface{}

	// Execute runs the tool with raw JSON arguments. It returns a text
	// summary for the caller, optional structured data, and an error when
	// the operation fails.
	Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error)
}

// ObjectSchema builds a JSON schema for an object with the given
// properties and required property names.
func ObjectSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringProperty builds a string property schema with a description.
func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

// NumberProperty builds a number property schema with a description.
func NumberProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}

// BoolProperty builds a boolean property schema with a description.
func BoolProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description}
}
