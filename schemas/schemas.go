// Package schemas embeds the JSON Schemas for the YAML documents the
// CLI accepts.
package schemas

import _ "embed"

// PolicySchemaJSON is the JSON Schema for policy YAML files.
//
//go:embed policy.schema.json
var PolicySchemaJSON string

// FactsSchemaJSON is the JSON Schema for facts YAML files.
//
//go:embed facts.schema.json
var FactsSchemaJSON string

// ChecksSchemaJSON is the JSON Schema for gate checks YAML files.
//
//go:embed checks.schema.json
var ChecksSchemaJSON string
