package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/steelyard-dev/steelyard/schemas"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// Kind identifies which document schema a YAML file is checked against.
type Kind string

const (
	KindPolicy Kind = "policy"
	KindFacts  Kind = "facts"
	KindChecks Kind = "checks"
)

// policySchema is the compiled JSON Schema for policy YAML files.
var policySchema *jsonschema.Schema

// factsSchema is the compiled JSON Schema for facts YAML files.
var factsSchema *jsonschema.Schema

// checksSchema is the compiled JSON Schema for gate checks YAML files.
var checksSchema *jsonschema.Schema

func init() {
	policySchema = mustCompileSchema(schemas.PolicySchemaJSON, "policy.schema.json")
	factsSchema = mustCompileSchema(schemas.FactsSchemaJSON, "facts.schema.json")
	checksSchema = mustCompileSchema(schemas.ChecksSchemaJSON, "checks.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateFile reads a YAML file, detects which document kind it holds,
// and validates it against the matching schema.
func ValidateFile(path string) (Kind, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return "", []string{fmt.Sprintf("YAML parse error: %v", err)}, nil
	}

	kind := DetectKind(yamlDoc)
	return kind, validateAgainstSchema(schemaFor(kind), convertToJSONCompatible(yamlDoc)), nil
}

// DetectKind infers the document kind from its top-level keys. A
// document with a checks list is a checks file; one with facts blocks
// is a facts file; everything else is treated as a policy.
func DetectKind(doc any) Kind {
	m, ok := doc.(map[string]any)
	if !ok {
		return KindPolicy
	}
	if _, ok := m["checks"]; ok {
		return KindChecks
	}
	for _, key := range []string{"values", "strength", "bridge", "concentration", "counters"} {
		if _, ok := m[key]; ok {
			return KindFacts
		}
	}
	return KindPolicy
}

// ValidatePolicyBytes validates raw YAML bytes against the policy schema.
func ValidatePolicyBytes(data []byte) []string {
	return validateYAMLBytes(policySchema, data)
}

// ValidateFactsBytes validates raw YAML bytes against the facts schema.
func ValidateFactsBytes(data []byte) []string {
	return validateYAMLBytes(factsSchema, data)
}

// ValidateChecksBytes validates raw YAML bytes against the checks schema.
func ValidateChecksBytes(data []byte) []string {
	return validateYAMLBytes(checksSchema, data)
}

func schemaFor(kind Kind) *jsonschema.Schema {
	switch kind {
	case KindFacts:
		return factsSchema
	case KindChecks:
		return checksSchema
	default:
		return policySchema
	}
}

func validateYAMLBytes(schema *jsonschema.Schema, data []byte) []string {
	// Parse YAML into generic any
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}

	return validateAgainstSchema(schema, convertToJSONCompatible(yamlDoc))
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible converts YAML-decoded values to JSON-compatible types.
// yaml.v3 decodes to map[string]any which is fine, but integers need to stay as-is.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
