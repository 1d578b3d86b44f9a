// Package schema validates call payloads against a JSON Schema document.
package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError reports every violation found in a payload.
type ValidationError struct {
	// Violations are the individual failures, in the order reported.
	Violations []string
}

func (e *ValidationError) Error() string {
	return "schema validation failed: " + strings.Join(e.Violations, "; ")
}

// Validate checks the JSON payload data against schemaDoc.
// A malformed schema or payload is returned as a plain error; a payload
// that parses but violates the schema returns a *ValidationError.
func Validate(schemaDoc []byte, data string) error {
	schemaLoader := gojsonschema.NewBytesLoader(schemaDoc)
	documentLoader := gojsonschema.NewStringLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate payload: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return &ValidationError{Violations: violations}
}
