package pricingsource

import (
	// embed provides the canonical schema for offline validation.
	_ "embed"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed pricing_computation.schema.json
var canonicalSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// canonicalSchema compiles the embedded schema exactly once.
func canonicalSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(canonicalSchemaJSON))
	})
	return schema, schemaErr
}

// validate checks a computation against the canonical contract: the embedded
// JSON schema plus the structural properties the schema cannot express
// (ascending matrix order, unique quantities). A violation is a programming
// error or upstream contract drift and surfaces as SchemaValidationError.
func validate(pc *PricingComputation) error {
	sch, err := canonicalSchema()
	if err != nil {
		return fmt.Errorf("compiling canonical schema: %w", err)
	}

	doc, err := json.Marshal(pc)
	if err != nil {
		return fmt.Errorf("encoding pricing computation: %w", err)
	}

	result, err := sch.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validating pricing computation: %w", err)
	}

	var violations []string
	if !result.Valid() {
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
	}

	for i := 1; i < len(pc.Matrix); i++ {
		if pc.Matrix[i].Quantity <= pc.Matrix[i-1].Quantity {
			violations = append(violations,
				fmt.Sprintf("matrix not strictly ascending by quantity at index %d", i))
			break
		}
	}

	if len(violations) > 0 {
		return &SchemaValidationError{Source: pc.Source, Violations: violations}
	}
	return nil
}
